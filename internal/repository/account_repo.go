package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"ledgerbank/internal/domain"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	// CreateAccount adds a new account, filling in the generated ID.
	CreateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetAccountByID retrieves an account by its ID.
	GetAccountByID(ctx context.Context, q DBExecutor, id int64) (*domain.Account, error)
	// GetAccountForUpdate retrieves an account and locks its row for the
	// duration of the surrounding transaction (SELECT ... FOR UPDATE).
	GetAccountForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Account, error)
	// GetAccountByUserAndCurrency resolves the (user, currency) pair.
	GetAccountByUserAndCurrency(ctx context.Context, q DBExecutor, userID int64, currencyCode string) (*domain.Account, error)
	// ListAccountsByUser returns all accounts a user owns, active or not.
	ListAccountsByUser(ctx context.Context, q DBExecutor, userID int64) ([]domain.Account, error)
	// UpdateBalance applies a signed delta to the account balance.
	UpdateBalance(ctx context.Context, q DBExecutor, accountID int64, delta decimal.Decimal) error
	// Deactivate soft-closes an active account owned by the given user.
	Deactivate(ctx context.Context, q DBExecutor, accountID, userID int64) error
}
