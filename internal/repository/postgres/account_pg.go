package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ledgerbank/internal/domain"
	"ledgerbank/internal/repository"
	"ledgerbank/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{}
}

// CreateAccount inserts a new account using the provided DBExecutor.
// The unique (user_id, currency_code) constraint backs the one-account-per-
// currency invariant even under concurrent creation.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	err := q.QueryRowContext(ctx, queryInsertAccount,
		account.UserID,
		account.CurrencyCode,
		account.Balance,
		account.CreatedOn,
		account.IsActive,
	).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return util.ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountByID retrieves an account by its ID using the provided DBExecutor.
func (r *AccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	return r.getAccount(ctx, q, queryGetAccountByID, id)
}

// GetAccountForUpdate retrieves an account and locks its row until the
// surrounding transaction commits or rolls back. Callers locking two rows
// must do so in ascending account-id order.
func (r *AccountRepository) GetAccountForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	return r.getAccount(ctx, q, queryGetAccountForUpdate, id)
}

func (r *AccountRepository) getAccount(ctx context.Context, q repository.DBExecutor, query string, id int64) (*domain.Account, error) {
	var account domain.Account
	err := q.GetContext(ctx, &account, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID %d: %w", id, err)
	}
	return &account, nil
}

// GetAccountByUserAndCurrency resolves the (user, currency) pair using the provided DBExecutor.
func (r *AccountRepository) GetAccountByUserAndCurrency(ctx context.Context, q repository.DBExecutor, userID int64, currencyCode string) (*domain.Account, error) {
	var account domain.Account
	err := q.GetContext(ctx, &account, queryGetAccountByUserAndCurrency, userID, currencyCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account for user %d and currency %s: %w", userID, currencyCode, err)
	}
	return &account, nil
}

// ListAccountsByUser returns every account a user owns, active or not.
func (r *AccountRepository) ListAccountsByUser(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Account, error) {
	accounts := []domain.Account{}
	if err := q.SelectContext(ctx, &accounts, queryListAccountsByUser, userID); err != nil {
		return nil, fmt.Errorf("failed to list accounts for user %d: %w", userID, err)
	}
	return accounts, nil
}

// UpdateBalance applies a signed delta to the account balance using the provided DBExecutor.
func (r *AccountRepository) UpdateBalance(ctx context.Context, q repository.DBExecutor, accountID int64, delta decimal.Decimal) error {
	result, err := q.ExecContext(ctx, queryUpdateAccountBalance, delta, accountID)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %d: %w", accountID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected updating account %d: %w", accountID, err)
	}
	if rowsAffected == 0 {
		return util.ErrAccountNotFound
	}
	return nil
}

// Deactivate soft-closes an active account owned by the given user.
func (r *AccountRepository) Deactivate(ctx context.Context, q repository.DBExecutor, accountID, userID int64) error {
	result, err := q.ExecContext(ctx, queryDeactivateAccount, accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to close account %d: %w", accountID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected closing account %d: %w", accountID, err)
	}
	if rowsAffected == 0 {
		// No active account matched the (account, owner) pair.
		return util.ErrNotFound
	}
	return nil
}
