package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Account is a per-currency balance owned by a user. A user holds at most
// one account per currency. Accounts are soft-closed (deactivated), never
// deleted, so the transaction log keeps its referential integrity.
type Account struct {
	ID           int64           `db:"account_id" json:"account_id"`       // Primary key, BIGSERIAL in DB
	UserID       int64           `db:"user_id" json:"user_id"`             // Foreign key to User
	CurrencyCode string          `db:"currency_code" json:"currency_code"` // e.g. "USD", "JPY"
	Balance      decimal.Decimal `db:"balance" json:"balance"`             // Never negative after a committed operation
	CreatedOn    time.Time       `db:"created_on" json:"created_on"`       // Timestamp of creation
	IsActive     bool            `db:"is_active" json:"is_active"`         // False once the account is closed
}

// NewAccount creates a new active Account instance.
func NewAccount(userID int64, currencyCode string, initialBalance decimal.Decimal) *Account {
	return &Account{
		UserID:       userID,
		CurrencyCode: currencyCode,
		Balance:      initialBalance,
		CreatedOn:    time.Now().UTC(),
		IsActive:     true,
	}
}
