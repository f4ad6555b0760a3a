package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType is the closed set of balance-affecting operations.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "Deposit"
	TransactionTypeWithdraw   TransactionType = "Withdraw"
	TransactionTypeTransfer   TransactionType = "Transfer"
	TransactionTypeConversion TransactionType = "Conversion"
)

// Transaction is one leg of a committed money movement. Rows are append-only:
// they are never updated or deleted. A single-currency operation produces one
// row; a cross-currency exchange produces two rows (a debit leg and a credit
// leg) sharing the same TxID.
type Transaction struct {
	TxID          string          `db:"tx_id" json:"tx_id"`                     // UUID, shared across exchange legs
	TxTime        time.Time       `db:"tx_time" json:"tx_time"`                 // Time the operation committed
	Type          TransactionType `db:"type" json:"type"`                       //
	FromUserID    *int64          `db:"from_user_id" json:"from_user_id"`       // Nil for deposits and credit legs
	FromAccountID *int64          `db:"from_account_id" json:"from_account_id"` //
	ToUserID      *int64          `db:"to_user_id" json:"to_user_id"`           // Nil for withdrawals and debit legs
	ToAccountID   *int64          `db:"to_account_id" json:"to_account_id"`     //
	Amount        decimal.Decimal `db:"amount" json:"amount"`                   // Always positive; direction comes from the account refs
	CurrencyCode  string          `db:"currency_code" json:"currency_code"`     // Currency of this leg
}

// NewTransaction creates a new Transaction leg stamped with the current time.
func NewTransaction(
	txID string,
	txType TransactionType,
	fromUserID, fromAccountID, toUserID, toAccountID *int64,
	amount decimal.Decimal,
	currencyCode string,
) *Transaction {
	return &Transaction{
		TxID:          txID,
		TxTime:        time.Now().UTC(),
		Type:          txType,
		FromUserID:    fromUserID,
		FromAccountID: fromAccountID,
		ToUserID:      toUserID,
		ToAccountID:   toAccountID,
		Amount:        amount,
		CurrencyCode:  currencyCode,
	}
}

// Inflow reports whether this leg credits the given account.
func (t *Transaction) Inflow(accountID int64) bool {
	return t.ToAccountID != nil && *t.ToAccountID == accountID
}

// SignedAmount returns the amount from the given account's point of view:
// positive for inflow, negative for outflow.
func (t *Transaction) SignedAmount(accountID int64) decimal.Decimal {
	if t.Inflow(accountID) {
		return t.Amount
	}
	return t.Amount.Neg()
}
