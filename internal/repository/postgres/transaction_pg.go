package postgres

import (
	"context"
	"fmt"
	"time"

	"ledgerbank/internal/domain"
	"ledgerbank/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends one leg to the log using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	_, err := q.ExecContext(ctx, queryInsertTransaction,
		transaction.TxID,
		transaction.TxTime,
		transaction.Type,
		transaction.FromUserID,
		transaction.FromAccountID,
		transaction.ToUserID,
		transaction.ToAccountID,
		transaction.Amount,
		transaction.CurrencyCode,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListByAccountBetween returns all legs touching an account within [start, end],
// ordered ascending by time.
func (r *TransactionRepository) ListByAccountBetween(ctx context.Context, q repository.DBExecutor, accountID int64, start, end time.Time) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	err := q.SelectContext(ctx, &transactions, queryListByAccountBetween, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for account %d: %w", accountID, err)
	}
	return transactions, nil
}

// DailyOutflow aggregates outflow legs by calendar day within [start, end].
func (r *TransactionRepository) DailyOutflow(ctx context.Context, q repository.DBExecutor, accountID int64, start, end time.Time) ([]domain.DailySpend, error) {
	spends := []domain.DailySpend{}
	err := q.SelectContext(ctx, &spends, queryDailyOutflow, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate spending for account %d: %w", accountID, err)
	}
	return spends, nil
}

// NetFlow returns inflow minus outflow for an account within (start, end].
// A bucket with no rows nets to zero.
func (r *TransactionRepository) NetFlow(ctx context.Context, q repository.DBExecutor, accountID int64, start, end time.Time) (decimal.Decimal, error) {
	var net decimal.Decimal
	err := q.GetContext(ctx, &net, queryNetFlow, accountID, start, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute net flow for account %d: %w", accountID, err)
	}
	return net, nil
}

// NetBefore returns the signed net of all legs strictly before the cutoff.
func (r *TransactionRepository) NetBefore(ctx context.Context, q repository.DBExecutor, accountID int64, before time.Time) (decimal.Decimal, error) {
	var net decimal.Decimal
	err := q.GetContext(ctx, &net, queryNetBefore, accountID, before)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute opening balance for account %d: %w", accountID, err)
	}
	return net, nil
}
