package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbank/internal/domain"
)

// TransactionRepository defines the interface for the append-only
// transaction log and the aggregates the analytics layer derives from it.
type TransactionRepository interface {
	// CreateTransaction appends one leg to the log.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// ListByAccountBetween returns all legs touching an account within
	// [start, end], ordered ascending by time.
	ListByAccountBetween(ctx context.Context, q DBExecutor, accountID int64, start, end time.Time) ([]domain.Transaction, error)
	// DailyOutflow aggregates outflow legs by calendar day within [start, end],
	// ascending. An empty result means no matching rows, not zero amounts.
	DailyOutflow(ctx context.Context, q DBExecutor, accountID int64, start, end time.Time) ([]domain.DailySpend, error)
	// NetFlow returns inflow minus outflow for an account within (start, end].
	NetFlow(ctx context.Context, q DBExecutor, accountID int64, start, end time.Time) (decimal.Decimal, error)
	// NetBefore returns the signed net of all legs strictly before the cutoff.
	NetBefore(ctx context.Context, q DBExecutor, accountID int64, before time.Time) (decimal.Decimal, error)
}
