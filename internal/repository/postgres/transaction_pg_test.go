package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbank/internal/domain"
	"ledgerbank/internal/util"
)

func TestTransactionRepositoryCreateTransaction(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(nil)
	db, mock := newMockDB(t)

	from := int64(1)
	fromAcc := int64(10)
	leg := domain.NewTransaction("tx-1", domain.TransactionTypeWithdraw,
		&from, &fromAcc, nil, nil, decimal.RequireFromString("30.00"), "USD")

	mock.ExpectExec(regexp.QuoteMeta(queryInsertTransaction)).
		WithArgs(leg.TxID, leg.TxTime, leg.Type, leg.FromUserID, leg.FromAccountID,
			leg.ToUserID, leg.ToAccountID, leg.Amount, leg.CurrencyCode).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.CreateTransaction(ctx, db, leg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepositoryNetFlow(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	t.Run("ReturnsSignedNet", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(queryNetFlow)).
			WithArgs(int64(10), start, end).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow("-42.50"))

		net, err := repo.NetFlow(ctx, db, 10, start, end)

		require.NoError(t, err)
		assert.True(t, net.Equal(decimal.RequireFromString("-42.50")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QuietWindowNetsZero", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(queryNetFlow)).
			WithArgs(int64(10), start, end).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow("0"))

		net, err := repo.NetFlow(ctx, db, 10, start, end)

		require.NoError(t, err)
		assert.True(t, net.IsZero())
	})
}

func TestTransactionRepositoryNetBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(nil)
	db, mock := newMockDB(t)
	cutoff := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryNetBefore)).
		WithArgs(int64(10), cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("100.00"))

	opening, err := repo.NetBefore(ctx, db, 10, cutoff)

	require.NoError(t, err)
	assert.True(t, opening.Equal(decimal.RequireFromString("100.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepositoryDailyOutflow(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(nil)
	db, mock := newMockDB(t)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	mock.ExpectQuery(regexp.QuoteMeta(queryDailyOutflow)).
		WithArgs(int64(10), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"day", "amount"}).
			AddRow(start, "12.50").
			AddRow(start.AddDate(0, 0, 3), "40.00"))

	spends, err := repo.DailyOutflow(ctx, db, 10, start, end)

	require.NoError(t, err)
	require.Len(t, spends, 2)
	assert.True(t, spends[0].Amount.Equal(decimal.RequireFromString("12.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCurrencyRepository(nil)

	t.Run("AddDuplicateConflicts", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectExec(regexp.QuoteMeta(queryInsertCurrency)).
			WillReturnError(&pq.Error{Code: uniqueViolation})

		err := repo.AddCurrency(ctx, db, &domain.Currency{Code: "USD", Name: "US Dollar", AddedAt: time.Now().UTC()})

		assert.ErrorIs(t, err, util.ErrDuplicateCurrency)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUnknownCode", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(queryGetCurrency)).
			WithArgs("XXX").
			WillReturnRows(sqlmock.NewRows([]string{"currency_code", "currency_name", "added_at"}))

		_, err := repo.GetCurrency(ctx, db, "XXX")

		assert.ErrorIs(t, err, util.ErrCurrencyNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
