package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgerbank/internal/domain"
	"ledgerbank/internal/util"
)

func newAnalyticsFixture() (*MockAccountRepository, *MockTransactionRepository, AnalyticsService) {
	accountRepo := new(MockAccountRepository)
	txRepo := new(MockTransactionRepository)
	return accountRepo, txRepo, NewAnalyticsService(new(MockDBExecutor), accountRepo, txRepo)
}

func TestSpendingHistory(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		accountRepo, txRepo, svc := newAnalyticsFixture()
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(usdAccount(10, "100"), nil).Once()
		spends := []domain.DailySpend{
			{Day: start, Amount: decimal.RequireFromString("12.50")},
			{Day: start.AddDate(0, 0, 3), Amount: decimal.RequireFromString("40.00")},
		}
		txRepo.On("DailyOutflow", ctx, mock.Anything, int64(10), start, end).Return(spends, nil).Once()

		got, err := svc.SpendingHistory(ctx, session, 10, start, end)

		assert.NoError(t, err)
		assert.Len(t, got, 2)
		mock.AssertExpectationsForObjects(t, accountRepo, txRepo)
	})

	t.Run("EmptyWindow", func(t *testing.T) {
		accountRepo, txRepo, svc := newAnalyticsFixture()
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(usdAccount(10, "100"), nil).Once()
		txRepo.On("DailyOutflow", ctx, mock.Anything, int64(10), start, end).Return([]domain.DailySpend{}, nil).Once()

		_, err := svc.SpendingHistory(ctx, session, 10, start, end)

		assert.ErrorIs(t, err, util.ErrNoTransactions)
	})

	t.Run("InvertedRange", func(t *testing.T) {
		accountRepo, _, svc := newAnalyticsFixture()

		_, err := svc.SpendingHistory(ctx, session, 10, end, start)

		assert.ErrorIs(t, err, util.ErrInvalidDateRange)
		accountRepo.AssertNotCalled(t, "GetAccountByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ForeignAccountHidden", func(t *testing.T) {
		accountRepo, _, svc := newAnalyticsFixture()
		foreign := usdAccount(10, "100")
		foreign.UserID = 99
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(foreign, nil).Once()

		_, err := svc.SpendingHistory(ctx, session, 10, start, end)

		assert.ErrorIs(t, err, util.ErrAccountNotFound)
	})

	t.Run("AdminSeesForeignAccount", func(t *testing.T) {
		accountRepo, txRepo, svc := newAnalyticsFixture()
		foreign := usdAccount(10, "100")
		foreign.UserID = 99
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(foreign, nil).Once()
		txRepo.On("DailyOutflow", ctx, mock.Anything, int64(10), start, end).
			Return([]domain.DailySpend{{Day: start, Amount: decimal.New(5, 0)}}, nil).Once()

		_, err := svc.SpendingHistory(ctx, domain.Session{UserID: 1, IsAdmin: true}, 10, start, end)

		assert.NoError(t, err)
	})

	t.Run("ClosedAccountStaysVisible", func(t *testing.T) {
		accountRepo, txRepo, svc := newAnalyticsFixture()
		closed := usdAccount(10, "0")
		closed.IsActive = false
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(closed, nil).Once()
		txRepo.On("DailyOutflow", ctx, mock.Anything, int64(10), start, end).
			Return([]domain.DailySpend{{Day: start, Amount: decimal.New(5, 0)}}, nil).Once()

		_, err := svc.SpendingHistory(ctx, session, 10, start, end)

		assert.NoError(t, err)
	})
}

func TestBalanceHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("WalksBackwardFromCurrentBalance", func(t *testing.T) {
		accountRepo, txRepo, svc := newAnalyticsFixture()
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(usdAccount(10, "100.00"), nil).Once()

		// Most recent bucket first: net +20, then net -10, then quiet.
		txRepo.On("NetFlow", ctx, mock.Anything, int64(10), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(decimal.RequireFromString("20.00"), nil).Once()
		txRepo.On("NetFlow", ctx, mock.Anything, int64(10), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(decimal.RequireFromString("-10.00"), nil).Once()
		txRepo.On("NetFlow", ctx, mock.Anything, int64(10), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(decimal.Zero, nil).Once()

		points, err := svc.BalanceHistory(ctx, session, 10, domain.PeriodDaily, 3)

		require.NoError(t, err)
		require.Len(t, points, 4) // 3 reconstructed snapshots plus the current one

		// Ascending by date, current balance last.
		assert.True(t, points[0].Balance.Equal(decimal.RequireFromString("90.00")))
		assert.True(t, points[1].Balance.Equal(decimal.RequireFromString("90.00")))
		assert.True(t, points[2].Balance.Equal(decimal.RequireFromString("80.00")))
		assert.True(t, points[3].Balance.Equal(decimal.RequireFromString("100.00")))
		for i := 1; i < len(points); i++ {
			assert.True(t, points[i-1].Date.Before(points[i].Date))
		}
		mock.AssertExpectationsForObjects(t, accountRepo, txRepo)
	})

	t.Run("QuietAccountCarriesBalanceBack", func(t *testing.T) {
		accountRepo, txRepo, svc := newAnalyticsFixture()
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(usdAccount(10, "42.00"), nil).Once()
		txRepo.On("NetFlow", ctx, mock.Anything, int64(10), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(decimal.Zero, nil).Times(2)

		points, err := svc.BalanceHistory(ctx, session, 10, domain.PeriodMonthly, 2)

		require.NoError(t, err)
		require.Len(t, points, 3)
		for _, p := range points {
			assert.True(t, p.Balance.Equal(decimal.RequireFromString("42.00")))
		}
	})

	t.Run("DefaultsToFivePoints", func(t *testing.T) {
		accountRepo, txRepo, svc := newAnalyticsFixture()
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(usdAccount(10, "10.00"), nil).Once()
		txRepo.On("NetFlow", ctx, mock.Anything, int64(10), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(decimal.Zero, nil).Times(DefaultHistoryPoints)

		points, err := svc.BalanceHistory(ctx, session, 10, domain.PeriodWeekly, 0)

		require.NoError(t, err)
		assert.Len(t, points, DefaultHistoryPoints+1)
		mock.AssertExpectationsForObjects(t, txRepo)
	})

	t.Run("UnknownPeriod", func(t *testing.T) {
		accountRepo, _, svc := newAnalyticsFixture()

		_, err := svc.BalanceHistory(ctx, session, 10, domain.HistoryPeriod("hourly"), 3)

		assert.ErrorIs(t, err, util.ErrInvalidInput)
		accountRepo.AssertNotCalled(t, "GetAccountByID", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStatement(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("RunningBalanceAnchorsAtOpening", func(t *testing.T) {
		accountRepo, txRepo, svc := newAnalyticsFixture()
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(usdAccount(10, "120.00"), nil).Once()
		txRepo.On("NetBefore", ctx, mock.Anything, int64(10), start).
			Return(decimal.RequireFromString("100.00"), nil).Once()

		accID := int64(10)
		ownerID := int64(1)
		peerUser := int64(7)
		peerAcc := int64(22)
		legs := []domain.Transaction{
			*domain.NewTransaction("t1", domain.TransactionTypeDeposit,
				nil, nil, &ownerID, &accID, decimal.RequireFromString("50.00"), "USD"),
			*domain.NewTransaction("t2", domain.TransactionTypeWithdraw,
				&ownerID, &accID, nil, nil, decimal.RequireFromString("30.00"), "USD"),
			*domain.NewTransaction("t3", domain.TransactionTypeTransfer,
				&ownerID, &accID, &peerUser, &peerAcc, decimal.RequireFromString("20.00"), "USD"),
		}
		txRepo.On("ListByAccountBetween", ctx, mock.Anything, int64(10), start, end).Return(legs, nil).Once()

		statement, err := svc.Statement(ctx, session, 10, start, end)

		require.NoError(t, err)
		assert.True(t, statement.OpeningBalance.Equal(decimal.RequireFromString("100.00")))
		require.Len(t, statement.Entries, 3)

		assert.True(t, statement.Entries[0].Amount.Equal(decimal.RequireFromString("50.00")))
		assert.True(t, statement.Entries[0].Balance.Equal(decimal.RequireFromString("150.00")))

		assert.True(t, statement.Entries[1].Amount.Equal(decimal.RequireFromString("-30.00")))
		assert.True(t, statement.Entries[1].Balance.Equal(decimal.RequireFromString("120.00")))

		assert.True(t, statement.Entries[2].Amount.Equal(decimal.RequireFromString("-20.00")))
		assert.True(t, statement.Entries[2].Balance.Equal(decimal.RequireFromString("100.00")))

		// Outflow entries point at the receiving side.
		require.NotNil(t, statement.Entries[2].CounterAccount)
		assert.Equal(t, peerAcc, *statement.Entries[2].CounterAccount)
		assert.Equal(t, peerUser, *statement.Entries[2].CounterUser)
		// Deposits have no counterparty.
		assert.Nil(t, statement.Entries[0].CounterAccount)
		mock.AssertExpectationsForObjects(t, accountRepo, txRepo)
	})

	t.Run("EmptyWindowYieldsEmptyStatement", func(t *testing.T) {
		accountRepo, txRepo, svc := newAnalyticsFixture()
		accountRepo.On("GetAccountByID", ctx, mock.Anything, int64(10)).Return(usdAccount(10, "100.00"), nil).Once()
		txRepo.On("NetBefore", ctx, mock.Anything, int64(10), start).
			Return(decimal.RequireFromString("100.00"), nil).Once()
		txRepo.On("ListByAccountBetween", ctx, mock.Anything, int64(10), start, end).
			Return([]domain.Transaction{}, nil).Once()

		statement, err := svc.Statement(ctx, session, 10, start, end)

		require.NoError(t, err)
		assert.Empty(t, statement.Entries)
		assert.True(t, statement.OpeningBalance.Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("InvertedRange", func(t *testing.T) {
		_, _, svc := newAnalyticsFixture()

		_, err := svc.Statement(ctx, session, 10, end, start)

		assert.ErrorIs(t, err, util.ErrInvalidDateRange)
	})
}
