package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerbank/internal/domain"
	"ledgerbank/internal/repository"
	"ledgerbank/internal/util"
)

// DefaultHistoryPoints is how many buckets balance history walks back when
// the caller does not ask for a specific count.
const DefaultHistoryPoints = 5

// AnalyticsService derives historical views purely from the committed
// transaction log and the current balance. It never mutates anything and
// runs on the plain executor, outside any ledger transaction.
type AnalyticsService interface {
	// SpendingHistory aggregates outflow by calendar day within [start, end].
	// Returns ErrNoTransactions when the window has no outflow rows at all,
	// which is different from days netting to zero.
	SpendingHistory(ctx context.Context, session domain.Session, accountID int64, start, end time.Time) ([]domain.DailySpend, error)
	// BalanceHistory reconstructs balance snapshots by walking backward from
	// the current balance, one bucket per period, subtracting each bucket's
	// net flow. Snapshots come back ascending by bucket start date, with the
	// current balance as the final point.
	BalanceHistory(ctx context.Context, session domain.Session, accountID int64, period domain.HistoryPeriod, points int) ([]domain.BalancePoint, error)
	// Statement lists each transaction in [start, end] with a signed amount
	// and a running balance anchored at the opening balance (the net of all
	// transactions strictly before start).
	Statement(ctx context.Context, session domain.Session, accountID int64, start, end time.Time) (*domain.Statement, error)
}

type analyticsService struct {
	dbExecutor      repository.DBExecutor
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
}

// NewAnalyticsService creates a new instance of AnalyticsService.
func NewAnalyticsService(
	dbExecutor repository.DBExecutor,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
) AnalyticsService {
	return &analyticsService{
		dbExecutor:      dbExecutor,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *analyticsService) SpendingHistory(ctx context.Context, session domain.Session, accountID int64, start, end time.Time) ([]domain.DailySpend, error) {
	if start.After(end) {
		return nil, util.ErrInvalidDateRange
	}
	if _, err := s.visibleAccount(ctx, session, accountID); err != nil {
		return nil, fmt.Errorf("spending history: %w", err)
	}

	spends, err := s.transactionRepo.DailyOutflow(ctx, s.dbExecutor, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("spending history: %w", err)
	}
	if len(spends) == 0 {
		return nil, util.ErrNoTransactions
	}
	return spends, nil
}

func (s *analyticsService) BalanceHistory(ctx context.Context, session domain.Session, accountID int64, period domain.HistoryPeriod, points int) ([]domain.BalancePoint, error) {
	if points <= 0 {
		points = DefaultHistoryPoints
	}
	step, err := bucketStep(period)
	if err != nil {
		return nil, err
	}

	account, err := s.visibleAccount(ctx, session, accountID)
	if err != nil {
		return nil, fmt.Errorf("balance history: %w", err)
	}

	// Walk backward: the balance at a bucket's start equals the balance at
	// its end minus the net flow inside the bucket. A bucket with no rows
	// contributes zero net flow and just carries the balance back.
	balance := account.Balance
	cursor := time.Now().UTC()
	snapshots := []domain.BalancePoint{{Date: cursor, Balance: balance}}

	for i := 0; i < points; i++ {
		bucketStart := step(cursor)
		net, err := s.transactionRepo.NetFlow(ctx, s.dbExecutor, accountID, bucketStart, cursor)
		if err != nil {
			return nil, fmt.Errorf("balance history: %w", err)
		}
		balance = balance.Sub(net)
		snapshots = append(snapshots, domain.BalancePoint{Date: bucketStart, Balance: balance})
		cursor = bucketStart
	}

	// Oldest first.
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
	return snapshots, nil
}

func (s *analyticsService) Statement(ctx context.Context, session domain.Session, accountID int64, start, end time.Time) (*domain.Statement, error) {
	if start.After(end) {
		return nil, util.ErrInvalidDateRange
	}
	if _, err := s.visibleAccount(ctx, session, accountID); err != nil {
		return nil, fmt.Errorf("statement: %w", err)
	}

	opening, err := s.transactionRepo.NetBefore(ctx, s.dbExecutor, accountID, start)
	if err != nil {
		return nil, fmt.Errorf("statement: %w", err)
	}

	legs, err := s.transactionRepo.ListByAccountBetween(ctx, s.dbExecutor, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("statement: %w", err)
	}

	statement := &domain.Statement{
		AccountID:      accountID,
		Start:          start,
		End:            end,
		OpeningBalance: opening,
		Entries:        make([]domain.StatementEntry, 0, len(legs)),
	}

	running := opening
	for _, leg := range legs {
		signed := leg.SignedAmount(accountID)
		running = running.Add(signed)

		counterUser, counterAccount := leg.FromUserID, leg.FromAccountID
		if !leg.Inflow(accountID) {
			counterUser, counterAccount = leg.ToUserID, leg.ToAccountID
		}

		statement.Entries = append(statement.Entries, domain.StatementEntry{
			TxID:           leg.TxID,
			TxTime:         leg.TxTime,
			Type:           leg.Type,
			CounterUser:    counterUser,
			CounterAccount: counterAccount,
			Amount:         signed,
			Balance:        running,
		})
	}
	return statement, nil
}

// visibleAccount resolves an account for analytics. Closed accounts remain
// visible over their historical window; ownership (or the admin capability)
// is still required.
func (s *analyticsService) visibleAccount(ctx context.Context, session domain.Session, accountID int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrAccountNotFound
		}
		return nil, err
	}
	if account.UserID != session.UserID && !session.IsAdmin {
		return nil, util.ErrAccountNotFound
	}
	return account, nil
}

// bucketStep returns the function that moves a bucket boundary one period
// into the past.
func bucketStep(period domain.HistoryPeriod) (func(time.Time) time.Time, error) {
	switch period {
	case domain.PeriodDaily:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, -1) }, nil
	case domain.PeriodWeekly:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, -7) }, nil
	case domain.PeriodMonthly:
		return func(t time.Time) time.Time { return t.AddDate(0, -1, 0) }, nil
	default:
		return nil, fmt.Errorf("%w: unknown period %q", util.ErrInvalidInput, period)
	}
}
