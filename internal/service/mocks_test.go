package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"ledgerbank/internal/domain"
	"ledgerbank/internal/repository"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock transaction controller. Embedding MockDBExecutor
// lets it double as the repository.DBExecutor the services run queries on.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateField(ctx context.Context, q repository.DBExecutor, userID int64, field repository.UserField, value string) error {
	args := m.Called(ctx, q, userID, field, value)
	return args.Error(0)
}

func (m *MockUserRepository) SetFailedAttempts(ctx context.Context, q repository.DBExecutor, userID int64, attempts int) error {
	args := m.Called(ctx, q, userID, attempts)
	return args.Error(0)
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, q repository.DBExecutor, userID int64, at time.Time) error {
	args := m.Called(ctx, q, userID, at)
	return args.Error(0)
}

// MockAccountRepository is a mock implementation of repository.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	args := m.Called(ctx, q, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountByUserAndCurrency(ctx context.Context, q repository.DBExecutor, userID int64, currencyCode string) (*domain.Account, error) {
	args := m.Called(ctx, q, userID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByUser(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Account, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, q repository.DBExecutor, accountID int64, delta decimal.Decimal) error {
	args := m.Called(ctx, q, accountID, delta)
	return args.Error(0)
}

func (m *MockAccountRepository) Deactivate(ctx context.Context, q repository.DBExecutor, accountID, userID int64) error {
	args := m.Called(ctx, q, accountID, userID)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByAccountBetween(ctx context.Context, q repository.DBExecutor, accountID int64, start, end time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, q, accountID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) DailyOutflow(ctx context.Context, q repository.DBExecutor, accountID int64, start, end time.Time) ([]domain.DailySpend, error) {
	args := m.Called(ctx, q, accountID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailySpend), args.Error(1)
}

func (m *MockTransactionRepository) NetFlow(ctx context.Context, q repository.DBExecutor, accountID int64, start, end time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, q, accountID, start, end)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) NetBefore(ctx context.Context, q repository.DBExecutor, accountID int64, before time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, q, accountID, before)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockCurrencyRepository is a mock implementation of repository.CurrencyRepository.
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) AddCurrency(ctx context.Context, q repository.DBExecutor, currency *domain.Currency) error {
	args := m.Called(ctx, q, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) GetCurrency(ctx context.Context, q repository.DBExecutor, code string) (*domain.Currency, error) {
	args := m.Called(ctx, q, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context, q repository.DBExecutor) ([]domain.Currency, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// MockRateSource is a mock implementation of RateSource.
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateSource) HasCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// stubHasher is a deterministic PasswordHasher for tests.
type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hash:" + password, nil }
func (stubHasher) Compare(hash, password string) bool   { return hash == "hash:"+password }
