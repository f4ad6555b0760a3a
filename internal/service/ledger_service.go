package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledgerbank/internal/domain"
	"ledgerbank/internal/repository"
	"ledgerbank/internal/util"
	"ledgerbank/pkg/db"
)

// RateSource is what the ledger needs from the currency-rate gateway.
// Implementations must be deterministic for a given snapshot.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
	HasCode(ctx context.Context, code string) (bool, error)
}

// LedgerService is the transaction engine: every mutation runs as
// VALIDATE -> MUTATE BALANCE(S) -> APPEND LOG -> COMMIT inside one database
// transaction, or aborts with zero persisted side effects.
type LedgerService interface {
	CreateAccount(ctx context.Context, session domain.Session, currencyCode string, initialBalance decimal.Decimal) (*domain.Account, error)
	ResolveAccount(ctx context.Context, session domain.Session, currencyCode string) (*domain.Account, error)
	ListAccounts(ctx context.Context, session domain.Session) ([]domain.Account, error)
	CloseAccount(ctx context.Context, session domain.Session, accountID int64) error

	Deposit(ctx context.Context, session domain.Session, accountID int64, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error)
	Withdraw(ctx context.Context, session domain.Session, accountID int64, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error)
	Transfer(ctx context.Context, session domain.Session, fromAccountID, toAccountID int64, amount decimal.Decimal) (*domain.Account, *domain.Account, *domain.Transaction, error)
	Exchange(ctx context.Context, session domain.Session, fromAccountID, toAccountID int64, amount decimal.Decimal) (*domain.Account, *domain.Account, []domain.Transaction, error)

	SupportedCurrencies(ctx context.Context) ([]domain.Currency, error)
	AddCurrency(ctx context.Context, session domain.Session, code, name string) (*domain.Currency, error)
}

type ledgerService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g. *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g. *sqlx.DB)
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	currencyRepo    repository.CurrencyRepository
	rateSource      RateSource
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	currencyRepo repository.CurrencyRepository,
	rateSource RateSource,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		currencyRepo:    currencyRepo,
		rateSource:      rateSource,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// txExecutor narrows a TxController to the DBExecutor repositories run on.
func txExecutor(tx db.TxController) (repository.DBExecutor, error) {
	q, ok := tx.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("transaction controller does not implement DBExecutor")
	}
	return q, nil
}

// CreateAccount opens a per-currency account for the session user. At most
// one account per (user, currency) pair may exist; the store's unique
// constraint backs the pre-check under concurrent creation.
func (s *ledgerService) CreateAccount(ctx context.Context, session domain.Session, currencyCode string, initialBalance decimal.Decimal) (*domain.Account, error) {
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance cannot be negative", util.ErrInvalidAmount)
	}

	if _, err := s.currencyRepo.GetCurrency(ctx, s.dbExecutor, currencyCode); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	tx, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create account: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(tx)

	q, err := txExecutor(tx)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	_, err = s.accountRepo.GetAccountByUserAndCurrency(ctx, q, session.UserID, currencyCode)
	if err == nil {
		return nil, util.ErrDuplicateAccount
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("create account: %w", err)
	}

	account := domain.NewAccount(session.UserID, currencyCode, initialBalance)
	if err := s.accountRepo.CreateAccount(ctx, q, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	// An opening balance is funding, so it appears in the log like any
	// other inflow.
	if initialBalance.IsPositive() {
		leg := domain.NewTransaction(uuid.NewString(), domain.TransactionTypeDeposit,
			nil, nil, &account.UserID, &account.ID, initialBalance, currencyCode)
		if err := s.transactionRepo.CreateTransaction(ctx, q, leg); err != nil {
			return nil, fmt.Errorf("create account: %w", err)
		}
	}

	if err := s.commitTx(tx); err != nil {
		return nil, fmt.Errorf("create account: failed to commit transaction: %w", err)
	}
	return account, nil
}

// ResolveAccount finds the session user's account for a currency.
func (s *ledgerService) ResolveAccount(ctx context.Context, session domain.Session, currencyCode string) (*domain.Account, error) {
	account, err := s.accountRepo.GetAccountByUserAndCurrency(ctx, s.dbExecutor, session.UserID, currencyCode)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	return account, nil
}

// ListAccounts returns every account the session user owns, closed included.
func (s *ledgerService) ListAccounts(ctx context.Context, session domain.Session) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccountsByUser(ctx, s.dbExecutor, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// CloseAccount soft-closes an active account owned by the session user.
// The account keeps its rows in the log and stays visible to analytics.
func (s *ledgerService) CloseAccount(ctx context.Context, session domain.Session, accountID int64) error {
	err := s.accountRepo.Deactivate(ctx, s.dbExecutor, accountID, session.UserID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return util.ErrAccountNotFound
		}
		return fmt.Errorf("close account: %w", err)
	}
	return nil
}

// Deposit credits an active account and appends one Deposit leg.
func (s *ledgerService) Deposit(ctx context.Context, session domain.Session, accountID int64, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidAmount
	}

	tx, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(tx)

	q, err := txExecutor(tx)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: %w", err)
	}

	account, err := s.lockOwnedAccount(ctx, q, session, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: %w", err)
	}

	if err := s.accountRepo.UpdateBalance(ctx, q, accountID, amount); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to update balance: %w", err)
	}

	leg := domain.NewTransaction(uuid.NewString(), domain.TransactionTypeDeposit,
		nil, nil, &account.UserID, &account.ID, amount, account.CurrencyCode)
	if err := s.transactionRepo.CreateTransaction(ctx, q, leg); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to append transaction: %w", err)
	}

	updated, err := s.accountRepo.GetAccountByID(ctx, q, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to re-fetch account %d: %w", accountID, err)
	}

	if err := s.commitTx(tx); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to commit transaction: %w", err)
	}
	return updated, leg, nil
}

// Withdraw debits an active account and appends one Withdraw leg.
// Withdrawing the exact balance is allowed and leaves the balance at zero.
func (s *ledgerService) Withdraw(ctx context.Context, session domain.Session, accountID int64, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidAmount
	}

	tx, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("withdraw: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(tx)

	q, err := txExecutor(tx)
	if err != nil {
		return nil, nil, fmt.Errorf("withdraw: %w", err)
	}

	account, err := s.lockOwnedAccount(ctx, q, session, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("withdraw: %w", err)
	}

	if account.Balance.LessThan(amount) {
		return nil, nil, util.ErrInsufficientFunds
	}

	if err := s.accountRepo.UpdateBalance(ctx, q, accountID, amount.Neg()); err != nil {
		return nil, nil, fmt.Errorf("withdraw: failed to update balance: %w", err)
	}

	leg := domain.NewTransaction(uuid.NewString(), domain.TransactionTypeWithdraw,
		&account.UserID, &account.ID, nil, nil, amount, account.CurrencyCode)
	if err := s.transactionRepo.CreateTransaction(ctx, q, leg); err != nil {
		return nil, nil, fmt.Errorf("withdraw: failed to append transaction: %w", err)
	}

	updated, err := s.accountRepo.GetAccountByID(ctx, q, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("withdraw: failed to re-fetch account %d: %w", accountID, err)
	}

	if err := s.commitTx(tx); err != nil {
		return nil, nil, fmt.Errorf("withdraw: failed to commit transaction: %w", err)
	}
	return updated, leg, nil
}

// Transfer moves amount between two active same-currency accounts and
// appends exactly one Transfer row carrying both account references.
func (s *ledgerService) Transfer(ctx context.Context, session domain.Session, fromAccountID, toAccountID int64, amount decimal.Decimal) (*domain.Account, *domain.Account, *domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, nil, util.ErrInvalidAmount
	}
	if fromAccountID == toAccountID {
		return nil, nil, nil, util.ErrSameAccount
	}

	tx, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(tx)

	q, err := txExecutor(tx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("transfer: %w", err)
	}

	from, to, err := s.lockAccountPair(ctx, q, session, fromAccountID, toAccountID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("transfer: %w", err)
	}

	if from.CurrencyCode != to.CurrencyCode {
		// Cross-currency movement goes through Exchange instead.
		return nil, nil, nil, util.ErrCurrencyMismatch
	}
	if from.Balance.LessThan(amount) {
		return nil, nil, nil, util.ErrInsufficientFunds
	}

	if err := s.accountRepo.UpdateBalance(ctx, q, from.ID, amount.Neg()); err != nil {
		return nil, nil, nil, fmt.Errorf("transfer: failed to debit source: %w", err)
	}
	if err := s.accountRepo.UpdateBalance(ctx, q, to.ID, amount); err != nil {
		return nil, nil, nil, fmt.Errorf("transfer: failed to credit target: %w", err)
	}

	leg := domain.NewTransaction(uuid.NewString(), domain.TransactionTypeTransfer,
		&from.UserID, &from.ID, &to.UserID, &to.ID, amount, from.CurrencyCode)
	if err := s.transactionRepo.CreateTransaction(ctx, q, leg); err != nil {
		return nil, nil, nil, fmt.Errorf("transfer: failed to append transaction: %w", err)
	}

	updatedFrom, err := s.accountRepo.GetAccountByID(ctx, q, from.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("transfer: failed to re-fetch source account: %w", err)
	}
	updatedTo, err := s.accountRepo.GetAccountByID(ctx, q, to.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("transfer: failed to re-fetch target account: %w", err)
	}

	if err := s.commitTx(tx); err != nil {
		return nil, nil, nil, fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}
	return updatedFrom, updatedTo, leg, nil
}

// Exchange converts between two accounts of different currencies: it debits
// the source amount, credits the converted amount rounded half-up to the
// target precision, and appends two Conversion legs sharing one tx id.
// The rate is resolved before the database transaction opens so row locks
// are never held across the network call.
func (s *ledgerService) Exchange(ctx context.Context, session domain.Session, fromAccountID, toAccountID int64, amount decimal.Decimal) (*domain.Account, *domain.Account, []domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, nil, util.ErrInvalidAmount
	}
	if fromAccountID == toAccountID {
		return nil, nil, nil, util.ErrSameAccount
	}

	// Currencies are immutable per account, so reading them outside the
	// transaction is safe.
	fromPeek, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, fromAccountID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: %w", accountErr(err))
	}
	toPeek, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, toAccountID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: %w", accountErr(err))
	}
	if fromPeek.CurrencyCode == toPeek.CurrencyCode {
		// Same-currency movement goes through Transfer instead.
		return nil, nil, nil, util.ErrCurrencyMismatch
	}

	rate, err := s.rateSource.Rate(ctx, fromPeek.CurrencyCode, toPeek.CurrencyCode)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: %w", err)
	}
	converted := domain.RoundToMinorUnits(amount.Mul(rate), toPeek.CurrencyCode)
	if converted.LessThanOrEqual(decimal.Zero) {
		return nil, nil, nil, fmt.Errorf("%w: converted amount rounds to zero", util.ErrInvalidAmount)
	}

	tx, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(tx)

	q, err := txExecutor(tx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: %w", err)
	}

	from, to, err := s.lockAccountPair(ctx, q, session, fromAccountID, toAccountID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: %w", err)
	}
	if from.Balance.LessThan(amount) {
		return nil, nil, nil, util.ErrInsufficientFunds
	}

	if err := s.accountRepo.UpdateBalance(ctx, q, from.ID, amount.Neg()); err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: failed to debit source: %w", err)
	}
	if err := s.accountRepo.UpdateBalance(ctx, q, to.ID, converted); err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: failed to credit target: %w", err)
	}

	txID := uuid.NewString()
	debitLeg := domain.NewTransaction(txID, domain.TransactionTypeConversion,
		&from.UserID, &from.ID, nil, nil, amount, from.CurrencyCode)
	creditLeg := domain.NewTransaction(txID, domain.TransactionTypeConversion,
		nil, nil, &to.UserID, &to.ID, converted, to.CurrencyCode)
	for _, leg := range []*domain.Transaction{debitLeg, creditLeg} {
		if err := s.transactionRepo.CreateTransaction(ctx, q, leg); err != nil {
			return nil, nil, nil, fmt.Errorf("exchange: failed to append transaction: %w", err)
		}
	}

	updatedFrom, err := s.accountRepo.GetAccountByID(ctx, q, from.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: failed to re-fetch source account: %w", err)
	}
	updatedTo, err := s.accountRepo.GetAccountByID(ctx, q, to.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: failed to re-fetch target account: %w", err)
	}

	if err := s.commitTx(tx); err != nil {
		return nil, nil, nil, fmt.Errorf("exchange: failed to commit transaction: %w", err)
	}
	return updatedFrom, updatedTo, []domain.Transaction{*debitLeg, *creditLeg}, nil
}

// SupportedCurrencies lists the currencies the bank currently supports.
func (s *ledgerService) SupportedCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("supported currencies: %w", err)
	}
	return currencies, nil
}

// AddCurrency registers a new supported currency. Admin-only, and the code
// must be quoted by the rate provider.
func (s *ledgerService) AddCurrency(ctx context.Context, session domain.Session, code, name string) (*domain.Currency, error) {
	if !session.IsAdmin {
		return nil, util.ErrNotAdmin
	}
	if len(code) != 3 {
		return nil, fmt.Errorf("%w: currency code must be 3 letters", util.ErrInvalidInput)
	}

	known, err := s.rateSource.HasCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("add currency: %w", err)
	}
	if !known {
		return nil, fmt.Errorf("%w: %s not quoted by provider", util.ErrCurrencyNotFound, code)
	}

	currency := &domain.Currency{Code: code, Name: name, AddedAt: time.Now().UTC()}
	if err := s.currencyRepo.AddCurrency(ctx, s.dbExecutor, currency); err != nil {
		return nil, fmt.Errorf("add currency: %w", err)
	}
	return currency, nil
}

// lockOwnedAccount locks one account row and checks ownership and activity.
// Accounts the session user does not own are reported as not found rather
// than leaked as inactive/forbidden.
func (s *ledgerService) lockOwnedAccount(ctx context.Context, q repository.DBExecutor, session domain.Session, accountID int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetAccountForUpdate(ctx, q, accountID)
	if err != nil {
		return nil, accountErr(err)
	}
	if account.UserID != session.UserID {
		return nil, util.ErrAccountNotFound
	}
	if !account.IsActive {
		return nil, util.ErrAccountInactive
	}
	return account, nil
}

// lockAccountPair locks two account rows in ascending account-id order, so
// two operations referencing the same pair in opposite directions cannot
// deadlock. The source must belong to the session user; the target only has
// to exist and be active.
func (s *ledgerService) lockAccountPair(ctx context.Context, q repository.DBExecutor, session domain.Session, fromID, toID int64) (*domain.Account, *domain.Account, error) {
	firstID, secondID := fromID, toID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := s.accountRepo.GetAccountForUpdate(ctx, q, firstID)
	if err != nil {
		return nil, nil, accountErr(err)
	}
	second, err := s.accountRepo.GetAccountForUpdate(ctx, q, secondID)
	if err != nil {
		return nil, nil, accountErr(err)
	}

	from, to := first, second
	if from.ID != fromID {
		from, to = second, first
	}

	if from.UserID != session.UserID {
		return nil, nil, util.ErrAccountNotFound
	}
	if !from.IsActive || !to.IsActive {
		return nil, nil, util.ErrAccountInactive
	}
	return from, to, nil
}

func accountErr(err error) error {
	if errors.Is(err, util.ErrNotFound) {
		return util.ErrAccountNotFound
	}
	return err
}
