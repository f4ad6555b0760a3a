package util

import "errors"

// Common application-specific errors, grouped by kind. Any failure inside a
// multi-statement mutation triggers a full rollback before one of these is
// surfaced; validation and domain errors are terminal and never retried.
var (
	// Validation errors.
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidInput     = errors.New("invalid input provided")

	// Not-found errors.
	ErrNotFound         = errors.New("resource not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrNoTransactions   = errors.New("no transactions recorded") // "no data" as opposed to zero amounts

	// Conflict errors.
	ErrDuplicateUser     = errors.New("username or email already taken")
	ErrDuplicateAccount  = errors.New("account already exists for this currency")
	ErrDuplicateCurrency = errors.New("currency already supported")
	ErrAccountInactive   = errors.New("account is closed")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrSameAccount       = errors.New("source and target accounts are the same")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Auth errors.
	ErrWrongPassword = errors.New("wrong password")
	ErrAccountLocked = errors.New("account is locked, contact an administrator")
	ErrNotAdmin      = errors.New("operation requires administrator privileges")

	// External errors.
	ErrRateProvider = errors.New("rate provider unavailable")
)
