package repository

import (
	"context"

	"ledgerbank/internal/domain"
)

// CurrencyRepository defines the interface for the supported-currency set.
type CurrencyRepository interface {
	// AddCurrency registers a new supported currency.
	AddCurrency(ctx context.Context, q DBExecutor, currency *domain.Currency) error
	// GetCurrency retrieves a currency by code.
	GetCurrency(ctx context.Context, q DBExecutor, code string) (*domain.Currency, error)
	// ListCurrencies returns all supported currencies ordered by code.
	ListCurrencies(ctx context.Context, q DBExecutor) ([]domain.Currency, error)
}
