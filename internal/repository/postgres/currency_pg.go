package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ledgerbank/internal/domain"
	"ledgerbank/internal/repository"
	"ledgerbank/internal/util"

	"github.com/jmoiron/sqlx"
)

// CurrencyRepository implements repository.CurrencyRepository for PostgreSQL.
type CurrencyRepository struct{}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(db *sqlx.DB) repository.CurrencyRepository {
	return &CurrencyRepository{}
}

// AddCurrency registers a new supported currency using the provided DBExecutor.
func (r *CurrencyRepository) AddCurrency(ctx context.Context, q repository.DBExecutor, currency *domain.Currency) error {
	_, err := q.ExecContext(ctx, queryInsertCurrency, currency.Code, currency.Name, currency.AddedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return util.ErrDuplicateCurrency
		}
		return fmt.Errorf("failed to add currency %s: %w", currency.Code, err)
	}
	return nil
}

// GetCurrency retrieves a currency by code using the provided DBExecutor.
func (r *CurrencyRepository) GetCurrency(ctx context.Context, q repository.DBExecutor, code string) (*domain.Currency, error) {
	var currency domain.Currency
	err := q.GetContext(ctx, &currency, queryGetCurrency, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrCurrencyNotFound
		}
		return nil, fmt.Errorf("failed to get currency %s: %w", code, err)
	}
	return &currency, nil
}

// ListCurrencies returns all supported currencies ordered by code.
func (r *CurrencyRepository) ListCurrencies(ctx context.Context, q repository.DBExecutor) ([]domain.Currency, error) {
	currencies := []domain.Currency{}
	if err := q.SelectContext(ctx, &currencies, queryListCurrencies); err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}
