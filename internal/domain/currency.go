package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a 3-letter code supported by the bank. Every account and
// transaction leg references exactly one currency.
type Currency struct {
	Code    string    `db:"currency_code" json:"currency_code"` // Unique 3-letter code
	Name    string    `db:"currency_name" json:"currency_name"` // Display name
	AddedAt time.Time `db:"added_at" json:"added_at"`           // When the bank started supporting it
}

// zeroDecimalCurrencies lists the supported codes whose minor unit is the
// whole unit (ISO 4217 exponent 0). Everything else uses 2 decimal digits.
var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {},
	"KRW": {},
	"VND": {},
}

// MinorUnits returns the fixed-point precision for a currency code.
func MinorUnits(code string) int32 {
	if _, ok := zeroDecimalCurrencies[code]; ok {
		return 0
	}
	return 2
}

// RoundToMinorUnits rounds an amount half-up to the currency's precision.
// Converted amounts must pass through here before being credited.
func RoundToMinorUnits(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(MinorUnits(code))
}
