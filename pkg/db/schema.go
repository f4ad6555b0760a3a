package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
	CREATE TABLE IF NOT EXISTS currencies (
		currency_code varchar(3) PRIMARY KEY,
		currency_name varchar(50) NOT NULL,
		added_at timestamptz NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS users (
		user_id BIGSERIAL PRIMARY KEY,
		username varchar(50) NOT NULL UNIQUE,
		password_hash varchar(100) NOT NULL,
		email varchar(50) NOT NULL UNIQUE,
		fullname varchar(50) NOT NULL,
		created_on timestamptz NOT NULL DEFAULT now(),
		is_admin boolean NOT NULL DEFAULT false,
		failed_attempts integer NOT NULL DEFAULT 0,
		last_login timestamptz
	);

	CREATE TABLE IF NOT EXISTS accounts (
		account_id BIGSERIAL PRIMARY KEY,
		user_id bigint NOT NULL REFERENCES users(user_id),
		currency_code varchar(3) NOT NULL REFERENCES currencies(currency_code),
		balance numeric(20,4) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_on timestamptz NOT NULL DEFAULT now(),
		is_active boolean NOT NULL DEFAULT true,
		UNIQUE (user_id, currency_code)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		tx_id varchar(50) NOT NULL,
		tx_time timestamptz NOT NULL,
		type varchar(20) NOT NULL,
		from_user_id bigint REFERENCES users(user_id),
		from_account_id bigint REFERENCES accounts(account_id),
		to_user_id bigint REFERENCES users(user_id),
		to_account_id bigint REFERENCES accounts(account_id),
		amount numeric(20,4) NOT NULL CHECK (amount > 0),
		currency_code varchar(3) NOT NULL REFERENCES currencies(currency_code)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_from_account ON transactions(from_account_id, tx_time);
	CREATE INDEX IF NOT EXISTS idx_transactions_to_account ON transactions(to_account_id, tx_time);
	CREATE INDEX IF NOT EXISTS idx_transactions_tx_id ON transactions(tx_id);
`

// InitSchema creates the four ledger relations if they do not exist yet.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// SeedCurrencies inserts the bank's bootstrap currency set. Existing codes
// are left untouched.
func SeedCurrencies(ctx context.Context, db *sqlx.DB) error {
	seed := map[string]string{
		"USD": "US Dollar",
		"EUR": "Euro",
		"GBP": "Pound Sterling",
		"JPY": "Japanese Yen",
	}
	for code, name := range seed {
		_, err := db.ExecContext(ctx,
			`INSERT INTO currencies (currency_code, currency_name) VALUES ($1, $2)
			 ON CONFLICT (currency_code) DO NOTHING`, code, name)
		if err != nil {
			return fmt.Errorf("failed to seed currency %s: %w", code, err)
		}
	}
	return nil
}
