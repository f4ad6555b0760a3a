package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"ledgerbank/pkg/db" // Import db package for its Config struct
)

// RatesConfig holds the currency-rate provider settings.
type RatesConfig struct {
	Endpoint   string        // Fixed GET endpoint
	APIKey     string        // Sent in the "apikey" request header
	Timeout    time.Duration // Per-request timeout
	CacheTTL   time.Duration // Validity window of a cached rate snapshot
	MaxRetries int           // Bounded retry budget for transient failures
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	DB    db.Config
	Rates RatesConfig
}

// LoadConfig loads configuration from a .env file (if present) and the
// environment. Every variable has a local-development default.
func LoadConfig() (*AppConfig, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(envOr("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	rateTimeout, err := time.ParseDuration(envOr("RATE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_TIMEOUT: %w", err)
	}
	rateTTL, err := time.ParseDuration(envOr("RATE_CACHE_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_CACHE_TTL: %w", err)
	}
	rateRetries, err := strconv.Atoi(envOr("RATE_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_MAX_RETRIES: %w", err)
	}

	return &AppConfig{
		DB: db.Config{
			Host:     envOr("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     envOr("DB_USER", "user"),
			Password: envOr("DB_PASSWORD", "password"),
			DBName:   envOr("DB_NAME", "bankdb"),
			SSLMode:  envOr("DB_SSLMODE", "disable"),
		},
		Rates: RatesConfig{
			Endpoint:   envOr("RATE_API_URL", "https://api.freecurrencyapi.com/v1/latest"),
			APIKey:     os.Getenv("RATE_API_KEY"),
			Timeout:    rateTimeout,
			CacheTTL:   rateTTL,
			MaxRetries: rateRetries,
		},
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
