package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbank/internal/config"
	"ledgerbank/internal/domain"
	"ledgerbank/internal/util"
)

// BaseCurrency is the provider's fixed quote base: every rate in a snapshot
// is the amount of that currency one USD buys.
const BaseCurrency = "USD"

// ratesResponse is the provider's 200 payload: {"data": {"EUR": 0.9, ...}}.
type ratesResponse struct {
	Data map[string]decimal.Decimal `json:"data"`
}

// Client fetches currency rates over HTTP and caches the snapshot for a TTL,
// so ledger mutations are never blocked on provider latency beyond one
// bounded fetch. Rate resolution is deterministic for a given snapshot.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	ttl        time.Duration
	maxRetries int

	mu        sync.Mutex
	snapshot  map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewClient creates a rate client from configuration.
func NewClient(cfg config.RatesConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		ttl:        cfg.CacheTTL,
		maxRetries: cfg.MaxRetries,
	}
}

// FetchRates returns the current rate snapshot, hitting the provider only
// when the cached snapshot has expired.
func (c *Client) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.snapshot, nil
	}

	snapshot, err := c.fetchWithRetry(ctx)
	if err != nil {
		return nil, err
	}
	c.snapshot = snapshot
	c.fetchedAt = time.Now()
	return snapshot, nil
}

// fetchWithRetry performs the GET with bounded retry and exponential backoff.
// Only transport errors and 5xx responses are retried; a 4xx is terminal.
func (c *Client) fetchWithRetry(ctx context.Context) (map[string]decimal.Decimal, error) {
	backoff := 100 * time.Millisecond
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying rate fetch", "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		snapshot, retryable, err := c.fetchOnce(ctx)
		if err == nil {
			return snapshot, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", util.ErrRateProvider, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context) (map[string]decimal.Decimal, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build rate request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: provider returned status %d", util.ErrRateProvider, resp.StatusCode)
		return nil, resp.StatusCode >= 500, err
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("%w: malformed rate payload: %v", util.ErrRateProvider, err)
	}
	if len(payload.Data) == 0 {
		return nil, false, fmt.Errorf("%w: empty rate table", util.ErrRateProvider)
	}
	return payload.Data, false, nil
}

// Rate resolves from→to against the cached snapshot. With USD as base:
// base→X is table[X], X→base is 1/table[X], cross X→Y is table[Y]/table[X].
func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	table, err := c.FetchRates(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	lookup := func(code string) (decimal.Decimal, error) {
		rate, ok := table[code]
		if !ok || rate.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: %s not quoted by provider", util.ErrCurrencyNotFound, code)
		}
		return rate, nil
	}

	switch {
	case from == BaseCurrency:
		return lookup(to)
	case to == BaseCurrency:
		fromRate, err := lookup(from)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(1).Div(fromRate), nil
	default:
		toRate, err := lookup(to)
		if err != nil {
			return decimal.Zero, err
		}
		fromRate, err := lookup(from)
		if err != nil {
			return decimal.Zero, err
		}
		return toRate.Div(fromRate), nil
	}
}

// Convert applies the from→to rate to an amount and rounds half-up to the
// target currency's minor-unit precision. Round-tripping X→Y→X is not
// expected to return the original amount exactly.
func (c *Client) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := c.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.RoundToMinorUnits(amount.Mul(rate), to), nil
}

// HasCode reports whether the provider quotes the given currency code.
// The base currency is always quotable.
func (c *Client) HasCode(ctx context.Context, code string) (bool, error) {
	if code == BaseCurrency {
		return true, nil
	}
	table, err := c.FetchRates(ctx)
	if err != nil {
		return false, err
	}
	_, ok := table[code]
	return ok, nil
}
