package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"golang.org/x/time/rate"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/pkg/config"
	"github.com/wonny/precinho/pkg/logger"
	"github.com/wonny/precinho/pkg/redis"
)

// FetchFunc resolves one Yahoo symbol (e.g. "PETR4.SA")
type FetchFunc func(symbol string) (*finance.Equity, error)

// ErrNotFound is returned when Yahoo has no equity for the symbol
var ErrNotFound = errors.New("symbol not found")

// Client fetches fundamentals from Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	fetch      FetchFunc
	limiter    *rate.Limiter
	cache      *redis.Cache
	cacheTTL   time.Duration
	suffix     string
	maxRetries int
	retryDelay time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewClient creates a client; cache may be nil
func NewClient(cfg config.YahooConfig, cache *redis.Cache, cacheTTL time.Duration, log *logger.Logger) *Client {
	interval := cfg.RequestInterval
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Client{
		fetch:      equity.Get,
		limiter:    rate.NewLimiter(limit, 1),
		cache:      cache,
		cacheTTL:   cacheTTL,
		suffix:     cfg.SymbolSuffix,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     log,
		now:        time.Now,
	}
}

// WithFetchFunc replaces the transport (tests, alternative providers)
func (c *Client) WithFetchFunc(fn FetchFunc) *Client {
	c.fetch = fn
	return c
}

// Symbol maps a B3 ticker to its Yahoo symbol
func (c *Client) Symbol(ticker string) string {
	if c.suffix == "" || strings.HasSuffix(ticker, c.suffix) {
		return ticker
	}
	return ticker + c.suffix
}

// Fetch resolves every ticker in order. Per-ticker failures are reported
// through RawRecord.FetchError; only cancellation returns an error.
func (c *Client) Fetch(ctx context.Context, tickers []string) ([]contracts.RawRecord, error) {
	records := make([]contracts.RawRecord, 0, len(tickers))
	failed := 0
	cached := 0

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		rec, fromCache, err := c.FetchOne(ctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			failed++
			c.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"error":  err.Error(),
			}).Warn("Fundamentals fetch failed")
			rec = contracts.RawRecord{Ticker: ticker, FetchError: err.Error()}
		}
		if fromCache {
			cached++
		}
		records = append(records, rec)
	}

	c.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"failed":  failed,
		"cached":  cached,
	}).Info("Fundamentals fetched")

	return records, nil
}

// FetchOne resolves a single ticker: cache → rate limit → fetch with retry
func (c *Client) FetchOne(ctx context.Context, ticker string) (contracts.RawRecord, bool, error) {
	key := redis.FundamentalsKey(ticker, c.now().Format("2006-01-02"))

	if c.cache != nil {
		var rec contracts.RawRecord
		if found, err := c.cache.Get(ctx, key, &rec); err == nil && found {
			return rec, true, nil
		}
	}

	eq, err := c.fetchWithRetry(ctx, c.Symbol(ticker))
	if err != nil {
		return contracts.RawRecord{}, false, err
	}

	rec := ToRawRecord(ticker, eq)

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, rec, c.cacheTTL); err != nil {
			c.logger.WithError(err).Debug("Failed to cache fundamentals")
		}
	}
	return rec, false, nil
}

// fetchWithRetry calls the transport with exponential backoff
func (c *Client) fetchWithRetry(ctx context.Context, symbol string) (*finance.Equity, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		eq, err := c.fetch(symbol)
		if err == nil && eq != nil {
			return eq, nil
		}
		if err == nil {
			// finance-go returns (nil, nil) for unknown symbols
			return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		c.logger.WithFields(map[string]interface{}{
			"symbol":  symbol,
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).Debug("Retrying Yahoo request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, fmt.Errorf("%s: %w", symbol, lastErr)
}

// ToRawRecord maps a Yahoo equity to a raw record.
// Yahoo reports unknown values as 0, so zeros become missing fields.
// ROE is derived as trailing EPS / book value per share. D/E and sector
// are not part of the quote endpoint; the screening service fills sector
// from the universe table or the strategy's sector map.
func ToRawRecord(ticker string, eq *finance.Equity) contracts.RawRecord {
	rec := contracts.RawRecord{
		Ticker:        ticker,
		PriceEarnings: nonZero(eq.TrailingPE),
		PriceToBook:   nonZero(eq.PriceToBook),
		DividendYield: nonZero(eq.TrailingAnnualDividendYield),
		MarketCap:     nonZero(float64(eq.MarketCap)),
		CurrentPrice:  nonZero(eq.RegularMarketPrice),
	}

	if eq.BookValue > 0 && eq.EpsTrailingTwelveMonths != 0 {
		rec.ReturnOnEquity = nonZero(eq.EpsTrailingTwelveMonths / eq.BookValue)
	}

	return rec
}

func nonZero(v float64) *float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
