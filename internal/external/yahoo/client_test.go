package yahoo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/precinho/pkg/config"
	"github.com/wonny/precinho/pkg/logger"
	"github.com/wonny/precinho/pkg/redis"
)

func equityFixture(symbol string) *finance.Equity {
	eq := &finance.Equity{
		TrailingPE:                  4.5,
		PriceToBook:                 1.1,
		TrailingAnnualDividendYield: 0.12,
		MarketCap:                   480_000_000_000,
		EpsTrailingTwelveMonths:     8.2,
		BookValue:                   32.8,
	}
	eq.Symbol = symbol
	eq.RegularMarketPrice = 37.1
	return eq
}

type fakeYahoo struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int // symbol → number of failing calls before success
	missing  map[string]bool
}

func newFake() *fakeYahoo {
	return &fakeYahoo{calls: map[string]int{}, failures: map[string]int{}, missing: map[string]bool{}}
}

func (f *fakeYahoo) Get(symbol string) (*finance.Equity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	if f.missing[symbol] {
		return nil, nil
	}
	if f.failures[symbol] > 0 {
		f.failures[symbol]--
		return nil, errors.New("remote-error: 503")
	}
	return equityFixture(symbol), nil
}

func testClient(fake *fakeYahoo, retries int) *Client {
	cfg := config.YahooConfig{
		SymbolSuffix: ".SA",
		MaxRetries:   retries,
		RetryDelay:   time.Millisecond,
	}
	return NewClient(cfg, nil, time.Hour, logger.Nop()).WithFetchFunc(fake.Get)
}

func TestSymbol(t *testing.T) {
	c := testClient(newFake(), 0)
	assert.Equal(t, "PETR4.SA", c.Symbol("PETR4"))
	assert.Equal(t, "PETR4.SA", c.Symbol("PETR4.SA"))
}

func TestToRawRecord(t *testing.T) {
	rec := ToRawRecord("PETR4", equityFixture("PETR4.SA"))

	assert.Equal(t, "PETR4", rec.Ticker)
	require.NotNil(t, rec.PriceEarnings)
	assert.Equal(t, 4.5, *rec.PriceEarnings)
	assert.Equal(t, 1.1, *rec.PriceToBook)
	assert.Equal(t, 0.12, *rec.DividendYield)
	assert.Equal(t, 480e9, *rec.MarketCap)
	assert.Equal(t, 37.1, *rec.CurrentPrice)
	require.NotNil(t, rec.ReturnOnEquity)
	assert.InDelta(t, 0.25, *rec.ReturnOnEquity, 1e-9)

	assert.Nil(t, rec.DebtToEquity)
	assert.Nil(t, rec.Sector)
	assert.Empty(t, rec.FetchError)
}

func TestToRawRecord_ZerosAreMissing(t *testing.T) {
	eq := &finance.Equity{}
	eq.RegularMarketPrice = 12

	rec := ToRawRecord("MGLU3", eq)
	assert.Nil(t, rec.PriceEarnings)
	assert.Nil(t, rec.PriceToBook)
	assert.Nil(t, rec.ReturnOnEquity)
	assert.Nil(t, rec.DividendYield)
	assert.Nil(t, rec.MarketCap)
	require.NotNil(t, rec.CurrentPrice)
}

func TestFetch(t *testing.T) {
	fake := newFake()
	fake.failures["VALE3.SA"] = 1 // recovers on retry
	fake.failures["AZUL4.SA"] = 10
	fake.missing["XXXX3.SA"] = true

	c := testClient(fake, 2)
	records, err := c.Fetch(context.Background(), []string{"PETR4", "VALE3", "AZUL4", "XXXX3"})
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "PETR4", records[0].Ticker)
	assert.Empty(t, records[0].FetchError)

	assert.Equal(t, "VALE3", records[1].Ticker)
	assert.Empty(t, records[1].FetchError)
	assert.Equal(t, 2, fake.calls["VALE3.SA"])

	assert.Equal(t, "AZUL4", records[2].Ticker)
	assert.Contains(t, records[2].FetchError, "503")
	assert.Equal(t, 3, fake.calls["AZUL4.SA"])

	assert.Contains(t, records[3].FetchError, ErrNotFound.Error())
	assert.Equal(t, 1, fake.calls["XXXX3.SA"])
}

func TestFetch_Canceled(t *testing.T) {
	c := testClient(newFake(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, []string{"PETR4"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_DisabledCacheStillFetches(t *testing.T) {
	fake := newFake()
	c := NewClient(config.YahooConfig{SymbolSuffix: ".SA"}, redis.NewCache(redis.Disabled(), "test"), time.Hour, logger.Nop()).
		WithFetchFunc(fake.Get)

	for i := 0; i < 2; i++ {
		_, fromCache, err := c.FetchOne(context.Background(), "ITUB4")
		require.NoError(t, err)
		assert.False(t, fromCache)
	}
	assert.Equal(t, 2, fake.calls["ITUB4.SA"])
}
