package universe

import (
	"fmt"
	"regexp"
	"time"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/s1_normalize"
	"github.com/wonny/precinho/pkg/config"
	"github.com/wonny/precinho/pkg/httputil"
	"github.com/wonny/precinho/pkg/logger"
	"github.com/wonny/precinho/pkg/redis"
)

// Source names accepted by UNIVERSE_SOURCE
const (
	SourceStatic    = "static"
	SourceWikipedia = "wikipedia"
)

// b3Ticker matches B3 cash-market symbols: 4 letters + class digit(s)
var b3Ticker = regexp.MustCompile(`^[A-Z]{4}[0-9]{1,2}$`)

// IsTicker reports whether s looks like a B3 ticker
func IsTicker(s string) bool {
	return b3Ticker.MatchString(s)
}

// clean canonicalizes and de-duplicates, keeping first-seen order
func clean(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = s1_normalize.CanonicalTicker(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// New builds the provider selected by cfg.Universe.Source
// ⭐ SSOT: 유니버스 소스 선택은 여기서만
func New(cfg *config.Config, tickers []string, cache *redis.Cache, log *logger.Logger) (contracts.UniverseProvider, error) {
	switch cfg.Universe.Source {
	case SourceStatic, "":
		return NewStaticProvider(tickers), nil
	case SourceWikipedia:
		client := httputil.NewWithTimeout(cfg, log, 20*time.Second).
			WithRetry(cfg.Yahoo.MaxRetries, cfg.Yahoo.RetryDelay).
			WithRateLimiter(redis.NewRateLimiter(cacheClient(cache), "precinho"), redis.WikipediaRateLimit)
		return NewWikipediaProvider(client, cfg.Universe.WikipediaURL, cache, log), nil
	}
	return nil, fmt.Errorf("unknown universe source %q", cfg.Universe.Source)
}

func cacheClient(cache *redis.Cache) *redis.Client {
	if cache == nil {
		return redis.Disabled()
	}
	return cache.Client()
}
