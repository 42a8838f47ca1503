package s1_normalize

import (
	"math"
	"strings"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/pkg/logger"
)

// FieldPolicy decides what happens to a missing field
type FieldPolicy string

const (
	PolicyDefault FieldPolicy = "default" // substitute 0
	PolicyExclude FieldPolicy = "exclude" // drop the record
)

// Field names used in policies and exclusion reasons
const (
	FieldPriceEarnings  = "price_earnings"
	FieldPriceToBook    = "price_to_book"
	FieldReturnOnEquity = "return_on_equity"
	FieldDividendYield  = "dividend_yield"
	FieldDebtToEquity   = "debt_to_equity"
	FieldMarketCap      = "market_cap"
	FieldCurrentPrice   = "current_price"
)

// DefaultSector is used when the provider has no sector
const DefaultSector = "Not informed"

// Policies holds the missing-field policy per numeric field
type Policies struct {
	PriceEarnings  FieldPolicy
	PriceToBook    FieldPolicy
	ReturnOnEquity FieldPolicy
	DividendYield  FieldPolicy
	DebtToEquity   FieldPolicy
	MarketCap      FieldPolicy
	CurrentPrice   FieldPolicy // only enforced in fair-value mode
}

// Config holds normalizer settings
type Config struct {
	Policies      Policies
	FairValueMode bool
	DefaultSector string
	SectorNames   map[string]string // provider sector → display sector
}

// DefaultConfig returns the canonical policy:
// ratios default to 0, market cap (and price in fair-value mode) exclude.
func DefaultConfig() Config {
	return Config{
		Policies: Policies{
			PriceEarnings:  PolicyDefault,
			PriceToBook:    PolicyDefault,
			ReturnOnEquity: PolicyDefault,
			DividendYield:  PolicyDefault,
			DebtToEquity:   PolicyDefault,
			MarketCap:      PolicyExclude,
			CurrentPrice:   PolicyExclude,
		},
		DefaultSector: DefaultSector,
		SectorNames:   map[string]string{},
	}
}

// Normalizer implements S1: validation, defaulting and exclusion
// ⭐ SSOT: 누락 필드 정책은 여기서만
type Normalizer struct {
	config Config
	logger *logger.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(config Config, log *logger.Logger) *Normalizer {
	if config.DefaultSector == "" {
		config.DefaultSector = DefaultSector
	}
	return &Normalizer{
		config: config,
		logger: log,
	}
}

// field describes one numeric input of RawRecord
type field struct {
	name     string
	value    *float64
	policy   FieldPolicy
	positive bool // values <= 0 count as missing
	target   *float64
}

// Normalize resolves a raw record into an enriched record or an exclusion.
// Exactly one of the two results is meaningful.
func (n *Normalizer) Normalize(raw contracts.RawRecord) (contracts.EnrichedRecord, *contracts.Exclusion) {
	ticker := CanonicalTicker(raw.Ticker)
	if ticker == "" {
		return contracts.EnrichedRecord{}, &contracts.Exclusion{
			Ticker: raw.Ticker,
			Reason: contracts.ReasonMissingTicker,
		}
	}

	if raw.FetchError != "" {
		return contracts.EnrichedRecord{}, &contracts.Exclusion{
			Ticker: ticker,
			Reason: contracts.ReasonFetchFailed,
			Detail: raw.FetchError,
		}
	}

	rec := contracts.EnrichedRecord{
		Ticker: ticker,
		Sector: n.resolveSector(raw.Sector),
	}

	// 우선순위 순서로 체크 (required fields first)
	fields := []field{
		{FieldMarketCap, raw.MarketCap, n.config.Policies.MarketCap, true, &rec.MarketCap},
		{FieldCurrentPrice, raw.CurrentPrice, n.currentPricePolicy(), true, &rec.CurrentPrice},
		{FieldPriceEarnings, raw.PriceEarnings, n.config.Policies.PriceEarnings, false, &rec.PriceEarnings},
		{FieldPriceToBook, raw.PriceToBook, n.config.Policies.PriceToBook, false, &rec.PriceToBook},
		{FieldReturnOnEquity, raw.ReturnOnEquity, n.config.Policies.ReturnOnEquity, false, &rec.ReturnOnEquity},
		{FieldDividendYield, raw.DividendYield, n.config.Policies.DividendYield, false, &rec.DividendYield},
		{FieldDebtToEquity, raw.DebtToEquity, n.config.Policies.DebtToEquity, false, &rec.DebtToEquity},
	}

	for _, f := range fields {
		if present(f.value, f.positive) {
			*f.target = *f.value
			continue
		}

		if f.policy == PolicyExclude {
			return contracts.EnrichedRecord{}, &contracts.Exclusion{
				Ticker: ticker,
				Reason: contracts.ReasonMissingRequiredField,
				Field:  f.name,
			}
		}
		*f.target = 0
	}

	return rec, nil
}

// currentPricePolicy: price only matters to the fair-value model
func (n *Normalizer) currentPricePolicy() FieldPolicy {
	if !n.config.FairValueMode {
		return PolicyDefault
	}
	return n.config.Policies.CurrentPrice
}

func (n *Normalizer) resolveSector(sector *string) string {
	if sector == nil || strings.TrimSpace(*sector) == "" {
		return n.config.DefaultSector
	}
	s := strings.TrimSpace(*sector)
	if translated, ok := n.config.SectorNames[s]; ok {
		return translated
	}
	return s
}

// present reports whether v carries a usable value
func present(v *float64, positive bool) bool {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return false
	}
	if positive && *v <= 0 {
		return false
	}
	return true
}

// CanonicalTicker trims and upper-cases a ticker symbol
func CanonicalTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Dedupe keeps the first occurrence of each canonical ticker.
// Later occurrences become duplicate_ticker exclusions.
func Dedupe(raws []contracts.RawRecord) ([]contracts.RawRecord, []contracts.Exclusion) {
	seen := make(map[string]bool, len(raws))
	unique := make([]contracts.RawRecord, 0, len(raws))
	dups := make([]contracts.Exclusion, 0)

	for _, raw := range raws {
		ticker := CanonicalTicker(raw.Ticker)
		if ticker != "" && seen[ticker] {
			dups = append(dups, contracts.Exclusion{
				Ticker: ticker,
				Reason: contracts.ReasonDuplicateTicker,
			})
			continue
		}
		seen[ticker] = true
		unique = append(unique, raw)
	}

	return unique, dups
}

// LogExclusion records a single exclusion at debug level
func (n *Normalizer) LogExclusion(e *contracts.Exclusion) {
	n.logger.WithFields(map[string]interface{}{
		"ticker": e.Ticker,
		"reason": e.Reason,
		"field":  e.Field,
	}).Debug("Record excluded")
}
