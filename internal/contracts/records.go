package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawRecord is one ticker as handed over by the ingestion collaborator
// ⭐ SSOT: Ingestion → S1 원본 데이터 전달
// nil pointer = field missing at the provider.
type RawRecord struct {
	Ticker         string   `json:"ticker"`
	Sector         *string  `json:"sector,omitempty"`
	PriceEarnings  *float64 `json:"price_earnings,omitempty"`
	PriceToBook    *float64 `json:"price_to_book,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"` // fraction, 0.15 = 15%
	DividendYield  *float64 `json:"dividend_yield,omitempty"`   // fraction
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	MarketCap      *float64 `json:"market_cap,omitempty"`
	CurrentPrice   *float64 `json:"current_price,omitempty"`

	// FetchError is set when the provider gave up on the ticker
	FetchError string `json:"fetch_error,omitempty"`
}

// Float returns a pointer to v (fixture and provider helper)
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}

// EnrichedRecord is a surviving ticker after all per-record stages
// ⭐ SSOT: S1~S4 → Selection 데이터 전달
type EnrichedRecord struct {
	Ticker string `json:"ticker"`
	Sector string `json:"sector"`

	// Resolved fundamentals (defaulted or validated)
	PriceEarnings  float64 `json:"price_earnings"`
	PriceToBook    float64 `json:"price_to_book"`
	ReturnOnEquity float64 `json:"return_on_equity"`
	DividendYield  float64 `json:"dividend_yield"`
	DebtToEquity   float64 `json:"debt_to_equity"`
	MarketCap      float64 `json:"market_cap"`
	CurrentPrice   float64 `json:"current_price"`

	// Derived
	Score          int       `json:"score"`           // 0 ~ 100
	ScoreBreakdown []string  `json:"score_breakdown"` // satisfied predicates
	Valuation      Valuation `json:"valuation"`
	CapTier        CapTier   `json:"cap_tier"`
	CapLabel       string    `json:"cap_label"`
	Rank           int       `json:"rank,omitempty"` // 1-based, set by selection
}

// Valuation is the fair-value estimate of a record.
// When Defined is false both numbers are meaningless and never rendered.
type Valuation struct {
	FairPrice       float64
	DiscountPercent float64
	Defined         bool
}

// UndefinedValuation is the sentinel for P/E <= 0 or price <= 0
var UndefinedValuation = Valuation{}

type valuationJSON struct {
	FairPrice       *float64 `json:"fair_price"`
	DiscountPercent *float64 `json:"discount_percent"`
}

// MarshalJSON encodes an undefined valuation as nulls, never as zeros
func (v Valuation) MarshalJSON() ([]byte, error) {
	if !v.Defined {
		return json.Marshal(valuationJSON{})
	}
	return json.Marshal(valuationJSON{
		FairPrice:       Float(v.FairPrice),
		DiscountPercent: Float(v.DiscountPercent),
	})
}

// UnmarshalJSON restores the sentinel from nulls
func (v *Valuation) UnmarshalJSON(data []byte) error {
	var w valuationJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.FairPrice == nil || w.DiscountPercent == nil {
		*v = UndefinedValuation
		return nil
	}
	*v = Valuation{FairPrice: *w.FairPrice, DiscountPercent: *w.DiscountPercent, Defined: true}
	return nil
}

// CapTier is the market-cap bucket, ordered Large > Mid > Small
type CapTier int

const (
	CapTierSmall CapTier = iota
	CapTierMid
	CapTierLarge
)

// String returns the canonical tier name
func (t CapTier) String() string {
	switch t {
	case CapTierLarge:
		return "Large"
	case CapTierMid:
		return "Mid"
	default:
		return "Small"
	}
}

// ParseCapTier parses "large", "Mid", "SMALL" ...
func ParseCapTier(s string) (CapTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "large":
		return CapTierLarge, nil
	case "mid":
		return CapTierMid, nil
	case "small":
		return CapTierSmall, nil
	}
	return CapTierSmall, fmt.Errorf("unknown cap tier %q (use: large, mid, small)", s)
}

// MarshalText encodes the tier by name
func (t CapTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name
func (t *CapTier) UnmarshalText(text []byte) error {
	parsed, err := ParseCapTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
