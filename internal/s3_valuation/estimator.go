package s3_valuation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/wonny/precinho/internal/contracts"
)

// DefaultTargetMultiple is the conservative P/E the fair price is anchored to
const DefaultTargetMultiple = 15.0

// discountPlaces is the rounding precision of DiscountPercent
const discountPlaces = 2

// Config holds fair-value parameters
type Config struct {
	TargetMultiple float64
}

// DefaultConfig returns the canonical multiple of 15
func DefaultConfig() Config {
	return Config{TargetMultiple: DefaultTargetMultiple}
}

// Validate checks the target multiple
func (c Config) Validate() error {
	if math.IsNaN(c.TargetMultiple) || math.IsInf(c.TargetMultiple, 0) || c.TargetMultiple <= 0 {
		return fmt.Errorf("valuation: target multiple must be > 0, got %v", c.TargetMultiple)
	}
	return nil
}

// Estimator implements S3: single-multiple fair price
// ⭐ SSOT: 적정가/할인율 계산은 여기서만
//
// This is a heuristic, not a discounted-cash-flow model. The fair price is the
// price the stock would trade at if the market paid TargetMultiple times its
// trailing earnings:
//
//	FairPrice       = CurrentPrice * TargetMultiple / PriceEarnings
//	DiscountPercent = round((FairPrice - CurrentPrice) / FairPrice * 100, 2)
//
// Positive discount = undervalued relative to the multiple, negative = overvalued.
type Estimator struct {
	targetMultiple float64
}

// NewEstimator creates an estimator
func NewEstimator(config Config) (*Estimator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{targetMultiple: config.TargetMultiple}, nil
}

// TargetMultiple returns the configured multiple
func (e *Estimator) TargetMultiple() float64 {
	return e.targetMultiple
}

// Estimate returns the valuation, or the undefined sentinel when
// currentPrice <= 0 or priceEarnings <= 0. It never fails.
func (e *Estimator) Estimate(currentPrice, priceEarnings float64) contracts.Valuation {
	if !positive(currentPrice) || !positive(priceEarnings) {
		return contracts.UndefinedValuation
	}

	fair := currentPrice * e.targetMultiple / priceEarnings
	if !positive(fair) {
		return contracts.UndefinedValuation
	}

	fairD := decimal.NewFromFloat(fair)
	discount := fairD.Sub(decimal.NewFromFloat(currentPrice)).
		Div(fairD).
		Mul(decimal.NewFromInt(100)).
		Round(discountPlaces)

	return contracts.Valuation{
		FairPrice:       fair,
		DiscountPercent: discount.InexactFloat64(),
		Defined:         true,
	}
}

// EstimateRecord is Estimate over an enriched record's price and P/E
func (e *Estimator) EstimateRecord(rec contracts.EnrichedRecord) contracts.Valuation {
	return e.Estimate(rec.CurrentPrice, rec.PriceEarnings)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Status is the human reading of a valuation
type Status string

const (
	StatusUndervalued  Status = "Undervalued"
	StatusOvervalued   Status = "Overvalued"
	StatusFairlyValued Status = "FairlyValued"
	StatusUndefined    Status = "Undefined"
)

// StatusOf classifies a valuation by the sign of its discount
func StatusOf(v contracts.Valuation) Status {
	switch {
	case !v.Defined:
		return StatusUndefined
	case v.DiscountPercent > 0:
		return StatusUndervalued
	case v.DiscountPercent < 0:
		return StatusOvervalued
	default:
		return StatusFairlyValued
	}
}
