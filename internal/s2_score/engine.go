package s2_score

import (
	"fmt"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/s1_normalize"
)

// MaxScore is the sum every weight table must reach
const MaxScore = 100

// Rule is one additive predicate: Lower < value < Upper, both exclusive.
// A nil bound is open on that side.
type Rule struct {
	Name   string
	Field  string
	Lower  *float64
	Upper  *float64
	Weight int
}

// Satisfied evaluates the rule against a single value
func (r Rule) Satisfied(v float64) bool {
	if r.Lower != nil && !(v > *r.Lower) {
		return false
	}
	if r.Upper != nil && !(v < *r.Upper) {
		return false
	}
	return true
}

// Config holds the predicate table
type Config struct {
	Rules []Rule
}

func bound(v float64) *float64 {
	return &v
}

// DefaultConfig returns the canonical 25/25/20/15/15 table.
// debt_to_equity is carried with weight 0 so it can be switched on by config.
func DefaultConfig() Config {
	return Config{
		Rules: []Rule{
			{Name: "pe", Field: s1_normalize.FieldPriceEarnings, Lower: bound(0), Upper: bound(10), Weight: 25},
			{Name: "pb", Field: s1_normalize.FieldPriceToBook, Lower: bound(0), Upper: bound(1.5), Weight: 25},
			{Name: "roe", Field: s1_normalize.FieldReturnOnEquity, Lower: bound(0.15), Weight: 20},
			{Name: "dividend_yield", Field: s1_normalize.FieldDividendYield, Lower: bound(0.05), Weight: 15},
			{Name: "market_cap", Field: s1_normalize.FieldMarketCap, Lower: bound(10_000_000_000), Weight: 15},
			{Name: "debt_to_equity", Field: s1_normalize.FieldDebtToEquity, Lower: bound(0), Upper: bound(150), Weight: 0},
		},
	}
}

// Result is the outcome of scoring one record
type Result struct {
	Score     int
	Satisfied []string // names of satisfied rules with weight > 0
}

// Engine implements S2: weighted predicate scoring
// ⭐ SSOT: 점수 계산은 여기서만
// Score is a pure function of the ratio fields; it never fails.
type Engine struct {
	rules []Rule
}

// NewEngine validates the rule table and creates an engine
func NewEngine(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	rules := make([]Rule, len(config.Rules))
	copy(rules, config.Rules)
	return &Engine{rules: rules}, nil
}

// Score sums the weights of all satisfied predicates
func (e *Engine) Score(rec contracts.EnrichedRecord) Result {
	result := Result{Satisfied: make([]string, 0, len(e.rules))}
	for _, rule := range e.rules {
		if rule.Weight == 0 {
			continue
		}
		if rule.Satisfied(fieldValue(rec, rule.Field)) {
			result.Score += rule.Weight
			result.Satisfied = append(result.Satisfied, rule.Name)
		}
	}
	return result
}

// Rules returns a copy of the active rule table
func (e *Engine) Rules() []Rule {
	rules := make([]Rule, len(e.rules))
	copy(rules, e.rules)
	return rules
}

// Validate checks the weight table: known fields, sane bounds, sum == 100
func (c Config) Validate() error {
	if len(c.Rules) == 0 {
		return fmt.Errorf("score rules: at least one rule required")
	}

	sum := 0
	names := make(map[string]bool, len(c.Rules))
	for _, r := range c.Rules {
		if r.Name == "" {
			return fmt.Errorf("score rules: rule without name")
		}
		if names[r.Name] {
			return fmt.Errorf("score rules: duplicate rule %q", r.Name)
		}
		names[r.Name] = true

		if !knownField(r.Field) {
			return fmt.Errorf("score rules: %s: unknown field %q", r.Name, r.Field)
		}
		if r.Weight < 0 {
			return fmt.Errorf("score rules: %s: weight must be >= 0", r.Name)
		}
		if r.Lower == nil && r.Upper == nil {
			return fmt.Errorf("score rules: %s: at least one bound required", r.Name)
		}
		if r.Lower != nil && r.Upper != nil && *r.Lower >= *r.Upper {
			return fmt.Errorf("score rules: %s: lower bound must be < upper bound", r.Name)
		}
		sum += r.Weight
	}

	if sum != MaxScore {
		return fmt.Errorf("score rules: weights must sum to %d, got %d", MaxScore, sum)
	}
	return nil
}

func knownField(name string) bool {
	switch name {
	case s1_normalize.FieldPriceEarnings,
		s1_normalize.FieldPriceToBook,
		s1_normalize.FieldReturnOnEquity,
		s1_normalize.FieldDividendYield,
		s1_normalize.FieldDebtToEquity,
		s1_normalize.FieldMarketCap,
		s1_normalize.FieldCurrentPrice:
		return true
	}
	return false
}

func fieldValue(rec contracts.EnrichedRecord, name string) float64 {
	switch name {
	case s1_normalize.FieldPriceEarnings:
		return rec.PriceEarnings
	case s1_normalize.FieldPriceToBook:
		return rec.PriceToBook
	case s1_normalize.FieldReturnOnEquity:
		return rec.ReturnOnEquity
	case s1_normalize.FieldDividendYield:
		return rec.DividendYield
	case s1_normalize.FieldDebtToEquity:
		return rec.DebtToEquity
	case s1_normalize.FieldMarketCap:
		return rec.MarketCap
	case s1_normalize.FieldCurrentPrice:
		return rec.CurrentPrice
	}
	return 0
}
