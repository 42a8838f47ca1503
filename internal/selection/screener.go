package selection

import (
	"strings"

	"github.com/wonny/precinho/internal/contracts"
)

// Filter keeps the records that satisfy every set predicate of f.
// It is a pure subset: input order is preserved and the input is not modified.
// Applying the same filter twice yields the same result.
func Filter(records []contracts.EnrichedRecord, f contracts.Filter) []contracts.EnrichedRecord {
	passed := make([]contracts.EnrichedRecord, 0, len(records))
	for _, rec := range records {
		if Matches(rec, f) {
			passed = append(passed, rec)
		}
	}
	return passed
}

// Matches reports whether a single record passes the conjunctive filter
func Matches(rec contracts.EnrichedRecord, f contracts.Filter) bool {
	if f.Sector != nil && !strings.EqualFold(rec.Sector, strings.TrimSpace(*f.Sector)) {
		return false
	}
	if f.CapTier != nil && rec.CapTier != *f.CapTier {
		return false
	}
	if f.MinScore != nil && rec.Score < *f.MinScore {
		return false
	}
	if f.MinDiscount != nil {
		// undefined valuation never satisfies a discount floor
		if !rec.Valuation.Defined || rec.Valuation.DiscountPercent < *f.MinDiscount {
			return false
		}
	}
	return true
}

// FilterReasons counts, per predicate, how many records it rejected.
// A record failing several predicates is counted once per predicate.
func FilterReasons(records []contracts.EnrichedRecord, f contracts.Filter) map[string]int {
	reasons := make(map[string]int)
	for _, rec := range records {
		if f.Sector != nil && !Matches(rec, contracts.Filter{Sector: f.Sector}) {
			reasons["sector"]++
		}
		if f.CapTier != nil && !Matches(rec, contracts.Filter{CapTier: f.CapTier}) {
			reasons["cap_tier"]++
		}
		if f.MinScore != nil && !Matches(rec, contracts.Filter{MinScore: f.MinScore}) {
			reasons["min_score"]++
		}
		if f.MinDiscount != nil && !Matches(rec, contracts.Filter{MinDiscount: f.MinDiscount}) {
			reasons["min_discount"]++
		}
	}
	return reasons
}
