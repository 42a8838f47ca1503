package selection

import (
	"sort"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/pkg/logger"
)

// Ranker implements the final stage: filter → sort → truncate → rank
// ⭐ SSOT: 랭킹/필터 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// Rank runs Select and logs the outcome
func (r *Ranker) Rank(records []contracts.EnrichedRecord, query contracts.Query) []contracts.EnrichedRecord {
	ranked := Select(records, query)

	fields := map[string]interface{}{
		"total_input": len(records),
		"ranked":      len(ranked),
		"sort_key":    string(sortKeyOrDefault(query.SortKey)),
		"limit":       query.Limit,
	}
	if len(ranked) > 0 {
		fields["top_ticker"] = ranked[0].Ticker
		fields["top_score"] = ranked[0].Score
	}
	if reasons := FilterReasons(records, query.Filter); len(reasons) > 0 {
		fields["filters"] = reasons
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranked
}

// Select filters, sorts, truncates to Limit (0 = all) and assigns 1-based ranks.
// The input slice is never modified; the result is a fresh slice.
func Select(records []contracts.EnrichedRecord, query contracts.Query) []contracts.EnrichedRecord {
	selected := Sort(Filter(records, query.Filter), query.SortKey)

	if query.Limit > 0 && len(selected) > query.Limit {
		selected = selected[:query.Limit]
	}

	for i := range selected {
		selected[i].Rank = i + 1
	}
	return selected
}

// Sort returns a copy ordered descending by key, ties broken by ascending ticker.
// For SortByDiscount, undefined valuations go after all defined ones.
func Sort(records []contracts.EnrichedRecord, key contracts.SortKey) []contracts.EnrichedRecord {
	sorted := make([]contracts.EnrichedRecord, len(records))
	copy(sorted, records)

	less := byScore
	if sortKeyOrDefault(key) == contracts.SortByDiscount {
		less = byDiscount
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func byScore(a, b contracts.EnrichedRecord) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Ticker < b.Ticker
}

func byDiscount(a, b contracts.EnrichedRecord) bool {
	if a.Valuation.Defined != b.Valuation.Defined {
		return a.Valuation.Defined
	}
	if a.Valuation.Defined && a.Valuation.DiscountPercent != b.Valuation.DiscountPercent {
		return a.Valuation.DiscountPercent > b.Valuation.DiscountPercent
	}
	return a.Ticker < b.Ticker
}

func sortKeyOrDefault(key contracts.SortKey) contracts.SortKey {
	if key == "" {
		return contracts.SortByScore
	}
	return key
}
