package pipeline

import (
	"github.com/montanaflynn/stats"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/s4_classify"
)

// Summarize computes descriptive statistics over the candidates.
// Empty inputs yield zeros rather than errors.
func Summarize(candidates []contracts.EnrichedRecord, classifier *s4_classify.Classifier) contracts.Summary {
	summary := contracts.Summary{
		TierCounts: map[string]int{
			classifier.Label(contracts.CapTierLarge): 0,
			classifier.Label(contracts.CapTierMid):   0,
			classifier.Label(contracts.CapTierSmall): 0,
		},
	}

	scores := make(stats.Float64Data, 0, len(candidates))
	discounts := make(stats.Float64Data, 0, len(candidates))
	for _, rec := range candidates {
		scores = append(scores, float64(rec.Score))
		summary.TierCounts[rec.CapLabel]++
		if rec.Valuation.Defined {
			discounts = append(discounts, rec.Valuation.DiscountPercent)
		}
	}
	summary.DefinedValuations = len(discounts)

	if len(scores) > 0 {
		summary.MeanScore = round2(stats.Mean(scores))
		summary.MedianScore = round2(stats.Median(scores))
	}
	if len(discounts) > 0 {
		summary.MeanDiscount = round2(stats.Mean(discounts))
	}
	return summary
}

func round2(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	r, err := stats.Round(v, 2)
	if err != nil {
		return 0
	}
	return r
}
