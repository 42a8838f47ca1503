package contracts

import "time"

// Mode switches the pipeline between plain scoring and fair-value screening
type Mode string

const (
	ModeScore     Mode = "score"
	ModeFairValue Mode = "fair_value"
)

// RunReport is the output contract handed to reporting collaborators
// ⭐ SSOT: Pipeline → Report/API/Archive 결과 전달 (read-only)
type RunReport struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	ConfigHash  string    `json:"config_hash,omitempty"`
	Mode        Mode      `json:"mode"`

	TotalReceived int         `json:"total_received"`
	TotalExcluded int         `json:"total_excluded"`
	Exclusions    []Exclusion `json:"exclusions"`

	Candidates []EnrichedRecord `json:"candidates"` // full enriched set, score order
	Query      Query            `json:"query"`
	Ranked     []EnrichedRecord `json:"ranked"` // filtered, sorted, truncated

	Summary Summary `json:"summary"`
}

// Summary holds descriptive statistics over the candidates
type Summary struct {
	MeanScore         float64        `json:"mean_score"`
	MedianScore       float64        `json:"median_score"`
	DefinedValuations int            `json:"defined_valuations"`
	MeanDiscount      float64        `json:"mean_discount"` // over defined valuations only
	TierCounts        map[string]int `json:"tier_counts"`
}

// ExcludedCount returns the number of exclusions per reason
func (r *RunReport) ExcludedCount() map[ExclusionReason]int {
	counts := make(map[ExclusionReason]int)
	for _, e := range r.Exclusions {
		counts[e.Reason]++
	}
	return counts
}

// IsEmpty reports whether the ranked output has no records
func (r *RunReport) IsEmpty() bool {
	return len(r.Ranked) == 0
}
