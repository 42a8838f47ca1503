package contracts

import "fmt"

// ExclusionReason classifies why a record left the batch
type ExclusionReason string

const (
	ReasonMissingTicker        ExclusionReason = "missing_ticker"
	ReasonDuplicateTicker      ExclusionReason = "duplicate_ticker"
	ReasonMissingRequiredField ExclusionReason = "missing_required_field"
	ReasonFetchFailed          ExclusionReason = "fetch_failed"
)

// Exclusion is the terminal state of a single record at S1.
// It never aborts the batch.
type Exclusion struct {
	Ticker string          `json:"ticker"`
	Reason ExclusionReason `json:"reason"`
	Field  string          `json:"field,omitempty"`
	Detail string          `json:"detail,omitempty"`
}

// Error makes *Exclusion usable as a record-level error
func (e *Exclusion) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s excluded: %s (%s)", e.Ticker, e.Reason, e.Field)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s excluded: %s: %s", e.Ticker, e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s excluded: %s", e.Ticker, e.Reason)
}

// IsMissingRequiredField reports whether the exclusion came from a required field
func (e *Exclusion) IsMissingRequiredField() bool {
	return e.Reason == ReasonMissingRequiredField
}
