package contracts

import (
	"fmt"
	"strings"
)

// SortKey selects the primary ranking key
type SortKey string

const (
	SortByScore    SortKey = "score"
	SortByDiscount SortKey = "discount"
)

// ParseSortKey accepts "score" or "discount"
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortByScore:
		return SortByScore, nil
	case SortByDiscount:
		return SortByDiscount, nil
	}
	return "", fmt.Errorf("unknown sort key %q (use: score, discount)", s)
}

// Filter is a conjunctive predicate set; nil fields are not applied
type Filter struct {
	Sector      *string  `json:"sector,omitempty"`
	CapTier     *CapTier `json:"cap_tier,omitempty"`
	MinScore    *int     `json:"min_score,omitempty"`
	MinDiscount *float64 `json:"min_discount,omitempty"`
}

// Query describes one Rank/Filter request
type Query struct {
	SortKey SortKey `json:"sort_key"`
	Filter  Filter  `json:"filter"`
	Limit   int     `json:"limit,omitempty"` // 0 = no limit
}
