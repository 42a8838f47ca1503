package screening

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/precinho/internal/contracts"
)

// QueryOverrides are optional selection parameters from the CLI or the API.
// Unset fields keep the strategy default.
type QueryOverrides struct {
	Sort        string   `json:"sort,omitempty"`
	Sector      *string  `json:"sector,omitempty"`
	Tier        string   `json:"tier,omitempty"`
	MinScore    *int     `json:"min_score,omitempty"`
	MinDiscount *float64 `json:"min_discount,omitempty"`
	Limit       *int     `json:"limit,omitempty"`
}

// Apply overrides base with every parameter that was given.
// An empty sector clears the sector filter.
func (p QueryOverrides) Apply(base contracts.Query) (contracts.Query, error) {
	q := base

	if p.Sort != "" {
		key, err := contracts.ParseSortKey(p.Sort)
		if err != nil {
			return q, err
		}
		q.SortKey = key
	}
	if p.Sector != nil {
		s := strings.TrimSpace(*p.Sector)
		if s == "" {
			q.Filter.Sector = nil
		} else {
			q.Filter.Sector = &s
		}
	}
	if p.Tier != "" {
		tier, err := contracts.ParseCapTier(p.Tier)
		if err != nil {
			return q, err
		}
		q.Filter.CapTier = &tier
	}
	if p.MinScore != nil {
		if *p.MinScore < 0 || *p.MinScore > 100 {
			return q, fmt.Errorf("min_score must be within 0..100")
		}
		v := *p.MinScore
		q.Filter.MinScore = &v
	}
	if p.MinDiscount != nil {
		if math.IsNaN(*p.MinDiscount) || math.IsInf(*p.MinDiscount, 0) {
			return q, fmt.Errorf("min_discount must be a finite number")
		}
		v := *p.MinDiscount
		q.Filter.MinDiscount = &v
	}
	if p.Limit != nil {
		if *p.Limit < 0 {
			return q, fmt.Errorf("limit must be >= 0")
		}
		q.Limit = *p.Limit
	}

	return q, nil
}
