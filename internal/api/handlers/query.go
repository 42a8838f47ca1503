package handlers

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/wonny/precinho/internal/screening"
)

// QueryParams are the optional selection parameters shared by GET and POST
type QueryParams = screening.QueryOverrides

// ParseQueryParams reads sort, sector, tier, min_score, min_discount, limit
func ParseQueryParams(v url.Values) (QueryParams, error) {
	var p QueryParams

	p.Sort = v.Get("sort")
	p.Tier = v.Get("tier")

	if v.Has("sector") {
		s := v.Get("sector")
		p.Sector = &s
	}
	if s := v.Get("min_score"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("invalid min_score %q", s)
		}
		p.MinScore = &n
	}
	if s := v.Get("min_discount"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return p, fmt.Errorf("invalid min_discount %q", s)
		}
		p.MinDiscount = &f
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return p, fmt.Errorf("invalid limit %q", s)
		}
		p.Limit = &n
	}

	return p, nil
}
