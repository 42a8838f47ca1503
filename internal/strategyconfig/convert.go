package strategyconfig

import (
	"fmt"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/pipeline"
	"github.com/wonny/precinho/internal/s1_normalize"
	"github.com/wonny/precinho/internal/s2_score"
	"github.com/wonny/precinho/internal/s3_valuation"
	"github.com/wonny/precinho/internal/s4_classify"
)

// PipelineConfig converts the strategy into stage configs, hash included
func (c *Config) PipelineConfig() (pipeline.Config, error) {
	hash, err := Hash(c)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("hash strategy: %w", err)
	}

	rules := make([]s2_score.Rule, len(c.Scoring.Rules))
	for i, r := range c.Scoring.Rules {
		rules[i] = s2_score.Rule{
			Name:   r.Name,
			Field:  r.Field,
			Lower:  copyFloat(r.Lower),
			Upper:  copyFloat(r.Upper),
			Weight: r.Weight,
		}
	}

	sectors := make(map[string]string, len(c.Normalization.SectorNames))
	for k, v := range c.Normalization.SectorNames {
		sectors[k] = v
	}

	p := c.Normalization.Policies
	return pipeline.Config{
		Mode:       contracts.Mode(c.Valuation.Mode),
		ConfigHash: hash,
		Normalize: s1_normalize.Config{
			Policies: s1_normalize.Policies{
				PriceEarnings:  s1_normalize.FieldPolicy(p.PriceEarnings),
				PriceToBook:    s1_normalize.FieldPolicy(p.PriceToBook),
				ReturnOnEquity: s1_normalize.FieldPolicy(p.ReturnOnEquity),
				DividendYield:  s1_normalize.FieldPolicy(p.DividendYield),
				DebtToEquity:   s1_normalize.FieldPolicy(p.DebtToEquity),
				MarketCap:      s1_normalize.FieldPolicy(p.MarketCap),
				CurrentPrice:   s1_normalize.FieldPolicy(p.CurrentPrice),
			},
			DefaultSector: c.Normalization.DefaultSector,
			SectorNames:   sectors,
		},
		Score: s2_score.Config{Rules: rules},
		Valuation: s3_valuation.Config{
			TargetMultiple: c.Valuation.TargetMultiple,
		},
		Classify: s4_classify.Config{
			Thresholds: s4_classify.Thresholds{
				Large: c.Classification.Thresholds.Large,
				Mid:   c.Classification.Thresholds.Mid,
			},
			Labels: s4_classify.Labels{
				Large: c.Classification.Labels.Large,
				Mid:   c.Classification.Labels.Mid,
				Small: c.Classification.Labels.Small,
			},
		},
	}, nil
}

// Query returns the default ranking query of the strategy
func (c *Config) Query() (contracts.Query, error) {
	q := contracts.Query{Limit: c.Ranking.Limit}

	if c.Ranking.Sort != "" {
		key, err := contracts.ParseSortKey(c.Ranking.Sort)
		if err != nil {
			return q, err
		}
		q.SortKey = key
	}

	f := c.Ranking.Filter
	if f.Sector != nil {
		s := *f.Sector
		q.Filter.Sector = &s
	}
	if f.Tier != "" {
		tier, err := contracts.ParseCapTier(f.Tier)
		if err != nil {
			return q, err
		}
		q.Filter.CapTier = &tier
	}
	if f.MinScore != nil {
		v := *f.MinScore
		q.Filter.MinScore = &v
	}
	if f.MinDiscount != nil {
		q.Filter.MinDiscount = copyFloat(f.MinDiscount)
	}
	return q, nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
