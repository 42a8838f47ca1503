package strategyconfig

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/precinho/internal/contracts"
)

const strategyPath = "../../config/strategy/value_ibov.yaml"

func TestLoad(t *testing.T) {
	if _, err := os.Stat(strategyPath); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(strategyPath)
	require.NoError(t, err)
	assert.NotEmpty(t, yamlData)

	assert.Equal(t, "value_ibov", cfg.Meta.StrategyID)
	assert.Len(t, cfg.Universe.Tickers, 30)
	assert.Equal(t, 15.0, cfg.Valuation.TargetMultiple)

	// 파일과 내장 기본값은 동일해야 함
	fileHash, err := Hash(cfg)
	require.NoError(t, err)
	defaultHash, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, defaultHash, fileHash)
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestDefault_SectorsCoverUniverse(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Not informed", cfg.Normalization.DefaultSector)

	for _, ticker := range cfg.Universe.Tickers {
		sector, ok := cfg.Universe.Sectors[ticker]
		require.True(t, ok, ticker)
		// 모든 섹터는 번역 테이블에 있어야 필터가 의미를 가짐
		_, known := cfg.Normalization.SectorNames[sector]
		assert.True(t, known, "%s: %s", ticker, sector)
	}
}

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)

	changed := Default()
	changed.Valuation.TargetMultiple = 12
	h3, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	typo := strings.Replace(string(data), "target_multiple:", "target_multipel:", 1)
	_, err = Parse([]byte(typo))
	assert.Error(t, err)
}

func TestParse_RoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"bad policy", func(c *Config) { c.Normalization.Policies.MarketCap = "skip" }, "normalization.policies.market_cap"},
		{"bad mode", func(c *Config) { c.Valuation.Mode = "dcf" }, "valuation.mode"},
		{"zero multiple", func(c *Config) { c.Valuation.TargetMultiple = 0 }, "valuation.target_multiple"},
		{"bad sort", func(c *Config) { c.Ranking.Sort = "momentum" }, "ranking.sort"},
		{"negative limit", func(c *Config) { c.Ranking.Limit = -1 }, "ranking.limit"},
		{"weights sum", func(c *Config) { c.Scoring.Rules[0].Weight = 30 }, "scoring.rules"},
		{"unknown score field", func(c *Config) { c.Scoring.Rules[1].Field = "ebitda" }, "scoring.rules[1].field"},
		{"rule without bounds", func(c *Config) { c.Scoring.Rules[2].Lower = nil }, "scoring.rules[2]"},
		{"inverted bounds", func(c *Config) { c.Scoring.Rules[0].Lower = bound(11) }, "scoring.rules[0]"},
		{"duplicate rule", func(c *Config) { c.Scoring.Rules[1].Name = "pe" }, "scoring.rules[1].name"},
		{"tiers inverted", func(c *Config) { c.Classification.Thresholds.Large = 5e9 }, "classification.thresholds"},
		{"empty label", func(c *Config) { c.Classification.Labels.Mid = "" }, "classification.labels.mid"},
		{"duplicate ticker", func(c *Config) { c.Universe.Tickers = append(c.Universe.Tickers, "petr4") }, "universe.tickers"},
		{"empty sector", func(c *Config) { c.Universe.Sectors["PETR4"] = "" }, "universe.sectors[PETR4]"},
		{"bad tier filter", func(c *Config) { c.Ranking.Filter.Tier = "mega" }, "ranking.filter.tier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr), "got %T: %v", err, err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	cfg := Default()
	cfg.Valuation.Mode = "fair_value"

	pc, err := cfg.PipelineConfig()
	require.NoError(t, err)

	hash, _ := Hash(cfg)
	assert.Equal(t, hash, pc.ConfigHash)
	assert.Equal(t, contracts.ModeFairValue, pc.Mode)
	assert.Len(t, pc.Score.Rules, 6)
	assert.NoError(t, pc.Score.Validate())
	assert.Equal(t, "exclude", string(pc.Normalize.Policies.MarketCap))
	assert.Equal(t, "Financeiro", pc.Normalize.SectorNames["Financial Services"])
	assert.Equal(t, 15.0, pc.Valuation.TargetMultiple)
	assert.Equal(t, "Mid Cap", pc.Classify.Labels.Mid)

	// converted rules must not alias the strategy
	*pc.Score.Rules[0].Upper = 99
	assert.Equal(t, 10.0, *cfg.Scoring.Rules[0].Upper)
}

func TestQuery(t *testing.T) {
	cfg := Default()
	sector := "Financeiro"
	minScore := 50
	minDiscount := 10.0
	cfg.Ranking = Ranking{
		Sort:  "discount",
		Limit: 5,
		Filter: RankingFilter{
			Sector:      &sector,
			Tier:        "large",
			MinScore:    &minScore,
			MinDiscount: &minDiscount,
		},
	}

	q, err := cfg.Query()
	require.NoError(t, err)
	assert.Equal(t, contracts.SortByDiscount, q.SortKey)
	assert.Equal(t, 5, q.Limit)
	require.NotNil(t, q.Filter.CapTier)
	assert.Equal(t, contracts.CapTierLarge, *q.Filter.CapTier)
	assert.Equal(t, "Financeiro", *q.Filter.Sector)
	assert.Equal(t, 50, *q.Filter.MinScore)
	assert.Equal(t, 10.0, *q.Filter.MinDiscount)

	empty, err := Default().Query()
	require.NoError(t, err)
	assert.Nil(t, empty.Filter.CapTier)
	assert.Equal(t, 10, empty.Limit)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "value_ibov", cfg.Meta.StrategyID)

	_, err = LoadOrDefault("does/not/exist.yaml")
	assert.Error(t, err)
}
