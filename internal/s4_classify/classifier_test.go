package s4_classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/precinho/internal/contracts"
)

func TestClassifier_Boundaries(t *testing.T) {
	c, err := NewClassifier(DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		cap  float64
		want contracts.CapTier
	}{
		{400e9, contracts.CapTierLarge},
		{50_000_000_000, contracts.CapTierLarge},
		{49_999_999_999, contracts.CapTierMid},
		{10_000_000_000, contracts.CapTierMid},
		{9_999_999_999, contracts.CapTierSmall},
		{1, contracts.CapTierSmall},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.cap), "cap=%v", tt.cap)
	}
}

func TestClassifier_Labels(t *testing.T) {
	c, err := NewClassifier(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "Large Cap", c.Label(contracts.CapTierLarge))
	assert.Equal(t, "Mid Cap", c.Label(contracts.CapTierMid))
	assert.Equal(t, "Small Cap", c.Label(contracts.CapTierSmall))

	cfg := DefaultConfig()
	cfg.Labels.Large = "Blue Chips"
	c, err = NewClassifier(cfg)
	require.NoError(t, err)
	assert.Equal(t, "Blue Chips", c.Label(c.Classify(80e9)))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mid zero", func(c *Config) { c.Thresholds.Mid = 0 }},
		{"large equals mid", func(c *Config) { c.Thresholds.Large = c.Thresholds.Mid }},
		{"large below mid", func(c *Config) { c.Thresholds.Large = 1e9 }},
		{"empty label", func(c *Config) { c.Labels.Small = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewClassifier(cfg)
			assert.Error(t, err)
		})
	}
}
