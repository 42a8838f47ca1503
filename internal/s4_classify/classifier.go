package s4_classify

import (
	"fmt"

	"github.com/wonny/precinho/internal/contracts"
)

// Thresholds are inclusive lower bounds of each tier
type Thresholds struct {
	Large float64
	Mid   float64
}

// Labels are display names per tier
type Labels struct {
	Large string
	Mid   string
	Small string
}

// Config holds classification parameters
type Config struct {
	Thresholds Thresholds
	Labels     Labels
}

// DefaultConfig returns 50B / 10B thresholds with English labels
func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{
			Large: 50_000_000_000,
			Mid:   10_000_000_000,
		},
		Labels: Labels{
			Large: "Large Cap",
			Mid:   "Mid Cap",
			Small: "Small Cap",
		},
	}
}

// Validate enforces Large > Mid > 0
func (c Config) Validate() error {
	if !(c.Thresholds.Mid > 0) {
		return fmt.Errorf("classify: mid threshold must be > 0")
	}
	if !(c.Thresholds.Large > c.Thresholds.Mid) {
		return fmt.Errorf("classify: large threshold must be > mid threshold")
	}
	if c.Labels.Large == "" || c.Labels.Mid == "" || c.Labels.Small == "" {
		return fmt.Errorf("classify: every tier needs a label")
	}
	return nil
}

// Classifier implements S4: market-cap tiering
type Classifier struct {
	config Config
}

// NewClassifier creates a classifier
func NewClassifier(config Config) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{config: config}, nil
}

// Classify maps a market cap to its tier. Boundaries belong to the upper tier.
func (c *Classifier) Classify(marketCap float64) contracts.CapTier {
	switch {
	case marketCap >= c.config.Thresholds.Large:
		return contracts.CapTierLarge
	case marketCap >= c.config.Thresholds.Mid:
		return contracts.CapTierMid
	default:
		return contracts.CapTierSmall
	}
}

// Label returns the display name of a tier
func (c *Classifier) Label(tier contracts.CapTier) string {
	switch tier {
	case contracts.CapTierLarge:
		return c.config.Labels.Large
	case contracts.CapTierMid:
		return c.config.Labels.Mid
	default:
		return c.config.Labels.Small
	}
}
