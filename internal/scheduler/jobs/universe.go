package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/pkg/logger"
)

// UniverseJob warms the universe cache ahead of the screening
// ⭐ SSOT: Universe 갱신 스케줄은 이 Job에서만
type UniverseJob struct {
	provider contracts.UniverseProvider
	schedule string
	minSize  int
	logger   *logger.Logger
}

// NewUniverseJob creates a new universe job; minSize guards against a broken scrape
func NewUniverseJob(provider contracts.UniverseProvider, schedule string, minSize int, log *logger.Logger) *UniverseJob {
	return &UniverseJob{
		provider: provider,
		schedule: schedule,
		minSize:  minSize,
		logger:   log,
	}
}

// Name returns the job name
func (j *UniverseJob) Name() string {
	return "universe_refresh"
}

// Schedule returns the cron schedule
func (j *UniverseJob) Schedule() string {
	return j.schedule
}

// Run loads the universe once so the provider cache is fresh
func (j *UniverseJob) Run(ctx context.Context) error {
	tickers, err := j.provider.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("load universe (%s): %w", j.provider.Name(), err)
	}

	if len(tickers) < j.minSize {
		return fmt.Errorf("universe (%s) too small: %d < %d", j.provider.Name(), len(tickers), j.minSize)
	}

	j.logger.WithFields(map[string]interface{}{
		"source":  j.provider.Name(),
		"tickers": len(tickers),
	}).Info("Universe refreshed")

	return nil
}
