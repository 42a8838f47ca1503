package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/precinho/internal/pipeline"
	"github.com/wonny/precinho/internal/screening"
	"github.com/wonny/precinho/pkg/logger"
)

// Runner is the part of screening.Service the job needs
type Runner interface {
	Run(ctx context.Context, opts screening.RunOptions) (*screening.RunResult, error)
}

// ScreeningJob runs the daily screening after the B3 close
// ⭐ SSOT: 정기 스크리닝 스케줄은 이 Job에서만
type ScreeningJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger
}

// NewScreeningJob creates a new screening job
func NewScreeningJob(runner Runner, schedule string, log *logger.Logger) *ScreeningJob {
	return &ScreeningJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScreeningJob) Name() string {
	return "screening"
}

// Schedule returns the cron schedule
func (j *ScreeningJob) Schedule() string {
	return j.schedule
}

// Run executes one screening; an empty ranking is not a failure
func (j *ScreeningJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled screening")

	result, err := j.runner.Run(ctx, screening.RunOptions{})
	switch {
	case errors.Is(err, pipeline.ErrEmptyResult):
		j.logger.WithField("run_id", result.Report.RunID).Warn("Screening produced an empty ranking")
		return nil
	case errors.Is(err, screening.ErrRunInProgress):
		// 수동 실행과 겹치면 이번 회차는 건너뜀
		j.logger.Warn("Screening already running, skipping scheduled run")
		return nil
	case err != nil:
		return fmt.Errorf("screening run: %w", err)
	}

	fields := map[string]interface{}{
		"run_id":   result.Report.RunID,
		"ranked":   len(result.Report.Ranked),
		"excluded": result.Report.TotalExcluded,
		"archived": result.Archived,
	}
	if result.Files != nil {
		fields["html"] = result.Files.HTML
	}
	j.logger.WithFields(fields).Info("Scheduled screening completed")

	return nil
}
