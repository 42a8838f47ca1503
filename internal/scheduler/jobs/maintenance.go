package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/precinho/pkg/logger"
)

// ReportCleanupJob removes dated report files past the retention window.
// index.html is never touched.
type ReportCleanupJob struct {
	dir       string
	retention time.Duration
	schedule  string
	logger    *logger.Logger
	now       func() time.Time
}

// NewReportCleanupJob creates a new report cleanup job
func NewReportCleanupJob(dir string, retentionDays int, schedule string, log *logger.Logger) *ReportCleanupJob {
	return &ReportCleanupJob{
		dir:       dir,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		schedule:  schedule,
		logger:    log,
		now:       time.Now,
	}
}

// Name returns the job name
func (j *ReportCleanupJob) Name() string {
	return "report_cleanup"
}

// Schedule returns the cron schedule
func (j *ReportCleanupJob) Schedule() string {
	return j.schedule
}

// Run deletes ranking_<date>.{csv,json} older than the retention window
func (j *ReportCleanupJob) Run(ctx context.Context) error {
	if j.retention <= 0 {
		return nil
	}

	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read report dir: %w", err)
	}

	cutoff := j.now().Add(-j.retention)
	removed := 0

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		date, ok := reportDate(e.Name())
		if !ok || e.IsDir() || !date.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Report cleanup completed")
	}

	return nil
}

// reportDate parses ranking_2006-01-02.csv / .json
func reportDate(name string) (time.Time, bool) {
	ext := filepath.Ext(name)
	if ext != ".csv" && ext != ".json" {
		return time.Time{}, false
	}
	stem := strings.TrimSuffix(name, ext)
	if !strings.HasPrefix(stem, "ranking_") {
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", strings.TrimPrefix(stem, "ranking_"))
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
