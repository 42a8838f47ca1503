package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes the job; ctx carries the per-attempt timeout
	Run(ctx context.Context) error

	// Schedule returns the cron expression with seconds,
	// e.g. "0 30 18 * * 1-5" (weekdays 18:30) or "@daily"
	Schedule() string
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

const maxHistory = 100

// JobHistory keeps the last maxHistory results of a job
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest beyond maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

func (h *JobHistory) snapshot() JobHistory {
	results := make([]JobResult, len(h.Results))
	copy(results, h.Results)
	return JobHistory{Results: results}
}

// Last returns the most recent result
func (h *JobHistory) Last() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// FailureCount returns the number of failed results
func (h *JobHistory) FailureCount() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate returns the success rate (0.0 - 1.0)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.FailureCount()) / float64(len(h.Results))
}
