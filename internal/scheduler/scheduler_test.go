package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/precinho/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32 // fail this many times first
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.Nop(), time.UTC).WithRetry(2, time.Millisecond)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 30 18 * * 1-5"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))

	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "not a cron"}))

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))

	_, err := s.NextRun("a")
	assert.Error(t, err)
}

func TestRunJobNow_RetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobNow(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), job.calls.Load())
}

func TestRunJobNow_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "broken", schedule: "@daily", failures: 100}))

	result, err := s.RunJobNow(context.Background(), "broken")
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "transient", result.Error)

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, 0.0, stats.SuccessRate)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRunJobNow_UnknownJob(t *testing.T) {
	_, err := newTestScheduler().RunJobNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunJob_Background(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "bg", schedule: "@daily"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("bg"))
	require.Eventually(t, func() bool {
		return s.GetJobStats()["bg"].TotalRuns == 1
	}, time.Second, 5*time.Millisecond)

	history, err := s.GetJobHistory("bg")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)

	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestGetJobHistory_SnapshotUnaffectedByLaterRuns(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "snap", schedule: "@daily"}))

	_, err := s.RunJobNow(context.Background(), "snap")
	require.NoError(t, err)

	before, err := s.GetJobHistory("snap")
	require.NoError(t, err)
	require.Len(t, before.Results, 1)

	// 스냅샷을 읽는 동안 작업이 계속 실행되어도 경합 없음 (-race)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_, _ = s.RunJobNow(context.Background(), "snap")
		}
	}()
	for i := 0; i < 20; i++ {
		h, err := s.GetJobHistory("snap")
		require.NoError(t, err)
		for _, r := range h.Results {
			assert.Equal(t, "snap", r.JobName)
		}
	}
	<-done

	assert.Len(t, before.Results, 1)
	before.Results[0].JobName = "mutated"

	after, err := s.GetJobHistory("snap")
	require.NoError(t, err)
	assert.Len(t, after.Results, 21)
	assert.Equal(t, "snap", after.Results[0].JobName)
}

func TestNextRun_AfterStart(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 0 1 1 *"}))

	s.Start()
	defer s.Stop()

	var next time.Time
	require.Eventually(t, func() bool {
		n, err := s.NextRun("a")
		require.NoError(t, err)
		next = n
		return !n.IsZero()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, time.January, next.Month())
	assert.Equal(t, 1, next.Day())
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}

	_, ok := h.Last()
	assert.False(t, ok)
	assert.Equal(t, 0.0, h.SuccessRate())

	for i := 0; i < maxHistory+5; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Equal(t, maxHistory/2, h.FailureCount())
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)

	last, ok := h.Last()
	require.True(t, ok)
	assert.True(t, last.Success) // i = 104
}
