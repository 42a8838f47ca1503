package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/pipeline"
	"github.com/wonny/precinho/internal/report"
	"github.com/wonny/precinho/pkg/logger"
)

var (
	// ErrRunInProgress is returned when a second run is requested before the first finished
	ErrRunInProgress = errors.New("screening run already in progress")

	// ErrNoRun is returned by read accessors before the first successful run
	ErrNoRun = errors.New("no screening run available yet")
)

// Deps are the collaborators of one screening service.
// Writer, Archiver and Sectors are optional.
type Deps struct {
	Universe     contracts.UniverseProvider
	Source       contracts.FundamentalsSource
	Sectors      map[string]string // ticker → sector for records ingested without one
	Orchestrator *pipeline.Orchestrator
	Writer       *report.Writer
	Archiver     contracts.RunArchiver
	DefaultQuery contracts.Query
	Workers      int
}

// Service runs universe → ingestion → pipeline → reports → archive
// ⭐ SSOT: CLI / API / Scheduler 모두 이 서비스로 실행
type Service struct {
	deps   Deps
	logger *logger.Logger

	mu      sync.RWMutex
	running bool
	latest  *contracts.RunReport
}

// NewService checks the mandatory collaborators
func NewService(deps Deps, log *logger.Logger) (*Service, error) {
	if deps.Universe == nil {
		return nil, fmt.Errorf("universe provider is required")
	}
	if deps.Source == nil {
		return nil, fmt.Errorf("fundamentals source is required")
	}
	if deps.Orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	if deps.DefaultQuery.SortKey == "" {
		deps.DefaultQuery.SortKey = deps.Orchestrator.DefaultSortKey()
	}

	return &Service{deps: deps, logger: log}, nil
}

// RunOptions tunes a single run
type RunOptions struct {
	Query     *contracts.Query // nil = strategy default
	NoReport  bool
	NoArchive bool
}

// RunResult is what a run produced
type RunResult struct {
	Report   *contracts.RunReport
	Files    *report.Files // nil when reports were skipped
	Archived bool
	Duration time.Duration
}

// Run executes one full screening.
// An empty ranking still writes reports and is returned with pipeline.ErrEmptyResult.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	start := time.Now()

	tickers, err := s.deps.Universe.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe (%s): %w", s.deps.Universe.Name(), err)
	}
	s.logger.WithFields(map[string]interface{}{
		"source":  s.deps.Universe.Name(),
		"tickers": len(tickers),
	}).Info("Universe loaded")

	raws, err := s.deps.Source.Fetch(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}

	// Yahoo quote에는 섹터가 없으므로 유니버스/전략에서 보충
	if filled := assignSectors(raws, s.sectorMap(ctx)); filled > 0 {
		s.logger.WithField("count", filled).Debug("Sectors assigned from universe")
	}

	query := s.deps.DefaultQuery
	if opts.Query != nil {
		query = *opts.Query
	}

	rep, runErr := s.deps.Orchestrator.Run(ctx, raws, pipeline.Options{
		Query:   query,
		Workers: s.deps.Workers,
	})
	if runErr != nil && !errors.Is(runErr, pipeline.ErrEmptyResult) {
		return nil, runErr
	}

	s.mu.Lock()
	s.latest = rep
	s.mu.Unlock()

	result := &RunResult{Report: rep}

	if s.deps.Writer != nil && !opts.NoReport {
		files, err := s.deps.Writer.Write(rep)
		if err != nil {
			return nil, fmt.Errorf("write reports: %w", err)
		}
		result.Files = files
	}

	// 아카이브 실패는 실행 결과를 무효화하지 않음
	if s.deps.Archiver != nil && !opts.NoArchive {
		if err := s.deps.Archiver.SaveRun(ctx, rep); err != nil {
			s.logger.WithError(err).WithField("run_id", rep.RunID).Warn("Run archive failed")
		} else {
			result.Archived = true
		}
	}

	result.Duration = time.Since(start)
	s.logger.WithFields(map[string]interface{}{
		"run_id":   rep.RunID,
		"ranked":   len(rep.Ranked),
		"excluded": rep.TotalExcluded,
		"duration": result.Duration,
	}).Info("Screening run finished")

	return result, runErr
}

// Latest returns the most recent report
func (s *Service) Latest() (*contracts.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, ErrNoRun
	}
	return s.latest, nil
}

// Ranking re-selects over the latest candidates without refetching
func (s *Service) Ranking(query contracts.Query) ([]contracts.EnrichedRecord, error) {
	latest, err := s.Latest()
	if err != nil {
		return nil, err
	}
	if query.SortKey == "" {
		query.SortKey = s.deps.DefaultQuery.SortKey
	}
	return s.deps.Orchestrator.Select(latest.Candidates, query), nil
}

// DefaultQuery returns the strategy's default query
func (s *Service) DefaultQuery() contracts.Query {
	return s.deps.DefaultQuery
}

// Running reports whether a run is in flight
func (s *Service) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Service) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunInProgress
	}
	s.running = true
	return nil
}

func (s *Service) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
