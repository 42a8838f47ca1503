package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/s1_normalize"
	"github.com/wonny/precinho/internal/s2_score"
	"github.com/wonny/precinho/internal/s3_valuation"
	"github.com/wonny/precinho/internal/s4_classify"
	"github.com/wonny/precinho/internal/selection"
	"github.com/wonny/precinho/pkg/logger"
)

// ErrEmptyResult is returned (wrapped) when no record survives filtering.
// The report is still returned alongside it.
var ErrEmptyResult = errors.New("no records survived filtering")

// Config bundles every stage configuration
type Config struct {
	Mode       contracts.Mode
	Normalize  s1_normalize.Config
	Score      s2_score.Config
	Valuation  s3_valuation.Config
	Classify   s4_classify.Config
	ConfigHash string
}

// DefaultConfig returns canonical stage configs in score mode
func DefaultConfig() Config {
	return Config{
		Mode:      contracts.ModeScore,
		Normalize: s1_normalize.DefaultConfig(),
		Score:     s2_score.DefaultConfig(),
		Valuation: s3_valuation.DefaultConfig(),
		Classify:  s4_classify.DefaultConfig(),
	}
}

// Orchestrator coordinates S1 → S4 and the final selection
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	mode       contracts.Mode
	configHash string

	normalizer *s1_normalize.Normalizer
	scorer     *s2_score.Engine
	estimator  *s3_valuation.Estimator
	classifier *s4_classify.Classifier
	ranker     *selection.Ranker

	logger *logger.Logger
}

// Options holds per-run parameters
type Options struct {
	Query   contracts.Query
	Workers int       // parallel map width, < 1 means 1
	Now     time.Time // zero = time.Now()
	RunID   string    // empty = new uuid
}

// New validates the stage configs and wires the orchestrator
func New(cfg Config, log *logger.Logger) (*Orchestrator, error) {
	switch cfg.Mode {
	case "":
		cfg.Mode = contracts.ModeScore
	case contracts.ModeScore, contracts.ModeFairValue:
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	cfg.Normalize.FairValueMode = cfg.Mode == contracts.ModeFairValue

	scorer, err := s2_score.NewEngine(cfg.Score)
	if err != nil {
		return nil, fmt.Errorf("score engine: %w", err)
	}
	estimator, err := s3_valuation.NewEstimator(cfg.Valuation)
	if err != nil {
		return nil, fmt.Errorf("fair value estimator: %w", err)
	}
	classifier, err := s4_classify.NewClassifier(cfg.Classify)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	return &Orchestrator{
		mode:       cfg.Mode,
		configHash: cfg.ConfigHash,
		normalizer: s1_normalize.NewNormalizer(cfg.Normalize, log),
		scorer:     scorer,
		estimator:  estimator,
		classifier: classifier,
		ranker:     selection.NewRanker(log),
		logger:     log,
	}, nil
}

// Mode returns the screening mode the orchestrator was built for
func (o *Orchestrator) Mode() contracts.Mode {
	return o.mode
}

// DefaultSortKey is discount in fair-value mode, score otherwise
func (o *Orchestrator) DefaultSortKey() contracts.SortKey {
	if o.mode == contracts.ModeFairValue {
		return contracts.SortByDiscount
	}
	return contracts.SortByScore
}

// outcome is the per-record result of S1~S4: exactly one side is set
type outcome struct {
	record    contracts.EnrichedRecord
	exclusion *contracts.Exclusion
}

// Run executes the full batch: dedupe → S1~S4 (parallel) → select.
// Record-level problems become exclusions; only cancellation aborts the run.
func (o *Orchestrator) Run(ctx context.Context, raws []contracts.RawRecord, opts Options) (*contracts.RunReport, error) {
	startTime := time.Now()

	report := &contracts.RunReport{
		RunID:         opts.RunID,
		GeneratedAt:   opts.Now,
		ConfigHash:    o.configHash,
		Mode:          o.mode,
		TotalReceived: len(raws),
	}
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = startTime
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":  report.RunID,
		"mode":    o.mode,
		"records": len(raws),
		"workers": opts.Workers,
	}).Info("Starting screening run")

	unique, exclusions := s1_normalize.Dedupe(raws)

	outcomes, err := o.enrich(ctx, unique, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("enrich records: %w", err)
	}

	enriched := make([]contracts.EnrichedRecord, 0, len(outcomes))
	for _, out := range outcomes {
		if out.exclusion != nil {
			o.normalizer.LogExclusion(out.exclusion)
			exclusions = append(exclusions, *out.exclusion)
			continue
		}
		enriched = append(enriched, out.record)
	}

	sort.SliceStable(exclusions, func(i, j int) bool {
		return exclusions[i].Ticker < exclusions[j].Ticker
	})
	report.Exclusions = exclusions
	report.TotalExcluded = len(exclusions)

	report.Candidates = selection.Sort(enriched, contracts.SortByScore)
	report.Summary = Summarize(report.Candidates, o.classifier)

	query := opts.Query
	if query.SortKey == "" {
		query.SortKey = o.DefaultSortKey()
	}
	report.Query = query
	report.Ranked = o.ranker.Rank(report.Candidates, query)

	o.logger.WithFields(map[string]interface{}{
		"run_id":     report.RunID,
		"received":   report.TotalReceived,
		"excluded":   report.TotalExcluded,
		"candidates": len(report.Candidates),
		"ranked":     len(report.Ranked),
		"duration":   time.Since(startTime).String(),
	}).Info("Screening run completed")

	if report.IsEmpty() {
		return report, fmt.Errorf("run %s: %w", report.RunID, ErrEmptyResult)
	}
	return report, nil
}

// enrich runs the per-record stages over a bounded worker pool.
// Each goroutine writes only its own slot, so the order matches the input.
func (o *Orchestrator) enrich(ctx context.Context, raws []contracts.RawRecord, workers int) ([]outcome, error) {
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]outcome, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = o.process(raws[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup only reports errors from its goroutines
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// process applies S1 → S2 → S3 → S4 to one record
func (o *Orchestrator) process(raw contracts.RawRecord) outcome {
	rec, exclusion := o.normalizer.Normalize(raw)
	if exclusion != nil {
		return outcome{exclusion: exclusion}
	}

	scored := o.scorer.Score(rec)
	rec.Score = scored.Score
	rec.ScoreBreakdown = scored.Satisfied

	rec.Valuation = o.estimator.EstimateRecord(rec)

	rec.CapTier = o.classifier.Classify(rec.MarketCap)
	rec.CapLabel = o.classifier.Label(rec.CapTier)

	return outcome{record: rec}
}

// Select re-runs the final stage over an existing candidate set
func (o *Orchestrator) Select(candidates []contracts.EnrichedRecord, query contracts.Query) []contracts.EnrichedRecord {
	if query.SortKey == "" {
		query.SortKey = o.DefaultSortKey()
	}
	return o.ranker.Rank(candidates, query)
}
