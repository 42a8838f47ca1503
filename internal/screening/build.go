package screening

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/precinho/internal/archive"
	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/external/yahoo"
	"github.com/wonny/precinho/internal/pipeline"
	"github.com/wonny/precinho/internal/report"
	"github.com/wonny/precinho/internal/strategyconfig"
	"github.com/wonny/precinho/internal/universe"
	"github.com/wonny/precinho/pkg/config"
	"github.com/wonny/precinho/pkg/database"
	"github.com/wonny/precinho/pkg/logger"
	"github.com/wonny/precinho/pkg/redis"
)

// Runtime owns the service and the connections it was built with
type Runtime struct {
	Service  *Service
	Strategy *strategyconfig.Config

	universe contracts.UniverseProvider
	redis    *redis.Client
	db       *database.DB
}

// Universe returns the provider the service was built with
func (r *Runtime) Universe() contracts.UniverseProvider {
	return r.universe
}

// Close releases Redis and Postgres connections
func (r *Runtime) Close() {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	if r.db != nil {
		r.db.Close()
	}
}

// BuildOptions overrides strategy values from the command line
type BuildOptions struct {
	Mode      string // "" = strategy value
	ReportDir string // "" = cfg.ReportDir
}

// Build wires universe, Yahoo, pipeline, reports and archive from configuration
// ⭐ SSOT: 의존성 조립은 여기서만
func Build(ctx context.Context, cfg *config.Config, strategy *strategyconfig.Config, opts BuildOptions, log *logger.Logger) (*Runtime, error) {
	rt := &Runtime{Strategy: strategy}

	pcfg, err := strategy.PipelineConfig()
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	if opts.Mode != "" {
		pcfg.Mode = contracts.Mode(opts.Mode)
	}
	orchestrator, err := pipeline.New(pcfg, log)
	if err != nil {
		return nil, fmt.Errorf("init pipeline: %w", err)
	}

	query, err := strategy.Query()
	if err != nil {
		return nil, fmt.Errorf("strategy query: %w", err)
	}

	rt.redis, err = redis.New(cfg)
	if err != nil {
		// 캐시는 선택 사항
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rt.redis = redis.Disabled()
	}
	cache := redis.NewCache(rt.redis, "precinho")

	provider, err := universe.New(cfg, strategy.Universe.Tickers, cache, log)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("init universe: %w", err)
	}

	rt.universe = provider

	source := yahoo.NewClient(cfg.Yahoo, cache, cfg.Redis.CacheTTL, log)

	reportDir := cfg.ReportDir
	if opts.ReportDir != "" {
		reportDir = opts.ReportDir
	}
	writer := report.NewWriter(reportDir, pcfg.Valuation.TargetMultiple, log)

	deps := Deps{
		Universe:     provider,
		Source:       source,
		Sectors:      strategy.Universe.Sectors,
		Orchestrator: orchestrator,
		Writer:       writer,
		DefaultQuery: query,
		Workers:      cfg.Workers,
	}

	if cfg.Database.Enabled {
		rt.db, err = database.New(cfg)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("init archive database: %w", err)
		}
		repo := archive.NewRepository(rt.db.Pool, log)

		schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = repo.EnsureSchema(schemaCtx)
		cancel()
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("archive schema: %w", err)
		}
		deps.Archiver = repo
	}

	rt.Service, err = NewService(deps, log)
	if err != nil {
		rt.Close()
		return nil, err
	}

	return rt, nil
}
