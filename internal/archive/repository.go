package archive

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Repository archives finished runs to PostgreSQL
// ⭐ SSOT: 실행 결과 저장은 여기서만 (write-only)
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewRepository creates a new archive repository
func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, logger: log}
}

var _ contracts.RunArchiver = (*Repository)(nil)

// EnsureSchema applies the embedded migrations in file order
func (r *Repository) EnsureSchema(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := r.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveRun writes the run header and every candidate in one transaction
func (r *Repository) SaveRun(ctx context.Context, report *contracts.RunReport) error {
	if report == nil {
		return fmt.Errorf("failed to save run: nil report")
	}

	header, err := runArgs(report)
	if err != nil {
		return err
	}
	records, err := recordArgs(report)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertRunSQL, header...); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, args := range records {
		batch.Queue(insertRecordSQL, args...)
	}

	br := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert run record: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if r.logger != nil {
		r.logger.WithFields(map[string]interface{}{
			"run_id":  report.RunID,
			"records": len(records),
		}).Info("Run archived")
	}

	return nil
}

const insertRunSQL = `
	INSERT INTO screening.runs (
		run_id, generated_at, config_hash, mode,
		total_received, total_excluded, query, summary, exclusions
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const insertRecordSQL = `
	INSERT INTO screening.run_records (
		run_id, ticker, rank, sector, score,
		fair_price, discount_percent, cap_tier, fundamentals
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// fundamentals is the JSONB payload of one archived record
type fundamentals struct {
	PriceEarnings  float64  `json:"price_earnings"`
	PriceToBook    float64  `json:"price_to_book"`
	ReturnOnEquity float64  `json:"return_on_equity"`
	DividendYield  float64  `json:"dividend_yield"`
	DebtToEquity   float64  `json:"debt_to_equity"`
	MarketCap      float64  `json:"market_cap"`
	CurrentPrice   float64  `json:"current_price"`
	Satisfied      []string `json:"satisfied"`
}

func runArgs(report *contracts.RunReport) ([]interface{}, error) {
	queryJSON, err := json.Marshal(report.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	exclusions := report.Exclusions
	if exclusions == nil {
		exclusions = []contracts.Exclusion{}
	}
	exclusionsJSON, err := json.Marshal(exclusions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exclusions: %w", err)
	}

	return []interface{}{
		report.RunID, report.GeneratedAt, report.ConfigHash, string(report.Mode),
		report.TotalReceived, report.TotalExcluded,
		queryJSON, summaryJSON, exclusionsJSON,
	}, nil
}

// recordArgs covers every candidate; rank is NULL for records outside the ranked view
func recordArgs(report *contracts.RunReport) ([][]interface{}, error) {
	ranks := make(map[string]int, len(report.Ranked))
	for _, rec := range report.Ranked {
		ranks[rec.Ticker] = rec.Rank
	}

	rows := make([][]interface{}, 0, len(report.Candidates))
	for _, rec := range report.Candidates {
		payload, err := json.Marshal(fundamentals{
			PriceEarnings:  rec.PriceEarnings,
			PriceToBook:    rec.PriceToBook,
			ReturnOnEquity: rec.ReturnOnEquity,
			DividendYield:  rec.DividendYield,
			DebtToEquity:   rec.DebtToEquity,
			MarketCap:      rec.MarketCap,
			CurrentPrice:   rec.CurrentPrice,
			Satisfied:      rec.ScoreBreakdown,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal fundamentals for %s: %w", rec.Ticker, err)
		}

		var rank *int
		if r, ok := ranks[rec.Ticker]; ok {
			rank = &r
		}

		var fairPrice, discount *float64
		if rec.Valuation.Defined {
			fp, d := rec.Valuation.FairPrice, rec.Valuation.DiscountPercent
			fairPrice, discount = &fp, &d
		}

		rows = append(rows, []interface{}{
			report.RunID, rec.Ticker, rank, rec.Sector, rec.Score,
			fairPrice, discount, rec.CapTier.String(), payload,
		})
	}

	return rows, nil
}
