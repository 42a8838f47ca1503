package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/precinho/internal/pipeline"
	"github.com/wonny/precinho/internal/report"
	"github.com/wonny/precinho/internal/screening"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "스크리닝 1회 실행",
	Long: `Universe → Yahoo Finance → 점수/적정가/시총 분류 → 순위 → 리포트를 1회 실행합니다.

리포트 (기본 docs/):
  ranking_<date>.csv, ranking_<date>.json, index.html

Flags:
  --mode          score | fair_value (기본: 전략 파일)
  --sort          score | discount
  --sector        섹터 필터 (대소문자 무시)
  --tier          large | mid | small
  --min-score     최소 점수 (0~100)
  --min-discount  최소 할인율 (%)
  --limit         출력 개수 (0 = 전체)

Example:
  go run ./cmd/screener run
  go run ./cmd/screener run --mode fair_value --sort discount --min-discount 20
  go run ./cmd/screener run --sector Financeiro --tier large --limit 5 --no-report`,
	RunE: runScreening,
}

var (
	runMode        string
	runSort        string
	runSector      string
	runTier        string
	runMinScore    int
	runMinDiscount float64
	runLimit       int
	runOutput      string
	runNoReport    bool
	runNoArchive   bool
	runJSON        bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runMode, "mode", "", "screening mode (score|fair_value)")
	runCmd.Flags().StringVar(&runSort, "sort", "", "sort key (score|discount)")
	runCmd.Flags().StringVar(&runSector, "sector", "", "sector filter (case-insensitive)")
	runCmd.Flags().StringVar(&runTier, "tier", "", "cap tier filter (large|mid|small)")
	runCmd.Flags().IntVar(&runMinScore, "min-score", 0, "minimum score (0-100)")
	runCmd.Flags().Float64Var(&runMinDiscount, "min-discount", 0, "minimum discount percent")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "max records (0 = all)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "report folder (default: REPORT_DIR)")
	runCmd.Flags().BoolVar(&runNoReport, "no-report", false, "skip CSV/JSON/HTML files")
	runCmd.Flags().BoolVar(&runNoArchive, "no-archive", false, "skip the Postgres archive")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run report as JSON")
}

// queryOverrides collects only the flags the user actually set
func queryOverrides(cmd *cobra.Command) screening.QueryOverrides {
	var o screening.QueryOverrides
	flags := cmd.Flags()

	o.Sort = runSort
	o.Tier = runTier
	if flags.Changed("sector") {
		s := runSector
		o.Sector = &s
	}
	if flags.Changed("min-score") {
		v := runMinScore
		o.MinScore = &v
	}
	if flags.Changed("min-discount") {
		v := runMinDiscount
		o.MinDiscount = &v
	}
	if flags.Changed("limit") {
		v := runLimit
		o.Limit = &v
	}
	return o
}

func runScreening(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, log, rt, err := bootstrap(ctx, screening.BuildOptions{Mode: runMode, ReportDir: runOutput})
	if err != nil {
		return err
	}
	defer rt.Close()

	query, err := queryOverrides(cmd).Apply(rt.Service.DefaultQuery())
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	if !runJSON {
		fmt.Println("=== Tá no Precinho? ===")
		fmt.Printf("\n📋 Strategy: %s v%s\n", rt.Strategy.Meta.StrategyID, rt.Strategy.Meta.Version)
		fmt.Printf("🔧 Sort: %s, Limit: %d\n\n", query.SortKey, query.Limit)
	}

	result, err := rt.Service.Run(ctx, screening.RunOptions{
		Query:     &query,
		NoReport:  runNoReport,
		NoArchive: runNoArchive,
	})
	empty := errors.Is(err, pipeline.ErrEmptyResult)
	if err != nil && !empty {
		log.WithError(err).Error("Screening run failed")
		return err
	}

	rep := result.Report
	out := cmd.OutOrStdout()

	if runJSON {
		return report.WriteJSON(out, rep)
	}

	if empty {
		fmt.Fprintln(out, "⚠️  Nenhuma ação passou nos filtros")
	} else if err := report.WriteTable(out, rep.Ranked); err != nil {
		return fmt.Errorf("print ranking: %w", err)
	}

	if len(rep.Exclusions) > 0 {
		fmt.Fprintf(out, "\nExcluded (%d):\n", rep.TotalExcluded)
		if err := report.WriteExclusions(out, rep.Exclusions); err != nil {
			return fmt.Errorf("print exclusions: %w", err)
		}
	}

	PrintSummary(out, rep)

	if result.Files != nil {
		fmt.Fprintf(out, "\n📄 %s\n📄 %s\n🌐 %s\n", result.Files.CSV, result.Files.JSON, result.Files.HTML)
	}
	if result.Archived {
		fmt.Fprintf(out, "🗄️  Archived run %s\n", rep.RunID)
	}
	fmt.Fprintf(out, "\n✅ Run %s completed in %.2fs\n", rep.RunID, result.Duration.Seconds())

	return nil
}
