package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/precinho/internal/screening"
	"github.com/wonny/precinho/internal/strategyconfig"
	"github.com/wonny/precinho/pkg/config"
	"github.com/wonny/precinho/pkg/logger"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Tá no Precinho? - B3 value screener",
	Long: `Precinho Unified CLI

IBOVESPA 종목을 가치 지표(P/L, P/VP, ROE, DY, 시가총액)로 점수화하고
적정가(목표 P/L 배수) 대비 할인율로 순위를 매깁니다.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener run
  go run ./cmd/screener run --mode fair_value --min-discount 20
  go run ./cmd/screener serve
  go run ./cmd/screener scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_FILE or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}

// loadEnv loads env config and the logger; --verbose forces debug
func loadEnv() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyFile != "" {
		cfg.StrategyFile = strategyFile
	}
	return cfg, logger.New(cfg), nil
}

// loadStrategy reads the strategy file or the built-in default
func loadStrategy(cfg *config.Config) (*strategyconfig.Config, error) {
	strategy, err := strategyconfig.LoadOrDefault(cfg.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	return strategy, nil
}

// bootstrap wires the full runtime used by run, serve and scheduler
func bootstrap(ctx context.Context, opts screening.BuildOptions) (*config.Config, *logger.Logger, *screening.Runtime, error) {
	cfg, log, err := loadEnv()
	if err != nil {
		return nil, nil, nil, err
	}

	strategy, err := loadStrategy(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	rt, err := screening.Build(ctx, cfg, strategy, opts, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init screening: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"strategy": strategy.Meta.StrategyID,
		"version":  strategy.Meta.Version,
		"universe": cfg.Universe.Source,
		"archive":  cfg.Database.Enabled,
	}).Debug("Runtime ready")

	return cfg, log, rt, nil
}
