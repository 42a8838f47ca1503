package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/precinho/internal/strategyconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "전략 설정 조회/검증",
}

var (
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "적용될 전략 설정 출력 (YAML + hash)",
		RunE:  showConfig,
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "전략 YAML 검증",
		Args:  cobra.ExactArgs(1),
		RunE:  validateConfig,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadEnv()
	if err != nil {
		return err
	}

	strategy, err := loadStrategy(cfg)
	if err != nil {
		return err
	}

	data, err := strategyconfig.Marshal(strategy)
	if err != nil {
		return err
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return err
	}

	source := cfg.StrategyFile
	if source == "" {
		source = "built-in default"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# source: %s\n# hash:   %s\n", source, hash)
	_, err = out.Write(data)
	return err
}

func validateConfig(cmd *cobra.Command, args []string) error {
	strategy, _, err := strategyconfig.Load(args[0])
	if err != nil {
		return err
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid (%s v%s, hash %s)\n",
		args[0], strategy.Meta.StrategyID, strategy.Meta.Version, hash[:12])
	return nil
}
