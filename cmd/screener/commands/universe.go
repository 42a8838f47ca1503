package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/precinho/internal/screening"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Universe 종목 조회",
	Long: `설정된 소스(UNIVERSE_SOURCE: static | wikipedia)에서 종목 리스트를 읽어 출력합니다.

Example:
  go run ./cmd/screener universe
  UNIVERSE_SOURCE=wikipedia go run ./cmd/screener universe`,
	RunE: runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, _, rt, err := bootstrap(ctx, screening.BuildOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	provider := rt.Universe()
	tickers, err := provider.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("load universe (%s): %w", provider.Name(), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source: %s (%d tickers)\n\n", provider.Name(), len(tickers))
	for i := 0; i < len(tickers); i += 10 {
		end := i + 10
		if end > len(tickers) {
			end = len(tickers)
		}
		fmt.Fprintln(out, "  "+strings.Join(tickers[i:end], " "))
	}
	return nil
}
