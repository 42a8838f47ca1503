package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/precinho/internal/api"
	"github.com/wonny/precinho/internal/api/handlers"
	"github.com/wonny/precinho/internal/screening"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health         - Health check
  GET  /api/ranking    - 최근 실행 결과 재정렬/필터 (sort, sector, tier, min_score, min_discount, limit)
  GET  /api/run        - 최근 실행 메타데이터 + 제외 목록
  POST /api/run        - 스크리닝 즉시 실행
  GET  /               - 생성된 index.html (REPORT_DIR)

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 8080 --warmup`,
	RunE: runServe,
}

var (
	servePort   string
	serveWarmup bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default: PORT)")
	serveCmd.Flags().BoolVar(&serveWarmup, "warmup", false, "run one screening before accepting requests")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Precinho API Server ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, rt, err := bootstrap(ctx, screening.BuildOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	if servePort != "" {
		cfg.Port = servePort
	}

	if serveWarmup {
		if _, err := rt.Service.Run(ctx, screening.RunOptions{}); err != nil {
			log.WithError(err).Warn("Warmup run failed")
		}
	}

	handler := handlers.NewScreeningHandler(rt.Service, log)
	router := api.NewRouter(handler, cfg.ReportDir, log)
	server := api.New(cfg, log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx, 30*time.Second); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
