package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/precinho/internal/archive"
	"github.com/wonny/precinho/pkg/database"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "실행 결과 아카이브(PostgreSQL) 관리",
	Long: `DATABASE_URL의 아카이브 DB를 점검하거나 스키마를 적용합니다.

Example:
  go run ./cmd/screener archive check
  go run ./cmd/screener archive migrate`,
}

var (
	archiveCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "연결 테스트 + 풀 통계",
		RunE:  runArchiveCheck,
	}

	archiveMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "screening 스키마 적용",
		RunE:  runArchiveMigrate,
	}
)

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveCheckCmd)
	archiveCmd.AddCommand(archiveMigrateCmd)
}

func openArchiveDB() (*database.DB, error) {
	cfg, _, err := loadEnv()
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	fmt.Printf("Database URL: %s\n", maskPassword(cfg.Database.URL))
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	return db, nil
}

func runArchiveCheck(cmd *cobra.Command, args []string) error {
	db, err := openArchiveDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n\n", status.ResponseTime)

	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Printf("   Idle Connections: %d\n", status.Stats.IdleConns)
	fmt.Printf("   Acquire Count: %d\n", status.Stats.AcquireCount)
	return nil
}

func runArchiveMigrate(cmd *cobra.Command, args []string) error {
	db, err := openArchiveDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := archive.NewRepository(db.Pool, nil).EnsureSchema(ctx); err != nil {
		return fmt.Errorf("❌ Migration failed: %w", err)
	}

	fmt.Println("✅ screening schema is up to date")
	return nil
}

// maskPassword hides the password in a postgres URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
