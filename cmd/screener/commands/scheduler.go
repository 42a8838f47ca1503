package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/precinho/internal/scheduler"
	"github.com/wonny/precinho/internal/scheduler/jobs"
	"github.com/wonny/precinho/internal/screening"
	"github.com/wonny/precinho/pkg/config"
	"github.com/wonny/precinho/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler list
  go run ./cmd/screener scheduler run screening`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업 (SCHEDULER_TZ, 기본 America/Sao_Paulo):
- screening: 평일 18:30 (B3 장 마감 후, SCREENING_SCHEDULE)
- universe_refresh: 월요일 08:00 (UNIVERSE_SCHEDULE)
- report_cleanup: 매일 03:00 (CLEANUP_SCHEDULE, REPORT_RETENTION_DAYS)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers every job against one runtime
func newScheduler(cfg *config.Config, rt *screening.Runtime, log *logger.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(log, cfg.Location())

	jobList := []scheduler.Job{
		jobs.NewScreeningJob(rt.Service, cfg.Scheduler.ScreeningSchedule, log),
		jobs.NewUniverseJob(rt.Universe(), cfg.Scheduler.UniverseSchedule, 10, log),
		jobs.NewReportCleanupJob(cfg.ReportDir, cfg.Scheduler.RetentionDays, cfg.Scheduler.CleanupSchedule, log),
	}
	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Precinho Scheduler ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, rt, err := bootstrap(ctx, screening.BuildOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	sched, err := newScheduler(cfg, rt, log)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Printf("  - %-18s next: %s\n", jobName, next.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}

	fmt.Printf("Time zone: %s\n\n", cfg.Location())
	fmt.Printf("%-18s %s\n", "JOB", "SCHEDULE")
	for _, row := range [][2]string{
		{"screening", cfg.Scheduler.ScreeningSchedule},
		{"universe_refresh", cfg.Scheduler.UniverseSchedule},
		{"report_cleanup", cfg.Scheduler.CleanupSchedule},
	} {
		fmt.Printf("%-18s %s\n", row[0], row[1])
	}

	log.Debug("Listed scheduler jobs")
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, rt, err := bootstrap(ctx, screening.BuildOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	sched, err := newScheduler(cfg, rt, log)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunJobNow(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s completed in %.2fs (%d attempt(s))\n", result.JobName, result.Duration.Seconds(), result.Attempts)
	return nil
}
