package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata" // SCHEDULER_TZ on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (run archive, optional)
	Database DatabaseConfig

	// Redis (ingestion cache, optional)
	Redis RedisConfig

	// Fundamentals provider
	Yahoo YahooConfig

	// Universe source
	Universe UniverseConfig

	// Screening
	StrategyFile string // YAML strategy file, empty = built-in defaults
	ReportDir    string // output folder for CSV/JSON/HTML artifacts
	Workers      int    // parallel map width for per-record stages

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// Location returns the scheduler time zone (validated by Load)
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL     string
	Enabled bool

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// YahooConfig holds Yahoo Finance ingestion settings
type YahooConfig struct {
	SymbolSuffix    string        // ".SA" for B3 listings
	RequestInterval time.Duration // minimum spacing between requests
	MaxRetries      int
	RetryDelay      time.Duration
}

// SchedulerConfig holds cron expressions (with seconds) and retention
type SchedulerConfig struct {
	Timezone          string
	ScreeningSchedule string
	UniverseSchedule  string
	CleanupSchedule   string
	RetentionDays     int
}

// UniverseConfig selects where tickers come from
type UniverseConfig struct {
	Source       string // static | wikipedia
	WikipediaURL string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Enabled:         getEnvAsBool("ARCHIVE_ENABLED", false),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", "6h"),
		},

		Yahoo: YahooConfig{
			SymbolSuffix:    getEnv("YAHOO_SYMBOL_SUFFIX", ".SA"),
			RequestInterval: getEnvAsDuration("YAHOO_REQUEST_INTERVAL", "400ms"),
			MaxRetries:      getEnvAsInt("YAHOO_MAX_RETRIES", 2),
			RetryDelay:      getEnvAsDuration("YAHOO_RETRY_DELAY", "1s"),
		},

		Universe: UniverseConfig{
			Source:       getEnv("UNIVERSE_SOURCE", "static"),
			WikipediaURL: getEnv("UNIVERSE_WIKIPEDIA_URL", "https://pt.wikipedia.org/wiki/Lista_de_companhias_citadas_no_Ibovespa"),
		},

		StrategyFile: getEnv("STRATEGY_FILE", ""),
		ReportDir:    getEnv("REPORT_DIR", "docs"),
		Workers:      getEnvAsInt("WORKERS", 4),

		Scheduler: SchedulerConfig{
			Timezone:          getEnv("SCHEDULER_TZ", "America/Sao_Paulo"),
			ScreeningSchedule: getEnv("SCREENING_SCHEDULE", "0 30 18 * * 1-5"),
			UniverseSchedule:  getEnv("UNIVERSE_SCHEDULE", "0 0 8 * * 1"),
			CleanupSchedule:   getEnv("CLEANUP_SCHEDULE", "0 0 3 * * *"),
			RetentionDays:     getEnvAsInt("REPORT_RETENTION_DAYS", 30),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Archive needs a database
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when ARCHIVE_ENABLED=true")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Universe.Source != "static" && c.Universe.Source != "wikipedia" {
		return fmt.Errorf("UNIVERSE_SOURCE must be one of: static, wikipedia")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TZ is invalid: %w", err)
	}

	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
