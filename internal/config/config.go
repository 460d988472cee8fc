package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ModeCLI      = "cli"
	ModeTelegram = "telegram"
)

// Config keeps runtime settings for the application.
type Config struct {
	StorageDriver  string
	DatabaseURL    string
	Mode           string
	TelegramToken  string
	ReportInterval time.Duration
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is honored if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite)),
		DatabaseURL:    getEnv("DATABASE_URL", "task_manager.db"),
		Mode:           strings.ToLower(getEnv("MODE", ModeCLI)),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		ReportInterval: parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
	}

	switch cfg.StorageDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return cfg, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	switch cfg.Mode {
	case ModeCLI:
	case ModeTelegram:
		if cfg.TelegramToken == "" {
			return cfg, fmt.Errorf("TELEGRAM_TOKEN is required in telegram mode")
		}
	default:
		return cfg, fmt.Errorf("unknown MODE %q", cfg.Mode)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
