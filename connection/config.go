package connection

import (
	"fmt"
	"georeport/scheduler"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBDriver        string
	DBDSN           string
	CredentialsFile string
	ProjectID       string
	NoticeTopic     string
	ImportDir       string
	ImportSchedule  string
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
	RefreshRetries  uint64
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: No .env file found or failed to load")
	}

	cfg := Config{
		Port:            getenv("PORT", "8080"),
		DBDriver:        getenv("DB_DRIVER", "mysql"),
		DBDSN:           os.Getenv("DB_DSN"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_1"),
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		NoticeTopic:     getenv("NOTICE_TOPIC", "report-notices"),
		ImportDir:       os.Getenv("IMPORT_DIR"),
		ImportSchedule:  getenv("IMPORT_SCHEDULE", scheduler.DefaultImportSchedule),
		RefreshInterval: scheduler.DefaultRefreshInterval,
		RefreshTimeout:  scheduler.DefaultRefreshTimeout,
	}

	var err error
	if cfg.RefreshInterval, err = durationEnv("REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return cfg, err
	}
	if cfg.RefreshTimeout, err = durationEnv("REFRESH_TIMEOUT", cfg.RefreshTimeout); err != nil {
		return cfg, err
	}
	if v := os.Getenv("REFRESH_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("REFRESH_RETRIES: %w", err)
		}
		cfg.RefreshRetries = n
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
