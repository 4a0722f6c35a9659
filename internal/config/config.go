package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Storage
		Catalog
		Cleanup
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Storage struct {
		TextsDir  string // canonical section text, one file per book
		CoversDir string
		TempDir   string // in-flight downloads, swept by the cleanup job
	}
	Catalog struct {
		BaseURL        string
		RequestTimeout time.Duration
		FetchRetries   int           // retries for transient download failures
		RetryDelay     time.Duration // base backoff between retries
	}
	Cleanup struct {
		Schedule         string // cron format
		TempMaxAge       time.Duration
		HistoryRetention time.Duration
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("texts_dir", "./data/texts")
	v.SetDefault("covers_dir", "./data/covers")
	v.SetDefault("temp_dir", "./data/tmp")
	v.SetDefault("catalog_base_url", DefaultCatalogBaseURL)
	v.SetDefault("catalog_request_timeout", "20s")
	v.SetDefault("catalog_fetch_retries", 2)
	v.SetDefault("catalog_retry_delay", "2s")
	v.SetDefault("cleanup_schedule", "0 * * * *") // hourly at :00
	v.SetDefault("cleanup_temp_max_age", "1h")
	v.SetDefault("cleanup_history_retention", "720h") // 30 days

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			TextsDir:  v.GetString("TEXTS_DIR"),
			CoversDir: v.GetString("COVERS_DIR"),
			TempDir:   v.GetString("TEMP_DIR"),
		},
		Catalog: Catalog{
			BaseURL:        v.GetString("CATALOG_BASE_URL"),
			RequestTimeout: v.GetDuration("CATALOG_REQUEST_TIMEOUT"),
			FetchRetries:   v.GetInt("CATALOG_FETCH_RETRIES"),
			RetryDelay:     v.GetDuration("CATALOG_RETRY_DELAY"),
		},
		Cleanup: Cleanup{
			Schedule:         v.GetString("CLEANUP_SCHEDULE"),
			TempMaxAge:       v.GetDuration("CLEANUP_TEMP_MAX_AGE"),
			HistoryRetention: v.GetDuration("CLEANUP_HISTORY_RETENTION"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
