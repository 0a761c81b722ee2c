package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const DefaultFeedURLTemplate = "https://noaa-ghcn-pds.s3.amazonaws.com/csv/by_station/%s.csv"

type Config struct {
	AppEnv      string     `envconfig:"APP_ENV" validate:"oneof=dev prod"`
	LogLevelRaw string     `envconfig:"LOG_LEVEL"`
	LogLevel    slog.Level `ignored:"true"`
	HTTPAddr    string     `envconfig:"HTTP_ADDR" validate:"required"`

	// FeedURLTemplate is formatted with the station id (one %s verb).
	FeedURLTemplate string        `envconfig:"FEED_URL_TEMPLATE" validate:"required,contains=%s"`
	FeedTimeout     time.Duration `envconfig:"FEED_TIMEOUT" default:"2m" validate:"gt=0"`
	FeedMaxRetries  int           `envconfig:"FEED_MAX_RETRIES" default:"2" validate:"gte=0,lte=10"`
	FeedRetryWait   time.Duration `envconfig:"FEED_RETRY_WAIT" default:"1s" validate:"gt=0"`

	// ArchivePath is the sqlite file that receives a snapshot of every derived table.
	// Empty disables the archive.
	ArchivePath     string        `envconfig:"ARCHIVE_PATH"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"1" validate:"gte=0"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"1" validate:"gte=0"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"0s" validate:"gte=0"`
}

// ArchiveEnabled reports whether derived tables should be written to sqlite.
func (c Config) ArchiveEnabled() bool {
	return c.ArchivePath != ""
}

func LoadFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	cfg.AppEnv = orDefault(cfg.AppEnv, "dev")
	cfg.LogLevelRaw = orDefault(cfg.LogLevelRaw, "info")
	cfg.HTTPAddr = orDefault(cfg.HTTPAddr, ":8080")
	cfg.FeedURLTemplate = orDefault(cfg.FeedURLTemplate, DefaultFeedURLTemplate)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, describe(err)
	}

	level, err := parseLogLevel(cfg.LogLevelRaw)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	cfg.ArchivePath = strings.TrimSpace(cfg.ArchivePath)
	if cfg.ArchivePath != "" && !strings.HasPrefix(cfg.ArchivePath, "file:") {
		abs, err := filepath.Abs(cfg.ArchivePath)
		if err != nil {
			return Config{}, fmt.Errorf("ARCHIVE_PATH %q: %w", cfg.ArchivePath, err)
		}
		cfg.ArchivePath = abs
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

// describe turns validator output into the env var names operators actually set.
func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "AppEnv":
		return fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", fe.Value())
	case "FeedURLTemplate":
		return fmt.Errorf("invalid FEED_URL_TEMPLATE %q (must contain %%s)", fe.Value())
	case "FeedMaxRetries":
		return fmt.Errorf("invalid FEED_MAX_RETRIES %v (allowed: 0-10)", fe.Value())
	default:
		return fmt.Errorf("invalid %s %v (%s)", fe.Field(), fe.Value(), fe.Tag())
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
