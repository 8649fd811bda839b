// Package config loads tagwatch configuration from tagwatch.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dwsmith1983/tagwatch/internal/upstream"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// FileName is the configuration file read by Load.
const FileName = "tagwatch.yaml"

// Defaults applied before the file and the environment.
const (
	DefaultInterval    = "1h"
	DefaultAddr        = ":8080"
	DefaultServiceName = "tagwatch"
)

// ErrMissingStore reports that the dynamodb backend has no table bound.
var ErrMissingStore = errors.New("TABLE_NAME is not configured")

// Default returns the configuration used when nothing is set.
func Default() *types.Config {
	return &types.Config{
		Repository: types.DefaultRepository,
		GitHub:     types.GitHubConfig{APIURL: upstream.DefaultAPIURL},
		Webhook:    types.WebhookConfig{Format: types.WebhookFormatJSON},
		Store:      types.StoreConfig{Backend: types.StoreDynamoDB},
		Schedule:   types.ScheduleConfig{Interval: DefaultInterval},
		Server:     types.ServerConfig{Addr: DefaultAddr},
		Telemetry:  types.TelemetryConfig{ServiceName: DefaultServiceName},
		LogLevel:   "info",
	}
}

// Load reads tagwatch.yaml from dir over the defaults. It does not apply the
// environment or validate; callers run ApplyEnv and Validate afterwards.
func Load(dir string) (*types.Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. Unset or empty
// variables leave the current value in place.
func ApplyEnv(cfg *types.Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&cfg.Repository, "UPSTREAM_REPOSITORY")
	set(&cfg.GitHub.APIURL, "GITHUB_API_URL")
	set(&cfg.GitHub.Token, "GITHUB_TOKEN")
	set(&cfg.GitHub.TokenSecretID, "GITHUB_TOKEN_SECRET_ID")
	set(&cfg.Webhook.URL, "DEPLOY_WEBHOOK_URL")
	set(&cfg.Webhook.URLSecretID, "DEPLOY_WEBHOOK_URL_SECRET_ID")
	set(&cfg.Store.DynamoDB.TableName, "TABLE_NAME")
	set(&cfg.Store.DynamoDB.Region, "AWS_REGION")
	set(&cfg.Store.DynamoDB.Endpoint, "DYNAMODB_ENDPOINT")
	set(&cfg.Store.DynamoDB.RetentionTTL, "EVENT_RETENTION_TTL")
	set(&cfg.Schedule.Interval, "CHECK_INTERVAL")
	set(&cfg.Schedule.LeaseTTL, "CHECK_LEASE_TTL")
	set(&cfg.Events.BusName, "EVENT_BUS_NAME")
	set(&cfg.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	set(&cfg.Telemetry.ServiceName, "OTEL_SERVICE_NAME")
	set(&cfg.Server.Addr, "LISTEN_ADDR")
	set(&cfg.LogLevel, "LOG_LEVEL")

	if v := getenv("HTTP_TIMEOUT"); v != "" {
		cfg.GitHub.Timeout = v
		cfg.Webhook.Timeout = v
	}
	if v := getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = types.StoreBackend(strings.ToLower(v))
	}
	if v := getenv("WEBHOOK_FORMAT"); v != "" {
		cfg.Webhook.Format = types.WebhookFormat(strings.ToLower(v))
	}
}

// FromEnv builds a validated configuration from defaults and the process
// environment.
func FromEnv() (*types.Config, error) {
	cfg := Default()
	ApplyEnv(cfg, os.Getenv)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the store binding, enum fields and duration syntax.
func Validate(cfg *types.Config) error {
	switch cfg.Store.Backend {
	case types.StoreDynamoDB:
		if cfg.Store.DynamoDB.TableName == "" {
			return ErrMissingStore
		}
	case types.StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	switch cfg.Webhook.Format {
	case "", types.WebhookFormatJSON, types.WebhookFormatCloudEvents:
	default:
		return fmt.Errorf("unknown webhook format %q", cfg.Webhook.Format)
	}

	if !strings.Contains(cfg.Repository, "/") {
		return fmt.Errorf("repository %q must be owner/name", cfg.Repository)
	}

	for field, v := range map[string]string{
		"github.timeout":              cfg.GitHub.Timeout,
		"webhook.timeout":             cfg.Webhook.Timeout,
		"schedule.interval":           cfg.Schedule.Interval,
		"schedule.leaseTtl":           cfg.Schedule.LeaseTTL,
		"store.dynamodb.retentionTtl": cfg.Store.DynamoDB.RetentionTTL,
	} {
		if _, err := Duration(v, 0); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}

// Duration parses s, returning def when s is empty.
func Duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// LogLevel maps the configured level name to a slog level. Unknown names
// fall back to info.
func LogLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
