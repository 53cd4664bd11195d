// Package config defines the environment configuration of the planner binaries.
package config

import (
	"fmt"
	"time"

	"github.com/arsennaibaho/Tugas-IMK/internal/env"
)

// Storage backends.
const (
	BackendFS       = "fs"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendGCS      = "gcs"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Env             string `env:"PLANNER_ENV" default:"dev"` // dev, prod
	Storage         StorageConfig
	HTTP            HTTPConfig
	Notifier        NotifierConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"PLANNER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// CLIConfig holds configuration for the command-line client.
type CLIConfig struct {
	Storage StorageConfig
}

// StorageConfig selects and configures the task repository.
type StorageConfig struct {
	Backend string `env:"PLANNER_STORAGE_BACKEND" default:"fs"`

	FSDir         string        `env:"PLANNER_FS_DIR" default:"./planner-data"`
	WatchDebounce time.Duration `env:"PLANNER_FS_WATCH_DEBOUNCE" default:"200ms"`

	// DSN is the SQLite file path or the PostgreSQL connection string.
	DSN string `env:"PLANNER_DB_DSN"`

	// Connection pool settings (zero = use storage defaults)
	MaxOpenConns    int           `env:"PLANNER_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `env:"PLANNER_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `env:"PLANNER_DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `env:"PLANNER_DB_CONN_MAX_IDLE_TIME"`

	GCSBucket string `env:"PLANNER_GCS_BUCKET"`
	GCSPrefix string `env:"PLANNER_GCS_PREFIX" default:"tasks/"`
}

// Validate checks that the selected backend has what it needs.
func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case BackendFS:
		if c.FSDir == "" {
			return fmt.Errorf("PLANNER_FS_DIR is required when PLANNER_STORAGE_BACKEND is '%s'", BackendFS)
		}
	case BackendSQLite:
		if c.DSN == "" {
			c.DSN = "./planner.db"
		}
	case BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("PLANNER_DB_DSN is required when PLANNER_STORAGE_BACKEND is '%s'", BackendPostgres)
		}
	case BackendGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("PLANNER_GCS_BUCKET is required when PLANNER_STORAGE_BACKEND is '%s'", BackendGCS)
		}
	default:
		return fmt.Errorf("unknown PLANNER_STORAGE_BACKEND: %s", c.Backend)
	}
	return nil
}

// HTTPConfig holds HTTP server configuration. Zero values use the server defaults.
type HTTPConfig struct {
	Host              string        `env:"PLANNER_HTTP_HOST"`
	Port              string        `env:"PLANNER_HTTP_PORT" default:"8080"`
	ReadTimeout       time.Duration `env:"PLANNER_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"PLANNER_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"PLANNER_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"PLANNER_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"PLANNER_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"PLANNER_HTTP_MAX_BODY_BYTES"`
}

// NotifierConfig holds the dashboard notifier configuration.
type NotifierConfig struct {
	Enabled          bool          `env:"PLANNER_NOTIFIER_ENABLED" default:"true"`
	Interval         time.Duration `env:"PLANNER_NOTIFIER_INTERVAL" default:"15m"`
	OperationTimeout time.Duration `env:"PLANNER_NOTIFIER_OPERATION_TIMEOUT" default:"30s"`
}

// Validate checks the notifier timings.
func (c *NotifierConfig) Validate() error {
	if c.Enabled && c.Interval <= 0 {
		return fmt.Errorf("PLANNER_NOTIFIER_INTERVAL must be positive, got %s", c.Interval)
	}
	return nil
}

// ObservabilityConfig holds observability configuration.
// Exporter endpoints and headers come from the standard OTEL_* variables.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"PLANNER_OTEL_ENABLED" default:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"planner"`
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}

// LoadCLIConfig loads and validates client configuration from environment.
func LoadCLIConfig() (*CLIConfig, error) {
	cfg := &CLIConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load cli config: %w", err)
	}

	return cfg, nil
}
