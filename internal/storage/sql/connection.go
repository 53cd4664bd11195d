// Package sql opens SQL-backed task repositories and applies the embedded
// schema migrations.
package sql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/arsennaibaho/Tugas-IMK/internal/storage/sql/repository"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DBConfig holds database connection configuration.
type DBConfig struct {
	Dialect         repository.Dialect // sqlite or postgres
	DSN             string             // file path for SQLite, connection string for PostgreSQL
	MaxOpenConns    int                // Maximum open connections (default: 25, SQLite: 1)
	MaxIdleConns    int                // Maximum idle connections (default: 5)
	ConnMaxLifetime time.Duration      // Connection max lifetime (default: 5min)
	ConnMaxIdleTime time.Duration      // Connection max idle time (default: 1min)
	Logger          *slog.Logger       // Reports skipped rows (default: slog.Default)
}

func driverName(d repository.Dialect) (string, error) {
	switch d {
	case repository.DialectSQLite:
		return "sqlite", nil
	case repository.DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", d)
	}
}

// NewStore opens the database, runs migrations and returns the repository.
func NewStore(ctx context.Context, cfg DBConfig) (*repository.Store, error) {
	driver, err := driverName(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 25
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	if cfg.Dialect == repository.DialectSQLite {
		maxOpenConns = 1
	}
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 1 * time.Minute
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, cfg.Dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repository.NewStore(db, cfg.Dialect, cfg.Logger), nil
}

// runMigrations applies the embedded goose migrations.
func runMigrations(db *sql.DB, dialect repository.Dialect) error {
	gooseDialect := "postgres"
	if dialect == repository.DialectSQLite {
		gooseDialect = "sqlite3"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// NewSQLiteStore opens a SQLite store at path with default settings.
func NewSQLiteStore(ctx context.Context, path string) (*repository.Store, error) {
	return NewStore(ctx, DBConfig{Dialect: repository.DialectSQLite, DSN: path})
}

// NewPostgresStore creates a PostgreSQL store with default connection pool settings.
func NewPostgresStore(ctx context.Context, connString string) (*repository.Store, error) {
	return NewStore(ctx, DBConfig{Dialect: repository.DialectPostgres, DSN: connString})
}
