// Package storage opens the task repository selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arsennaibaho/Tugas-IMK/internal/application/planner"
	"github.com/arsennaibaho/Tugas-IMK/internal/config"
	"github.com/arsennaibaho/Tugas-IMK/internal/storage/fs"
	"github.com/arsennaibaho/Tugas-IMK/internal/storage/gcs"
	sqlstorage "github.com/arsennaibaho/Tugas-IMK/internal/storage/sql"
	"github.com/arsennaibaho/Tugas-IMK/internal/storage/sql/repository"
)

// Backend is an opened repository.
type Backend struct {
	planner.Repository

	// Changes, when non-nil, starts a watch that signals external edits.
	Changes func(ctx context.Context) (<-chan struct{}, error)

	close func() error
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open opens the repository for cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendFS:
		store, err := fs.NewStore(cfg.FSDir, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Repository: store,
			Changes: func(ctx context.Context) (<-chan struct{}, error) {
				return store.Watch(ctx, cfg.WatchDebounce)
			},
		}, nil

	case config.BackendSQLite, config.BackendPostgres:
		dialect := repository.DialectSQLite
		if cfg.Backend == config.BackendPostgres {
			dialect = repository.DialectPostgres
		}
		store, err := sqlstorage.NewStore(ctx, sqlstorage.DBConfig{
			Dialect:         dialect,
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
			Logger:          logger,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{Repository: store, close: store.Close}, nil

	case config.BackendGCS:
		store, err := gcs.NewStore(ctx, cfg.GCSBucket, cfg.GCSPrefix, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Repository: store, close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
