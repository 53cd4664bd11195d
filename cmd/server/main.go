package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arsennaibaho/Tugas-IMK/internal/application/planner"
	"github.com/arsennaibaho/Tugas-IMK/internal/config"
	httpserver "github.com/arsennaibaho/Tugas-IMK/internal/http"
	"github.com/arsennaibaho/Tugas-IMK/internal/http/handler"
	"github.com/arsennaibaho/Tugas-IMK/internal/infrastructure/observability"
	"github.com/arsennaibaho/Tugas-IMK/internal/storage"
	"github.com/arsennaibaho/Tugas-IMK/internal/worker"
)

func main() {
	if err := run(); err != nil {
		// slog might not be initialized if config fails
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Root context for all normal operations; cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	defer func() {
		// Bounded so an unreachable collector cannot hang exit.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown observability providers", "error", err)
		}
	}()
	slog.SetDefault(providers.Logger)
	logger := providers.Logger

	logger.InfoContext(ctx, "starting planner service", "env", cfg.Env)

	backend, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer backend.Close()

	logger.InfoContext(ctx, "storage initialized",
		"backend", cfg.Storage.Backend, "location", storageLocation(cfg.Storage))

	svc := planner.NewService(backend, planner.Config{Logger: logger})

	if cfg.Notifier.Enabled {
		if err := startNotifier(ctx, cfg.Notifier, backend, svc, logger); err != nil {
			return err
		}
	}

	server := httpserver.NewAPIServer(handler.NewServer(svc), httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")

		// Fresh context: the main one is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(shutdownCtx, "failed to shutdown HTTP server", "error", err)
		}
		return nil
	case err := <-errResult:
		return err
	}
}

// startNotifier runs the dashboard notifier in the background.
// On the fs backend it also refreshes whenever task files change on disk.
func startNotifier(ctx context.Context, cfg config.NotifierConfig, backend *storage.Backend, svc *planner.Service, logger *slog.Logger) error {
	opts := []worker.Option{
		worker.WithInterval(cfg.Interval),
		worker.WithOperationTimeout(cfg.OperationTimeout),
		worker.WithSink(worker.LogSink{Logger: logger}),
	}

	if backend.Changes != nil {
		changes, err := backend.Changes(ctx)
		if err != nil {
			return fmt.Errorf("failed to watch storage: %w", err)
		}
		opts = append(opts, worker.WithChanges(changes))
	}

	notifier := worker.New(svc, opts...)
	go func() {
		if err := notifier.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "notifier stopped", "error", err)
		}
	}()

	logger.InfoContext(ctx, "dashboard notifier started", "interval", cfg.Interval)
	return nil
}

// storageLocation describes where tasks live, with secrets masked.
func storageLocation(cfg config.StorageConfig) string {
	switch cfg.Backend {
	case config.BackendFS:
		return cfg.FSDir
	case config.BackendGCS:
		return "gs://" + cfg.GCSBucket + "/" + cfg.GCSPrefix
	case config.BackendPostgres:
		return maskPassword(cfg.DSN)
	default:
		return cfg.DSN
	}
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
