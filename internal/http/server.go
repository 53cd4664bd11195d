package http

import (
	"cmp"
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/arsennaibaho/Tugas-IMK/internal/http/handler"
)

// Default configuration values for the HTTP server.
const (
	DefaultPort              = "8080"
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 2 * time.Minute
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 64 << 10
	DefaultMaxBodyBytes      = 64 << 10 // task bodies are small
)

// ServerConfig configures the listener and router. An empty Host binds all interfaces.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
}

// withDefaults fills unset or non-positive fields.
func (cfg ServerConfig) withDefaults() ServerConfig {
	cfg.Port = cmp.Or(cfg.Port, DefaultPort)
	cfg.ReadTimeout = positiveOr(cfg.ReadTimeout, DefaultReadTimeout)
	cfg.WriteTimeout = positiveOr(cfg.WriteTimeout, DefaultWriteTimeout)
	cfg.IdleTimeout = positiveOr(cfg.IdleTimeout, DefaultIdleTimeout)
	cfg.ReadHeaderTimeout = positiveOr(cfg.ReadHeaderTimeout, DefaultReadHeaderTimeout)
	cfg.MaxHeaderBytes = positiveOr(cfg.MaxHeaderBytes, DefaultMaxHeaderBytes)
	cfg.MaxBodyBytes = positiveOr(cfg.MaxBodyBytes, DefaultMaxBodyBytes)
	return cfg
}

func positiveOr[T int | int64 | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

// APIServer serves the planner API over HTTP.
type APIServer struct {
	server *http.Server
	config ServerConfig
}

// NewAPIServer builds the traced router and the net/http server around it.
func NewAPIServer(h *handler.Server, cfg ServerConfig) *APIServer {
	cfg = cfg.withDefaults()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           instrument(NewRouter(h, cfg.MaxBodyBytes)),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	return &APIServer{server: srv, config: cfg}
}

// Config returns the effective configuration after defaults.
func (s *APIServer) Config() ServerConfig {
	return s.config
}

// Addr returns the listen address.
func (s *APIServer) Addr() string {
	return s.server.Addr
}

// Start listens and serves until Shutdown, then returns http.ErrServerClosed.
func (s *APIServer) Start() error {
	slog.Info("HTTP server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "HTTP server draining")
	return s.server.Shutdown(ctx)
}

// Handler returns the instrumented router.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
