package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfig_Defaults(t *testing.T) {
	cfg := ServerConfig{ReadTimeout: -time.Second, MaxBodyBytes: 2048}.withDefaults()

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
	assert.Equal(t, DefaultMaxHeaderBytes, cfg.MaxHeaderBytes)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
}

func TestNewAPIServer(t *testing.T) {
	srv := NewAPIServer(newTestServer(t), ServerConfig{Host: "127.0.0.1", Port: "9999"})
	assert.Equal(t, "127.0.0.1:9999", srv.server.Addr)
	assert.Equal(t, DefaultIdleTimeout, srv.Config().IdleTimeout)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
