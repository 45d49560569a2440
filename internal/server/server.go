// Package server exposes the status projection of the resolved secret configuration
// over HTTP, next to the Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/systmms/secretcfg/internal/metrics"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// Config holds configuration for the status HTTP server.
type Config struct {
	// Addr is the address to listen on.
	Addr string

	// MetricsPath is the path to serve metrics on.
	MetricsPath string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown after the context is cancelled.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":9090",
		MetricsPath:     "/metrics",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// StatusFunc returns the current status summary.
type StatusFunc func() secretconfig.StatusSummary

// Server serves /health, /status and the metrics path.
type Server struct {
	config Config
	status StatusFunc
	log    *zap.Logger
	server *http.Server
	addr   chan string
}

// New creates a server. A nil logger disables request error logging.
func New(config Config, status StatusFunc, log *zap.Logger) *Server {
	if config.MetricsPath == "" {
		config.MetricsPath = DefaultConfig().MetricsPath
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		config: config,
		status: status,
		log:    log,
		addr:   make(chan string, 1),
	}
}

// Handler returns the HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	metrics.InitMetrics()

	mux := http.NewServeMux()
	mux.Handle(s.config.MetricsPath, promhttp.Handler())
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	summary := s.status()
	code := http.StatusOK
	if !summary.Healthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, summary.Endpoint())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	summary := s.status()
	code := http.StatusOK
	if !summary.Healthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, summary)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("failed to write status response", zap.Error(err))
	}
}

// Run listens on the configured address and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.addr <- ln.Addr().String()
	s.log.Info("status server listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("status server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr blocks until Run is listening and returns the bound address.
func (s *Server) Addr(ctx context.Context) (string, error) {
	select {
	case addr := <-s.addr:
		s.addr <- addr
		return addr, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
