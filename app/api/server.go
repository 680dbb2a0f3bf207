// Package api exposes the pair pool over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paw-chain/pairpool/app"
	"github.com/paw-chain/pairpool/app/health"
)

// Config configures the API server.
type Config struct {
	ListenAddr     string
	EnableCORS     bool
	AllowedOrigins []string

	// MaxFaucetAmount caps a single faucet request. Nil or zero is unlimited.
	MaxFaucetAmount math.Int

	// AccessLog receives Apache combined log lines when set.
	AccessLog io.Writer
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:     "127.0.0.1:8080",
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
	}
}

// Server is the pool's HTTP API server.
type Server struct {
	logger     log.Logger
	httpServer *http.Server
}

// NewServer builds the API for a. checker adds the /health routes when set.
func NewServer(logger log.Logger, a *app.App, checker *health.Checker, cfg Config) *Server {
	router := mux.NewRouter()
	handler := NewHandler(logger, a, cfg.MaxFaucetAmount)

	handler.RegisterRoutes(router)
	if checker != nil {
		checker.RegisterRoutes(router)
	}

	var httpHandler http.Handler = router
	if cfg.EnableCORS {
		origins := cfg.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		httpHandler = handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		)(httpHandler)
	}
	httpHandler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(httpHandler)
	if cfg.AccessLog != nil {
		httpHandler = handlers.CombinedLoggingHandler(cfg.AccessLog, httpHandler)
	}

	return &Server{
		logger:     logger.With("module", "api"),
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      httpHandler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler returns the server's root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	return runHTTPServer(ctx, s.logger, s.httpServer)
}

// NewMetricsServer serves only the Prometheus registry on addr.
func NewMetricsServer(addr string) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// RunMetricsServer serves srv until ctx is cancelled.
func RunMetricsServer(ctx context.Context, logger log.Logger, srv *http.Server) error {
	return runHTTPServer(ctx, logger.With("module", "metrics"), srv)
}

func runHTTPServer(ctx context.Context, logger log.Logger, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s: %w", srv.Addr, err)
	}
	logger.Info("stopped", "addr", srv.Addr)
	return nil
}
