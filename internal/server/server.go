// Package server hosts the activity API the gateway client talks to.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/activities/internal/auth"
	"github.com/julianstephens/activities/internal/logger"
	"github.com/julianstephens/activities/internal/storage"
)

// Config contains tunables for the HTTP server.
type Config struct {
	Address      string
	Prefix       string // route prefix, "/api" by default
	Auth         auth.Config
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Server struct {
	cfg     Config
	http    *http.Server
	metrics *Metrics
	log     *log.Logger
}

// New builds the server and its routes. It does not start listening.
func New(cfg Config, p storage.Provider) *Server {
	if cfg.Prefix == "" {
		cfg.Prefix = "/api"
	}
	cfg.Prefix = "/" + strings.Trim(cfg.Prefix, "/")
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	s := &Server{
		cfg:     cfg,
		metrics: NewMetrics(),
		log:     logger.Component("server"),
	}

	mux := http.NewServeMux()
	NewHandler(p, s.log).RegisterRoutes(mux, cfg.Prefix, s.metrics)
	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /metrics", s.metrics.Handler())

	skip := func(r *http.Request) bool {
		return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
	}
	handler := auth.Middleware(cfg.Auth, skip)(mux)

	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.logRequests(handler),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Address, "prefix", s.cfg.Prefix, "auth", s.cfg.Auth.Enabled())
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
