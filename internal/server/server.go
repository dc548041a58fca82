// Package server exposes the monitor over HTTP and pushes snapshots to
// websocket observers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"factory-monitor/internal/config"
	"factory-monitor/internal/report"
	"factory-monitor/internal/service"
)

// Server serves the REST API and the /ws observer endpoint.
type Server struct {
	cfg       *config.Config
	monitor   *service.Monitor
	scheduler *service.Scheduler
	reports   *report.Registry
	limiter   *rate.Limiter // nil when upgrades are not limited
	upgrader  websocket.Upgrader
	httpSrv   *http.Server
	logger    zerolog.Logger
}

// New creates a server. It does not start listening until Run is called.
func New(cfg *config.Config, monitor *service.Monitor, scheduler *service.Scheduler, reports *report.Registry, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		monitor:   monitor,
		scheduler: scheduler,
		reports:   reports,
		logger:    logger.With().Str("component", "server").Logger(),
	}

	if cfg.Broadcast.ConnectRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Broadcast.ConnectRate), cfg.Broadcast.ConnectBurst)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.Server.AllowedOrigins),
	}

	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// Handler returns the router with middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.middleware()...)

	r.HandleFunc("/api/production-lines", s.handleLines).Methods(http.MethodGet)
	r.HandleFunc("/api/production-lines/{id}", s.handleLine).Methods(http.MethodGet)
	r.HandleFunc("/api/overall-metrics", s.handleOverall).Methods(http.MethodGet)
	r.HandleFunc("/api/quality-metrics", s.handleQuality).Methods(http.MethodGet)
	r.HandleFunc("/api/quality-summary", s.handleQualitySummary).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts", s.handleAlerts).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts/{id}/acknowledge", s.handleAcknowledge).Methods(http.MethodPost)
	r.HandleFunc("/api/alerts/{id}/resolve", s.handleResolve).Methods(http.MethodPost)
	r.HandleFunc("/api/machine-health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/machine-health/{id}", s.handleLineHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/analytics", s.handleAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/api/export/{format}", s.handleExport).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	// Routes stay on the root router: mux answers a method mismatch inside a
	// subrouter with 404. Router middleware does not wrap these two handlers.
	r.NotFoundHandler = s.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	}))
	r.MethodNotAllowedHandler = s.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))

	return r
}

// Run listens until ctx is cancelled, then shuts down gracefully.
// Hijacked websocket connections are not tracked by http.Server; the
// scheduler closes them when its own Run returns.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Server.Addr).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info().Msg("shutting down http server")
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

// originChecker allows requests without an Origin header (non-browser
// clients) and, when allowed is not empty, browsers from listed origins only.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
