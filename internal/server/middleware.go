package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// recoveryLogger routes panics caught by handlers.RecoveryHandler to zerolog.
type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Str("panic", fmt.Sprint(v...)).Msg("handler panicked")
}

// middleware returns the chain applied to every route, outermost first.
// Recovery sits innermost so the access log sees the 500 it writes.
func (s *Server) middleware() []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		hlog.NewHandler(s.logger),
		hlog.RemoteAddrHandler("remote"),
		hlog.AccessHandler(logAccess),
		handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger: s.logger})),
	}
}

// withMiddleware wraps h in the middleware chain.
func (s *Server) withMiddleware(h http.Handler) http.Handler {
	chain := s.middleware()
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func logAccess(r *http.Request, status, size int, duration time.Duration) {
	// hijacked websocket upgrades never call WriteHeader
	if status == 0 {
		status = http.StatusSwitchingProtocols
	}

	logger := hlog.FromRequest(r)
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Warn()
	}
	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("bytes", size).
		Dur("duration", duration).
		Msg("request handled")
}
