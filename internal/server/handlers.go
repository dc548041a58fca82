package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"factory-monitor/internal/service"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

// healthzResponse reports liveness of the process.
type healthzResponse struct {
	Status    string `json:"status"`
	Tick      uint64 `json:"tick"`
	Observers int    `json:"observers"`
}

func (s *Server) handleLines(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Lines())
}

func (s *Server) handleLine(w http.ResponseWriter, r *http.Request) {
	line, err := s.monitor.Line(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (s *Server) handleOverall(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Overall())
}

func (s *Server) handleQuality(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Quality())
}

func (s *Server) handleQualitySummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.QualitySummary())
}

// handleAlerts lists active alerts, or every alert ever raised with ?all=true.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	all := false
	if v := r.URL.Query().Get("all"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid value for all: %q", v))
			return
		}
		all = parsed
	}
	writeJSON(w, http.StatusOK, s.monitor.Alerts(all))
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	alert, err := s.monitor.Acknowledge(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	alert, err := s.monitor.Resolve(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Health())
}

func (s *Server) handleLineHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.monitor.HealthFor(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

// handleAnalytics returns the same document observers receive on a tick.
func (s *Server) handleAnalytics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Snapshot())
}

// handleExport renders the current snapshot as a downloadable report.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	writer, err := s.reports.Get(mux.Vars(r)["format"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.monitor.Snapshot()
	name, err := s.reports.Filename(s.cfg.Report.FilenameTemplate, &snap)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render report filename")
		writeError(w, http.StatusInternalServerError, "failed to render report filename")
		return
	}

	var buf bytes.Buffer
	if err := writer.Render(&snap, &buf); err != nil {
		s.logger.Error().Err(err).Str("format", writer.Format()).Msg("failed to render report")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, name, writer.Extension()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write report body")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthzResponse{
		Status:    "ok",
		Tick:      s.monitor.Tick(),
		Observers: s.scheduler.Count(),
	})
}

// writeServiceError maps typed service errors to HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var notFound *service.NotFoundError
	var invalid *service.InvalidTransitionError

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalid):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
