package service

import (
	"time"

	"github.com/rs/zerolog"

	"factory-monitor/internal/model"
)

// AlertStore owns the lifecycle of alerts: open, acknowledged, resolved.
// Alerts are never deleted; resolved alerts drop out of the active view but
// stay in the audit trail. Like SourceRegistry it relies on the Monitor lock.
type AlertStore struct {
	alerts []*model.Alert
	index  map[string]*model.Alert
	seq    uint64
	now    func() time.Time
	logger zerolog.Logger
}

// NewAlertStore creates an empty alert store.
func NewAlertStore(logger zerolog.Logger) *AlertStore {
	return &AlertStore{
		index:  make(map[string]*model.Alert),
		now:    time.Now,
		logger: logger.With().Str("component", "alert_store").Logger(),
	}
}

// Create stores a new open alert and assigns the next id.
// The timestamp is kept if already set.
func (s *AlertStore) Create(a model.Alert) model.Alert {
	s.seq++
	a.ID = model.FormatAlertID(s.seq)
	a.Status = model.AlertStateOpen
	a.AcknowledgedAt = nil
	a.ResolvedAt = nil
	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}

	stored := a
	s.alerts = append(s.alerts, &stored)
	s.index[a.ID] = &stored

	s.logger.Info().
		Str("alert_id", a.ID).
		Str("line_id", a.LineID).
		Str("metric", a.Metric).
		Str("severity", string(a.Severity)).
		Msg("alert created")

	return a
}

// Acknowledge moves an open alert to acknowledged. Acknowledging an already
// acknowledged alert succeeds without changing it.
func (s *AlertStore) Acknowledge(id string) (model.Alert, error) {
	a, ok := s.index[id]
	if !ok {
		return model.Alert{}, &NotFoundError{Kind: "alert", ID: id}
	}

	switch a.Status {
	case model.AlertStateResolved:
		return *a, &InvalidTransitionError{ID: id, From: a.Status, To: model.AlertStateAcknowledged}
	case model.AlertStateAcknowledged:
		return *a, nil
	}

	at := s.now()
	a.Status = model.AlertStateAcknowledged
	a.AcknowledgedAt = &at

	s.logger.Info().Str("alert_id", id).Msg("alert acknowledged")
	return *a, nil
}

// Resolve moves an open or acknowledged alert to resolved.
func (s *AlertStore) Resolve(id string) (model.Alert, error) {
	a, ok := s.index[id]
	if !ok {
		return model.Alert{}, &NotFoundError{Kind: "alert", ID: id}
	}
	if a.Status == model.AlertStateResolved {
		return *a, &InvalidTransitionError{ID: id, From: a.Status, To: model.AlertStateResolved}
	}

	at := s.now()
	a.Status = model.AlertStateResolved
	a.ResolvedAt = &at

	s.logger.Info().Str("alert_id", id).Msg("alert resolved")
	return *a, nil
}

// Get returns a copy of an alert by id.
func (s *AlertStore) Get(id string) (model.Alert, bool) {
	a, ok := s.index[id]
	if !ok {
		return model.Alert{}, false
	}
	return *a, true
}

// Active returns unresolved alerts, newest first.
func (s *AlertStore) Active() []model.Alert {
	out := make([]model.Alert, 0)
	for i := len(s.alerts) - 1; i >= 0; i-- {
		if s.alerts[i].IsActive() {
			out = append(out, *s.alerts[i])
		}
	}
	return out
}

// All returns every alert ever created, oldest first.
func (s *AlertStore) All() []model.Alert {
	out := make([]model.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, *a)
	}
	return out
}

// CountsBySeverity counts active alerts by severity.
func (s *AlertStore) CountsBySeverity() model.AlertCounts {
	var counts model.AlertCounts
	for _, a := range s.alerts {
		if !a.IsActive() {
			continue
		}
		switch {
		case a.IsCritical():
			counts.Critical++
		case a.IsWarning():
			counts.Warning++
		}
	}
	return counts
}
