package service

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-monitor/internal/model"
)

func newTestAlertStore() *AlertStore {
	s := NewAlertStore(zerolog.Nop())
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }
	return s
}

func TestAlertStore_CreateAssignsMonotonicIDs(t *testing.T) {
	s := newTestAlertStore()

	a1 := s.Create(model.Alert{LineID: "L1", Severity: model.SeverityWarning})
	a2 := s.Create(model.Alert{LineID: "L1", Severity: model.SeverityCritical})

	assert.Equal(t, "ALT-00001", a1.ID)
	assert.Equal(t, "ALT-00002", a2.ID)
	assert.Equal(t, model.AlertStateOpen, a1.Status)
	assert.False(t, a1.Timestamp.IsZero())
}

func TestAlertStore_Acknowledge(t *testing.T) {
	s := newTestAlertStore()
	a := s.Create(model.Alert{Severity: model.SeverityWarning})

	acked, err := s.Acknowledge(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStateAcknowledged, acked.Status)
	require.NotNil(t, acked.AcknowledgedAt)

	// acknowledging twice is a no-op success
	again, err := s.Acknowledge(a.ID)
	require.NoError(t, err)
	assert.Equal(t, acked.AcknowledgedAt, again.AcknowledgedAt)

	assert.Len(t, s.Active(), 1, "acknowledged alerts stay active")
}

func TestAlertStore_Resolve(t *testing.T) {
	s := newTestAlertStore()
	a := s.Create(model.Alert{Severity: model.SeverityCritical})

	resolved, err := s.Resolve(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStateResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Empty(t, s.Active())
	assert.Len(t, s.All(), 1, "resolved alerts stay in the audit trail")

	_, err = s.Resolve(a.ID)
	var transErr *InvalidTransitionError
	require.True(t, errors.As(err, &transErr))
	assert.Equal(t, model.AlertStateResolved, transErr.From)

	_, err = s.Acknowledge(a.ID)
	require.True(t, errors.As(err, &transErr))
	assert.Equal(t, model.AlertStateAcknowledged, transErr.To)
}

func TestAlertStore_ResolveAcknowledged(t *testing.T) {
	s := newTestAlertStore()
	a := s.Create(model.Alert{Severity: model.SeverityWarning})

	_, err := s.Acknowledge(a.ID)
	require.NoError(t, err)

	resolved, err := s.Resolve(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStateResolved, resolved.Status)
	assert.NotNil(t, resolved.AcknowledgedAt)
}

func TestAlertStore_UnknownID(t *testing.T) {
	s := newTestAlertStore()

	_, err := s.Acknowledge("ALT-99999")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ALT-99999", nf.ID)

	_, err = s.Resolve("ALT-99999")
	assert.True(t, errors.As(err, &nf))
}

func TestAlertStore_ActiveNewestFirst(t *testing.T) {
	s := newTestAlertStore()
	a1 := s.Create(model.Alert{Severity: model.SeverityWarning})
	a2 := s.Create(model.Alert{Severity: model.SeverityWarning})
	a3 := s.Create(model.Alert{Severity: model.SeverityCritical})

	_, err := s.Resolve(a2.ID)
	require.NoError(t, err)

	active := s.Active()
	require.Len(t, active, 2)
	assert.Equal(t, a3.ID, active[0].ID)
	assert.Equal(t, a1.ID, active[1].ID)

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, a1.ID, all[0].ID)
}

func TestAlertStore_CountsBySeverity(t *testing.T) {
	s := newTestAlertStore()
	s.Create(model.Alert{Severity: model.SeverityWarning})
	s.Create(model.Alert{Severity: model.SeverityWarning})
	c := s.Create(model.Alert{Severity: model.SeverityCritical})
	s.Create(model.Alert{Severity: model.SeverityCritical})

	_, err := s.Resolve(c.ID)
	require.NoError(t, err)

	assert.Equal(t, model.AlertCounts{Critical: 1, Warning: 2}, s.CountsBySeverity())
	assert.Equal(t, s.CountsBySeverity(), model.NewAlertCounts(s.Active()))
}

func TestAlertStore_ReturnsCopies(t *testing.T) {
	s := newTestAlertStore()
	a := s.Create(model.Alert{Title: "original"})

	active := s.Active()
	active[0].Title = "mutated"

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "original", got.Title)
}
