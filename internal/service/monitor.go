package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"factory-monitor/internal/config"
	"factory-monitor/internal/model"
)

// Source produces one reading per line per tick.
type Source interface {
	NextReading(lineID string) (model.SourceReading, error)
}

// Monitor owns all shared monitoring state: the source registry, the alert
// store, the anomaly condition state and the quality history. One mutex guards
// all of it, so every snapshot reflects a single instant and external alert
// mutations never interleave with a tick.
type Monitor struct {
	mu         sync.Mutex
	registry   *SourceRegistry
	store      *AlertStore
	engine     *AnomalyEngine
	aggregator *MetricAggregator
	quality    *QualityHistory
	source     Source
	tick       uint64
	now        func() time.Time
	logger     zerolog.Logger
}

// NewMonitor creates a monitor for the configured lines, reading from source.
func NewMonitor(cfg *config.Config, source Source, logger zerolog.Logger) *Monitor {
	store := NewAlertStore(logger)
	m := &Monitor{
		registry:   NewSourceRegistry(cfg.LineOrder()),
		store:      store,
		engine:     NewAnomalyEngine(cfg.Anomaly.Rules, store, logger),
		aggregator: NewMetricAggregator(cfg.Health),
		quality:    NewQualityHistory(),
		source:     source,
		now:        time.Now,
		logger:     logger.With().Str("component", "monitor").Logger(),
	}

	for _, lc := range cfg.Lines {
		line := model.NewProductionLine(lc.ID, lc.Name, lc.TargetSpeed)
		m.registry.Upsert(m.aggregator.Derive(line))
	}

	return m
}

// Advance pulls one reading per line, applies it, evaluates anomalies and
// returns the snapshot of the resulting state.
// Lines whose reading fails keep their previous state for this tick.
func (m *Monitor) Advance(ctx context.Context) (model.BroadcastSnapshot, error) {
	m.mu.Lock()
	ids := m.registry.IDs()
	m.mu.Unlock()

	readings := make(map[string]model.SourceReading, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return model.BroadcastSnapshot{}, err
		}
		r, err := m.source.NextReading(id)
		if err != nil {
			m.logger.Warn().Err(err).Str("line_id", id).Msg("failed to read source, keeping previous state")
			continue
		}
		readings[id] = r
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	at := m.now()
	var raised int
	for _, id := range ids {
		r, ok := readings[id]
		if !ok {
			continue
		}
		line, ok := m.registry.Get(id)
		if !ok {
			continue
		}

		next := m.aggregator.Derive(line.ApplyReading(r, at))
		m.registry.Upsert(next)
		raised += len(m.engine.Evaluate(next))
		m.quality.Record(id, next.DefectRate())
	}

	m.tick++
	snap := m.snapshotLocked(at)

	m.logger.Debug().
		Uint64("tick", m.tick).
		Int("lines", len(snap.Lines)).
		Int("new_alerts", raised).
		Int("active_alerts", len(snap.Alerts)).
		Msg("tick assembled")

	return snap, nil
}

// Snapshot returns the current state without advancing it.
func (m *Monitor) Snapshot() model.BroadcastSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(m.now())
}

func (m *Monitor) snapshotLocked(at time.Time) model.BroadcastSnapshot {
	lines := m.registry.All()
	alerts := m.store.Active()
	counts := model.NewAlertCounts(alerts)

	health := make([]model.HealthSnapshot, 0, len(lines))
	quality := make([]model.QualityMetrics, 0, len(lines))
	for _, l := range lines {
		health = append(health, m.aggregator.ComputeHealth(l, m.engine.Conditions(l.ID)))
		quality = append(quality, m.aggregator.ComputeQuality(l, m.quality.Get(l.ID)))
	}

	return model.BroadcastSnapshot{
		Type:           model.SnapshotMessageType,
		Tick:           m.tick,
		GeneratedAt:    at,
		Overall:        m.aggregator.ComputeOverall(lines, counts),
		Lines:          lines,
		Alerts:         alerts,
		AlertCounts:    counts,
		MachineHealth:  health,
		QualityMetrics: quality,
		QualitySummary: m.aggregator.ComputeQualitySummary(quality),
	}
}

// Tick returns the number of ticks assembled so far.
func (m *Monitor) Tick() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick
}

// Lines returns every line in display order.
func (m *Monitor) Lines() []model.ProductionLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.All()
}

// Line returns one line by id.
func (m *Monitor) Line(id string) (model.ProductionLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.registry.Get(id)
	if !ok {
		return model.ProductionLine{}, &NotFoundError{Kind: "line", ID: id}
	}
	return l, nil
}

// Overall returns the aggregated production metrics.
func (m *Monitor) Overall() model.OverallMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aggregator.ComputeOverall(m.registry.All(), m.store.CountsBySeverity())
}

// Alerts returns active alerts, newest first, or the full audit trail when all is set.
func (m *Monitor) Alerts(all bool) []model.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	if all {
		return m.store.All()
	}
	return m.store.Active()
}

// Acknowledge acknowledges an alert.
func (m *Monitor) Acknowledge(id string) (model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Acknowledge(id)
}

// Resolve resolves an alert.
func (m *Monitor) Resolve(id string) (model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Resolve(id)
}

// Health returns the machine health of every line.
func (m *Monitor) Health() []model.HealthSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := m.registry.All()
	out := make([]model.HealthSnapshot, 0, len(lines))
	for _, l := range lines {
		out = append(out, m.aggregator.ComputeHealth(l, m.engine.Conditions(l.ID)))
	}
	return out
}

// HealthFor returns the machine health of one line.
func (m *Monitor) HealthFor(id string) (model.HealthSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.registry.Get(id)
	if !ok {
		return model.HealthSnapshot{}, &NotFoundError{Kind: "line", ID: id}
	}
	return m.aggregator.ComputeHealth(l, m.engine.Conditions(id)), nil
}

// Quality returns the quality metrics of every line.
func (m *Monitor) Quality() []model.QualityMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.qualityLocked()
}

// QualitySummary returns quality aggregated across lines.
func (m *Monitor) QualitySummary() model.QualitySummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aggregator.ComputeQualitySummary(m.qualityLocked())
}

func (m *Monitor) qualityLocked() []model.QualityMetrics {
	lines := m.registry.All()
	out := make([]model.QualityMetrics, 0, len(lines))
	for _, l := range lines {
		out = append(out, m.aggregator.ComputeQuality(l, m.quality.Get(l.ID)))
	}
	return out
}
