package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"factory-monitor/internal/model"
)

// speedMetrics only carry meaning while a line runs; a stopped line holds
// their previous condition instead of being evaluated.
var speedMetrics = map[string]bool{
	model.MetricEfficiency: true,
	model.MetricSpeed:      true,
}

// conditionKey identifies one monitored condition.
type conditionKey struct {
	lineID string
	metric string
}

// AnomalyEngine evaluates line readings against threshold rules and raises an
// alert only when a condition moves to a strictly worse severity.
type AnomalyEngine struct {
	rules   map[string][]*model.ThresholdRule // by metric
	metrics []string                          // evaluation order
	state   map[conditionKey]model.Severity
	store   *AlertStore
	logger  zerolog.Logger
}

// NewAnomalyEngine creates an engine that writes new alerts to store.
func NewAnomalyEngine(rules []*model.ThresholdRule, store *AlertStore, logger zerolog.Logger) *AnomalyEngine {
	e := &AnomalyEngine{
		rules:  make(map[string][]*model.ThresholdRule),
		state:  make(map[conditionKey]model.Severity),
		store:  store,
		logger: logger.With().Str("component", "anomaly_engine").Logger(),
	}

	for _, r := range rules {
		if r == nil {
			continue
		}
		if _, ok := e.rules[r.Metric]; !ok {
			e.metrics = append(e.metrics, r.Metric)
		}
		e.rules[r.Metric] = append(e.rules[r.Metric], r)
	}

	return e
}

// Evaluate classifies every ruled metric of the line, updates the condition
// state and returns the alerts created by this evaluation.
func (e *AnomalyEngine) Evaluate(line model.ProductionLine) []model.Alert {
	var created []model.Alert

	for _, metric := range e.metrics {
		if speedMetrics[metric] && !line.IsActive() {
			continue
		}

		value, ok := line.MetricValue(metric)
		if !ok {
			e.logger.Debug().Str("metric", metric).Msg("metric not exposed by line, skipping")
			continue
		}

		severity, rule := e.classify(metric, value)
		if !e.transition(line.ID, metric, severity) {
			continue
		}

		created = append(created, e.store.Create(model.Alert{
			LineID:    line.ID,
			Metric:    metric,
			Severity:  severity,
			Title:     rule.Title(severity),
			Message:   fmt.Sprintf("%s: %s", line.Name, rule.Message(value, severity)),
			Value:     value,
			Timestamp: line.UpdatedAt,
		}))
	}

	// An error status is a critical condition of its own.
	status := model.SeverityNormal
	if line.Status == model.LineStatusError {
		status = model.SeverityCritical
	}
	if e.transition(line.ID, model.MetricStatus, status) {
		created = append(created, e.store.Create(model.Alert{
			LineID:    line.ID,
			Metric:    model.MetricStatus,
			Severity:  status,
			Title:     "Line Error",
			Message:   fmt.Sprintf("Production line %s has encountered an error", line.Name),
			Timestamp: line.UpdatedAt,
		}))
	}

	if len(created) > 0 {
		e.logger.Debug().
			Str("line_id", line.ID).
			Int("alerts", len(created)).
			Msg("line evaluation raised alerts")
	}

	return created
}

// classify returns the worst severity over the rules of a metric and the rule
// that produced it.
func (e *AnomalyEngine) classify(metric string, value float64) (model.Severity, *model.ThresholdRule) {
	rules := e.rules[metric]
	worst, worstRule := model.SeverityNormal, rules[0]
	for _, r := range rules {
		if s := r.Classify(value); s.WorseThan(worst) {
			worst, worstRule = s, r
		}
	}
	return worst, worstRule
}

// transition stores the new severity and reports whether it is strictly worse
// than the previous one.
func (e *AnomalyEngine) transition(lineID, metric string, severity model.Severity) bool {
	key := conditionKey{lineID: lineID, metric: metric}
	prev, ok := e.state[key]
	if !ok {
		prev = model.SeverityNormal
	}
	e.state[key] = severity
	return severity.WorseThan(prev)
}

// Conditions returns the last observed severity of every condition of a line.
func (e *AnomalyEngine) Conditions(lineID string) map[string]model.Severity {
	out := make(map[string]model.Severity)
	for key, s := range e.state {
		if key.lineID == lineID {
			out[key.metric] = s
		}
	}
	return out
}

// Reset forgets the condition state of a line.
func (e *AnomalyEngine) Reset(lineID string) {
	for key := range e.state {
		if key.lineID == lineID {
			delete(e.state, key)
		}
	}
}
