package service

import (
	"math"

	"factory-monitor/internal/config"
	"factory-monitor/internal/model"
)

// qualityIssueRate is the defect rate (percent) above which a line counts as having quality issues.
const qualityIssueRate = 5.0

// historySize is how many defect rates are remembered per line for the quality trend.
const historySize = 10

// defectWeights splits defects over model.DefectCategories; the last category takes the remainder.
var defectWeights = []float64{0.35, 0.25, 0.20, 0.15}

// healthMetrics are the conditions that feed the machine health score, in report order.
var healthMetrics = []string{model.MetricTemperature, model.MetricPressure, model.MetricVibration}

// recommendations holds the fixed advice text per condition and severity.
var recommendations = map[string]map[model.Severity]string{
	model.MetricTemperature: {
		model.SeverityWarning:  "Monitor cooling system",
		model.SeverityCritical: "Immediate cooling system inspection required",
	},
	model.MetricPressure: {
		model.SeverityWarning:  "Pressure calibration recommended",
		model.SeverityCritical: "Critical pressure adjustment needed",
	},
	model.MetricVibration: {
		model.SeverityWarning:  "Schedule bearing inspection",
		model.SeverityCritical: "Immediate mechanical inspection required",
	},
}

const (
	recommendationEfficiency = "Performance optimization needed"
	recommendationNone       = "All systems operating normally"
)

// MetricAggregator derives efficiency, OEE, machine health and quality figures
// from line state. It holds no state of its own.
type MetricAggregator struct {
	health config.HealthConfig
}

// NewMetricAggregator creates an aggregator with the given health scoring constants.
func NewMetricAggregator(health config.HealthConfig) *MetricAggregator {
	return &MetricAggregator{health: health}
}

// Efficiency returns current speed as a percentage of target, capped at 100.
func (a *MetricAggregator) Efficiency(line model.ProductionLine) float64 {
	return performance(line) * 100
}

// OEE returns availability × performance × quality for a line, as a percentage.
func (a *MetricAggregator) OEE(line model.ProductionLine) float64 {
	availability := clamp(line.Uptime/100, 0, 1)

	quality := 0.0
	if line.ProductsProduced > 0 {
		quality = float64(line.ProductsProduced-line.Defects) / float64(line.ProductsProduced)
	}

	return clamp(availability*performance(line)*quality, 0, 1) * 100
}

// Derive fills in the derived per-line figures. They are only recomputed
// while the line runs; a stopped line keeps its last running values.
func (a *MetricAggregator) Derive(line model.ProductionLine) model.ProductionLine {
	if !line.IsActive() {
		return line
	}
	line.Efficiency = round(a.Efficiency(line), 2)
	line.OEE = round(a.OEE(line), 2)
	return line
}

// lineEfficiency is the live efficiency of a running line and the held one otherwise.
func (a *MetricAggregator) lineEfficiency(line model.ProductionLine) float64 {
	if !line.IsActive() {
		return line.Efficiency
	}
	return a.Efficiency(line)
}

// ComputeOverall aggregates all lines. Overall OEE averages running lines
// only and is 0 when none are running.
func (a *MetricAggregator) ComputeOverall(lines []model.ProductionLine, counts model.AlertCounts) model.OverallMetrics {
	m := model.OverallMetrics{
		TotalLines:     len(lines),
		CriticalAlerts: counts.Critical,
		WarningAlerts:  counts.Warning,
	}

	var oeeSum, effSum float64
	for _, l := range lines {
		m.TotalOutput += l.ProductsProduced
		m.TotalDefects += l.Defects
		effSum += a.lineEfficiency(l)
		if l.IsActive() {
			m.ActiveLines++
			oeeSum += a.OEE(l)
		}
	}

	if m.ActiveLines > 0 {
		m.OverallOEE = round(clamp(oeeSum/float64(m.ActiveLines), 0, 100), 2)
	}
	if len(lines) > 0 {
		m.AverageEfficiency = round(effSum/float64(len(lines)), 2)
	}

	return m
}

// ComputeHealth scores a line from its condition severities and efficiency.
func (a *MetricAggregator) ComputeHealth(line model.ProductionLine, conditions map[string]model.Severity) model.HealthSnapshot {
	h := model.HealthSnapshot{
		LineID:          line.ID,
		Recommendations: make([]string, 0),
	}

	score := 100.0
	for _, metric := range healthMetrics {
		s, ok := conditions[metric]
		if !ok {
			s = model.SeverityNormal
		}

		switch metric {
		case model.MetricTemperature:
			h.TemperatureStatus = s
		case model.MetricPressure:
			h.PressureStatus = s
		case model.MetricVibration:
			h.VibrationStatus = s
		}

		switch s {
		case model.SeverityWarning:
			score -= a.health.WarningPenalty
		case model.SeverityCritical:
			score -= a.health.CriticalPenalty
		default:
			continue
		}
		h.Recommendations = append(h.Recommendations, recommendations[metric][s])
	}

	if a.lineEfficiency(line) < a.health.EfficiencyFloor {
		score -= a.health.EfficiencyPenalty
		h.Recommendations = append(h.Recommendations, recommendationEfficiency)
	}

	score = math.Max(0, score)
	h.HealthScore = round(score, 1)

	hours := int(float64(a.health.BaseMaintenanceHours) - (100-score)*a.health.HoursPerPoint)
	minHours := a.health.MinMaintenanceHours
	if minHours < 1 {
		minHours = 1
	}
	if hours < minHours {
		hours = minHours
	}
	h.PredictedMaintenanceHours = hours

	if len(h.Recommendations) == 0 {
		h.Recommendations = append(h.Recommendations, recommendationNone)
	}

	return h
}

// ComputeQuality builds the quality view of a line. history holds the line's
// recent defect rates, oldest first, including the current one.
func (a *MetricAggregator) ComputeQuality(line model.ProductionLine, history []float64) model.QualityMetrics {
	rate := line.DefectRate()

	return model.QualityMetrics{
		LineID:              line.ID,
		TotalInspected:      line.ProductsProduced,
		Passed:              line.ProductsProduced - line.Defects,
		Failed:              line.Defects,
		DefectRate:          round(rate, 2),
		DefectTypes:         defectDistribution(line.Defects),
		AverageQualityScore: round(math.Max(0, 100-rate*10), 2),
		Trend:               qualityTrend(history),
	}
}

// ComputeQualitySummary aggregates per-line quality metrics.
func (a *MetricAggregator) ComputeQualitySummary(metrics []model.QualityMetrics) model.QualitySummary {
	s := model.QualitySummary{
		DefectDistribution: make(map[string]int64, len(model.DefectCategories)),
	}
	for _, c := range model.DefectCategories {
		s.DefectDistribution[c] = 0
	}

	var scoreSum float64
	for _, m := range metrics {
		s.TotalInspected += m.TotalInspected
		s.TotalFailed += m.Failed
		scoreSum += m.AverageQualityScore
		for c, n := range m.DefectTypes {
			s.DefectDistribution[c] += n
		}
		if m.DefectRate > qualityIssueRate {
			s.LinesWithIssues++
		}
	}

	s.TotalPassed = s.TotalInspected - s.TotalFailed
	if s.TotalInspected > 0 {
		s.OverallDefectRate = round(float64(s.TotalFailed)/float64(s.TotalInspected)*100, 2)
	}
	if len(metrics) > 0 {
		s.AverageQualityScore = round(scoreSum/float64(len(metrics)), 2)
	}

	return s
}

// QualityHistory remembers the most recent defect rates of each line.
type QualityHistory struct {
	rates map[string][]float64
}

// NewQualityHistory creates an empty history.
func NewQualityHistory() *QualityHistory {
	return &QualityHistory{rates: make(map[string][]float64)}
}

// Record appends a defect rate for a line and returns the retained history, oldest first.
func (h *QualityHistory) Record(lineID string, rate float64) []float64 {
	rates := append(h.rates[lineID], rate)
	if len(rates) > historySize {
		rates = rates[len(rates)-historySize:]
	}
	h.rates[lineID] = rates
	return append([]float64(nil), rates...)
}

// Get returns the retained history of a line.
func (h *QualityHistory) Get(lineID string) []float64 {
	return append([]float64(nil), h.rates[lineID]...)
}

// qualityTrend compares the two oldest and two newest of the last five rates.
// A lower defect rate is an improvement.
func qualityTrend(history []float64) model.QualityTrend {
	if len(history) < 3 {
		return model.QualityTrendStable
	}

	recent := history
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	older := (recent[0] + recent[1]) / 2
	newer := (recent[len(recent)-2] + recent[len(recent)-1]) / 2

	switch {
	case newer < older*0.9:
		return model.QualityTrendImproving
	case newer > older*1.1:
		return model.QualityTrendDeclining
	default:
		return model.QualityTrendStable
	}
}

func defectDistribution(defects int64) map[string]int64 {
	dist := make(map[string]int64, len(model.DefectCategories))
	remaining := defects
	for i, c := range model.DefectCategories {
		if i == len(model.DefectCategories)-1 {
			dist[c] = max(0, remaining)
			break
		}
		n := int64(float64(defects) * defectWeights[i])
		dist[c] = n
		remaining -= n
	}
	return dist
}

func performance(line model.ProductionLine) float64 {
	if line.TargetSpeed <= 0 {
		return 0
	}
	return clamp(line.CurrentSpeed/line.TargetSpeed, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
