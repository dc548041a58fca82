package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-monitor/internal/config"
	"factory-monitor/internal/model"
)

func testHealthConfig() config.HealthConfig {
	return config.HealthConfig{
		WarningPenalty:       10,
		CriticalPenalty:      30,
		EfficiencyFloor:      80,
		EfficiencyPenalty:    10,
		BaseMaintenanceHours: 200,
		HoursPerPoint:        10,
		MinMaintenanceHours:  24,
	}
}

func TestMetricAggregator_EfficiencyAndPerformance(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	l := model.NewProductionLine("L1", "Line 1", 120)
	l.CurrentSpeed = 60
	assert.Equal(t, 50.0, a.Efficiency(l))
	assert.Equal(t, 0.5, performance(l))

	l.CurrentSpeed = 150
	assert.Equal(t, 100.0, a.Efficiency(l), "efficiency is capped at 100")

	l.TargetSpeed = 0
	assert.Equal(t, 0.0, a.Efficiency(l))
}

func TestMetricAggregator_OEE(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	l := model.NewProductionLine("L1", "Line 1", 100)
	l.CurrentSpeed = 80
	l.Uptime = 90
	l.ProductsProduced = 100
	l.Defects = 5

	// 0.9 × 0.8 × 0.95
	assert.InDelta(t, 68.4, a.OEE(l), 0.0001)

	l.ProductsProduced = 0
	l.Defects = 0
	assert.Equal(t, 0.0, a.OEE(l), "quality factor is 0 without production")
}

func TestMetricAggregator_Derive(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	l := model.NewProductionLine("L1", "Line 1", 120)
	l.CurrentSpeed = 60
	l.ProductsProduced = 10

	d := a.Derive(l)
	assert.Equal(t, 50.0, d.Efficiency)
	assert.Equal(t, 50.0, d.OEE)
}

func TestMetricAggregator_DeriveHoldsValuesWhileStopped(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	l := model.NewProductionLine("L1", "Line 1", 120)
	l.CurrentSpeed = 90
	l.ProductsProduced = 10
	running := a.Derive(l)
	require.Equal(t, 75.0, running.Efficiency)

	running.Status = model.LineStatusIdle
	running.CurrentSpeed = 0
	idle := a.Derive(running)
	assert.Equal(t, 75.0, idle.Efficiency)
	assert.Equal(t, running.OEE, idle.OEE)

	h := a.ComputeHealth(idle, nil)
	assert.Equal(t, 90.0, h.HealthScore, "held efficiency below the floor still counts")

	idle.Efficiency = 95
	h = a.ComputeHealth(idle, nil)
	assert.Equal(t, 100.0, h.HealthScore, "zero speed of a stopped line is not penalized")
}

func TestMetricAggregator_ComputeOverall(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	running := model.NewProductionLine("L1", "Line 1", 100)
	running.CurrentSpeed = 100
	running.ProductsProduced = 200
	running.Defects = 20

	idle := model.NewProductionLine("L2", "Line 2", 100)
	idle.Status = model.LineStatusIdle
	idle.ProductsProduced = 50
	idle.Defects = 5

	m := a.ComputeOverall([]model.ProductionLine{running, idle}, model.AlertCounts{Critical: 1, Warning: 3})

	assert.Equal(t, int64(250), m.TotalOutput)
	assert.Equal(t, int64(25), m.TotalDefects)
	assert.Equal(t, 1, m.ActiveLines)
	assert.Equal(t, 2, m.TotalLines)
	assert.Equal(t, 1, m.CriticalAlerts)
	assert.Equal(t, 3, m.WarningAlerts)
	assert.InDelta(t, 90.0, m.OverallOEE, 0.0001, "only running lines are averaged")
	assert.InDelta(t, 50.0, m.AverageEfficiency, 0.0001)
}

func TestMetricAggregator_ComputeOverall_NoActiveLines(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	l := model.NewProductionLine("L1", "Line 1", 100)
	l.Status = model.LineStatusMaintenance
	l.CurrentSpeed = 100
	l.ProductsProduced = 100

	m := a.ComputeOverall([]model.ProductionLine{l}, model.AlertCounts{})
	assert.Equal(t, 0.0, m.OverallOEE)
	assert.Equal(t, 0, m.ActiveLines)

	empty := a.ComputeOverall(nil, model.AlertCounts{})
	assert.Equal(t, 0.0, empty.OverallOEE)
	assert.Equal(t, 0.0, empty.AverageEfficiency)
}

func TestMetricAggregator_OverallOEEBounds(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	lines := []model.ProductionLine{
		{ID: "a", Status: model.LineStatusRunning, CurrentSpeed: 500, TargetSpeed: 100, Uptime: 150, ProductsProduced: 10},
		{ID: "b", Status: model.LineStatusRunning, CurrentSpeed: -3, TargetSpeed: 100, Uptime: -20, ProductsProduced: 10, Defects: 10},
	}

	m := a.ComputeOverall(lines, model.AlertCounts{})
	assert.GreaterOrEqual(t, m.OverallOEE, 0.0)
	assert.LessOrEqual(t, m.OverallOEE, 100.0)
}

func TestMetricAggregator_ComputeHealth(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	l := model.NewProductionLine("L1", "Line 1", 100)
	l.CurrentSpeed = 95

	h := a.ComputeHealth(l, map[string]model.Severity{
		model.MetricTemperature: model.SeverityNormal,
	})
	assert.Equal(t, 100.0, h.HealthScore)
	assert.Equal(t, 200, h.PredictedMaintenanceHours)
	assert.Equal(t, []string{"All systems operating normally"}, h.Recommendations)
	assert.Equal(t, model.SeverityNormal, h.PressureStatus)

	h = a.ComputeHealth(l, map[string]model.Severity{
		model.MetricTemperature: model.SeverityCritical,
		model.MetricVibration:   model.SeverityWarning,
	})
	assert.Equal(t, 60.0, h.HealthScore)
	assert.Equal(t, 24, h.PredictedMaintenanceHours, "clamped to the configured minimum")
	assert.Equal(t, []string{
		"Immediate cooling system inspection required",
		"Schedule bearing inspection",
	}, h.Recommendations)
	assert.Equal(t, model.SeverityCritical, h.TemperatureStatus)
	assert.Equal(t, model.SeverityWarning, h.VibrationStatus)
}

func TestMetricAggregator_ComputeHealth_FloorAndEfficiency(t *testing.T) {
	cfg := testHealthConfig()
	cfg.MinMaintenanceHours = 1
	a := NewMetricAggregator(cfg)

	l := model.NewProductionLine("L1", "Line 1", 100)
	l.CurrentSpeed = 50

	h := a.ComputeHealth(l, map[string]model.Severity{
		model.MetricTemperature: model.SeverityCritical,
		model.MetricPressure:    model.SeverityCritical,
		model.MetricVibration:   model.SeverityCritical,
	})
	assert.Equal(t, 0.0, h.HealthScore)
	assert.Equal(t, 1, h.PredictedMaintenanceHours)
	assert.Contains(t, h.Recommendations, "Performance optimization needed")
	assert.Len(t, h.Recommendations, 4)
}

func TestMetricAggregator_ComputeQuality(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	l := model.NewProductionLine("L1", "Line 1", 100)
	l.ProductsProduced = 200
	l.Defects = 10

	q := a.ComputeQuality(l, []float64{5})
	assert.Equal(t, int64(200), q.TotalInspected)
	assert.Equal(t, int64(190), q.Passed)
	assert.Equal(t, int64(10), q.Failed)
	assert.Equal(t, 5.0, q.DefectRate)
	assert.Equal(t, 50.0, q.AverageQualityScore)
	assert.Equal(t, model.QualityTrendStable, q.Trend)

	var total int64
	for _, n := range q.DefectTypes {
		total += n
	}
	assert.Equal(t, l.Defects, total)
	assert.Equal(t, int64(3), q.DefectTypes["Dimensional Error"])
}

func TestMetricAggregator_ComputeQuality_ZeroProduction(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	q := a.ComputeQuality(model.NewProductionLine("L1", "Line 1", 100), nil)
	assert.Equal(t, 0.0, q.DefectRate)
	assert.Equal(t, 100.0, q.AverageQualityScore)
	assert.Len(t, q.DefectTypes, len(model.DefectCategories))
	for _, n := range q.DefectTypes {
		assert.Zero(t, n)
	}
}

func TestMetricAggregator_QualityScoreFloor(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	l := model.NewProductionLine("L1", "Line 1", 100)
	l.ProductsProduced = 10
	l.Defects = 5

	assert.Equal(t, 0.0, a.ComputeQuality(l, nil).AverageQualityScore)
}

func TestQualityTrend(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		want    model.QualityTrend
	}{
		{"too short", []float64{1, 9}, model.QualityTrendStable},
		{"improving", []float64{4, 4, 3, 2, 2}, model.QualityTrendImproving},
		{"declining", []float64{2, 2, 3, 4, 4}, model.QualityTrendDeclining},
		{"flat", []float64{3, 3, 3, 3, 3}, model.QualityTrendStable},
		{"uses the last five", []float64{9, 9, 9, 2, 2, 3, 4, 4}, model.QualityTrendDeclining},
		{"no defects", []float64{0, 0, 0}, model.QualityTrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, qualityTrend(tt.history))
		})
	}
}

func TestQualityHistory_Record(t *testing.T) {
	h := NewQualityHistory()

	var got []float64
	for i := 0; i < 15; i++ {
		got = h.Record("L1", float64(i))
	}

	require.Len(t, got, historySize)
	assert.Equal(t, 5.0, got[0])
	assert.Equal(t, 14.0, got[len(got)-1])
	assert.Empty(t, h.Get("L2"))
}

func TestMetricAggregator_ComputeQualitySummary(t *testing.T) {
	a := NewMetricAggregator(testHealthConfig())

	good := model.NewProductionLine("L1", "Line 1", 100)
	good.ProductsProduced = 100
	good.Defects = 2
	bad := model.NewProductionLine("L2", "Line 2", 100)
	bad.ProductsProduced = 100
	bad.Defects = 8
	none := model.NewProductionLine("L3", "Line 3", 100)

	metrics := []model.QualityMetrics{
		a.ComputeQuality(good, nil),
		a.ComputeQuality(bad, nil),
		a.ComputeQuality(none, nil),
	}

	s := a.ComputeQualitySummary(metrics)
	assert.Equal(t, int64(200), s.TotalInspected)
	assert.Equal(t, int64(10), s.TotalFailed)
	assert.Equal(t, int64(190), s.TotalPassed)
	assert.Equal(t, 5.0, s.OverallDefectRate)
	assert.Equal(t, 1, s.LinesWithIssues)
	assert.InDelta(t, (80.0+20.0+100.0)/3, s.AverageQualityScore, 0.01)

	var total int64
	for _, n := range s.DefectDistribution {
		total += n
	}
	assert.Equal(t, int64(10), total)
}
