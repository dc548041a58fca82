package simulator

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-monitor/internal/config"
	"factory-monitor/internal/model"
)

func testLines() []config.LineConfig {
	return []config.LineConfig{
		{ID: "L1", Name: "Line 1", TargetSpeed: 120},
		{ID: "L2", Name: "Line 2", TargetSpeed: 200},
	}
}

func TestSimulator_Deterministic(t *testing.T) {
	a := New(testLines(), 42, 3*time.Second, zerolog.Nop())
	b := New(testLines(), 42, 3*time.Second, zerolog.Nop())

	for i := 0; i < 50; i++ {
		ra, err := a.NextReading("L1")
		require.NoError(t, err)
		rb, err := b.NextReading("L1")
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestSimulator_ReadingsStayInBounds(t *testing.T) {
	s := New(testLines(), 7, 3*time.Second, zerolog.Nop())

	for i := 0; i < 2000; i++ {
		for _, id := range []string{"L1", "L2"} {
			r, err := s.NextReading(id)
			require.NoError(t, err)

			assert.True(t, r.Status.Valid())
			assert.GreaterOrEqual(t, r.Speed, 0.0)
			assert.GreaterOrEqual(t, r.Temperature, minTemperature)
			assert.LessOrEqual(t, r.Temperature, maxTemperature)
			assert.GreaterOrEqual(t, r.Pressure, minPressure)
			assert.LessOrEqual(t, r.Pressure, maxPressure)
			assert.GreaterOrEqual(t, r.Vibration, minVibration)
			assert.LessOrEqual(t, r.Vibration, maxVibration)
			assert.LessOrEqual(t, r.DefectDelta, r.ProducedDelta)
			assert.GreaterOrEqual(t, r.ProducedDelta, int64(0))
		}
	}
}

func TestSimulator_ProductionScalesWithInterval(t *testing.T) {
	s := New([]config.LineConfig{{ID: "L1", Name: "Line 1", TargetSpeed: 120}}, 1, time.Minute, zerolog.Nop())
	s.lines["L1"].speed = 120

	r, err := s.NextReading("L1")
	require.NoError(t, err)
	// one minute of production at 115-125 units/min
	assert.InDelta(t, 120, r.ProducedDelta, 6)
}

func TestSimulator_IdleLinesDoNotProduce(t *testing.T) {
	s := New(testLines(), 3, 3*time.Second, zerolog.Nop())
	s.lines["L1"].status = model.LineStatusIdle

	r, err := s.NextReading("L1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Speed)
	assert.Zero(t, r.ProducedDelta)
}

func TestSimulator_UnknownLine(t *testing.T) {
	s := New(testLines(), 1, time.Second, zerolog.Nop())

	_, err := s.NextReading("nope")
	assert.Error(t, err)
}
