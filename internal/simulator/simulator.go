// Package simulator produces synthetic production line readings.
package simulator

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"factory-monitor/internal/config"
	"factory-monitor/internal/model"
)

// Environmental bounds of the random walk.
const (
	minTemperature = 18.0
	maxTemperature = 45.0
	minPressure    = 5.0
	maxPressure    = 7.0
	minVibration   = 0.3
	maxVibration   = 4.0
)

// Per-tick probabilities of status changes.
const (
	statusChangeChance   = 0.01
	faultChance          = 0.002
	idleResumeChance     = 0.3
	maintenanceEndChance = 0.1
	faultClearChance     = 0.5
)

// lineState is the simulator's private view of one line.
type lineState struct {
	target      float64
	speed       float64
	temperature float64
	pressure    float64
	vibration   float64
	status      model.LineStatus
	carry       float64 // fractional units not yet reported
}

// Simulator is a seeded random walk over line speed and environment.
// It is safe for concurrent use.
type Simulator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	lines    map[string]*lineState
	interval time.Duration
	logger   zerolog.Logger
}

// New creates a simulator for the configured lines. interval is the time one
// reading covers and scales the produced units. A zero seed uses the clock.
func New(lines []config.LineConfig, seed int64, interval time.Duration, logger zerolog.Logger) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Simulator{
		rng:      rand.New(rand.NewSource(seed)),
		lines:    make(map[string]*lineState, len(lines)),
		interval: interval,
		logger:   logger.With().Str("component", "simulator").Logger(),
	}

	for _, l := range lines {
		s.lines[l.ID] = &lineState{
			target:      l.TargetSpeed,
			speed:       l.TargetSpeed * s.uniform(0.85, 1.0),
			temperature: s.uniform(20, 35),
			pressure:    s.uniform(5.5, 6.5),
			vibration:   s.uniform(0.5, 2.0),
			status:      model.LineStatusRunning,
		}
	}

	s.logger.Debug().Int64("seed", seed).Int("lines", len(lines)).Msg("simulator initialized")
	return s
}

// NextReading advances the walk of one line by one interval.
func (s *Simulator) NextReading(lineID string) (model.SourceReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.lines[lineID]
	if !ok {
		return model.SourceReading{}, fmt.Errorf("unknown line: %s", lineID)
	}

	var produced, defects int64

	switch st.status {
	case model.LineStatusRunning:
		st.speed = clamp(st.speed+s.uniform(-5, 5), 0, st.target*1.1)
		st.temperature = clamp(st.temperature+s.uniform(-1, 1), minTemperature, maxTemperature)
		st.pressure = clamp(st.pressure+s.uniform(-0.2, 0.2), minPressure, maxPressure)
		st.vibration = clamp(st.vibration+s.uniform(-0.3, 0.3), minVibration, maxVibration)

		units := st.speed/60*s.interval.Seconds() + st.carry
		produced = int64(units)
		st.carry = units - float64(produced)

		if s.rng.Float64() < s.defectProbability(st) {
			defects = int64(1 + s.rng.Intn(3))
		}

		switch r := s.rng.Float64(); {
		case r < faultChance:
			st.status = model.LineStatusError
		case r < faultChance+statusChangeChance:
			st.status = []model.LineStatus{
				model.LineStatusRunning,
				model.LineStatusIdle,
				model.LineStatusMaintenance,
			}[s.rng.Intn(3)]
		}

	case model.LineStatusIdle:
		st.speed = 0
		if s.rng.Float64() < idleResumeChance {
			st.status = model.LineStatusRunning
		}

	case model.LineStatusMaintenance:
		st.speed = 0
		if s.rng.Float64() < maintenanceEndChance {
			st.status = model.LineStatusRunning
			st.speed = st.target * 0.9
		}

	case model.LineStatusError:
		st.speed = 0
		if s.rng.Float64() < faultClearChance {
			st.status = model.LineStatusMaintenance
		}
	}

	if defects > produced {
		defects = produced
	}

	return model.SourceReading{
		Speed:         st.speed,
		ProducedDelta: produced,
		DefectDelta:   defects,
		Temperature:   st.temperature,
		Pressure:      st.pressure,
		Vibration:     st.vibration,
		Status:        st.status,
	}, nil
}

// defectProbability rises with poor operating conditions.
func (s *Simulator) defectProbability(st *lineState) float64 {
	p := 0.02
	if st.temperature > 38 {
		p += 0.03
	}
	if st.vibration > 3.0 {
		p += 0.02
	}
	if st.target > 0 && st.speed/st.target < 0.8 {
		p += 0.02
	}
	return p
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
