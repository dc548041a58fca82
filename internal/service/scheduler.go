package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"factory-monitor/internal/config"
)

// ErrTooManyObservers is returned by Join when the observer limit is reached.
var ErrTooManyObservers = errors.New("observer limit reached")

// Observer receives encoded snapshots.
// Send must honor ctx cancellation; Close releases the underlying connection.
type Observer interface {
	ID() string
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// ObserverState is the connection state of an observer.
type ObserverState string

const (
	ObserverConnecting   ObserverState = "connecting"
	ObserverConnected    ObserverState = "connected"
	ObserverDisconnected ObserverState = "disconnected"
)

type observerEntry struct {
	observer Observer
	state    ObserverState
}

// TickReport summarizes one broadcast.
type TickReport struct {
	Tick      uint64        `json:"tick"`
	Observers int           `json:"observers"`
	Delivered int           `json:"delivered"`
	Failed    int           `json:"failed"`
	Bytes     int           `json:"bytes"`
	Duration  time.Duration `json:"duration"`
}

// Scheduler advances the monitor on a fixed cadence and pushes every snapshot
// to the connected observers.
type Scheduler struct {
	monitor     *Monitor
	interval    time.Duration
	sendTimeout time.Duration
	maxObs      int

	mu        sync.RWMutex
	observers map[string]*observerEntry

	logger zerolog.Logger
}

// NewScheduler creates a scheduler for the monitor.
func NewScheduler(monitor *Monitor, cfg config.BroadcastConfig, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		monitor:     monitor,
		interval:    cfg.Interval,
		sendTimeout: cfg.SendTimeout,
		maxObs:      cfg.MaxObservers,
		observers:   make(map[string]*observerEntry),
		logger:      logger.With().Str("component", "scheduler").Logger(),
	}
}

// Join registers an observer and delivers the current snapshot to it before
// it starts receiving ticks. A failed initial delivery disconnects it.
func (s *Scheduler) Join(ctx context.Context, obs Observer) error {
	s.mu.Lock()
	if s.maxObs > 0 && len(s.observers) >= s.maxObs {
		s.mu.Unlock()
		return ErrTooManyObservers
	}
	if _, exists := s.observers[obs.ID()]; exists {
		s.mu.Unlock()
		return fmt.Errorf("observer %s already joined", obs.ID())
	}
	entry := &observerEntry{observer: obs, state: ObserverConnecting}
	s.observers[obs.ID()] = entry
	s.mu.Unlock()

	snap := s.monitor.Snapshot()
	payload, err := json.Marshal(snap)
	if err != nil {
		s.Leave(obs.ID())
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.deliver(ctx, obs, snap.Tick, payload); err != nil {
		s.Leave(obs.ID())
		return err
	}

	s.mu.Lock()
	if entry.state == ObserverConnecting {
		entry.state = ObserverConnected
	}
	total := len(s.observers)
	s.mu.Unlock()

	s.logger.Info().Str("observer_id", obs.ID()).Int("observers", total).Msg("observer connected")
	return nil
}

// Leave disconnects an observer and forgets it. Unknown ids are ignored.
func (s *Scheduler) Leave(id string) {
	s.mu.Lock()
	entry, ok := s.observers[id]
	if ok {
		entry.state = ObserverDisconnected
		delete(s.observers, id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := entry.observer.Close(); err != nil {
		s.logger.Debug().Err(err).Str("observer_id", id).Msg("error closing observer")
	}
	s.logger.Info().Str("observer_id", id).Msg("observer disconnected")
}

// State returns the state of an observer. Observers that left report disconnected.
func (s *Scheduler) State(id string) ObserverState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.observers[id]; ok {
		return entry.state
	}
	return ObserverDisconnected
}

// Count returns the number of registered observers.
func (s *Scheduler) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Run ticks every interval until ctx is cancelled, then closes every observer.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("broadcast scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.Close()
			s.logger.Info().Msg("broadcast scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := s.TickOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("tick skipped")
			}
		}
	}
}

// TickOnce advances the monitor and broadcasts the resulting snapshot.
// The snapshot is encoded once, outside the monitor lock, and delivered to
// every connected observer concurrently, one goroutine per observer, so a
// tick never takes longer than the send timeout. Slow or failing observers
// are disconnected without affecting the others.
func (s *Scheduler) TickOnce(ctx context.Context) (TickReport, error) {
	start := time.Now()

	snap, err := s.monitor.Advance(ctx)
	if err != nil {
		return TickReport{}, fmt.Errorf("failed to assemble snapshot: %w", err)
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return TickReport{Tick: snap.Tick}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	targets := s.connected()
	report := TickReport{Tick: snap.Tick, Observers: len(targets), Bytes: len(payload)}

	var delivered, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)

	for _, obs := range targets {
		g.Go(func() error {
			if err := s.deliver(gctx, obs, snap.Tick, payload); err != nil {
				failed.Add(1)
				s.logger.Warn().Err(err).Str("observer_id", obs.ID()).Msg("delivery failed, disconnecting observer")
				s.Leave(obs.ID())
				return nil // one observer never aborts the broadcast
			}
			delivered.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("broadcast failed: %w", err)
	}

	report.Delivered = int(delivered.Load())
	report.Failed = int(failed.Load())
	report.Duration = time.Since(start)

	s.logger.Debug().
		Uint64("tick", report.Tick).
		Int("observers", report.Observers).
		Int("delivered", report.Delivered).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("tick broadcast")

	return report, nil
}

// Close disconnects every observer.
func (s *Scheduler) Close() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.Leave(id)
	}
}

// deliver sends one payload with the per-observer timeout.
func (s *Scheduler) deliver(ctx context.Context, obs Observer, tick uint64, payload []byte) error {
	sendCtx := ctx
	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
	}

	// Send runs in its own goroutine so an observer that ignores ctx still
	// cannot hold the broadcast past the timeout; closing it on Leave unblocks it.
	done := make(chan error, 1)
	go func() {
		done <- obs.Send(sendCtx, payload)
	}()

	var err error
	select {
	case err = <-done:
	case <-sendCtx.Done():
		err = sendCtx.Err()
	}
	if err != nil {
		return &DeliveryError{ObserverID: obs.ID(), Tick: tick, Err: err}
	}
	return nil
}

// connected returns the observers currently in the connected state.
func (s *Scheduler) connected() []Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Observer, 0, len(s.observers))
	for _, entry := range s.observers {
		if entry.state == ObserverConnected {
			out = append(out, entry.observer)
		}
	}
	return out
}
