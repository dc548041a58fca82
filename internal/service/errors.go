// Package service provides business logic services for the factory monitor.
package service

import (
	"fmt"

	"factory-monitor/internal/model"
)

// NotFoundError is returned when a line or alert id is unknown.
type NotFoundError struct {
	Kind string // "alert" or "line"
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvalidTransitionError is returned when an alert cannot move to the requested state.
type InvalidTransitionError struct {
	ID   string
	From model.AlertState
	To   model.AlertState
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("alert %s cannot transition from %s to %s", e.ID, e.From, e.To)
}

// DeliveryError is raised when a snapshot could not be delivered to an observer.
// It never propagates past the scheduler; the observer is disconnected instead.
type DeliveryError struct {
	ObserverID string
	Tick       uint64
	Err        error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery of tick %d to observer %s failed: %v", e.Tick, e.ObserverID, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}
