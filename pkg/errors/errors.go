package errors

import (
	"fmt"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when a step guard or payload validation fails.
// Step is set for wizard guard failures; Fields carries per-field messages.
type ErrValidation struct {
	Message string
	Step    domain.Step
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrUpload is returned for a single failed image upload. Failures are
// per-item: one failed upload never fails the others.
type ErrUpload struct {
	FileName string
	Reason   string
}

func (e *ErrUpload) Error() string {
	return fmt.Sprintf("upload failed for %s: %s", e.FileName, e.Reason)
}

// ErrServiceUnavailable is returned when a collaborating service (promo
// validation, capacity) cannot be reached. Callers degrade rather than block.
type ErrServiceUnavailable struct {
	Service string
	Err     error
}

func (e *ErrServiceUnavailable) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ErrServiceUnavailable) Unwrap() error { return e.Err }

// ErrPersistence is returned when an order upsert fails. Fatal to the current
// action; no partial order is assumed unless an id was returned earlier.
type ErrPersistence struct {
	Op  string
	Err error
}

func (e *ErrPersistence) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *ErrPersistence) Unwrap() error { return e.Err }

// ErrInvalidStateTransition is returned when an invalid order status transition is attempted
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrInvalidPromo is returned when a promo code fails validation.
type ErrInvalidPromo struct {
	Code   string
	Reason string
}

func (e *ErrInvalidPromo) Error() string {
	return fmt.Sprintf("promo code %s invalid: %s", e.Code, e.Reason)
}
