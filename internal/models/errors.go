package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no donation exists for the requested id.
var ErrNotFound = errors.New("donation not found")

// ErrPaymentNotCompleted is returned when a processor session exists but its
// payment has not (yet) succeeded.
var ErrPaymentNotCompleted = errors.New("payment not completed")

// ValidationError reports a rejected submission and names the offending
// field. It is detected before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RenderError wraps a QR or PDF generation failure.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

// StorageError wraps a document-store failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// UpstreamError wraps a payment-processor API failure.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Service, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }
