// Package errors defines the error taxonomy used across the sampling
// engine: a single concrete error type carrying a numeric code, a
// message and an optional wrapped cause, built via per-domain
// constructors. Mirrors the shape of a conventional database error type,
// just with codes for the tree, selection, engine, transport and config
// domains instead of parse/exec/storage/concurrency ones.
package errors

import "fmt"

// ReservoirError is a domain error raised by the sampling engine.
type ReservoirError struct {
	Code    int
	Message string
	Cause   error
}

func (e ReservoirError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("reservoir error %d: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("reservoir error %d: %s", e.Code, e.Message)
}

func (e ReservoirError) Unwrap() error {
	return e.Cause
}

// Error codes.
const (
	ErrCodeUnknown    = 0
	ErrCodeTree       = 1000
	ErrCodeSelection  = 2000
	ErrCodeEngine     = 3000
	ErrCodeTransport  = 4000
	ErrCodeConfig     = 5000
)

// New creates a new ReservoirError.
func New(code int, message string, cause error) error {
	return ReservoirError{Code: code, Message: message, Cause: cause}
}

// NewTreeError wraps a caller-contract violation inside the order-stat tree.
func NewTreeError(message string, cause error) error {
	return New(ErrCodeTree, message, cause)
}

// NewSelectionError wraps a failure inside the distributed selection protocol.
func NewSelectionError(message string, cause error) error {
	return New(ErrCodeSelection, message, cause)
}

// NewEngineError wraps a failure inside the reservoir engine.
func NewEngineError(message string, cause error) error {
	return New(ErrCodeEngine, message, cause)
}

// NewTransportError wraps a collective-transport failure. Per the
// specification's error handling design, this is fatal and is not retried.
func NewTransportError(message string, cause error) error {
	return New(ErrCodeTransport, message, cause)
}

// NewConfigError wraps an argument-parse / configuration failure in the
// driver. This is external to the core and is handled by the caller, not
// by panicking.
func NewConfigError(message string, cause error) error {
	return New(ErrCodeConfig, message, cause)
}
