package domain

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error produced by the scan, dedup, cleanup, and
// delivery paths wraps exactly one of these so callers can branch on the
// category with errors.Is instead of inspecting messages.
var (
	// ErrCacheUnavailable covers connect, timeout, and parse failures of the
	// key-value cache. It always degrades to a safe default.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrStoreUnavailable is returned when the task store cannot answer a
	// scan. It ends the current tick.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDeliveryFailed marks a failed real-time push or email send for one
	// recipient. It never affects other recipients.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrInvalidChannel is returned for a notification channel outside
	// {reminder, overdue}.
	ErrInvalidChannel = errors.New("invalid notification channel")
)

// OpError records which operation failed, the failure kind, and the cause.
type OpError struct {
	Op   string // e.g. "scan.due_soon", "dedup.mark"
	Kind error  // one of the Err* kinds above
	Err  error  // underlying cause, may be nil
}

// NewOpError builds an OpError.
func NewOpError(op string, kind, err error) *OpError {
	return &OpError{Op: op, Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is/errors.As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the failure kind carried by err, or nil when err does not
// belong to the taxonomy.
func KindOf(err error) error {
	for _, kind := range []error{ErrCacheUnavailable, ErrStoreUnavailable, ErrDeliveryFailed, ErrInvalidChannel} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
