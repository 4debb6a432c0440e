package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrExportNotConfigured = errors.New("export sink not configured")
)

// RequestFailedError is returned for transport failures, non-2xx statuses,
// success=false envelopes and unparsable bodies.
type RequestFailedError struct {
	Operation string
	Status    int
	Reason    string
	Err       error
}

func (e *RequestFailedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Operation, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s request failed: %s", e.Operation, e.Reason)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// ValidationError represents local input issues caught before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ComparisonFailedError means one leg of a paired fetch failed. No partial
// comparison is ever returned alongside it.
type ComparisonFailedError struct {
	Err error
}

func (e *ComparisonFailedError) Error() string {
	return fmt.Sprintf("week comparison failed: %v", e.Err)
}

func (e *ComparisonFailedError) Unwrap() error {
	return e.Err
}
