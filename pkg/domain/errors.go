package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a required record or datum is absent.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable is matched by every StoreUnavailableError via errors.Is.
var ErrStoreUnavailable = errors.New("store unavailable")

// DataConsistencyError reports that a stored record violates an invariant the
// engine relies on. It is never retried.
type DataConsistencyError struct {
	Label  string
	Field  string
	Detail string
	Err    error
}

func (e *DataConsistencyError) Error() string {
	msg := fmt.Sprintf("data consistency: %s.%s: %s", e.Label, e.Field, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause, typically ErrNotFound.
func (e *DataConsistencyError) Unwrap() error { return e.Err }

// StoreUnavailableError wraps a failed lookup against the record store.
type StoreUnavailableError struct {
	Collection Collection
	Op         string
	Err        error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %s %s: %v", e.Collection, e.Op, e.Err)
}

// Unwrap returns the backend error.
func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStoreUnavailable) hold for every instance.
func (e *StoreUnavailableError) Is(target error) bool { return target == ErrStoreUnavailable }

// Unavailable wraps err as a StoreUnavailableError unless it already is one.
func Unavailable(coll Collection, op string, err error) error {
	if err == nil {
		return nil
	}
	var su *StoreUnavailableError
	if errors.As(err, &su) {
		return err
	}
	return &StoreUnavailableError{Collection: coll, Op: op, Err: err}
}

// MalformedLabelError reports a label that does not decompose into
// level, index and genus components.
type MalformedLabelError struct {
	Label  string
	Reason string
}

func (e *MalformedLabelError) Error() string {
	return fmt.Sprintf("malformed label %q: %s", e.Label, e.Reason)
}
