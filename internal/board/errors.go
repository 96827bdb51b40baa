package board

import (
	"errors"
	"fmt"
)

// ErrAbsent is returned by an Adapter when nothing has been stored yet.
var ErrAbsent = errors.New("no stored board")

// ValidationError describes blank or malformed user input. The Store absorbs it as a
// no-op and reports it through Result.Rejected rather than as an error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

type IndexOutOfRangeError struct {
	What  string
	Index int
	Len   int
}

func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.What, e.Index, e.Len)
}

// PersistenceReadError wraps stored data that exists but cannot be decoded.
type PersistenceReadError struct {
	Source string
	Err    error
}

func (e PersistenceReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Source, e.Err)
}

func (e PersistenceReadError) Unwrap() error { return e.Err }

// IsCorrupt reports whether err means stored data exists but is unusable.
func IsCorrupt(err error) bool {
	var pe PersistenceReadError
	return errors.As(err, &pe)
}
