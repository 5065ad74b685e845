package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/litedb/field"
)

var (
	// ErrUnknownIndex is returned when a predicate names an attribute without an index.
	ErrUnknownIndex = errors.New("unknown index")
	// ErrInvalidRange is returned for range predicates without exactly two bounds.
	ErrInvalidRange = errors.New("invalid range")
	// ErrTypeMismatch is returned when a predicate value disagrees with the index kind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNotFound is returned when removing a value or slot that is not indexed.
	ErrNotFound = errors.New("not found")
	// ErrUnindexable is returned by Index.Add for values that cannot be ordered.
	ErrUnindexable = errors.New("value cannot be indexed")
	// ErrCorrupt is returned when an index snapshot cannot be decoded.
	ErrCorrupt = errors.New("index: corrupt snapshot")
)

// UnknownIndexError reports a predicate on an attribute without an index.
type UnknownIndexError struct {
	Field       string
	Blacklisted bool
}

func (e *UnknownIndexError) Error() string {
	if e.Blacklisted {
		return fmt.Sprintf("unknown index: %q is blacklisted", e.Field)
	}
	return fmt.Sprintf("unknown index: %q", e.Field)
}

func (e *UnknownIndexError) Unwrap() error { return ErrUnknownIndex }

// InvalidRangeError reports a range predicate with the wrong number of bounds.
type InvalidRangeError struct {
	Field  string
	Bounds int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range for %q: expected 2 bounds, got %d", e.Field, e.Bounds)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// TypeMismatchError reports a predicate value of the wrong kind.
type TypeMismatchError struct {
	Field string
	Want  field.Kind
	Got   field.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for %q: index holds %s, got %s", e.Field, e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// NotFoundError reports a value or slot missing from an index.
type NotFoundError struct {
	Field string
	Value field.Value
	Slot  uint32
}

func (e *NotFoundError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("not found: slot %d for value %s", e.Slot, e.Value)
	}
	return fmt.Sprintf("not found: slot %d for %q = %s", e.Slot, e.Field, e.Value)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
