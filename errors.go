package litedb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/litedb/internal/blob"
	"github.com/hupe1980/litedb/internal/index"
	"github.com/hupe1980/litedb/internal/shard"
)

var (
	// ErrUnknownIndex is returned when a predicate names an attribute that
	// has no index, either because it was never seen or because it is
	// blacklisted.
	ErrUnknownIndex = index.ErrUnknownIndex

	// ErrInvalidRange is returned for a range predicate that does not have
	// exactly two bounds.
	ErrInvalidRange = index.ErrInvalidRange

	// ErrTypeMismatch is returned when a predicate value cannot be compared
	// with the values held by an index.
	ErrTypeMismatch = index.ErrTypeMismatch

	// ErrNotFound is returned when an index does not hold an expected
	// (value, slot) association. It signals an internal inconsistency.
	ErrNotFound = index.ErrNotFound

	// ErrPath is returned when a store does not hold what the operation
	// expects: a table in Open, nothing in Create.
	ErrPath = errors.New("invalid table path")

	// ErrNoTable is returned by Select when no table holds the record type.
	ErrNoTable = errors.New("no table for record type")

	// ErrUnsupportedRecord is returned for record types that cannot be stored.
	ErrUnsupportedRecord = errors.New("unsupported record type")

	// ErrCorrupt is returned when page, index or info bytes cannot be decoded.
	ErrCorrupt = errors.New("corrupt table data")

	// ErrInvalidConfig is returned for invalid options.
	ErrInvalidConfig = errors.New("invalid configuration")
)

type (
	// UnknownIndexError names the attribute of a failed lookup.
	UnknownIndexError = index.UnknownIndexError
	// InvalidRangeError names the attribute of a malformed range predicate.
	InvalidRangeError = index.InvalidRangeError
	// TypeMismatchError describes an incomparable predicate value.
	TypeMismatchError = index.TypeMismatchError
	// NotFoundError describes a missing index association.
	NotFoundError = index.NotFoundError
)

// PathError reports a store that cannot be used as requested.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid table path %s: %s", e.Path, e.Reason)
}

func (e *PathError) Unwrap() error { return ErrPath }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrCorrupt) {
		return err
	}
	if errors.Is(err, shard.ErrCorrupt) || errors.Is(err, blob.ErrCorrupt) || errors.Is(err, index.ErrCorrupt) {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return err
}
