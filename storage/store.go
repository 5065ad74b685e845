package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is a flat namespace of named blobs.
type Store interface {
	// Get returns the content of the named blob.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put creates or replaces the named blob.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes the named blob. Deleting a missing blob succeeds.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names that start with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Sub returns the child namespace called name.
	Sub(name string) Store
}

// IsEmpty reports whether s holds no blobs.
func IsEmpty(ctx context.Context, s Store) (bool, error) {
	names, err := s.List(ctx, "")
	if err != nil {
		return false, err
	}
	return len(names) == 0, nil
}

// Clear deletes every blob in s.
func Clear(ctx context.Context, s Store) error {
	names, err := s.List(ctx, "")
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateName rejects names that would escape a store namespace.
func ValidateName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("storage: invalid name %q", name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("storage: invalid name %q", name)
		}
	}
	return nil
}

// JoinKey joins a key prefix and a name for object stores.
func JoinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
