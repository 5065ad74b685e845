package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store implementation.
// Child namespaces share the parent's map. Safe for concurrent use.
type MemoryStore struct {
	shared *memoryBlobs
	prefix string
}

type memoryBlobs struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shared: &memoryBlobs{blobs: make(map[string][]byte)},
	}
}

// Get returns a copy of the named blob.
func (m *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	m.shared.mu.RLock()
	defer m.shared.mu.RUnlock()

	data, ok := m.shared.blobs[m.prefix+name]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

// Put stores a copy of data.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()

	m.shared.blobs[m.prefix+name] = append([]byte{}, data...)
	return nil
}

// Delete removes a blob.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()

	delete(m.shared.blobs, m.prefix+name)
	return nil
}

// List returns the sorted names matching the prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.shared.mu.RLock()
	defer m.shared.mu.RUnlock()

	var names []string
	for key := range m.shared.blobs {
		name, ok := strings.CutPrefix(key, m.prefix)
		if ok && strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Root returns a description of the namespace.
func (m *MemoryStore) Root() string { return "mem://" + m.prefix }

// Sub returns the child namespace called name.
func (m *MemoryStore) Sub(name string) Store {
	return &MemoryStore{shared: m.shared, prefix: m.prefix + name + "/"}
}
