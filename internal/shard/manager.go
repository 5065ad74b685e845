package shard

import (
	"context"
	"iter"
	"slices"
)

// Record is a stored blob and the slot holding it.
type Record struct {
	Slot uint32
	Blob []byte
}

// Manager translates logical slots into page coordinates over a Cache.
type Manager struct {
	cache    *Cache
	pageSize uint32
}

// NewManager returns a manager over cache.
func NewManager(cache *Cache) *Manager {
	return &Manager{cache: cache, pageSize: uint32(cache.PageSize())}
}

// Cache returns the underlying page cache.
func (m *Manager) Cache() *Cache { return m.cache }

func (m *Manager) locate(slot uint32) (page, offset int) {
	return int(slot / m.pageSize), int(slot % m.pageSize)
}

// Retrieve returns the blob stored at slot, or nil when the slot is empty.
func (m *Manager) Retrieve(ctx context.Context, slot uint32) ([]byte, error) {
	page, offset := m.locate(slot)
	s, err := m.cache.Get(ctx, page, false)
	if err != nil || s == nil {
		return nil, err
	}
	return s.Get(offset), nil
}

// RetrieveMany yields the occupied slots among slots in ascending order, so
// each page is loaded at most once per call. Empty slots are skipped.
func (m *Manager) RetrieveMany(ctx context.Context, slots []uint32) iter.Seq2[Record, error] {
	sorted := sortedSlots(slots)
	return func(yield func(Record, error) bool) {
		for _, slot := range sorted {
			blob, err := m.Retrieve(ctx, slot)
			if err != nil {
				yield(Record{}, err)
				return
			}
			if blob == nil {
				continue
			}
			if !yield(Record{Slot: slot, Blob: blob}, nil) {
				return
			}
		}
	}
}

// RetrieveAll yields every occupied slot in slot order.
func (m *Manager) RetrieveAll(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		stopped := false
		err := m.cache.Each(ctx, func(n int, s *Shard) bool {
			base := uint32(n) * m.pageSize
			s.Blobs(func(offset int, blob []byte) bool {
				stopped = !yield(Record{Slot: base + uint32(offset), Blob: blob}, nil)
				return !stopped
			})
			return !stopped
		})
		if err != nil && !stopped {
			yield(Record{}, err)
		}
	}
}

// Insert stores blob at slot, creating its page when needed.
func (m *Manager) Insert(ctx context.Context, blob []byte, slot uint32) error {
	page, offset := m.locate(slot)
	s, err := m.cache.Get(ctx, page, true)
	if err != nil {
		return err
	}
	s.Set(offset, blob)
	return nil
}

// Delete empties every slot in slots, visiting pages in ascending order.
func (m *Manager) Delete(ctx context.Context, slots []uint32) error {
	for _, slot := range sortedSlots(slots) {
		page, offset := m.locate(slot)
		s, err := m.cache.Get(ctx, page, false)
		if err != nil {
			return err
		}
		if s != nil {
			s.Set(offset, nil)
		}
	}
	return nil
}

// Commit writes every dirty resident page.
func (m *Manager) Commit(ctx context.Context) (int, error) {
	return m.cache.Commit(ctx)
}

// Reset forgets every page.
func (m *Manager) Reset() { m.cache.Reset() }

func sortedSlots(slots []uint32) []uint32 {
	if slices.IsSorted(slots) {
		return slots
	}
	sorted := slices.Clone(slots)
	slices.Sort(sorted)
	return sorted
}
