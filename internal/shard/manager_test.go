package shard

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/litedb/storage"
)

func newTestManager(t *testing.T, store storage.Store, pageSize, capacity int) *Manager {
	t.Helper()
	return NewManager(newTestCache(t, store, pageSize, capacity))
}

func collect(t *testing.T, seq func(func(Record, error) bool)) []Record {
	t.Helper()
	var out []Record
	for rec, err := range seq {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestManagerInsertRetrieve(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, storage.NewMemoryStore(), 3, 2)

	for slot := range uint32(10) {
		require.NoError(t, m.Insert(ctx, []byte(fmt.Sprintf("r%d", slot)), slot))
	}

	blob, err := m.Retrieve(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("r7"), blob)

	blob, err = m.Retrieve(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, blob)

	got := collect(t, m.RetrieveMany(ctx, []uint32{9, 1, 5, 4}))
	require.Len(t, got, 4)
	assert.Equal(t, []uint32{1, 4, 5, 9}, []uint32{got[0].Slot, got[1].Slot, got[2].Slot, got[3].Slot})
	assert.Equal(t, []byte("r9"), got[3].Blob)
}

func TestManagerRetrieveManyLoadsEachPageOnce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := newTestManager(t, store, 4, 1)
	for slot := range uint32(16) {
		require.NoError(t, m.Insert(ctx, []byte{byte(slot)}, slot))
	}
	_, err := m.Commit(ctx)
	require.NoError(t, err)

	reopened := newTestManager(t, store, 4, 1)
	scattered := []uint32{15, 0, 9, 3, 12, 1, 6, 10}
	got := collect(t, reopened.RetrieveMany(ctx, scattered))
	assert.Len(t, got, len(scattered))
	assert.Equal(t, int64(4), reopened.Cache().Stats().Loads, "one load per page")
}

func TestManagerDeleteAndRetrieveAll(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := newTestManager(t, store, 4, 2)

	for slot := range uint32(10) {
		require.NoError(t, m.Insert(ctx, []byte{byte(slot)}, slot))
	}
	require.NoError(t, m.Delete(ctx, []uint32{8, 0, 5, 42}))

	var slots []uint32
	for _, rec := range collect(t, m.RetrieveAll(ctx)) {
		slots = append(slots, rec.Slot)
		assert.Equal(t, []byte{byte(rec.Slot)}, rec.Blob)
	}
	assert.Equal(t, []uint32{1, 2, 3, 4, 6, 7, 9}, slots)

	_, err := m.Commit(ctx)
	require.NoError(t, err)

	reopened := newTestManager(t, store, 4, 2)
	assert.Len(t, collect(t, reopened.RetrieveAll(ctx)), 7)
}

func TestManagerRetrieveAllEarlyStop(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, storage.NewMemoryStore(), 2, 4)
	for slot := range uint32(6) {
		require.NoError(t, m.Insert(ctx, []byte{1}, slot))
	}

	count := 0
	for _, err := range m.RetrieveAll(ctx) {
		require.NoError(t, err)
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestManagerReset(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, storage.NewMemoryStore(), 2, 2)
	require.NoError(t, m.Insert(ctx, []byte{1}, 0))
	m.Reset()
	assert.Empty(t, collect(t, m.RetrieveAll(ctx)))
}
