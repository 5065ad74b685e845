package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/litedb/internal/fs"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := IsEmpty(ctx, s)
	require.NoError(t, err)
	assert.True(t, empty)

	_, err = s.Get(ctx, "info")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "info", []byte("v1")))
	require.NoError(t, s.Put(ctx, "info", []byte("v2")))
	require.NoError(t, s.Put(ctx, "page1", []byte("p1")))
	require.NoError(t, s.Put(ctx, "page0", []byte("p0")))

	data, err := s.Get(ctx, "info")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"info", "page0", "page1"}, names)

	names, err = s.List(ctx, "page")
	require.NoError(t, err)
	assert.Equal(t, []string{"page0", "page1"}, names)

	sub := s.Sub("t1")
	require.NoError(t, sub.Put(ctx, "info", []byte("child")))
	data, err = sub.Get(ctx, "info")
	require.NoError(t, err)
	assert.Equal(t, []byte("child"), data)

	names, err = s.List(ctx, "t1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1/info"}, names)

	require.NoError(t, s.Delete(ctx, "page0"))
	require.NoError(t, s.Delete(ctx, "page0"))
	_, err = s.Get(ctx, "page0")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Clear(ctx, sub))
	empty, err = IsEmpty(ctx, sub)
	require.NoError(t, err)
	assert.True(t, empty)

	names, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"info", "page1"}, names)

	assert.Error(t, s.Put(ctx, "../escape", nil))
	assert.Error(t, s.Put(ctx, "/abs", nil))
	_, err = s.Get(ctx, "")
	assert.Error(t, err)
}

func TestLocalStore(t *testing.T) {
	testStore(t, NewLocalStore(filepath.Join(t.TempDir(), "db")))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "x", data))
	data[0] = 'z'

	got, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestLocalStoreFileSystem(t *testing.T) {
	ctx := context.Background()
	ffs := fs.NewFaultyFS(nil)
	s := NewLocalStore(t.TempDir(), WithFileSystem(ffs))

	require.NoError(t, s.Put(ctx, "page0", []byte("x")))
	require.NoError(t, s.Put(ctx, "page0", []byte("y")))
	assert.Equal(t, 2, ffs.Writes("page0"))

	ffs.AddRule("page1", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
	assert.Error(t, s.Put(ctx, "page1", []byte("x")))

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"page0"}, names)
}
