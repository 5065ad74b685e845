package shard

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardSetGet(t *testing.T) {
	s := New(4)
	empty := s.Checksum()

	s.Set(1, []byte("a"))
	assert.Equal(t, []byte("a"), s.Get(1))
	assert.Nil(t, s.Get(0))
	assert.Equal(t, 1, s.Count())
	assert.NotEqual(t, empty, s.Checksum())

	s.Set(1, nil)
	assert.Nil(t, s.Get(1))
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, empty, s.Checksum(), "clearing restores the empty checksum")

	s.Set(2, []byte{})
	assert.Nil(t, s.Get(2))
	assert.Equal(t, empty, s.Checksum())
}

func TestShardChecksumIsContentDefined(t *testing.T) {
	a := New(8)
	a.Set(0, []byte("x"))
	a.Set(5, []byte("y"))
	a.Set(0, []byte("z"))

	b := New(8)
	b.Set(5, []byte("y"))
	b.Set(0, []byte("z"))

	assert.Equal(t, a.Checksum(), b.Checksum())

	c := New(8)
	c.Set(5, []byte("z"))
	c.Set(0, []byte("y"))
	assert.NotEqual(t, a.Checksum(), c.Checksum(), "swapped records differ")
}

func TestShardRoundTrip(t *testing.T) {
	s := New(6)
	s.Set(0, []byte("first"))
	s.Set(3, []byte("fourth"))

	data, err := s.MarshalBinary()
	require.NoError(t, err)

	// header + four entries (offsets 0..3), trailing empties omitted
	assert.Equal(t, 4+4*8+len("first")+len("fourth"), len(data))

	stored, err := StoredChecksum(data)
	require.NoError(t, err)
	assert.Equal(t, s.Checksum(), stored)

	got, err := Decode(data, 6)
	require.NoError(t, err)
	assert.Equal(t, s.Checksum(), got.Checksum())
	assert.Equal(t, []byte("first"), got.Get(0))
	assert.Nil(t, got.Get(1))
	assert.Nil(t, got.Get(2))
	assert.Equal(t, []byte("fourth"), got.Get(3))
	assert.Nil(t, got.Get(5))
	assert.Equal(t, 2, got.Count())
}

func TestShardEmptyRoundTrip(t *testing.T) {
	s := New(3)
	data, err := s.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 4)

	got, err := Decode(data, 3)
	require.NoError(t, err)
	assert.Equal(t, s.Checksum(), got.Checksum())
}

func TestDecodeStopsAtPageSize(t *testing.T) {
	s := New(4)
	for i := range 4 {
		s.Set(i, []byte{byte(i + 1)})
	}
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	got, err := Decode(data, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Size())
	assert.Equal(t, []byte{1}, got.Get(0))
	assert.Equal(t, []byte{2}, got.Get(1))
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := Decode([]byte{1, 2}, 4)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = StoredChecksum(nil)
	assert.ErrorIs(t, err, ErrCorrupt)

	truncated := []byte{0, 0, 0, 0, 1, 2}
	_, err = Decode(truncated, 4)
	assert.ErrorIs(t, err, ErrCorrupt)

	short := binary.LittleEndian.AppendUint64([]byte{0, 0, 0, 0}, 10)
	short = append(short, 'x')
	_, err = Decode(short, 4)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBlobsOrder(t *testing.T) {
	s := New(5)
	s.Set(4, []byte("e"))
	s.Set(1, []byte("b"))

	var offsets []int
	s.Blobs(func(offset int, _ []byte) bool {
		offsets = append(offsets, offset)
		return true
	})
	assert.Equal(t, []int{1, 4}, offsets)
}

func TestPageName(t *testing.T) {
	assert.Equal(t, "page12", PageName(12))

	n, ok := ParsePageName("page7")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	for _, bad := range []string{"page", "page-1", "page07", "pagex", "info", "page1.tmp"} {
		_, ok := ParsePageName(bad)
		assert.False(t, ok, bad)
	}
}
