package shard

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/litedb/internal/hash"
)

// ErrCorrupt is returned when a page file cannot be decoded.
var ErrCorrupt = errors.New("shard: corrupt page")

const (
	checksumSize = 4
	lengthSize   = 8
)

// Shard is one page of record blobs.
type Shard struct {
	slots    [][]byte
	checksum uint32
	count    int
}

// New returns an empty shard with pageSize slots.
func New(pageSize int) *Shard {
	s := &Shard{slots: make([][]byte, pageSize)}
	for i := range s.slots {
		s.checksum ^= hash.Slot(i, nil)
	}
	return s
}

// Get returns the blob at offset, or nil for an empty slot.
func (s *Shard) Get(offset int) []byte {
	return s.slots[offset]
}

// Set stores blob at offset. A nil or empty blob clears the slot.
func (s *Shard) Set(offset int, blob []byte) {
	old := s.slots[offset]
	if len(blob) == 0 {
		blob = nil
	}
	s.checksum ^= hash.Slot(offset, old) ^ hash.Slot(offset, blob)
	switch {
	case old == nil && blob != nil:
		s.count++
	case old != nil && blob == nil:
		s.count--
	}
	s.slots[offset] = blob
}

// Checksum returns the running checksum over all slots.
func (s *Shard) Checksum() uint32 { return s.checksum }

// Size returns the number of slots (the page size).
func (s *Shard) Size() int { return len(s.slots) }

// Count returns the number of occupied slots.
func (s *Shard) Count() int { return s.count }

// Blobs calls fn for every occupied slot in offset order.
func (s *Shard) Blobs(fn func(offset int, blob []byte) bool) {
	for i, b := range s.slots {
		if b != nil && !fn(i, b) {
			return
		}
	}
}

// MarshalBinary encodes the shard in page file format.
func (s *Shard) MarshalBinary() ([]byte, error) {
	last := len(s.slots) - 1
	for last >= 0 && s.slots[last] == nil {
		last--
	}

	size := checksumSize
	for _, b := range s.slots[:last+1] {
		size += lengthSize + len(b)
	}

	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, s.checksum)
	for _, b := range s.slots[:last+1] {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(b)))
		buf = append(buf, b...)
	}
	return buf, nil
}

// Decode parses a page file. The returned shard's checksum is recomputed
// from its content; StoredChecksum returns the header value.
func Decode(data []byte, pageSize int) (*Shard, error) {
	if len(data) < checksumSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrCorrupt, len(data))
	}
	s := New(pageSize)
	rest := data[checksumSize:]
	for offset := 0; offset < pageSize && len(rest) > 0; offset++ {
		if len(rest) < lengthSize {
			return nil, fmt.Errorf("%w: truncated length at offset %d", ErrCorrupt, offset)
		}
		n := binary.LittleEndian.Uint64(rest)
		rest = rest[lengthSize:]
		if n > uint64(len(rest)) {
			return nil, fmt.Errorf("%w: truncated payload at offset %d", ErrCorrupt, offset)
		}
		if n > 0 {
			s.Set(offset, rest[:n:n])
		}
		rest = rest[n:]
	}
	return s, nil
}

// StoredChecksum returns the checksum recorded in a page file header.
func StoredChecksum(data []byte) (uint32, error) {
	if len(data) < checksumSize {
		return 0, fmt.Errorf("%w: %d byte header", ErrCorrupt, len(data))
	}
	return binary.LittleEndian.Uint32(data), nil
}
