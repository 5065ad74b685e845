package index

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/litedb/field"
	"github.com/hupe1980/litedb/internal/hash"
)

// Snapshot layout:
//
//	magic "LDBX" | version u8
//	blacklist: uvarint count, names
//	indexes:   uvarint count, per index:
//	           name | kind u8 | nulls (len-prefixed roaring)
//	           uvarint entries, per entry: value | tag u8 | slot uvarint or roaring
//	crc32c u32 LE over everything before it
var snapshotMagic = []byte("LDBX")

const (
	snapshotVersion = 1

	tagOne  = 1
	tagMany = 2
)

// MarshalBinary encodes the indexes and blacklist as one snapshot.
func (m *Manager) MarshalBinary() ([]byte, error) {
	buf := append([]byte{}, snapshotMagic...)
	buf = append(buf, snapshotVersion)

	blacklist := m.Blacklist()
	buf = binary.AppendUvarint(buf, uint64(len(blacklist)))
	for _, name := range blacklist {
		buf = appendString(buf, name)
	}

	names := m.Names()
	buf = binary.AppendUvarint(buf, uint64(len(names)))
	for _, name := range names {
		ix := m.indexes[name]
		buf = appendString(buf, name)
		buf = append(buf, byte(ix.kind))

		nulls, err := ix.nulls.ToBytes()
		if err != nil {
			return nil, err
		}
		buf = appendBytes(buf, nulls)

		buf = binary.AppendUvarint(buf, uint64(ix.tree.Len()))
		var encErr error
		ix.tree.Ascend(func(it *item) bool {
			if buf, encErr = field.AppendValue(buf, it.value); encErr != nil {
				return false
			}
			if it.many == nil {
				buf = append(buf, tagOne)
				buf = binary.AppendUvarint(buf, uint64(it.one))
				return true
			}
			var b []byte
			if b, encErr = it.many.ToBytes(); encErr != nil {
				return false
			}
			buf = append(buf, tagMany)
			buf = appendBytes(buf, b)
			return true
		})
		if encErr != nil {
			return nil, fmt.Errorf("index %q: %w", name, encErr)
		}
	}

	return binary.LittleEndian.AppendUint32(buf, hash.CRC32C(buf)), nil
}

// UnmarshalBinary replaces the manager state with a snapshot.
func (m *Manager) UnmarshalBinary(data []byte) error {
	if len(data) < len(snapshotMagic)+1+4 || !bytes.HasPrefix(data, snapshotMagic) {
		return fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	body, trailer := data[:len(data)-4], data[len(data)-4:]
	if want, got := binary.LittleEndian.Uint32(trailer), hash.CRC32C(body); want != got {
		return fmt.Errorf("%w: checksum mismatch (expected %08x, got %08x)", ErrCorrupt, want, got)
	}
	if v := body[len(snapshotMagic)]; v != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}

	r := &reader{data: body[len(snapshotMagic)+1:]}
	indexes := make(map[string]*Index)
	blacklist := make(map[string]struct{})

	for n := r.readUvarint(); n > 0 && r.err == nil; n-- {
		blacklist[r.readString()] = struct{}{}
	}

	for n := r.readUvarint(); n > 0 && r.err == nil; n-- {
		name := r.readString()
		ix := New()
		ix.kind = field.Kind(r.readByte())
		if ix.kind != field.KindInvalid && !ix.kind.Orderable() {
			r.fail("invalid index kind")
		}
		ix.nulls = r.readBitmap()

		for e := r.readUvarint(); e > 0 && r.err == nil; e-- {
			it := &item{value: r.readValue()}
			switch r.readByte() {
			case tagOne:
				it.one = uint32(r.readUvarint())
			case tagMany:
				it.many = r.readBitmap()
			default:
				r.fail("unknown posting tag")
			}
			if r.err == nil {
				ix.tree.ReplaceOrInsert(it)
			}
		}
		indexes[name] = ix
	}
	if r.err != nil {
		return r.err
	}

	m.indexes = indexes
	m.blacklist = blacklist
	return nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendBytes(buf, b []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

// reader decodes snapshot fields, remembering the first error.
type reader struct {
	data []byte
	err  error
}

func (r *reader) fail(msg string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s", ErrCorrupt, msg)
	}
	r.data = nil
}

func (r *reader) readUvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.data)
	if n <= 0 {
		r.fail("invalid varint")
		return 0
	}
	r.data = r.data[n:]
	return v
}

func (r *reader) readByte() byte {
	if r.err != nil {
		return 0
	}
	if len(r.data) == 0 {
		r.fail("unexpected end of data")
		return 0
	}
	b := r.data[0]
	r.data = r.data[1:]
	return b
}

func (r *reader) readBytes() []byte {
	n := r.readUvarint()
	if r.err != nil {
		return nil
	}
	if n > uint64(len(r.data)) {
		r.fail("truncated bytes")
		return nil
	}
	b := r.data[:n]
	r.data = r.data[n:]
	return b
}

func (r *reader) readString() string { return string(r.readBytes()) }

func (r *reader) readBitmap() *roaring.Bitmap {
	b := r.readBytes()
	bm := roaring.New()
	if r.err != nil {
		return bm
	}
	if err := bm.UnmarshalBinary(b); err != nil {
		r.fail(err.Error())
	}
	return bm
}

func (r *reader) readValue() field.Value {
	if r.err != nil {
		return field.Value{}
	}
	v, rest, err := field.ParseValue(r.data)
	if err != nil {
		r.fail(err.Error())
		return field.Value{}
	}
	r.data = rest
	return v
}
