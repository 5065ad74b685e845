// Package blob frames encoded records before they are stored in a page.
//
// Frame format:
//
//	[type uint8][payload]
//
// For TypeNone the payload is the record itself. Compressed frames carry a
// uvarint with the raw length followed by the compressed bytes. A frame is
// never empty, which lets page files use a zero length entry for an empty
// slot.
package blob

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrCorrupt is returned for frames that cannot be decoded.
var ErrCorrupt = errors.New("blob: corrupt frame")

// Type defines the compression algorithm used for a frame.
type Type uint8

const (
	// TypeNone stores records uncompressed.
	TypeNone Type = 0
	// TypeLZ4 indicates LZ4 block compression (fast, good for hot data).
	TypeLZ4 Type = 1
	// TypeZSTD indicates ZSTD compression (better ratio, good for cold data).
	TypeZSTD Type = 2
)

// String returns the stable name of the compression type.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeLZ4:
		return "lz4"
	case TypeZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseType returns the compression type with the given name.
func ParseType(name string) (Type, error) {
	switch name {
	case "", "none":
		return TypeNone, nil
	case "lz4":
		return TypeLZ4, nil
	case "zstd":
		return TypeZSTD, nil
	default:
		return TypeNone, fmt.Errorf("blob: unknown compression %q", name)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode frames data with the requested compression. It falls back to an
// uncompressed frame when compression saves less than 10%.
func Encode(data []byte, typ Type) ([]byte, error) {
	var compressed []byte
	switch typ {
	case TypeNone:
	case TypeLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0 means incompressible
	case TypeZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("blob: unknown compression %d", typ)
	}

	if typ == TypeNone || len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, 1+len(data))
		out[0] = byte(TypeNone)
		copy(out[1:], data)
		return out, nil
	}

	out := make([]byte, 0, 1+binary.MaxVarintLen64+len(compressed))
	out = append(out, byte(typ))
	out = binary.AppendUvarint(out, uint64(len(data)))
	return append(out, compressed...), nil
}

// Decode returns the record bytes held by a frame.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorrupt)
	}

	typ := Type(frame[0])
	if typ == TypeNone {
		return frame[1:], nil
	}

	rawLen, n := binary.Uvarint(frame[1:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: invalid length", ErrCorrupt)
	}
	payload := frame[1+n:]

	switch typ {
	case TypeLZ4:
		out := make([]byte, rawLen)
		m, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint64(m) != rawLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	case TypeZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(payload, make([]byte, 0, rawLen))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint64(len(out)) != rawLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %d", ErrCorrupt, typ)
	}
}
