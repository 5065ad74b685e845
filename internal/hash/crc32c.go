package hash

import (
	"encoding/binary"
	"hash"
	"hash/crc32"
)

// crc32cTable is pre-computed for the CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Slot returns the checksum contribution of blob stored at offset within a
// page. A nil blob is the empty slot. Mixing in the offset makes the XOR of
// all contributions sensitive to records moving between offsets.
func Slot(offset int, blob []byte) uint32 {
	var pos [4]byte
	binary.LittleEndian.PutUint32(pos[:], uint32(offset))
	return crc32.Update(crc32.Checksum(pos[:], crc32cTable), crc32cTable, blob)
}
