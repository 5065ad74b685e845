// Package hash provides the checksums used by page files and index snapshots.
//
// All checksums use CRC32-Castagnoli (CRC32C), which Go accelerates in
// hardware on x86 (SSE4.2) and ARM (CRC extension).
//
// For one-shot checksums:
//
//	sum := hash.CRC32C(data)
//
// Page checksums are XOR-accumulated slot hashes. Replacing the blob at an
// offset updates the page checksum in O(1):
//
//	sum ^= hash.Slot(offset, old) ^ hash.Slot(offset, new)
package hash
