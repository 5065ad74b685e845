// Package shard stores the records of a table in fixed-size pages.
//
// A logical slot maps to a page and an offset within it:
//
//	page   = slot / pageSize
//	offset = slot % pageSize
//
// # Components
//
//   - [Shard]: one page of optional record blobs plus a running checksum
//   - [Cache]: bounded LRU of resident pages with lazy load and write-back
//   - [Manager]: slot level get/put/delete/scan on top of the cache
//
// # Page File Format
//
//	[checksum uint32 LE]
//	[length uint64 LE][payload]   repeated for offsets 0..last occupied
//
// Empty slots before the last occupied one are written with length 0;
// trailing empty slots are omitted. Readers stop after pageSize entries or
// at end of file.
//
// # Write-back
//
// The checksum is the XOR of per-slot hashes (see internal/hash.Slot), so it
// is maintained in O(1) per mutation. A cached page is written only when its
// checksum differs from the checksum last read from or written to its file.
// The checksum detects redundant writes; it is not a corruption check.
//
// Nothing in this package is safe for concurrent use.
package shard
