// Package storage provides the named-blob stores tables persist into.
//
// A table owns one Store namespace holding its info, index and page files.
// A database owns a parent Store and hands each table a child namespace
// obtained with Sub.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local filesystem (atomic replace on Put)
//   - MemoryStore: process memory, for the in-memory database variant and tests
//   - s3.Store: Amazon S3 (package storage/s3)
//   - minio.Store: MinIO and S3-compatible servers (package storage/minio)
//
// # Custom Implementations
//
// Implement Store to support other backends:
//
//	type Store interface {
//	    Get(ctx, name) ([]byte, error)   // ErrNotFound if absent
//	    Put(ctx, name, data) error       // replaces atomically
//	    Delete(ctx, name) error          // absent names are not an error
//	    List(ctx, prefix) ([]string, error)
//	    Sub(name) Store
//	}
//
// Names are slash-separated and relative. Stores are used by one writer at
// a time; MemoryStore and the remote stores are additionally safe for
// concurrent use.
package storage
