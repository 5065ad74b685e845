// Package s3 provides an S3 implementation of the storage.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("tables/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	db, err := litedb.OpenStore(ctx, store)
//
// # Features
//
//   - CRC32C integrity checks on every upload
//   - Multipart uploads for large pages
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
