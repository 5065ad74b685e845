// Package litedb provides an embedded object store for Go.
//
// Litedb persists typed records to disk (or memory), builds secondary
// indexes over their scalar attributes automatically and answers equality
// and range queries without a query language.
//
// # Quick Start
//
// Database mode, one table per record type:
//
//	type Person struct {
//	    Name string
//	    Age  int
//	    City string `litedb:"city"`
//	}
//
//	ctx := context.Background()
//	db, _ := litedb.Open(ctx, "./data")
//	defer db.Close(ctx)
//
//	litedb.Insert(ctx, db, Person{Name: "Ada", Age: 36, City: "London"})
//
//	people, _ := litedb.Select[Person](ctx, db)
//	seq, _ := people.Retrieve(ctx, litedb.Eq("city", "London"), litedb.Range("Age", 30, 40))
//	for p, err := range seq {
//	    fmt.Println(p.Name, err)
//	}
//
// Table mode over any storage.Store:
//
//	t, _ := litedb.CreateTable[Person](ctx, storage.NewLocalStore("./people"))
//	t, _ := litedb.OpenTable[Person](ctx, storage.NewLocalStore("./people"))  // re-open existing
//
// Cloud mode:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("tables/"))
//	db, _ := litedb.OpenStore(ctx, store)
//
// # Indexing
//
// Every attribute seen on an inserted record gets an index. The first
// non-null value pins the kind of the index. A value that cannot be ordered
// (an array) or that disagrees with the pinned kind blacklists the
// attribute for the lifetime of the table: its index is discarded and it
// can no longer be queried.
//
// Records choose their attributes by implementing field.Indexable or fall
// back to their exported struct fields.
//
// # Queries
//
//	litedb.Eq("city", "London")      // equality, nil matches nulls
//	litedb.Range("Age", 18, 65)      // inclusive bounds
//	litedb.Range("Age", nil, 65)     // open low bound, includes nulls
//	litedb.Range("Age", 18, nil)     // open high bound
//
// Multiple predicates intersect.
//
// # Durability Model
//
// Changes are buffered in a bounded page cache and written on Commit:
//
//	t.Insert(ctx, rec)  // buffered in memory
//	t.Commit(ctx)       // durable after this
//
// Dirty pages may reach disk earlier when they are evicted. A page is only
// written when its checksum differs from the one on disk. There are no
// transactions across operations.
//
// # Key Features
//
//   - Paged storage with LRU page cache and checksum-gated write-back
//   - Automatic B-tree indexes with roaring bitmap postings
//   - Free slot reuse after deletes
//   - LZ4/ZSTD record compression
//   - Local, in-memory, S3 and MinIO storage
package litedb
