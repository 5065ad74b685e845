package litedb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/litedb/internal/hash"
	"github.com/hupe1980/litedb/storage"
)

// DB routes records to one table per record type.
//
// Each table lives in its own namespace of the database store, named after
// the CRC32C of the record type tag. Tables found in the store are opened
// lazily on first use.
//
// A DB is not safe for concurrent use.
type DB struct {
	store  storage.Store
	optFns []Option
	logger *Logger
	tables map[string]*entry
	dirs   map[string]string
	closed bool
}

type entry struct {
	dir   string
	info  Info
	table committer
}

type committer interface {
	Commit(ctx context.Context) error
	Len() int
	Modified() bool
}

// TableInfo describes one table of a database.
type TableInfo struct {
	Dir string
	Info
	Open bool
}

// Open opens the database rooted at the local directory dir, creating it on
// first commit when it does not exist.
func Open(ctx context.Context, dir string, optFns ...Option) (*DB, error) {
	return OpenStore(ctx, storage.NewLocalStore(dir), optFns...)
}

// OpenMemory returns an empty database held in memory.
func OpenMemory(optFns ...Option) (*DB, error) {
	return OpenStore(context.Background(), storage.NewMemoryStore(), optFns...)
}

// OpenStore opens the database held by store and discovers its tables.
func OpenStore(ctx context.Context, store storage.Store, optFns ...Option) (*DB, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}

	db := &DB{
		store:  store,
		optFns: optFns,
		logger: o.logger,
		tables: make(map[string]*entry),
		dirs:   make(map[string]string),
	}

	names, err := store.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		dir, ok := strings.CutSuffix(name, "/"+infoName)
		if !ok || strings.Contains(dir, "/") {
			continue
		}
		info, err := ReadInfo(ctx, store.Sub(dir))
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", dir, err)
		}
		if prev, ok := db.tables[info.Type]; ok {
			return nil, fmt.Errorf("%w: tables %s and %s both hold %s", ErrCorrupt, prev.dir, dir, info.Type)
		}
		db.tables[info.Type] = &entry{dir: dir, info: info}
		db.dirs[dir] = info.Type
	}

	db.logger.InfoContext(ctx, "database opened", "path", storePath(store), "tables", len(db.tables))
	return db, nil
}

// Tables describes every table in the database, sorted by type tag.
func (db *DB) Tables() []TableInfo {
	out := make([]TableInfo, 0, len(db.tables))
	for _, tag := range db.tags() {
		e := db.tables[tag]
		ti := TableInfo{Dir: e.dir, Info: e.info, Open: e.table != nil}
		if e.table != nil {
			ti.Size = e.table.Len()
		}
		out = append(out, ti)
	}
	return out
}

// Len returns the number of records across all tables.
func (db *DB) Len() int {
	n := 0
	for _, e := range db.tables {
		if e.table != nil {
			n += e.table.Len()
		} else {
			n += e.info.Size
		}
	}
	return n
}

// Modified reports whether any open table has uncommitted changes.
func (db *DB) Modified() bool {
	for _, e := range db.tables {
		if e.table != nil && e.table.Modified() {
			return true
		}
	}
	return false
}

// Commit commits every open table in type tag order.
func (db *DB) Commit(ctx context.Context) error {
	var errs []error
	for _, tag := range db.tags() {
		e := db.tables[tag]
		if e.table == nil {
			continue
		}
		if err := e.table.Commit(ctx); err != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

// Close commits every open table. The DB must not be used afterwards.
func (db *DB) Close(ctx context.Context) error {
	if db.closed {
		return nil
	}
	err := db.Commit(ctx)
	db.closed = true
	db.logger.InfoContext(ctx, "database closed", "path", storePath(db.store), "error", err)
	return err
}

func (db *DB) tags() []string {
	tags := make([]string, 0, len(db.tables))
	for tag := range db.tables {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// dirFor picks a free namespace for tag, probing suffixes on collision.
func (db *DB) dirFor(ctx context.Context, tag string) (string, error) {
	base := fmt.Sprintf("%08x", hash.CRC32C([]byte(tag)))
	for i := 0; ; i++ {
		dir := base
		if i > 0 {
			dir = fmt.Sprintf("%s-%d", base, i)
		}
		if _, taken := db.dirs[dir]; taken {
			continue
		}
		empty, err := storage.IsEmpty(ctx, db.store.Sub(dir))
		if err != nil {
			return "", err
		}
		if empty {
			return dir, nil
		}
	}
}

// table returns the table for T, opening it when it exists in the store
// and creating it when create is set.
func table[T any](ctx context.Context, db *DB, create bool) (*Table[T], error) {
	if db.closed {
		return nil, fmt.Errorf("%w: database is closed", ErrPath)
	}
	tag, err := TypeTag[T]()
	if err != nil {
		return nil, err
	}

	e, ok := db.tables[tag]
	switch {
	case ok && e.table != nil:
		t, ok := e.table.(*Table[T])
		if !ok {
			return nil, fmt.Errorf("%w: %s is open with another type", ErrUnsupportedRecord, tag)
		}
		return t, nil
	case ok:
		t, err := OpenTable[T](ctx, db.store.Sub(e.dir), db.optFns...)
		if err != nil {
			return nil, err
		}
		e.table = t
		return t, nil
	case !create:
		return nil, fmt.Errorf("%w: %s", ErrNoTable, tag)
	}

	dir, err := db.dirFor(ctx, tag)
	if err != nil {
		return nil, err
	}
	t, err := CreateTable[T](ctx, db.store.Sub(dir), db.optFns...)
	if err != nil {
		return nil, err
	}
	db.tables[tag] = &entry{dir: dir, info: Info{Type: tag}, table: t}
	db.dirs[dir] = tag
	return t, nil
}

// Insert stores rec in the table for its type, creating the table when
// needed, and returns its slot.
func Insert[T any](ctx context.Context, db *DB, rec T) (uint32, error) {
	t, err := table[T](ctx, db, true)
	if err != nil {
		return 0, err
	}
	return t.Insert(ctx, rec)
}

// InsertMany stores recs in the table for their type, creating the table
// when needed.
func InsertMany[T any](ctx context.Context, db *DB, recs ...T) ([]uint32, error) {
	t, err := table[T](ctx, db, true)
	if err != nil {
		return nil, err
	}
	return t.InsertMany(ctx, recs...)
}

// Select returns the table holding records of type T. It fails with
// ErrNoTable when no such record was ever stored.
func Select[T any](ctx context.Context, db *DB) (*Table[T], error) {
	return table[T](ctx, db, false)
}
