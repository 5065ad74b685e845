package litedb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/litedb/codec"
	"github.com/hupe1980/litedb/field"
	"github.com/hupe1980/litedb/internal/blob"
	"github.com/hupe1980/litedb/internal/index"
	"github.com/hupe1980/litedb/internal/shard"
	"github.com/hupe1980/litedb/storage"
)

// Table is a persistent collection of records of type T with automatic
// secondary indexes over their scalar attributes.
//
// Records live in numbered slots. Deleted slots are reused by later inserts,
// smallest first. Changes are buffered in the page cache and the index until
// Commit; dirty pages may also be written early when the cache evicts them.
//
// A Table is not safe for concurrent use. Mutating a table while iterating
// over a retrieval result is undefined.
type Table[T any] struct {
	store   storage.Store
	tag     string
	codec   codec.Codec
	comp    Compression
	info    tableInfo
	size    int
	free    *roaring.Bitmap
	shards  *shard.Manager
	indexes *index.Manager

	modified bool

	logger  *Logger
	metrics MetricsCollector
}

// Stats is a snapshot of table and page cache state.
type Stats struct {
	Size      int
	Free      int
	Pages     int
	Resident  int
	PageSize  int
	PageCache int
	Cache     shard.Stats
}

var indexableType = reflect.TypeFor[field.Indexable]()

// TypeTag returns the tag under which records of type T are stored: the
// fully qualified Go type name. Only struct types, pointers to them and
// types implementing field.Indexable can be stored.
func TypeTag[T any]() (string, error) {
	t := reflect.TypeFor[T]()
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct && !t.Implements(indexableType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedRecord, t)
	}
	return typeName(t), nil
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + typeName(t.Elem())
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// CreateTable creates an empty table in store. It fails with a PathError when the
// store already holds data.
func CreateTable[T any](ctx context.Context, store storage.Store, optFns ...Option) (*Table[T], error) {
	o := applyOptions(optFns)
	t, err := create[T](ctx, store, o)
	o.logger.LogOpen(ctx, storePath(store), 0, true, err)
	return t, err
}

func create[T any](ctx context.Context, store storage.Store, o options) (*Table[T], error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	tag, err := TypeTag[T]()
	if err != nil {
		return nil, err
	}
	empty, err := storage.IsEmpty(ctx, store)
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, &PathError{Path: storePath(store), Reason: "not empty"}
	}

	ti := tableInfo{
		Type:        tag,
		PageSize:    o.pageSize,
		PageCache:   o.pageCache,
		Compression: o.compression.String(),
		Codec:       o.codec.Name(),
	}
	return newTable[T](ctx, store, ti, roaring.New(), o)
}

// OpenTable opens the table stored in store. It fails with a PathError when the
// store holds no table and with ErrUnsupportedRecord when the table holds a
// different record type.
//
// The page size, codec and compression recorded at creation win over the
// options. The page cache capacity option applies when given.
func OpenTable[T any](ctx context.Context, store storage.Store, optFns ...Option) (*Table[T], error) {
	o := applyOptions(optFns)
	t, err := open[T](ctx, store, o)
	size := 0
	if t != nil {
		size = t.size
	}
	o.logger.LogOpen(ctx, storePath(store), size, false, err)
	return t, err
}

func open[T any](ctx context.Context, store storage.Store, o options) (*Table[T], error) {
	tag, err := TypeTag[T]()
	if err != nil {
		return nil, err
	}
	ti, err := readTableInfo(ctx, store)
	if err != nil {
		return nil, err
	}
	if ti.Type != tag {
		return nil, fmt.Errorf("%w: table holds %s, not %s", ErrUnsupportedRecord, ti.Type, tag)
	}

	o.pageSize = ti.PageSize
	if !o.pageCacheSet && ti.PageCache > 0 {
		o.pageCache = ti.PageCache
	}
	if o.codec, err = codec.Resolve(ti.Codec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if o.compression, err = blob.ParseType(ti.Compression); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	ti.PageCache = o.pageCache

	free, err := ti.freeList()
	if err != nil {
		return nil, err
	}
	t, err := newTable[T](ctx, store, ti, free, o)
	if err != nil {
		return nil, err
	}

	data, err := store.Get(ctx, indexName)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		if err := t.indexes.UnmarshalBinary(data); err != nil {
			return nil, translateError(err)
		}
	}
	return t, nil
}

// OpenOrCreateTable opens the table in store, creating it when the store is empty.
func OpenOrCreateTable[T any](ctx context.Context, store storage.Store, optFns ...Option) (*Table[T], error) {
	empty, err := storage.IsEmpty(ctx, store)
	if err != nil {
		return nil, err
	}
	if empty {
		return CreateTable[T](ctx, store, optFns...)
	}
	return OpenTable[T](ctx, store, optFns...)
}

func newTable[T any](ctx context.Context, store storage.Store, ti tableInfo, free *roaring.Bitmap, o options) (*Table[T], error) {
	logger := o.logger.WithTable(ti.Type)
	cache, err := shard.NewCache(ctx, store, shard.Config{
		PageSize:   o.pageSize,
		Capacity:   o.pageCache,
		Controller: o.controller(),
		Logger:     logger.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Table[T]{
		store:   store,
		tag:     ti.Type,
		codec:   o.codec,
		comp:    o.compression,
		info:    ti,
		size:    ti.Size,
		free:    free,
		shards:  shard.NewManager(cache),
		indexes: index.NewManager(index.WithLogger(logger.Logger)),
		logger:  logger,
		metrics: o.metricsCollector,
	}, nil
}

// Type returns the tag of the record type held by the table.
func (t *Table[T]) Type() string { return t.tag }

// Len returns the number of records in the table.
func (t *Table[T]) Len() int { return t.size }

// Modified reports whether the table has changes that are not committed.
func (t *Table[T]) Modified() bool { return t.modified }

// Indexes returns the names of the indexed attributes in sorted order.
func (t *Table[T]) Indexes() []string { return t.indexes.Names() }

// Blacklisted returns the attributes that are permanently excluded from
// indexing, in sorted order.
func (t *Table[T]) Blacklisted() []string { return t.indexes.Blacklist() }

// Stats returns a snapshot of table and page cache state.
func (t *Table[T]) Stats() Stats {
	cache := t.shards.Cache()
	return Stats{
		Size:      t.size,
		Free:      int(t.free.GetCardinality()),
		Pages:     cache.Pages(),
		Resident:  cache.Len(),
		PageSize:  cache.PageSize(),
		PageCache: t.info.PageCache,
		Cache:     cache.Stats(),
	}
}

// nextSlot returns the slot the next insert will use: the smallest free
// slot, or the end of the table when none is free.
func (t *Table[T]) nextSlot() uint32 {
	if !t.free.IsEmpty() {
		return t.free.Minimum()
	}
	return uint32(t.size)
}

type prepared struct {
	fields field.Fields
	frame  []byte
}

func (t *Table[T]) prepare(rec T) (prepared, error) {
	fields, err := field.Of(rec)
	if err != nil {
		return prepared{}, fmt.Errorf("%w: %w", ErrUnsupportedRecord, err)
	}
	data, err := t.codec.Marshal(rec)
	if err != nil {
		return prepared{}, err
	}
	frame, err := blob.Encode(data, t.comp)
	if err != nil {
		return prepared{}, err
	}
	return prepared{fields: fields, frame: frame}, nil
}

func (t *Table[T]) put(ctx context.Context, p prepared) (uint32, error) {
	slot := t.nextSlot()
	if err := t.shards.Insert(ctx, p.frame, slot); err != nil {
		return 0, translateError(err)
	}
	t.free.Remove(slot)
	t.size++
	t.indexes.IndexItem(p.fields, slot)
	t.modified = true
	return slot, nil
}

// Insert stores rec and indexes its attributes. It returns the slot the
// record was stored in.
func (t *Table[T]) Insert(ctx context.Context, rec T) (uint32, error) {
	start := time.Now()
	slot, err := t.insert(ctx, rec)
	t.metrics.RecordInsert(time.Since(start), err)
	t.logger.LogInsert(ctx, slot, err)
	return slot, err
}

func (t *Table[T]) insert(ctx context.Context, rec T) (uint32, error) {
	p, err := t.prepare(rec)
	if err != nil {
		return 0, err
	}
	return t.put(ctx, p)
}

// InsertMany stores every record and returns their slots in input order.
// All records are encoded before the first one is stored. When storing
// fails part way, the records stored so far stay in the table and their
// slots are returned with the error.
func (t *Table[T]) InsertMany(ctx context.Context, recs ...T) ([]uint32, error) {
	start := time.Now()
	slots, err := t.insertMany(ctx, recs)
	t.metrics.RecordBatchInsert(len(recs), len(recs)-len(slots), time.Since(start))
	t.logger.LogBatchInsert(ctx, len(recs), len(slots), err)
	return slots, err
}

func (t *Table[T]) insertMany(ctx context.Context, recs []T) ([]uint32, error) {
	batch := make([]prepared, len(recs))
	for i, rec := range recs {
		p, err := t.prepare(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		batch[i] = p
	}

	slots := make([]uint32, 0, len(batch))
	for _, p := range batch {
		slot, err := t.put(ctx, p)
		if err != nil {
			return slots, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// Retrieve returns the records matching every predicate, in ascending slot
// order. Without predicates it returns every record.
//
// Predicates are validated before Retrieve returns; records are read and
// decoded lazily while the sequence is consumed.
//
//	seq, err := t.Retrieve(ctx, litedb.Eq("city", "Berlin"), litedb.Range("age", 18, 65))
//	if err != nil {
//	    return err
//	}
//	for rec, err := range seq {
//	    ...
//	}
func (t *Table[T]) Retrieve(ctx context.Context, preds ...Predicate) (iter.Seq2[T, error], error) {
	if len(preds) == 0 {
		return t.All(ctx), nil
	}

	start := time.Now()
	slots, err := t.match(preds)
	matched := 0
	if slots != nil {
		matched = int(slots.GetCardinality())
	}
	t.metrics.RecordRetrieve(matched, time.Since(start), err)
	t.logger.LogRetrieve(ctx, len(preds), matched, err)
	if err != nil {
		return nil, err
	}
	return t.decodeAll(t.shards.RetrieveMany(ctx, slots.ToArray())), nil
}

// All returns every record in ascending slot order.
func (t *Table[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return t.decodeAll(t.shards.RetrieveAll(ctx))
}

// Collect drains a retrieval result into a slice.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for rec, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *Table[T]) match(preds []Predicate) (*roaring.Bitmap, error) {
	ipreds, err := compilePredicates(preds)
	if err != nil {
		return nil, err
	}
	return t.indexes.Retrieve(ipreds)
}

func (t *Table[T]) decodeAll(records iter.Seq2[shard.Record, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for r, err := range records {
			if err != nil {
				var zero T
				yield(zero, translateError(err))
				return
			}
			rec, err := t.decode(r.Blob)
			if err != nil {
				yield(rec, fmt.Errorf("slot %d: %w", r.Slot, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (t *Table[T]) decode(frame []byte) (T, error) {
	var rec T
	data, err := blob.Decode(frame)
	if err != nil {
		return rec, translateError(err)
	}
	if err := t.codec.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return rec, nil
}

// Delete removes the records matching every predicate and returns how many
// were removed. Without predicates it removes every record. Freed slots are
// reused by later inserts.
//
// Slots are unindexed by the values they were indexed under, even when a
// decoded record no longer yields them. An ErrNotFound error reports an
// index that did not hold a removed slot; the returned count of records
// is removed all the same.
func (t *Table[T]) Delete(ctx context.Context, preds ...Predicate) (int, error) {
	start := time.Now()
	n, err := t.delete(ctx, preds)
	t.metrics.RecordDelete(n, time.Since(start), err)
	t.logger.LogDelete(ctx, len(preds), n, err)
	return n, err
}

func (t *Table[T]) delete(ctx context.Context, preds []Predicate) (int, error) {
	var records iter.Seq2[shard.Record, error]
	if len(preds) == 0 {
		records = t.shards.RetrieveAll(ctx)
	} else {
		slots, err := t.match(preds)
		if err != nil {
			return 0, err
		}
		if slots.IsEmpty() {
			return 0, nil
		}
		records = t.shards.RetrieveMany(ctx, slots.ToArray())
	}

	type victim struct {
		slot   uint32
		fields field.Fields
	}
	var victims []victim
	for r, err := range records {
		if err != nil {
			return 0, translateError(err)
		}
		rec, err := t.decode(r.Blob)
		if err != nil {
			return 0, fmt.Errorf("slot %d: %w", r.Slot, err)
		}
		fields, err := field.Of(rec)
		if err != nil {
			return 0, fmt.Errorf("slot %d: %w", r.Slot, err)
		}
		victims = append(victims, victim{slot: r.Slot, fields: fields})
	}
	if len(victims) == 0 {
		return 0, nil
	}

	var errs []error
	slots := make([]uint32, len(victims))
	for i, v := range victims {
		if err := t.indexes.UnindexItem(v.fields, v.slot); err != nil {
			errs = append(errs, err)
		}
		slots[i] = v.slot
	}

	if err := t.shards.Delete(ctx, slots); err != nil {
		return 0, translateError(err)
	}
	t.free.AddMany(slots)
	t.size -= len(slots)
	t.modified = true
	return len(slots), errors.Join(errs...)
}

// Clear removes every record, index and blacklist entry and wipes the
// store. The table stays usable and is marked modified.
func (t *Table[T]) Clear(ctx context.Context) error {
	removed := t.size
	err := t.clear(ctx)
	t.logger.LogClear(ctx, removed, err)
	return err
}

func (t *Table[T]) clear(ctx context.Context) error {
	if err := storage.Clear(ctx, t.store); err != nil {
		return err
	}
	t.shards.Reset()
	t.indexes.Reset()
	t.free.Clear()
	t.size = 0
	t.modified = true
	return nil
}

// Commit persists pending changes: dirty pages first, then the index, then
// the table info. It is a no-op when nothing changed.
func (t *Table[T]) Commit(ctx context.Context) error {
	if !t.modified {
		return nil
	}
	start := time.Now()
	pages, err := t.commit(ctx)
	t.metrics.RecordCommit(pages, time.Since(start), err)
	t.logger.LogCommit(ctx, pages, err)
	return err
}

func (t *Table[T]) commit(ctx context.Context) (int, error) {
	pages, err := t.shards.Commit(ctx)
	if err != nil {
		return 0, err
	}

	snapshot, err := t.indexes.MarshalBinary()
	if err != nil {
		return pages, err
	}
	if err := t.store.Put(ctx, indexName, snapshot); err != nil {
		return pages, err
	}

	t.info.Size = t.size
	if err := writeTableInfo(ctx, t.store, t.info, t.free); err != nil {
		return pages, err
	}
	t.modified = false
	return pages, nil
}
