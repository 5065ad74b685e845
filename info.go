package litedb

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/litedb/codec"
	"github.com/hupe1980/litedb/storage"
)

const (
	infoName  = "info"
	indexName = "index"

	infoVersion = 1
)

// infoCodec encodes table info independently of the record codec.
var infoCodec = codec.GoJSON{}

// tableInfo is the persisted form of a table's metadata.
type tableInfo struct {
	Version     int    `json:"version"`
	Type        string `json:"type"`
	Size        int    `json:"size"`
	FreeList    []byte `json:"free_list"`
	PageSize    int    `json:"page_size"`
	PageCache   int    `json:"page_cache"`
	Compression string `json:"compression"`
	Codec       string `json:"codec"`
}

// Info describes a stored table.
type Info struct {
	// Type is the tag of the record type held by the table.
	Type string `json:"type"`
	// Size is the number of live records.
	Size int `json:"size"`
	// Free is the number of reclaimed slots awaiting reuse.
	Free int `json:"free"`
	// Slots is the number of allocated slots, live or free.
	Slots int `json:"slots"`
	// FreeSlots lists the reclaimed slots in ascending order.
	FreeSlots   []uint32 `json:"free_slots,omitempty"`
	PageSize    int      `json:"page_size"`
	PageCache   int      `json:"page_cache"`
	Compression string   `json:"compression"`
	Codec       string   `json:"codec"`
}

// ReadInfo reads the metadata of the table stored in store.
// It fails with a PathError when store holds no table.
func ReadInfo(ctx context.Context, store storage.Store) (Info, error) {
	ti, err := readTableInfo(ctx, store)
	if err != nil {
		return Info{}, err
	}
	free, err := ti.freeList()
	if err != nil {
		return Info{}, err
	}
	return Info{
		Type:        ti.Type,
		Size:        ti.Size,
		Free:        int(free.GetCardinality()),
		Slots:       ti.Size + int(free.GetCardinality()),
		FreeSlots:   free.ToArray(),
		PageSize:    ti.PageSize,
		PageCache:   ti.PageCache,
		Compression: ti.Compression,
		Codec:       ti.Codec,
	}, nil
}

func readTableInfo(ctx context.Context, store storage.Store) (tableInfo, error) {
	data, err := store.Get(ctx, infoName)
	if errors.Is(err, storage.ErrNotFound) {
		return tableInfo{}, &PathError{Path: storePath(store), Reason: "no table info"}
	}
	if err != nil {
		return tableInfo{}, err
	}

	var ti tableInfo
	if err := infoCodec.Unmarshal(data, &ti); err != nil {
		return tableInfo{}, fmt.Errorf("%w: info: %w", ErrCorrupt, err)
	}
	if ti.Version != infoVersion {
		return tableInfo{}, fmt.Errorf("%w: unsupported info version %d", ErrCorrupt, ti.Version)
	}
	if ti.PageSize < 1 || ti.Size < 0 {
		return tableInfo{}, fmt.Errorf("%w: info: page size %d, size %d", ErrCorrupt, ti.PageSize, ti.Size)
	}
	return ti, nil
}

func (ti tableInfo) freeList() (*roaring.Bitmap, error) {
	free := roaring.New()
	if len(ti.FreeList) == 0 {
		return free, nil
	}
	if _, err := free.FromBuffer(ti.FreeList); err != nil {
		return nil, fmt.Errorf("%w: free list: %w", ErrCorrupt, err)
	}
	// FromBuffer aliases its input.
	return free.Clone(), nil
}

func writeTableInfo(ctx context.Context, store storage.Store, ti tableInfo, free *roaring.Bitmap) error {
	free.RunOptimize()
	buf, err := free.ToBytes()
	if err != nil {
		return err
	}
	ti.Version = infoVersion
	ti.FreeList = buf

	data, err := infoCodec.Marshal(ti)
	if err != nil {
		return err
	}
	return store.Put(ctx, infoName, data)
}

func storePath(store storage.Store) string {
	if r, ok := store.(interface{ Root() string }); ok {
		return r.Root()
	}
	return fmt.Sprintf("%T", store)
}
