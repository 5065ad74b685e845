package litedb

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/litedb/internal/blob"
	"github.com/hupe1980/litedb/internal/index"
	"github.com/hupe1980/litedb/internal/shard"
	"github.com/hupe1980/litedb/storage"
)

// IndexReport describes one persisted index.
type IndexReport struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Distinct int    `json:"distinct"`
	Nulls    int    `json:"nulls"`
}

// Report describes a committed table without decoding its records.
type Report struct {
	Info
	Pages     int           `json:"pages"`
	Indexes   []IndexReport `json:"indexes"`
	Blacklist []string      `json:"blacklist"`
}

// Inspect reads the committed state of the table held by store.
func Inspect(ctx context.Context, store storage.Store) (Report, error) {
	info, err := ReadInfo(ctx, store)
	if err != nil {
		return Report{}, err
	}
	pages, err := pageNumbers(ctx, store)
	if err != nil {
		return Report{}, err
	}

	r := Report{Info: info, Pages: len(pages), Indexes: []IndexReport{}, Blacklist: []string{}}
	m, err := readIndexes(ctx, store)
	if err != nil {
		return Report{}, err
	}
	for _, name := range m.Names() {
		ix, _ := m.Index(name)
		r.Indexes = append(r.Indexes, IndexReport{
			Name:     name,
			Kind:     ix.Kind().String(),
			Distinct: ix.Distinct(),
			Nulls:    ix.Nulls(),
		})
	}
	r.Blacklist = append(r.Blacklist, m.Blacklist()...)
	return r, nil
}

// PageProblem describes one damaged page.
type PageProblem struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// VerifyReport is the outcome of Verify.
type VerifyReport struct {
	Type     string        `json:"type"`
	Pages    int           `json:"pages"`
	Records  int           `json:"records"`
	Problems []PageProblem `json:"problems"`
}

// OK reports whether no problem was found.
func (r VerifyReport) OK() bool { return len(r.Problems) == 0 }

// Verify decodes every committed page of the table held by store and
// compares the recomputed checksums with the stored ones. Damage is listed
// in the report; the error is reserved for failures to read the table.
func Verify(ctx context.Context, store storage.Store) (VerifyReport, error) {
	ti, err := readTableInfo(ctx, store)
	if err != nil {
		return VerifyReport{}, err
	}
	free, err := ti.freeList()
	if err != nil {
		return VerifyReport{}, err
	}
	pages, err := pageNumbers(ctx, store)
	if err != nil {
		return VerifyReport{}, err
	}

	r := VerifyReport{Type: ti.Type, Pages: len(pages), Problems: []PageProblem{}}
	report := func(n int, format string, args ...any) {
		r.Problems = append(r.Problems, PageProblem{Page: n, Reason: fmt.Sprintf(format, args...)})
	}

	for _, n := range pages {
		data, err := store.Get(ctx, shard.PageName(n))
		if err != nil {
			return VerifyReport{}, err
		}
		s, err := shard.Decode(data, ti.PageSize)
		if err != nil {
			report(n, "%v", err)
			continue
		}
		stored, _ := shard.StoredChecksum(data)
		if stored != s.Checksum() {
			report(n, "checksum %08x, content hashes to %08x", stored, s.Checksum())
		}
		s.Blobs(func(offset int, frame []byte) bool {
			slot := uint32(n*ti.PageSize + offset)
			if free.Contains(slot) {
				report(n, "slot %d is occupied and free", slot)
			}
			if _, err := blob.Decode(frame); err != nil {
				report(n, "slot %d: %v", slot, err)
			}
			r.Records++
			return true
		})
	}
	if r.Records != ti.Size {
		report(-1, "%d records on pages, info records %d", r.Records, ti.Size)
	}
	return r, nil
}

func pageNumbers(ctx context.Context, store storage.Store) ([]int, error) {
	names, err := store.List(ctx, "page")
	if err != nil {
		return nil, err
	}
	pages := make([]int, 0, len(names))
	for _, name := range names {
		if n, ok := shard.ParsePageName(name); ok {
			pages = append(pages, n)
		}
	}
	slices.Sort(pages)
	return pages, nil
}

func readIndexes(ctx context.Context, store storage.Store) (*index.Manager, error) {
	m := index.NewManager()
	data, err := store.Get(ctx, indexName)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return m, nil
	case err != nil:
		return nil, err
	}
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, translateError(err)
	}
	return m, nil
}
