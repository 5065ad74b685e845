package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/litedb"
	"github.com/hupe1980/litedb/storage"
	"github.com/hupe1980/litedb/testutil"
)

func collect(t *testing.T, tbl *litedb.Table[testutil.Person], preds ...litedb.Predicate) []testutil.Person {
	t.Helper()
	seq, err := tbl.Retrieve(context.Background(), preds...)
	require.NoError(t, err)
	out, err := litedb.Collect(seq)
	require.NoError(t, err)
	return out
}

// TestLifecycle runs random inserts and deletes against a small page cache,
// committing and reopening the table from disk between rounds.
func TestLifecycle(t *testing.T) {
	for _, comp := range []litedb.Compression{litedb.CompressionNone, litedb.CompressionLZ4, litedb.CompressionZSTD} {
		t.Run(comp.String(), func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			rng := testutil.NewRNG(99)
			model := testutil.NewModel[testutil.Person]()

			optFns := []litedb.Option{
				litedb.WithPageSize(16),
				litedb.WithPageCache(2),
				litedb.WithCompression(comp),
				litedb.WithFlushConcurrency(4),
				litedb.WithLogger(litedb.NoopLogger()),
			}
			tbl, err := litedb.CreateTable[testutil.Person](ctx, storage.NewLocalStore(dir), optFns...)
			require.NoError(t, err)

			next := 0
			for round := range 5 {
				batch := make([]testutil.Person, 60)
				for i := range batch {
					batch[i] = rng.Person(next)
					next++
				}
				slots, err := tbl.InsertMany(ctx, batch...)
				require.NoError(t, err)
				for i, p := range batch {
					require.Equal(t, model.Insert(p), slots[i], "round %d", round)
				}

				low := rng.Intn(80)
				n, err := tbl.Delete(ctx, litedb.Range("Age", low, low+15))
				require.NoError(t, err)
				require.Equal(t, model.Delete(func(p testutil.Person) bool { return p.Age >= low && p.Age <= low+15 }), n)

				require.NoError(t, tbl.Commit(ctx))
				assert.False(t, tbl.Modified())

				report, err := litedb.Verify(ctx, storage.NewLocalStore(dir))
				require.NoError(t, err)
				require.True(t, report.OK(), report.Problems)
				require.Equal(t, model.Len(), report.Records)

				tbl, err = litedb.OpenTable[testutil.Person](ctx, storage.NewLocalStore(dir), optFns...)
				require.NoError(t, err)
				require.Equal(t, model.Len(), tbl.Len())
			}

			assert.Equal(t, model.Select(nil), collect(t, tbl))
			for _, city := range testutil.Cities {
				want := model.Select(func(p testutil.Person) bool { return p.City == city })
				assert.Equal(t, want, collect(t, tbl, litedb.Eq("city", city)), city)
			}
			want := model.Select(func(p testutil.Person) bool { return p.Score >= 50 && p.Email != nil })
			got := collect(t, tbl, litedb.Range("Score", 50.0, nil))
			filtered := got[:0]
			for _, p := range got {
				if p.Email != nil {
					filtered = append(filtered, p)
				}
			}
			assert.Equal(t, want, filtered)

			report, err := litedb.Inspect(ctx, storage.NewLocalStore(dir))
			require.NoError(t, err)
			assert.Equal(t, model.Len(), report.Size)
			assert.Contains(t, report.Blacklist, "Tags")
		})
	}
}

// TestDatabaseReopen stores several record types and reads them back after
// a restart.
func TestDatabaseReopen(t *testing.T) {
	type note struct {
		Text string `json:"text"`
	}

	ctx := context.Background()
	dir := t.TempDir()
	people := testutil.NewRNG(5).People(100)

	db, err := litedb.Open(ctx, dir, litedb.WithLogger(litedb.NoopLogger()))
	require.NoError(t, err)
	_, err = litedb.InsertMany(ctx, db, people...)
	require.NoError(t, err)
	_, err = litedb.Insert(ctx, db, note{Text: "hello"})
	require.NoError(t, err)
	require.NoError(t, db.Close(ctx))

	db, err = litedb.Open(ctx, dir, litedb.WithLogger(litedb.NoopLogger()))
	require.NoError(t, err)
	require.Len(t, db.Tables(), 2)
	assert.Equal(t, 101, db.Len())

	tbl, err := litedb.Select[testutil.Person](ctx, db)
	require.NoError(t, err)
	assert.Equal(t, people, collect(t, tbl))

	notes, err := litedb.Select[note](ctx, db)
	require.NoError(t, err)
	seq, err := notes.Retrieve(ctx, litedb.Eq("Text", "hello"))
	require.NoError(t, err)
	got, err := litedb.Collect(seq)
	require.NoError(t, err)
	assert.Equal(t, []note{{Text: "hello"}}, got)
}
