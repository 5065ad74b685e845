package benchmark_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/hupe1980/litedb"
	"github.com/hupe1980/litedb/storage"
	"github.com/hupe1980/litedb/testutil"
)

const (
	benchSeed  = 42
	benchTable = 10_000
)

func openBenchTable(b *testing.B, optFns ...litedb.Option) *litedb.Table[testutil.Person] {
	b.Helper()
	optFns = append([]litedb.Option{litedb.WithLogger(litedb.NoopLogger())}, optFns...)
	tbl, err := litedb.CreateTable[testutil.Person](context.Background(), storage.NewMemoryStore(), optFns...)
	if err != nil {
		b.Fatal(err)
	}
	return tbl
}

func filledBenchTable(b *testing.B, n int, optFns ...litedb.Option) *litedb.Table[testutil.Person] {
	b.Helper()
	tbl := openBenchTable(b, optFns...)
	if _, err := tbl.InsertMany(context.Background(), testutil.NewRNG(benchSeed).People(n)...); err != nil {
		b.Fatal(err)
	}
	return tbl
}

// ============================================================================
// Insert Benchmarks
// ============================================================================

// BenchmarkInsert measures single-insert throughput across page sizes.
func BenchmarkInsert(b *testing.B) {
	for _, pageSize := range []int{64, 512, 4096} {
		b.Run("page="+strconv.Itoa(pageSize), func(b *testing.B) {
			tbl := openBenchTable(b, litedb.WithPageSize(pageSize))
			people := testutil.NewRNG(benchSeed).People(b.N)

			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := tbl.Insert(ctx, people[i]); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "records/sec")
		})
	}
}

// BenchmarkInsertMany measures batch-insert throughput with various batch sizes.
func BenchmarkInsertMany(b *testing.B) {
	for _, bs := range []int{10, 100, 1000} {
		b.Run("batch="+strconv.Itoa(bs), func(b *testing.B) {
			tbl := openBenchTable(b)
			batch := testutil.NewRNG(benchSeed).People(bs)

			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := tbl.InsertMany(ctx, batch...); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N*bs)/b.Elapsed().Seconds(), "records/sec")
		})
	}
}

// ============================================================================
// Query Benchmarks
// ============================================================================

// BenchmarkRetrieve measures point, range and intersecting queries.
func BenchmarkRetrieve(b *testing.B) {
	tbl := filledBenchTable(b, benchTable)

	cases := []struct {
		name  string
		preds []litedb.Predicate
	}{
		{"eq", []litedb.Predicate{litedb.Eq("city", "Berlin")}},
		{"range", []litedb.Predicate{litedb.Range("Age", 30, 39)}},
		{"open-range", []litedb.Predicate{litedb.Range("Score", 90.0, nil)}},
		{"intersect", []litedb.Predicate{litedb.Eq("city", "Berlin"), litedb.Range("Age", 30, 39)}},
	}

	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				seq, err := tbl.Retrieve(ctx, tc.preds...)
				if err != nil {
					b.Fatal(err)
				}
				for _, err := range seq {
					if err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}

// BenchmarkColdScan measures a full scan through a page cache much smaller
// than the table.
func BenchmarkColdScan(b *testing.B) {
	for _, comp := range []litedb.Compression{litedb.CompressionNone, litedb.CompressionLZ4, litedb.CompressionZSTD} {
		b.Run(comp.String(), func(b *testing.B) {
			tbl := filledBenchTable(b, benchTable, litedb.WithPageSize(128), litedb.WithPageCache(4), litedb.WithCompression(comp))

			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				n := 0
				for _, err := range tbl.All(ctx) {
					if err != nil {
						b.Fatal(err)
					}
					n++
				}
				if n != benchTable {
					b.Fatalf("scanned %d records", n)
				}
			}
		})
	}
}

// ============================================================================
// Persistence Benchmarks
// ============================================================================

// BenchmarkCommit measures a commit after a small number of updates.
func BenchmarkCommit(b *testing.B) {
	tbl := filledBenchTable(b, benchTable)
	ctx := context.Background()
	if err := tbl.Commit(ctx); err != nil {
		b.Fatal(err)
	}
	rng := testutil.NewRNG(benchSeed + 1)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		if _, err := tbl.Insert(ctx, rng.Person(i)); err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		if err := tbl.Commit(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
