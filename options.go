package litedb

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/litedb/codec"
	"github.com/hupe1980/litedb/internal/blob"
	"github.com/hupe1980/litedb/internal/resource"
)

const (
	// DefaultPageSize is the number of slots per page file.
	DefaultPageSize = 512
	// DefaultPageCache is the number of pages kept in memory per table.
	DefaultPageCache = 512
)

// Compression selects how record blobs are compressed inside pages.
type Compression = blob.Type

const (
	// CompressionNone stores records as encoded by the codec.
	CompressionNone = blob.TypeNone
	// CompressionLZ4 compresses records with LZ4 (fast, good for hot data).
	CompressionLZ4 = blob.TypeLZ4
	// CompressionZSTD compresses records with ZSTD (better ratio, good for cold data).
	CompressionZSTD = blob.TypeZSTD
)

type options struct {
	pageSize         int
	pageCache        int
	pageCacheSet     bool
	codec            codec.Codec
	compression      Compression
	metricsCollector MetricsCollector
	logger           *Logger
	flushWorkers     int64
	ioLimit          int64
}

// Option configures table and database constructors.
type Option func(*options)

// WithPageSize sets the number of slots per page for newly created tables.
// Existing tables keep the page size they were created with.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithPageCache sets how many pages a table keeps in memory. Dirty pages
// are written out when they are evicted.
func WithPageCache(n int) Option {
	return func(o *options) {
		o.pageCache = n
		o.pageCacheSet = true
	}
}

// WithCodec configures the codec used to encode records of newly created
// tables. Existing tables reopen with the codec recorded in their info.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the record compression of newly created tables.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithFlushConcurrency bounds how many pages are written in parallel on
// commit.
func WithFlushConcurrency(n int) Option {
	return func(o *options) {
		o.flushWorkers = int64(n)
	}
}

// WithIOLimit caps page write bandwidth in bytes per second.
// Zero means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &litedb.BasicMetricsCollector{}
//	db, _ := litedb.Open(ctx, "./data", litedb.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg latency: %dns\n", stats.InsertCount, stats.InsertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := litedb.NewJSONLogger(slog.LevelInfo)
//	db, _ := litedb.Open(ctx, "./data", litedb.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		pageSize:         DefaultPageSize,
		pageCache:        DefaultPageCache,
		codec:            codec.Default,
		compression:      CompressionNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		flushWorkers:     1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o options) validate() error {
	if o.pageSize < 1 {
		return fmt.Errorf("%w: page size must be at least 1, got %d", ErrInvalidConfig, o.pageSize)
	}
	if o.pageCache < 1 {
		return fmt.Errorf("%w: page cache must be at least 1, got %d", ErrInvalidConfig, o.pageCache)
	}
	if o.flushWorkers < 1 {
		return fmt.Errorf("%w: flush concurrency must be at least 1, got %d", ErrInvalidConfig, o.flushWorkers)
	}
	if o.ioLimit < 0 {
		return fmt.Errorf("%w: negative io limit %d", ErrInvalidConfig, o.ioLimit)
	}
	if _, err := blob.ParseType(o.compression.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (o options) controller() *resource.Controller {
	return resource.NewController(resource.Config{
		MaxFlushWorkers:    o.flushWorkers,
		IOLimitBytesPerSec: o.ioLimit,
	})
}
