package litedb

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    insertCounter     prometheus.Counter
//	    retrieveHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInsert(duration time.Duration, err error) {
//	    p.insertCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// duration is the total time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordBatchInsert is called after each batch insert operation.
	// count is the number of records attempted, failed is the number that
	// were not inserted.
	RecordBatchInsert(count, failed int, duration time.Duration)

	// RecordRetrieve is called once the predicates of a retrieval have been
	// resolved. matched is the number of candidate slots.
	RecordRetrieve(matched int, duration time.Duration, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(deleted int, duration time.Duration, err error)

	// RecordCommit is called after each commit that had pending changes.
	RecordCommit(pages int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)         {}
func (NoopMetricsCollector) RecordBatchInsert(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordRetrieve(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordDelete(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordCommit(int, time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount        atomic.Int64
	InsertErrors       atomic.Int64
	InsertTotalNanos   atomic.Int64
	BatchInsertCount   atomic.Int64
	BatchInsertItems   atomic.Int64
	BatchInsertFailed  atomic.Int64
	RetrieveCount      atomic.Int64
	RetrieveErrors     atomic.Int64
	RetrieveMatched    atomic.Int64
	RetrieveTotalNanos atomic.Int64
	DeleteCount        atomic.Int64
	DeleteErrors       atomic.Int64
	DeletedRecords     atomic.Int64
	CommitCount        atomic.Int64
	CommitErrors       atomic.Int64
	PagesWritten       atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordBatchInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchInsert(count, failed int, duration time.Duration) {
	b.BatchInsertCount.Add(1)
	b.BatchInsertItems.Add(int64(count))
	b.BatchInsertFailed.Add(int64(failed))
}

// RecordRetrieve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRetrieve(matched int, duration time.Duration, err error) {
	b.RetrieveCount.Add(1)
	b.RetrieveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RetrieveErrors.Add(1)
		return
	}
	b.RetrieveMatched.Add(int64(matched))
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(deleted int, duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	b.DeletedRecords.Add(int64(deleted))
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(pages int, duration time.Duration, err error) {
	b.CommitCount.Add(1)
	b.PagesWritten.Add(int64(pages))
	if err != nil {
		b.CommitErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:       b.InsertCount.Load(),
		InsertErrors:      b.InsertErrors.Load(),
		InsertAvgNanos:    avgNanos(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		BatchInsertCount:  b.BatchInsertCount.Load(),
		BatchInsertItems:  b.BatchInsertItems.Load(),
		BatchInsertFailed: b.BatchInsertFailed.Load(),
		RetrieveCount:     b.RetrieveCount.Load(),
		RetrieveErrors:    b.RetrieveErrors.Load(),
		RetrieveMatched:   b.RetrieveMatched.Load(),
		RetrieveAvgNanos:  avgNanos(b.RetrieveTotalNanos.Load(), b.RetrieveCount.Load()),
		DeleteCount:       b.DeleteCount.Load(),
		DeleteErrors:      b.DeleteErrors.Load(),
		DeletedRecords:    b.DeletedRecords.Load(),
		CommitCount:       b.CommitCount.Load(),
		CommitErrors:      b.CommitErrors.Load(),
		PagesWritten:      b.PagesWritten.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount       int64
	InsertErrors      int64
	InsertAvgNanos    int64
	BatchInsertCount  int64
	BatchInsertItems  int64
	BatchInsertFailed int64
	RetrieveCount     int64
	RetrieveErrors    int64
	RetrieveMatched   int64
	RetrieveAvgNanos  int64
	DeleteCount       int64
	DeleteErrors      int64
	DeletedRecords    int64
	CommitCount       int64
	CommitErrors      int64
	PagesWritten      int64
}
