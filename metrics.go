package vizsync

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/vizsync/schema"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAdd is called after each add operation.
	RecordAdd(kind schema.Kind, duration time.Duration, err error)

	// RecordUpdate is called after each update operation.
	RecordUpdate(kind schema.Kind, duration time.Duration, err error)

	// RecordRender is called after each frame. flushed is the number of
	// actors pushed to the backend.
	RecordRender(flushed int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(schema.Kind, time.Duration, error)    {}
func (NoopMetricsCollector) RecordUpdate(schema.Kind, time.Duration, error) {}
func (NoopMetricsCollector) RecordRender(int, time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount         atomic.Int64
	AddErrors        atomic.Int64
	AddTotalNanos    atomic.Int64
	UpdateCount      atomic.Int64
	UpdateErrors     atomic.Int64
	UpdateTotalNanos atomic.Int64
	RenderCount      atomic.Int64
	RenderErrors     atomic.Int64
	RenderTotalNanos atomic.Int64
	FlushedActors    atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(_ schema.Kind, duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(_ schema.Kind, duration time.Duration, err error) {
	b.UpdateCount.Add(1)
	b.UpdateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.UpdateErrors.Add(1)
	}
}

// RecordRender implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRender(flushed int, duration time.Duration, err error) {
	b.RenderCount.Add(1)
	b.RenderTotalNanos.Add(duration.Nanoseconds())
	b.FlushedActors.Add(int64(flushed))
	if err != nil {
		b.RenderErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:       b.AddCount.Load(),
		AddErrors:      b.AddErrors.Load(),
		AddAvgNanos:    avg(b.AddTotalNanos.Load(), b.AddCount.Load()),
		UpdateCount:    b.UpdateCount.Load(),
		UpdateErrors:   b.UpdateErrors.Load(),
		UpdateAvgNanos: avg(b.UpdateTotalNanos.Load(), b.UpdateCount.Load()),
		RenderCount:    b.RenderCount.Load(),
		RenderErrors:   b.RenderErrors.Load(),
		RenderAvgNanos: avg(b.RenderTotalNanos.Load(), b.RenderCount.Load()),
		FlushedActors:  b.FlushedActors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount       int64
	AddErrors      int64
	AddAvgNanos    int64
	UpdateCount    int64
	UpdateErrors   int64
	UpdateAvgNanos int64
	RenderCount    int64
	RenderErrors   int64
	RenderAvgNanos int64
	FlushedActors  int64
}
