// Package events buffers MapEvents in memory and hands them to a BatchLoader
// in batches, off the request path.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// BatchLoader writes multiple events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.MapEvent) error
}

// Discard drops every event. It is used when publishing is disabled.
var Discard domain.EventPublisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, domain.MapEvent) {}

const shutdownFlushTimeout = 5 * time.Second

// Dispatcher implements domain.EventPublisher on top of a bounded channel.
// Publish never blocks: when the buffer is full the event is dropped.
type Dispatcher struct {
	loader        BatchLoader
	queue         chan domain.MapEvent
	batchSize     int
	flushInterval time.Duration
	clock         clockwork.Clock
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewDispatcher creates a Dispatcher. The buffer holds four batches.
func NewDispatcher(loader BatchLoader, batchSize int, flushInterval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	if batchSize < 1 {
		batchSize = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Dispatcher{
		loader:        loader,
		queue:         make(chan domain.MapEvent, batchSize*4),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
	}
}

// Publish enqueues e without blocking.
func (d *Dispatcher) Publish(_ context.Context, e domain.MapEvent) {
	select {
	case d.queue <- e:
	default:
		d.metrics.EventsDropped.WithLabelValues("buffer_full").Inc()
		d.logger.Warn("event buffer full, dropping event", "event_id", e.ID, "event_type", e.Type)
	}
}

// Run flushes batches until ctx is cancelled, then flushes whatever is
// still buffered and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("event dispatcher started", "batch_size", d.batchSize, "flush_interval", d.flushInterval)

	ticker := d.clock.NewTicker(d.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.MapEvent, 0, d.batchSize)
	for {
		select {
		case <-ctx.Done():
			batch = d.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
			d.flush(flushCtx, batch)
			cancel()
			d.logger.Info("event dispatcher stopped")
			return nil
		case e := <-d.queue:
			batch = append(batch, e)
			if len(batch) >= d.batchSize {
				d.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.Chan():
			batch = d.drain(batch)
			d.flush(ctx, batch)
			batch = batch[:0]
		}
	}
}

// drain moves queued events into batch without blocking.
func (d *Dispatcher) drain(batch []domain.MapEvent) []domain.MapEvent {
	for {
		select {
		case e := <-d.queue:
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

// flush writes events in chunks of at most batchSize. Failed chunks are dropped.
func (d *Dispatcher) flush(ctx context.Context, events []domain.MapEvent) {
	for len(events) > 0 {
		n := min(len(events), d.batchSize)
		chunk := events[:n]
		events = events[n:]

		d.metrics.EventBatchSize.Observe(float64(n))
		if err := d.loader.LoadBatch(ctx, chunk); err != nil {
			d.metrics.EventsDropped.WithLabelValues("write_error").Add(float64(n))
			d.logger.Error("publish event batch failed", "error", err, "batch_size", n)
			continue
		}
		d.metrics.EventsPublished.Add(float64(n))
	}
}
