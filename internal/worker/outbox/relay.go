package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
)

// Relay polls the outbox table and publishes pending records. A record
// turns processed only after the broker accepted the publish; a failed
// publish leaves it pending, so the next cycle picks it up again. That
// retry is unbounded: delivery is at-least-once and the consuming side
// is idempotent, so re-publishing is always safe.
type Relay struct {
	store  Store
	sender Sender
	logger logger.Interface
	m      *metrics.Metrics
	topic  string

	pollInterval    time.Duration
	cleanupInterval time.Duration
	batchTimeout    time.Duration
	batchSize       int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func NewRelay(
	store Store,
	sender Sender,
	l logger.Interface,
	m *metrics.Metrics,
	topic string,
	pollInterval time.Duration,
	cleanupInterval time.Duration,
	batchTimeout time.Duration,
	batchSize int,
) *Relay {
	return &Relay{
		store:           store,
		sender:          sender,
		logger:          l,
		m:               m,
		topic:           topic,
		pollInterval:    pollInterval,
		cleanupInterval: cleanupInterval,
		batchTimeout:    batchTimeout,
		batchSize:       batchSize,
	}
}

func (r *Relay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// publisher loop
	r.worker(r.pollInterval, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.batchTimeout)
		r.processBatch(batchCtx)
		batchCancel()
	})

	// processed-row cleanup loop
	r.worker(r.cleanupInterval, func() {
		count, err := r.store.DeleteProcessed(r.ctx)
		if err != nil {
			r.logger.Error(fmt.Errorf("OutboxRelay - Start - r.store.DeleteProcessed: %w", err))
			return
		}
		if count > 0 {
			r.logger.Info("OutboxRelay - cleaned up processed records, count = %d", count)
		}
	})

	return nil
}

func (r *Relay) processBatch(ctx context.Context) {
	events, err := r.store.GetPendingEvents(ctx, r.batchSize)
	if err != nil {
		r.logger.Error(fmt.Errorf("OutboxRelay - processBatch - r.store.GetPendingEvents: %w", err))

		return
	}
	if len(events) == 0 {
		return
	}

	ids := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}

	err = r.sender.SendEvents(ctx, events)
	if err != nil {
		r.logger.Error(fmt.Errorf("OutboxRelay - processBatch - r.sender.SendEvents: %w", err))
		r.m.Outbox.PublishFailuresTotal.WithLabelValues(r.topic).Inc()

		// Records stay pending; the retry counter is bookkeeping only.
		incErr := r.store.IncrementRetryBatch(ctx, ids)
		if incErr != nil {
			r.logger.Error(fmt.Errorf("OutboxRelay - processBatch - r.store.IncrementRetryBatch: %w", incErr))
		}
		return
	}

	err = r.store.MarkProcessedBatch(ctx, ids)
	if err != nil {
		r.logger.Error(fmt.Errorf("OutboxRelay - processBatch - r.store.MarkProcessedBatch: %w", err))

		return
	}

	r.m.Outbox.PublishedTotal.WithLabelValues(r.topic).Add(float64(len(events)))
}

func (r *Relay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (r *Relay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		r.sender.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
