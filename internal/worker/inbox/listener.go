// Package inbox implements the consuming half of the saga: a
// consumer-group listener with manual offset commit and a bounded-retry
// poison policy.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
)

type (
	// Handler applies one broker record to local storage. It must be
	// idempotent: the listener gives at-least-once delivery.
	Handler interface {
		Handle(ctx context.Context, msg kafka.Message) error
	}

	Consumer interface {
		ReadEvent(ctx context.Context) (kafka.Message, error)
		CommitEvent(ctx context.Context, msg kafka.Message) error
		Close() error
	}
)

// Listener reads one channel sequentially and commits an offset only
// after the handler succeeded, or after the record was judged poison.
//
// Poison policy: handler failures are counted per payload in memory.
// Below maxAttempts the offset stays uncommitted and the loop moves on.
// Within one process run the record is not re-fetched; real redelivery
// happens on restart when the group replays from the last committed
// offset. At maxAttempts the offset is committed anyway so the partition
// is not stalled forever, and the record is dropped. The drop is logged
// and counted: it is deliberate, observable data loss.
//
// The counters are process-local and reset on restart; the broker, not
// this map, is the durable source of redelivery.
type Listener struct {
	consumer Consumer
	handler  Handler
	logger   logger.Interface
	m        *metrics.Metrics
	topic    string

	maxAttempts    int
	retryDelay     time.Duration
	commitTimeout  time.Duration
	processTimeout time.Duration

	// attempts is touched only by the single run goroutine.
	attempts map[string]int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func NewListener(
	consumer Consumer,
	handler Handler,
	l logger.Interface,
	m *metrics.Metrics,
	topic string,
	maxAttempts int,
	retryDelay time.Duration,
	commitTimeout time.Duration,
	processTimeout time.Duration,
) *Listener {
	return &Listener{
		consumer:       consumer,
		handler:        handler,
		logger:         l,
		m:              m,
		topic:          topic,
		maxAttempts:    maxAttempts,
		retryDelay:     retryDelay,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		attempts:       make(map[string]int),
	}
}

func (l *Listener) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return fmt.Errorf("InboxListener - Start - worker already started")
	}

	l.ctx, l.cancel = context.WithCancel(ctx)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run()
	}()

	return nil
}

func (l *Listener) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		msg, err := l.consumer.ReadEvent(l.ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				l.logger.Error(fmt.Errorf("InboxListener - run - l.consumer.ReadEvent: %w", err))
			}
			continue
		}

		// No payload, nothing to apply; skip without retry accounting.
		if len(msg.Value) == 0 {
			continue
		}

		l.processMessage(msg)
	}
}

func (l *Listener) processMessage(msg kafka.Message) {
	processCtx, processCancel := context.WithTimeout(l.ctx, l.processTimeout)
	err := l.handler.Handle(processCtx, msg)
	processCancel()

	key := string(msg.Value)

	if err != nil {
		l.attempts[key]++

		if l.attempts[key] >= l.maxAttempts {
			l.logger.Error(fmt.Errorf("InboxListener - processMessage - dropping after %d attempts: %w", l.attempts[key], err))
			l.m.Inbox.DroppedTotal.WithLabelValues(l.topic).Inc()

			l.commit(msg)
			delete(l.attempts, key)

			return
		}

		l.logger.Error(fmt.Errorf("InboxListener - processMessage - attempt %d: %w", l.attempts[key], err))
		l.m.Inbox.RetriedTotal.WithLabelValues(l.topic).Inc()

		// The offset stays uncommitted; the record replays only after a
		// restart. The delay just keeps a broken handler from spinning.
		l.sleep(l.retryDelay)

		return
	}

	l.commit(msg)
	delete(l.attempts, key)
	l.m.Inbox.ConsumedTotal.WithLabelValues(l.topic).Inc()
}

func (l *Listener) commit(msg kafka.Message) {
	commitCtx, commitCancel := context.WithTimeout(l.ctx, l.commitTimeout)
	defer commitCancel()

	if err := l.consumer.CommitEvent(commitCtx, msg); err != nil {
		l.logger.Error(fmt.Errorf("InboxListener - commit - l.consumer.CommitEvent: %w", err))
	}
}

func (l *Listener) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-l.ctx.Done():
	case <-t.C:
	}
}

func (l *Listener) Shutdown(ctx context.Context) error {
	if !l.started.Load() {
		return nil
	}

	if l.cancel != nil {
		l.cancel()
	}

	done := make(chan struct{})

	go func() {
		l.wg.Wait()
		l.consumer.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
