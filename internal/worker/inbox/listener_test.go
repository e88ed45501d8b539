package inbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
)

type fakeConsumer struct {
	committed []kafka.Message
}

func (c *fakeConsumer) ReadEvent(_ context.Context) (kafka.Message, error) {
	return kafka.Message{}, errors.New("not used")
}

func (c *fakeConsumer) CommitEvent(_ context.Context, msg kafka.Message) error {
	c.committed = append(c.committed, msg)
	return nil
}

func (c *fakeConsumer) Close() error { return nil }

type fakeHandler struct {
	calls int
	err   error
}

func (h *fakeHandler) Handle(_ context.Context, _ kafka.Message) error {
	h.calls++
	return h.err
}

func newTestListener(consumer Consumer, handler Handler, maxAttempts int) *Listener {
	l := NewListener(
		consumer,
		handler,
		logger.New("error"),
		metrics.New("test"),
		"orders-topic",
		maxAttempts,
		time.Millisecond,
		100*time.Millisecond,
		100*time.Millisecond,
	)
	l.ctx, l.cancel = context.WithCancel(context.Background())

	return l
}

func TestListenerProcessMessage(t *testing.T) {
	msg := kafka.Message{Value: []byte(`{"order_id":"x"}`)}

	t.Run("success commits and clears the counter", func(t *testing.T) {
		consumer := &fakeConsumer{}
		handler := &fakeHandler{}
		l := newTestListener(consumer, handler, 3)

		l.processMessage(msg)

		if len(consumer.committed) != 1 {
			t.Fatalf("committed %d offsets, want 1", len(consumer.committed))
		}
		if len(l.attempts) != 0 {
			t.Errorf("attempt counters left: %d, want 0", len(l.attempts))
		}
	})

	t.Run("failure below threshold holds the offset", func(t *testing.T) {
		consumer := &fakeConsumer{}
		handler := &fakeHandler{err: errors.New("apply failed")}
		l := newTestListener(consumer, handler, 3)

		l.processMessage(msg)
		l.processMessage(msg)

		if len(consumer.committed) != 0 {
			t.Fatalf("committed %d offsets, want 0", len(consumer.committed))
		}
		if got := l.attempts[string(msg.Value)]; got != 2 {
			t.Errorf("attempts = %d, want 2", got)
		}
	})

	t.Run("poison message is dropped at the threshold", func(t *testing.T) {
		consumer := &fakeConsumer{}
		handler := &fakeHandler{err: errors.New("never parses")}
		l := newTestListener(consumer, handler, 3)

		l.processMessage(msg)
		l.processMessage(msg)
		l.processMessage(msg)

		// The third failure commits the offset anyway, so the partition
		// moves on past the record.
		if len(consumer.committed) != 1 {
			t.Fatalf("committed %d offsets, want 1", len(consumer.committed))
		}
		if handler.calls != 3 {
			t.Errorf("handler called %d times, want 3", handler.calls)
		}
		if len(l.attempts) != 0 {
			t.Errorf("attempt counter survived the drop")
		}
	})

	t.Run("recovery before threshold resets the counter", func(t *testing.T) {
		consumer := &fakeConsumer{}
		handler := &fakeHandler{err: errors.New("transient")}
		l := newTestListener(consumer, handler, 3)

		l.processMessage(msg)
		l.processMessage(msg)

		handler.err = nil
		l.processMessage(msg)

		if len(consumer.committed) != 1 {
			t.Fatalf("committed %d offsets, want 1", len(consumer.committed))
		}
		if len(l.attempts) != 0 {
			t.Errorf("attempt counters left: %d, want 0", len(l.attempts))
		}
	})

	t.Run("distinct payloads are counted apart", func(t *testing.T) {
		consumer := &fakeConsumer{}
		handler := &fakeHandler{err: errors.New("apply failed")}
		l := newTestListener(consumer, handler, 3)

		other := kafka.Message{Value: []byte(`{"order_id":"y"}`)}

		l.processMessage(msg)
		l.processMessage(msg)
		l.processMessage(other)

		if got := l.attempts[string(msg.Value)]; got != 2 {
			t.Errorf("attempts for first payload = %d, want 2", got)
		}
		if got := l.attempts[string(other.Value)]; got != 1 {
			t.Errorf("attempts for second payload = %d, want 1", got)
		}
	})
}
