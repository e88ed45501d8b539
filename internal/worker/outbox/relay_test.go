package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
)

type fakeStore struct {
	pending []*Event

	processed   uuid.UUIDs
	incremented uuid.UUIDs

	pendingErr error
}

func (s *fakeStore) Create(_ context.Context, event *Event) error {
	s.pending = append(s.pending, event)
	return nil
}

func (s *fakeStore) GetPendingEvents(_ context.Context, limit int) ([]*Event, error) {
	if s.pendingErr != nil {
		return nil, s.pendingErr
	}
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeStore) MarkProcessedBatch(_ context.Context, ids uuid.UUIDs) error {
	s.processed = append(s.processed, ids...)
	return nil
}

func (s *fakeStore) IncrementRetryBatch(_ context.Context, ids uuid.UUIDs) error {
	s.incremented = append(s.incremented, ids...)
	return nil
}

func (s *fakeStore) DeleteProcessed(_ context.Context) (int64, error) {
	return 0, nil
}

type fakeSender struct {
	sent    []*Event
	sendErr error
}

func (s *fakeSender) SendEvents(_ context.Context, events []*Event) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, events...)
	return nil
}

func (s *fakeSender) Close() error { return nil }

func newTestRelay(store Store, sender Sender) *Relay {
	return NewRelay(store, sender, logger.New("error"), metrics.New("test"), "orders-topic", 0, 0, 0, 10)
}

func TestRelayProcessBatch(t *testing.T) {
	t.Run("published events turn processed", func(t *testing.T) {
		first := NewEvent(uuid.New(), []byte(`{"a":1}`))
		second := NewEvent(uuid.New(), []byte(`{"b":2}`))
		store := &fakeStore{pending: []*Event{first, second}}
		sender := &fakeSender{}

		newTestRelay(store, sender).processBatch(context.Background())

		if len(sender.sent) != 2 {
			t.Fatalf("sent %d events, want 2", len(sender.sent))
		}
		if len(store.processed) != 2 {
			t.Fatalf("marked %d processed, want 2", len(store.processed))
		}
		if store.processed[0] != first.ID || store.processed[1] != second.ID {
			t.Error("processed ids do not match the published batch")
		}
		if len(store.incremented) != 0 {
			t.Errorf("retry incremented for %d events, want 0", len(store.incremented))
		}
	})

	t.Run("publish failure leaves events pending", func(t *testing.T) {
		event := NewEvent(uuid.New(), []byte(`{"a":1}`))
		store := &fakeStore{pending: []*Event{event}}
		sender := &fakeSender{sendErr: errors.New("broker down")}

		newTestRelay(store, sender).processBatch(context.Background())

		if len(store.processed) != 0 {
			t.Fatalf("marked %d processed, want 0", len(store.processed))
		}
		if len(store.incremented) != 1 || store.incremented[0] != event.ID {
			t.Error("expected a retry increment for the unpublished event")
		}
	})

	t.Run("empty outbox publishes nothing", func(t *testing.T) {
		store := &fakeStore{}
		sender := &fakeSender{}

		newTestRelay(store, sender).processBatch(context.Background())

		if len(sender.sent) != 0 {
			t.Errorf("sent %d events, want 0", len(sender.sent))
		}
	})

	t.Run("store failure is not fatal", func(t *testing.T) {
		store := &fakeStore{pendingErr: errors.New("db down")}
		sender := &fakeSender{}

		newTestRelay(store, sender).processBatch(context.Background())

		if len(sender.sent) != 0 {
			t.Errorf("sent %d events, want 0", len(sender.sent))
		}
	})
}

func TestRelayBatchLimit(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 25; i++ {
		store.pending = append(store.pending, NewEvent(uuid.New(), []byte(`{}`)))
	}
	sender := &fakeSender{}

	newTestRelay(store, sender).processBatch(context.Background())

	if len(sender.sent) != 10 {
		t.Errorf("sent %d events, want the batch size of 10", len(sender.sent))
	}
}
