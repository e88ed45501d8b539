package outbox

import (
	"context"

	"github.com/google/uuid"
)

type (
	// Store is the outbox table of one service.
	Store interface {
		Create(ctx context.Context, event *Event) error
		GetPendingEvents(ctx context.Context, limit int) ([]*Event, error)
		MarkProcessedBatch(ctx context.Context, ids uuid.UUIDs) error
		IncrementRetryBatch(ctx context.Context, ids uuid.UUIDs) error
		DeleteProcessed(ctx context.Context) (int64, error)
	}

	// Sender publishes a batch of events to the broker.
	Sender interface {
		SendEvents(ctx context.Context, events []*Event) error
		Close() error
	}
)
