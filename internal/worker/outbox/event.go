// Package outbox implements the transactional outbox: records written
// in the same transaction as a business change, relayed to the broker
// by a background worker, and marked processed only after the broker
// durably accepted them.
package outbox

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	Pending   Status = "pending"
	Processed Status = "processed"
	// Failed exists in the schema for operator intervention; the relay
	// never sets it; an unpublishable record is retried forever.
	Failed Status = "failed"
)

type Event struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Payload     []byte
	Status      Status
	RetryCount  int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewEvent wraps a serialized payload for the order it belongs to.
func NewEvent(orderID uuid.UUID, payload []byte) *Event {
	return &Event{
		ID:        uuid.New(),
		OrderID:   orderID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now(),
	}
}
