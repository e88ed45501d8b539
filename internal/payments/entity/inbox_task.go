package entity

import (
	"time"

	"github.com/google/uuid"
)

type InboxStatus string

const (
	InboxPending   InboxStatus = "pending"
	InboxProcessed InboxStatus = "processed"
)

// InboxTask is a durably stored order-created event awaiting its
// settlement decision. OrderID is unique, which is what makes the
// ingest idempotent under broker redelivery.
type InboxTask struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Payload     []byte
	Status      InboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
