// Package events defines the payloads crossing the broker. Every event
// carries an explicit schema name and version so either side can reject
// a payload it does not understand instead of guessing by structure.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"ordersaga/pkg/types/errs"
)

const (
	SchemaOrderCreated = "order.created"
	SchemaOrderSettled = "order.settled"

	SchemaVersion = 1
)

const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Envelope struct {
	Schema        string `json:"schema"`
	SchemaVersion int    `json:"schema_version"`
}

// OrderCreated travels on the order-created topic, keyed by OrderID.
// Amount is the ordered quantity; UnitPrice is money in the smallest unit.
type OrderCreated struct {
	Envelope

	OrderID     uuid.UUID `json:"order_id"`
	UserID      int       `json:"user_id"`
	ProductID   int       `json:"product_id"`
	Amount      int       `json:"amount"`
	UnitPrice   int       `json:"unit_price"`
	Description string    `json:"description"`
}

// OrderSettled travels on the order-settled topic, keyed by OrderID.
type OrderSettled struct {
	Envelope

	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
}

func NewOrderCreated(orderID uuid.UUID, userID, productID, amount, unitPrice int, description string) OrderCreated {
	return OrderCreated{
		Envelope:    Envelope{Schema: SchemaOrderCreated, SchemaVersion: SchemaVersion},
		OrderID:     orderID,
		UserID:      userID,
		ProductID:   productID,
		Amount:      amount,
		UnitPrice:   unitPrice,
		Description: description,
	}
}

func NewOrderSettled(orderID uuid.UUID, status string) OrderSettled {
	return OrderSettled{
		Envelope: Envelope{Schema: SchemaOrderSettled, SchemaVersion: SchemaVersion},
		OrderID:  orderID,
		Status:   status,
	}
}

func DecodeOrderCreated(data []byte) (OrderCreated, error) {
	var ev OrderCreated

	if err := json.Unmarshal(data, &ev); err != nil {
		return OrderCreated{}, fmt.Errorf("events - DecodeOrderCreated - json.Unmarshal: %w", err)
	}

	if err := checkEnvelope(ev.Envelope, SchemaOrderCreated); err != nil {
		return OrderCreated{}, fmt.Errorf("events - DecodeOrderCreated: %w", err)
	}

	if ev.OrderID == uuid.Nil {
		return OrderCreated{}, fmt.Errorf("events - DecodeOrderCreated - empty order_id: %w", errs.ErrUnknownSchema)
	}

	return ev, nil
}

func DecodeOrderSettled(data []byte) (OrderSettled, error) {
	var ev OrderSettled

	if err := json.Unmarshal(data, &ev); err != nil {
		return OrderSettled{}, fmt.Errorf("events - DecodeOrderSettled - json.Unmarshal: %w", err)
	}

	if err := checkEnvelope(ev.Envelope, SchemaOrderSettled); err != nil {
		return OrderSettled{}, fmt.Errorf("events - DecodeOrderSettled: %w", err)
	}

	if ev.OrderID == uuid.Nil {
		return OrderSettled{}, fmt.Errorf("events - DecodeOrderSettled - empty order_id: %w", errs.ErrUnknownSchema)
	}

	if ev.Status != StatusApproved && ev.Status != StatusRejected {
		return OrderSettled{}, fmt.Errorf("events - DecodeOrderSettled - status %q: %w", ev.Status, errs.ErrUnknownSchema)
	}

	return ev, nil
}

func checkEnvelope(env Envelope, wantSchema string) error {
	if env.Schema != wantSchema {
		return fmt.Errorf("schema %q, want %q: %w", env.Schema, wantSchema, errs.ErrUnknownSchema)
	}

	if env.SchemaVersion != SchemaVersion {
		return fmt.Errorf("schema version %d, want %d: %w", env.SchemaVersion, SchemaVersion, errs.ErrUnknownSchema)
	}

	return nil
}
