// Package kafka adapts order-created records from the broker to the
// durable inbox.
package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ordersaga/internal/payments/usecase"
)

// OrderCreatedHandler stores arriving orders as settlement tasks. It
// only persists; the executor worker makes the actual decision later.
type OrderCreatedHandler struct {
	settlements usecase.SettlementUseCase
}

func NewOrderCreatedHandler(settlements usecase.SettlementUseCase) *OrderCreatedHandler {
	return &OrderCreatedHandler{settlements: settlements}
}

func (h *OrderCreatedHandler) Handle(ctx context.Context, msg kafka.Message) error {
	if err := h.settlements.IngestOrderCreated(ctx, msg.Value); err != nil {
		return fmt.Errorf("OrderCreatedHandler - Handle - h.settlements.IngestOrderCreated: %w", err)
	}

	return nil
}
