// Package kafka adapts settlement records from the broker to the order
// use case.
package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ordersaga/internal/events"
	"ordersaga/internal/orders/entity"
	"ordersaga/internal/orders/usecase"
)

// SettlementHandler applies order-settled records. Decode failures are
// returned as-is; the listener's poison policy decides when to give up
// on a payload that will never parse.
type SettlementHandler struct {
	orders usecase.OrdersUseCase
}

func NewSettlementHandler(orders usecase.OrdersUseCase) *SettlementHandler {
	return &SettlementHandler{orders: orders}
}

func (h *SettlementHandler) Handle(ctx context.Context, msg kafka.Message) error {
	ev, err := events.DecodeOrderSettled(msg.Value)
	if err != nil {
		return fmt.Errorf("SettlementHandler - Handle - events.DecodeOrderSettled: %w", err)
	}

	var status entity.Status
	switch ev.Status {
	case events.StatusApproved:
		status = entity.Approved
	case events.StatusRejected:
		status = entity.Rejected
	}

	if err := h.orders.ApplySettlement(ctx, ev.OrderID, status); err != nil {
		return fmt.Errorf("SettlementHandler - Handle - h.orders.ApplySettlement: %w", err)
	}

	return nil
}
