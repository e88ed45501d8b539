package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"ordersaga/internal/events"
	"ordersaga/internal/orders/entity"
	"ordersaga/pkg/types/errs"
)

type fakeOrders struct {
	applied map[uuid.UUID]entity.Status
}

func (f *fakeOrders) CreateOrder(_ context.Context, _, _, _, _ int, _ string) (*entity.Order, error) {
	return nil, errors.New("not used")
}

func (f *fakeOrders) GetOrderStatus(_ context.Context, _ uuid.UUID) (entity.Status, error) {
	return "", errors.New("not used")
}

func (f *fakeOrders) GetOrders(_ context.Context, _ int) ([]*entity.Order, error) {
	return nil, errors.New("not used")
}

func (f *fakeOrders) ApplySettlement(_ context.Context, orderID uuid.UUID, status entity.Status) error {
	f.applied[orderID] = status
	return nil
}

func TestSettlementHandler(t *testing.T) {
	t.Run("approved decision reaches the ledger", func(t *testing.T) {
		orders := &fakeOrders{applied: make(map[uuid.UUID]entity.Status)}
		h := NewSettlementHandler(orders)

		orderID := uuid.New()
		payload, _ := json.Marshal(events.NewOrderSettled(orderID, events.StatusApproved))

		err := h.Handle(context.Background(), kafka.Message{Value: payload})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if orders.applied[orderID] != entity.Approved {
			t.Errorf("applied = %s, want approved", orders.applied[orderID])
		}
	})

	t.Run("rejected decision reaches the ledger", func(t *testing.T) {
		orders := &fakeOrders{applied: make(map[uuid.UUID]entity.Status)}
		h := NewSettlementHandler(orders)

		orderID := uuid.New()
		payload, _ := json.Marshal(events.NewOrderSettled(orderID, events.StatusRejected))

		err := h.Handle(context.Background(), kafka.Message{Value: payload})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if orders.applied[orderID] != entity.Rejected {
			t.Errorf("applied = %s, want rejected", orders.applied[orderID])
		}
	})

	t.Run("undecodable payload is an error for the retry policy", func(t *testing.T) {
		orders := &fakeOrders{applied: make(map[uuid.UUID]entity.Status)}
		h := NewSettlementHandler(orders)

		err := h.Handle(context.Background(), kafka.Message{Value: []byte(`{"schema":"nope"}`)})
		if !errors.Is(err, errs.ErrUnknownSchema) {
			t.Fatalf("error = %v, want ErrUnknownSchema", err)
		}
		if len(orders.applied) != 0 {
			t.Error("nothing must be applied")
		}
	})
}
