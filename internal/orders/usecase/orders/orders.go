// Package orders holds the order lifecycle: creation with its outbox
// record in one transaction, queries, and the terminal settlement
// transition applied from the broker.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ordersaga/internal/events"
	"ordersaga/internal/orders/entity"
	"ordersaga/internal/orders/repo"
	"ordersaga/internal/worker/outbox"
	"ordersaga/pkg/logger"
)

type UseCase struct {
	orders     repo.OrderRepo
	outboxRepo outbox.Store
	transactor repo.Transactor

	logger logger.Interface
}

func New(
	orders repo.OrderRepo,
	outboxRepo outbox.Store,
	transactor repo.Transactor,
	l logger.Interface,
) *UseCase {
	return &UseCase{
		orders:     orders,
		outboxRepo: outboxRepo,
		transactor: transactor,
		logger:     l,
	}
}

// CreateOrder persists the order and its order-created outbox record in
// one transaction. Either both rows become visible or neither does; the
// relay takes it from there.
func (uc *UseCase) CreateOrder(ctx context.Context, productID, userID, amount, unitPrice int, description string) (*entity.Order, error) {
	order := &entity.Order{
		ID:          uuid.New(),
		UserID:      userID,
		ProductID:   productID,
		Amount:      amount,
		UnitPrice:   unitPrice,
		Description: description,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
	}

	payload, err := json.Marshal(events.NewOrderCreated(
		order.ID,
		order.UserID,
		order.ProductID,
		order.Amount,
		order.UnitPrice,
		order.Description,
	))
	if err != nil {
		return nil, fmt.Errorf("OrdersUseCase - CreateOrder - json.Marshal: %w", err)
	}

	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("OrdersUseCase - CreateOrder - uc.orders.Create: %w", err)
		}

		if err := uc.outboxRepo.Create(ctx, outbox.NewEvent(order.ID, payload)); err != nil {
			return fmt.Errorf("OrdersUseCase - CreateOrder - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("OrdersUseCase - CreateOrder - uc.transactor.WithinTransaction: %w", err)
	}

	return order, nil
}

func (uc *UseCase) GetOrderStatus(ctx context.Context, orderID uuid.UUID) (entity.Status, error) {
	status, err := uc.orders.GetStatus(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("OrdersUseCase - GetOrderStatus - uc.orders.GetStatus: %w", err)
	}

	return status, nil
}

func (uc *UseCase) GetOrders(ctx context.Context, userID int) ([]*entity.Order, error) {
	orders, err := uc.orders.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("OrdersUseCase - GetOrders - uc.orders.GetByUser: %w", err)
	}

	return orders, nil
}

// ApplySettlement moves the order out of pending. The status is
// monotonic: once terminal it never changes, so a duplicate delivery of
// the same decision resolves to a no-op instead of an overwrite.
func (uc *UseCase) ApplySettlement(ctx context.Context, orderID uuid.UUID, status entity.Status) error {
	if !status.Terminal() {
		return fmt.Errorf("OrdersUseCase - ApplySettlement - status %q is not terminal", status)
	}

	updated, err := uc.orders.UpdateStatusIfPending(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("OrdersUseCase - ApplySettlement - uc.orders.UpdateStatusIfPending: %w", err)
	}

	if updated {
		return nil
	}

	// Nothing changed: either the order is unknown, or it already
	// settled and this is a redelivery.
	current, err := uc.orders.GetStatus(ctx, orderID)
	if err != nil {
		return fmt.Errorf("OrdersUseCase - ApplySettlement - uc.orders.GetStatus: %w", err)
	}

	if current.Terminal() {
		uc.logger.Info("OrdersUseCase - ApplySettlement - duplicate settlement for order %s ignored, status stays %s", orderID, current)

		return nil
	}

	return fmt.Errorf("OrdersUseCase - ApplySettlement - order %s still %s after update", orderID, current)
}
