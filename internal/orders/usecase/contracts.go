package usecase

import (
	"context"

	"github.com/google/uuid"

	"ordersaga/internal/orders/entity"
)

type (
	OrdersUseCase interface {
		CreateOrder(ctx context.Context, productID, userID, amount, unitPrice int, description string) (*entity.Order, error)
		GetOrderStatus(ctx context.Context, orderID uuid.UUID) (entity.Status, error)
		GetOrders(ctx context.Context, userID int) ([]*entity.Order, error)
		ApplySettlement(ctx context.Context, orderID uuid.UUID, status entity.Status) error
	}
)
