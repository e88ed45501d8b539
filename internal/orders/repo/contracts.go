package repo

import (
	"context"

	"github.com/google/uuid"

	"ordersaga/internal/orders/entity"
)

type (
	OrderRepo interface {
		Create(ctx context.Context, order *entity.Order) error
		GetStatus(ctx context.Context, id uuid.UUID) (entity.Status, error)
		GetByUser(ctx context.Context, userID int) ([]*entity.Order, error)
		// UpdateStatusIfPending applies the terminal status only when the
		// order is still pending; it reports whether a row changed.
		UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status entity.Status) (bool, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
