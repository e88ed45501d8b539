package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ordersaga/internal/orders/entity"
	"ordersaga/pkg/postgres"
	"ordersaga/pkg/types/errs"
)

const (
	ordersTable = "orders"

	idColumn          = "id"
	userIDColumn      = "user_id"
	productIDColumn   = "product_id"
	amountColumn      = "amount"
	unitPriceColumn   = "unit_price"
	descriptionColumn = "description"
	statusColumn      = "status"
	createdAtColumn   = "created_at"
)

type OrderRepo struct {
	*postgres.Postgres
}

func NewOrderRepo(pg *postgres.Postgres) *OrderRepo {
	return &OrderRepo{pg}
}

func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	sql, args, err := r.Builder.
		Insert(ordersTable).
		Columns(
			idColumn,
			userIDColumn,
			productIDColumn,
			amountColumn,
			unitPriceColumn,
			descriptionColumn,
			statusColumn,
			createdAtColumn,
		).
		Values(
			order.ID,
			order.UserID,
			order.ProductID,
			order.Amount,
			order.UnitPrice,
			order.Description,
			order.Status,
			order.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("OrderRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OrderRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *OrderRepo) GetStatus(ctx context.Context, id uuid.UUID) (entity.Status, error) {
	sql, args, err := r.Builder.
		Select(statusColumn).
		From(ordersTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("OrderRepo - GetStatus - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var status entity.Status
	err = executor.QueryRow(ctx, sql, args...).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("OrderRepo - GetStatus: %w", errs.ErrRecordNotFound)
		}

		return "", fmt.Errorf("OrderRepo - GetStatus - executor.QueryRow: %w", err)
	}

	return status, nil
}

func (r *OrderRepo) GetByUser(ctx context.Context, userID int) ([]*entity.Order, error) {
	sql, args, err := r.Builder.
		Select(
			idColumn,
			userIDColumn,
			productIDColumn,
			amountColumn,
			unitPriceColumn,
			descriptionColumn,
			statusColumn,
			createdAtColumn,
		).
		From(ordersTable).
		Where(squirrel.Eq{userIDColumn: userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("OrderRepo - GetByUser - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("OrderRepo - GetByUser - executor.Query: %w", err)
	}
	defer rows.Close()

	orders := make([]*entity.Order, 0)
	for rows.Next() {
		var order entity.Order
		err = rows.Scan(
			&order.ID,
			&order.UserID,
			&order.ProductID,
			&order.Amount,
			&order.UnitPrice,
			&order.Description,
			&order.Status,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("OrderRepo - GetByUser - rows.Scan: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("OrderRepo - GetByUser - rows.Err: %w", err)
	}

	return orders, nil
}

func (r *OrderRepo) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status entity.Status) (bool, error) {
	sql, args, err := r.Builder.
		Update(ordersTable).
		Set(statusColumn, status).
		Where(squirrel.Eq{
			idColumn:     id,
			statusColumn: entity.Pending,
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("OrderRepo - UpdateStatusIfPending - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("OrderRepo - UpdateStatusIfPending - executor.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
