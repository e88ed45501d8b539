package persistent

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"ordersaga/internal/payments/entity"
	"ordersaga/pkg/postgres"
)

const (
	inboxTable = "inbox"

	inboxIDColumn          = "id"
	inboxOrderIDColumn     = "order_id"
	inboxPayloadColumn     = "payload"
	inboxStatusColumn      = "status"
	inboxCreatedAtColumn   = "created_at"
	inboxProcessedAtColumn = "processed_at"
)

type InboxRepo struct {
	*postgres.Postgres
}

func NewInboxRepo(pg *postgres.Postgres) *InboxRepo {
	return &InboxRepo{pg}
}

func (r *InboxRepo) InsertIfAbsent(ctx context.Context, task *entity.InboxTask) (bool, error) {
	sql, args, err := r.Builder.
		Insert(inboxTable).
		Columns(
			inboxIDColumn,
			inboxOrderIDColumn,
			inboxPayloadColumn,
			inboxStatusColumn,
			inboxCreatedAtColumn,
		).
		Values(
			task.ID,
			task.OrderID,
			task.Payload,
			task.Status,
			task.CreatedAt,
		).
		Suffix("ON CONFLICT (" + inboxOrderIDColumn + ") DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("InboxRepo - InsertIfAbsent - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("InboxRepo - InsertIfAbsent - executor.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *InboxRepo) GetPendingTasks(ctx context.Context, limit int) ([]*entity.InboxTask, error) {
	sql, args, err := r.Builder.
		Select(
			inboxIDColumn,
			inboxOrderIDColumn,
			inboxPayloadColumn,
			inboxStatusColumn,
			inboxCreatedAtColumn,
			inboxProcessedAtColumn,
		).
		From(inboxTable).
		Where(squirrel.Eq{inboxStatusColumn: entity.InboxPending}).
		OrderBy(inboxCreatedAtColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("InboxRepo - GetPendingTasks - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("InboxRepo - GetPendingTasks - executor.Query: %w", err)
	}
	defer rows.Close()

	tasks := make([]*entity.InboxTask, 0)
	for rows.Next() {
		var task entity.InboxTask
		err = rows.Scan(
			&task.ID,
			&task.OrderID,
			&task.Payload,
			&task.Status,
			&task.CreatedAt,
			&task.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("InboxRepo - GetPendingTasks - rows.Scan: %w", err)
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("InboxRepo - GetPendingTasks - rows.Err: %w", err)
	}

	return tasks, nil
}

func (r *InboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.Builder.
		Update(inboxTable).
		Set(inboxStatusColumn, entity.InboxProcessed).
		Set(inboxProcessedAtColumn, squirrel.Expr("NOW()")).
		Where(squirrel.Eq{inboxIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("InboxRepo - MarkProcessed - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("InboxRepo - MarkProcessed - executor.Exec: %w", err)
	}

	return nil
}
