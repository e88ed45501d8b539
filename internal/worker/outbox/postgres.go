package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"ordersaga/pkg/postgres"
)

const (
	outboxTable = "outbox"

	idColumn          = "id"
	orderIDColumn     = "order_id"
	payloadColumn     = "payload"
	statusColumn      = "status"
	retryCountColumn  = "retry_count"
	createdAtColumn   = "created_at"
	processedAtColumn = "processed_at"
)

// PostgresStore implements Store on a service's private database. Both
// ledgers carry an identical outbox table, so they share this code while
// each instance points at its own pool.
type PostgresStore struct {
	*postgres.Postgres
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pg *postgres.Postgres) *PostgresStore {
	return &PostgresStore{pg}
}

// Create inserts the record through the executor carried by ctx, so a
// call made inside WithinTransaction joins the business transaction.
func (s *PostgresStore) Create(ctx context.Context, event *Event) error {
	sql, args, err := s.Builder.
		Insert(outboxTable).
		Columns(
			idColumn,
			orderIDColumn,
			payloadColumn,
			statusColumn,
			retryCountColumn,
			createdAtColumn,
		).
		Values(
			event.ID,
			event.OrderID,
			event.Payload,
			event.Status,
			event.RetryCount,
			event.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxStore - Create - s.Builder.ToSql: %w", err)
	}

	executor := s.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxStore - Create - executor.Exec: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetPendingEvents(ctx context.Context, limit int) ([]*Event, error) {
	sql, args, err := s.Builder.
		Select(
			idColumn,
			orderIDColumn,
			payloadColumn,
			statusColumn,
			retryCountColumn,
			createdAtColumn,
			processedAtColumn,
		).
		From(outboxTable).
		Where(squirrel.Eq{statusColumn: Pending}).
		OrderBy(createdAtColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("OutboxStore - GetPendingEvents - s.Builder.ToSql: %w", err)
	}

	executor := s.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("OutboxStore - GetPendingEvents - executor.Query: %w", err)
	}
	defer rows.Close()

	events := make([]*Event, 0, limit)
	for rows.Next() {
		var event Event
		err = rows.Scan(
			&event.ID,
			&event.OrderID,
			&event.Payload,
			&event.Status,
			&event.RetryCount,
			&event.CreatedAt,
			&event.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("OutboxStore - GetPendingEvents - rows.Scan: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("OutboxStore - GetPendingEvents - rows.Err: %w", err)
	}

	return events, nil
}

func (s *PostgresStore) MarkProcessedBatch(ctx context.Context, ids uuid.UUIDs) error {
	now := time.Now()

	sql, args, err := s.Builder.
		Update(outboxTable).
		Set(statusColumn, Processed).
		Set(processedAtColumn, now).
		Where(squirrel.Eq{idColumn: ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxStore - MarkProcessedBatch - s.Builder.ToSql: %w", err)
	}

	executor := s.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxStore - MarkProcessedBatch - executor.Exec: %w", err)
	}

	return nil
}

func (s *PostgresStore) IncrementRetryBatch(ctx context.Context, ids uuid.UUIDs) error {
	sql, args, err := s.Builder.
		Update(outboxTable).
		Set(retryCountColumn, squirrel.Expr(retryCountColumn+" + 1")).
		Where(squirrel.Eq{idColumn: ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxStore - IncrementRetryBatch - s.Builder.ToSql: %w", err)
	}

	executor := s.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxStore - IncrementRetryBatch - executor.Exec: %w", err)
	}

	return nil
}

func (s *PostgresStore) DeleteProcessed(ctx context.Context) (int64, error) {
	sql, args, err := s.Builder.
		Delete(outboxTable).
		Where(squirrel.Eq{statusColumn: Processed}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("OutboxStore - DeleteProcessed - s.Builder.ToSql: %w", err)
	}

	executor := s.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("OutboxStore - DeleteProcessed - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}
