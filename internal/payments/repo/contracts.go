package repo

import (
	"context"

	"github.com/google/uuid"

	"ordersaga/internal/payments/entity"
)

type (
	AccountRepo interface {
		// CreateIfAbsent inserts an account for the user or returns the
		// existing one; created reports which happened.
		CreateIfAbsent(ctx context.Context, account *entity.Account) (created bool, existing *entity.Account, err error)
		GetByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
		GetByUser(ctx context.Context, userID int) (*entity.Account, error)
		// Deposit adds amount to the balance and returns the new value.
		// Amount may be negative; callers guard the sign where it matters.
		Deposit(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
		// DebitLocked subtracts amount under a row lock, failing with
		// errs.ErrNotEnoughFunds when the locked balance cannot cover it.
		DebitLocked(ctx context.Context, id uuid.UUID, amount int64) error
	}

	InboxRepo interface {
		// InsertIfAbsent stores the task unless one with the same order id
		// already exists; inserted reports which happened.
		InsertIfAbsent(ctx context.Context, task *entity.InboxTask) (inserted bool, err error)
		GetPendingTasks(ctx context.Context, limit int) ([]*entity.InboxTask, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
