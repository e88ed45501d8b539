package usecase

import (
	"context"

	"github.com/google/uuid"

	"ordersaga/internal/payments/entity"
)

type (
	PaymentsUseCase interface {
		// CreateAccount makes the user's account or returns the existing
		// one; created reports which happened.
		CreateAccount(ctx context.Context, userID int) (account *entity.Account, created bool, err error)
		Deposit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error)
		GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
		GetAccountByUser(ctx context.Context, userID int) (*entity.Account, error)
	}

	SettlementUseCase interface {
		// IngestOrderCreated durably stores an order-created payload as a
		// pending settlement task; a redelivered order id is a no-op.
		IngestOrderCreated(ctx context.Context, payload []byte) error
		GetPendingSettlements(ctx context.Context, limit int) ([]*entity.InboxTask, error)
		// SettleTask decides approve or reject for one task and records
		// the decision together with the debit in one transaction.
		SettleTask(ctx context.Context, task *entity.InboxTask) error
	}
)
