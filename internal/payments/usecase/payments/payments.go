// Package payments holds the payment ledger core: account money
// operations, durable ingest of order-created events, and the
// settlement decision that debits and answers in one transaction.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ordersaga/internal/events"
	"ordersaga/internal/payments/entity"
	"ordersaga/internal/payments/repo"
	"ordersaga/internal/worker/outbox"
	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
	"ordersaga/pkg/types/errs"
)

type UseCase struct {
	accounts   repo.AccountRepo
	inbox      repo.InboxRepo
	outboxRepo outbox.Store
	transactor repo.Transactor

	logger logger.Interface
	m      *metrics.Metrics
}

func New(
	accounts repo.AccountRepo,
	inbox repo.InboxRepo,
	outboxRepo outbox.Store,
	transactor repo.Transactor,
	l logger.Interface,
	m *metrics.Metrics,
) *UseCase {
	return &UseCase{
		accounts:   accounts,
		inbox:      inbox,
		outboxRepo: outboxRepo,
		transactor: transactor,
		logger:     l,
		m:          m,
	}
}

// CreateAccount is idempotent per user: the second call for the same
// user returns the already existing account.
func (uc *UseCase) CreateAccount(ctx context.Context, userID int) (*entity.Account, bool, error) {
	account := &entity.Account{
		ID:      uuid.New(),
		UserID:  userID,
		Balance: 0,
	}

	created, existing, err := uc.accounts.CreateIfAbsent(ctx, account)
	if err != nil {
		return nil, false, fmt.Errorf("PaymentsUseCase - CreateAccount - uc.accounts.CreateIfAbsent: %w", err)
	}

	return existing, created, nil
}

func (uc *UseCase) Deposit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	balance, err := uc.accounts.Deposit(ctx, accountID, amount)
	if err != nil {
		return 0, fmt.Errorf("PaymentsUseCase - Deposit - uc.accounts.Deposit: %w", err)
	}

	return balance, nil
}

func (uc *UseCase) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("PaymentsUseCase - GetBalance - uc.accounts.GetByID: %w", err)
	}

	return account.Balance, nil
}

func (uc *UseCase) GetAccountByUser(ctx context.Context, userID int) (*entity.Account, error) {
	account, err := uc.accounts.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("PaymentsUseCase - GetAccountByUser - uc.accounts.GetByUser: %w", err)
	}

	return account, nil
}

// IngestOrderCreated validates the payload and stores it as a pending
// task. The unique order id absorbs broker redelivery: a second arrival
// of the same order changes nothing.
func (uc *UseCase) IngestOrderCreated(ctx context.Context, payload []byte) error {
	ev, err := events.DecodeOrderCreated(payload)
	if err != nil {
		return fmt.Errorf("PaymentsUseCase - IngestOrderCreated - events.DecodeOrderCreated: %w", err)
	}

	task := &entity.InboxTask{
		ID:        uuid.New(),
		OrderID:   ev.OrderID,
		Payload:   payload,
		Status:    entity.InboxPending,
		CreatedAt: time.Now(),
	}

	inserted, err := uc.inbox.InsertIfAbsent(ctx, task)
	if err != nil {
		return fmt.Errorf("PaymentsUseCase - IngestOrderCreated - uc.inbox.InsertIfAbsent: %w", err)
	}

	if !inserted {
		uc.logger.Info("PaymentsUseCase - IngestOrderCreated - duplicate order %s ignored", ev.OrderID)
	}

	return nil
}

func (uc *UseCase) GetPendingSettlements(ctx context.Context, limit int) ([]*entity.InboxTask, error) {
	tasks, err := uc.inbox.GetPendingTasks(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("PaymentsUseCase - GetPendingSettlements - uc.inbox.GetPendingTasks: %w", err)
	}

	return tasks, nil
}

// SettleTask decides the order's fate. A missing account or a balance
// short of the cost rejects; otherwise the debit, the task completion
// and the order-settled outbox record commit atomically. An approval
// that loses its funds between the unlocked check and the locked debit
// aborts the transaction; the task stays pending and the next poll
// re-decides it against the fresh balance.
func (uc *UseCase) SettleTask(ctx context.Context, task *entity.InboxTask) error {
	ev, err := events.DecodeOrderCreated(task.Payload)
	if err != nil {
		return fmt.Errorf("PaymentsUseCase - SettleTask - events.DecodeOrderCreated: %w", err)
	}

	cost := int64(ev.Amount) * int64(ev.UnitPrice)

	decision := events.StatusApproved
	account, err := uc.accounts.GetByUser(ctx, ev.UserID)
	switch {
	case errors.Is(err, errs.ErrRecordNotFound):
		decision = events.StatusRejected
	case err != nil:
		return fmt.Errorf("PaymentsUseCase - SettleTask - uc.accounts.GetByUser: %w", err)
	case account.Balance < cost:
		decision = events.StatusRejected
	}

	payload, err := json.Marshal(events.NewOrderSettled(ev.OrderID, decision))
	if err != nil {
		return fmt.Errorf("PaymentsUseCase - SettleTask - json.Marshal: %w", err)
	}

	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if decision == events.StatusApproved {
			if err := uc.accounts.DebitLocked(ctx, account.ID, cost); err != nil {
				return fmt.Errorf("PaymentsUseCase - SettleTask - uc.accounts.DebitLocked: %w", err)
			}
		}

		if err := uc.inbox.MarkProcessed(ctx, task.ID); err != nil {
			return fmt.Errorf("PaymentsUseCase - SettleTask - uc.inbox.MarkProcessed: %w", err)
		}

		if err := uc.outboxRepo.Create(ctx, outbox.NewEvent(ev.OrderID, payload)); err != nil {
			return fmt.Errorf("PaymentsUseCase - SettleTask - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("PaymentsUseCase - SettleTask - uc.transactor.WithinTransaction: %w", err)
	}

	uc.m.Saga.SettlementsTotal.WithLabelValues(decision).Inc()
	uc.logger.Info("PaymentsUseCase - SettleTask - order %s settled: %s", ev.OrderID, decision)

	return nil
}
