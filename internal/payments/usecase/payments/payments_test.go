package payments

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"ordersaga/internal/events"
	"ordersaga/internal/payments/entity"
	"ordersaga/internal/worker/outbox"
	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
	"ordersaga/pkg/types/errs"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*entity.Account
	byUser   map[int]uuid.UUID
	debitErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:   make(map[uuid.UUID]*entity.Account),
		byUser: make(map[int]uuid.UUID),
	}
}

func (r *fakeAccountRepo) CreateIfAbsent(_ context.Context, account *entity.Account) (bool, *entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byUser[account.UserID]; ok {
		existing := *r.byID[id]
		return false, &existing, nil
	}

	stored := *account
	r.byID[account.ID] = &stored
	r.byUser[account.UserID] = account.ID
	return true, account, nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) GetByUser(_ context.Context, userID int) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUser[userID]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *fakeAccountRepo) Deposit(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return 0, errs.ErrRecordNotFound
	}
	account.Balance += amount
	return account.Balance, nil
}

func (r *fakeAccountRepo) DebitLocked(_ context.Context, id uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.debitErr != nil {
		return r.debitErr
	}

	account, ok := r.byID[id]
	if !ok {
		return errs.ErrRecordNotFound
	}
	if account.Balance < amount {
		return errs.ErrNotEnoughFunds
	}
	account.Balance -= amount
	return nil
}

type fakeInboxRepo struct {
	mu      sync.Mutex
	byOrder map[uuid.UUID]*entity.InboxTask
	byID    map[uuid.UUID]*entity.InboxTask
}

func newFakeInboxRepo() *fakeInboxRepo {
	return &fakeInboxRepo{
		byOrder: make(map[uuid.UUID]*entity.InboxTask),
		byID:    make(map[uuid.UUID]*entity.InboxTask),
	}
}

func (r *fakeInboxRepo) InsertIfAbsent(_ context.Context, task *entity.InboxTask) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byOrder[task.OrderID]; ok {
		return false, nil
	}
	r.byOrder[task.OrderID] = task
	r.byID[task.ID] = task
	return true, nil
}

func (r *fakeInboxRepo) GetPendingTasks(_ context.Context, limit int) ([]*entity.InboxTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := make([]*entity.InboxTask, 0)
	for _, task := range r.byOrder {
		if task.Status == entity.InboxPending && len(tasks) < limit {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (r *fakeInboxRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.byID[id]
	if !ok {
		return errs.ErrRecordNotFound
	}
	task.Status = entity.InboxProcessed
	return nil
}

type fakeOutbox struct {
	outbox.Store

	mu      sync.Mutex
	created []*outbox.Event
}

func (s *fakeOutbox) Create(_ context.Context, event *outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.created = append(s.created, event)
	return nil
}

func (s *fakeOutbox) decisions(t *testing.T) []string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.created))
	for _, event := range s.created {
		ev, err := events.DecodeOrderSettled(event.Payload)
		if err != nil {
			t.Fatalf("outbox payload does not decode: %v", err)
		}
		out = append(out, ev.Status)
	}
	return out
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

func newTestUseCase(accounts *fakeAccountRepo, inbox *fakeInboxRepo, ob *fakeOutbox) *UseCase {
	return New(accounts, inbox, ob, fakeTransactor{}, logger.New("error"), metrics.New("test"))
}

func orderTask(t *testing.T, userID, amount, unitPrice int) *entity.InboxTask {
	t.Helper()

	orderID := uuid.New()
	payload, err := json.Marshal(events.NewOrderCreated(orderID, userID, 3, amount, unitPrice, ""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	return &entity.InboxTask{
		ID:        uuid.New(),
		OrderID:   orderID,
		Payload:   payload,
		Status:    entity.InboxPending,
		CreatedAt: time.Now(),
	}
}

func TestCreateAccount(t *testing.T) {
	accounts := newFakeAccountRepo()
	uc := newTestUseCase(accounts, newFakeInboxRepo(), &fakeOutbox{})

	first, created, err := uc.CreateAccount(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("first call must create")
	}

	second, created, err := uc.CreateAccount(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("second call must not create")
	}
	if second.ID != first.ID {
		t.Error("second call returned a different account")
	}
}

func TestDeposit(t *testing.T) {
	accounts := newFakeAccountRepo()
	uc := newTestUseCase(accounts, newFakeInboxRepo(), &fakeOutbox{})

	account, _, err := uc.CreateAccount(context.Background(), 7)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	t.Run("adds to the balance", func(t *testing.T) {
		balance, err := uc.Deposit(context.Background(), account.ID, 500)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if balance != 500 {
			t.Errorf("balance = %d, want 500", balance)
		}
	})

	t.Run("the core applies signed amounts", func(t *testing.T) {
		// The sign guard lives at the HTTP boundary, not here.
		balance, err := uc.Deposit(context.Background(), account.ID, -200)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if balance != 300 {
			t.Errorf("balance = %d, want 300", balance)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := uc.Deposit(context.Background(), uuid.New(), 100)
		if !errors.Is(err, errs.ErrRecordNotFound) {
			t.Fatalf("error = %v, want ErrRecordNotFound", err)
		}
	})
}

func TestIngestOrderCreated(t *testing.T) {
	t.Run("duplicate order id is a no-op", func(t *testing.T) {
		inbox := newFakeInboxRepo()
		uc := newTestUseCase(newFakeAccountRepo(), inbox, &fakeOutbox{})

		task := orderTask(t, 7, 2, 150)

		if err := uc.IngestOrderCreated(context.Background(), task.Payload); err != nil {
			t.Fatalf("first ingest: %v", err)
		}
		if err := uc.IngestOrderCreated(context.Background(), task.Payload); err != nil {
			t.Fatalf("second ingest: %v", err)
		}
		if len(inbox.byOrder) != 1 {
			t.Errorf("stored %d tasks, want 1", len(inbox.byOrder))
		}
	})

	t.Run("unknown schema is refused", func(t *testing.T) {
		uc := newTestUseCase(newFakeAccountRepo(), newFakeInboxRepo(), &fakeOutbox{})

		err := uc.IngestOrderCreated(context.Background(), []byte(`{"schema":"nope"}`))
		if !errors.Is(err, errs.ErrUnknownSchema) {
			t.Fatalf("error = %v, want ErrUnknownSchema", err)
		}
	})
}

func TestSettleTask(t *testing.T) {
	setup := func(t *testing.T, balance int64) (*UseCase, *fakeAccountRepo, *fakeInboxRepo, *fakeOutbox, uuid.UUID) {
		t.Helper()

		accounts := newFakeAccountRepo()
		inbox := newFakeInboxRepo()
		ob := &fakeOutbox{}
		uc := newTestUseCase(accounts, inbox, ob)

		account, _, err := uc.CreateAccount(context.Background(), 7)
		if err != nil {
			t.Fatalf("create account: %v", err)
		}
		if balance > 0 {
			if _, err := uc.Deposit(context.Background(), account.ID, balance); err != nil {
				t.Fatalf("deposit: %v", err)
			}
		}

		return uc, accounts, inbox, ob, account.ID
	}

	t.Run("sufficient funds approve and debit", func(t *testing.T) {
		uc, accounts, inbox, ob, accountID := setup(t, 1000)

		task := orderTask(t, 7, 2, 150)
		if _, err := inbox.InsertIfAbsent(context.Background(), task); err != nil {
			t.Fatal(err)
		}

		if err := uc.SettleTask(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		account, _ := accounts.GetByID(context.Background(), accountID)
		if account.Balance != 700 {
			t.Errorf("balance = %d, want 700", account.Balance)
		}
		if task.Status != entity.InboxProcessed {
			t.Error("task not marked processed")
		}
		if got := ob.decisions(t); len(got) != 1 || got[0] != events.StatusApproved {
			t.Errorf("decisions = %v, want [approved]", got)
		}
	})

	t.Run("short balance rejects without debit", func(t *testing.T) {
		uc, accounts, inbox, ob, accountID := setup(t, 100)

		task := orderTask(t, 7, 2, 150)
		if _, err := inbox.InsertIfAbsent(context.Background(), task); err != nil {
			t.Fatal(err)
		}

		if err := uc.SettleTask(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		account, _ := accounts.GetByID(context.Background(), accountID)
		if account.Balance != 100 {
			t.Errorf("balance = %d, want untouched 100", account.Balance)
		}
		if got := ob.decisions(t); len(got) != 1 || got[0] != events.StatusRejected {
			t.Errorf("decisions = %v, want [rejected]", got)
		}
	})

	t.Run("missing account rejects", func(t *testing.T) {
		inbox := newFakeInboxRepo()
		ob := &fakeOutbox{}
		uc := newTestUseCase(newFakeAccountRepo(), inbox, ob)

		task := orderTask(t, 42, 1, 100)
		if _, err := inbox.InsertIfAbsent(context.Background(), task); err != nil {
			t.Fatal(err)
		}

		if err := uc.SettleTask(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := ob.decisions(t); len(got) != 1 || got[0] != events.StatusRejected {
			t.Errorf("decisions = %v, want [rejected]", got)
		}
		if task.Status != entity.InboxProcessed {
			t.Error("task not marked processed")
		}
	})

	t.Run("funds lost before the locked debit keep the task pending", func(t *testing.T) {
		uc, accounts, inbox, _, _ := setup(t, 1000)
		accounts.debitErr = errs.ErrNotEnoughFunds

		task := orderTask(t, 7, 2, 150)
		if _, err := inbox.InsertIfAbsent(context.Background(), task); err != nil {
			t.Fatal(err)
		}

		err := uc.SettleTask(context.Background(), task)
		if !errors.Is(err, errs.ErrNotEnoughFunds) {
			t.Fatalf("error = %v, want ErrNotEnoughFunds", err)
		}
		if task.Status != entity.InboxPending {
			t.Error("task must stay pending for the next poll")
		}
	})
}

func TestSettleTaskConcurrentNeverOverdraws(t *testing.T) {
	accounts := newFakeAccountRepo()
	inbox := newFakeInboxRepo()
	ob := &fakeOutbox{}
	uc := newTestUseCase(accounts, inbox, ob)

	account, _, err := uc.CreateAccount(context.Background(), 7)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := uc.Deposit(context.Background(), account.ID, 300); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// Two orders that each cost the whole balance. Both pre-checks may
	// pass, but the locked debit admits at most one.
	tasks := []*entity.InboxTask{
		orderTask(t, 7, 2, 150),
		orderTask(t, 7, 3, 100),
	}
	for _, task := range tasks {
		if _, err := inbox.InsertIfAbsent(context.Background(), task); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(task *entity.InboxTask) {
			defer wg.Done()
			_ = uc.SettleTask(context.Background(), task)
		}(task)
	}
	wg.Wait()

	final, _ := accounts.GetByID(context.Background(), account.ID)
	if final.Balance < 0 {
		t.Fatalf("balance = %d, overdraw must be impossible", final.Balance)
	}

	approved := 0
	for _, decision := range ob.decisions(t) {
		if decision == events.StatusApproved {
			approved++
		}
	}
	if approved > 1 {
		t.Errorf("approved %d settlements, at most 1 can fit the balance", approved)
	}
}
