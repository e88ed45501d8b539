package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"ordersaga/internal/payments/entity"
	"ordersaga/pkg/logger"
)

type fakeSettlements struct {
	pending []*entity.InboxTask

	settled []uuid.UUID
	failOn  map[uuid.UUID]error
}

func (f *fakeSettlements) IngestOrderCreated(_ context.Context, _ []byte) error {
	return errors.New("not used")
}

func (f *fakeSettlements) GetPendingSettlements(_ context.Context, limit int) ([]*entity.InboxTask, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeSettlements) SettleTask(_ context.Context, task *entity.InboxTask) error {
	if err := f.failOn[task.ID]; err != nil {
		return err
	}
	f.settled = append(f.settled, task.ID)
	return nil
}

func newTestExecutor(settlements *fakeSettlements) *Executor {
	e := New(settlements, logger.New("error"), time.Second, time.Second, 10)
	e.ctx, e.cancel = context.WithCancel(context.Background())
	return e
}

func task() *entity.InboxTask {
	return &entity.InboxTask{ID: uuid.New(), OrderID: uuid.New(), Status: entity.InboxPending}
}

func TestExecutorProcessBatch(t *testing.T) {
	t.Run("settles every pending task", func(t *testing.T) {
		settlements := &fakeSettlements{pending: []*entity.InboxTask{task(), task(), task()}}

		newTestExecutor(settlements).processBatch()

		if len(settlements.settled) != 3 {
			t.Errorf("settled %d tasks, want 3", len(settlements.settled))
		}
	})

	t.Run("one failing task does not block the rest", func(t *testing.T) {
		bad := task()
		good := task()
		settlements := &fakeSettlements{
			pending: []*entity.InboxTask{bad, good},
			failOn:  map[uuid.UUID]error{bad.ID: errors.New("debit race")},
		}

		newTestExecutor(settlements).processBatch()

		if len(settlements.settled) != 1 || settlements.settled[0] != good.ID {
			t.Errorf("settled = %v, want only the healthy task", settlements.settled)
		}
	})

	t.Run("respects the batch size", func(t *testing.T) {
		settlements := &fakeSettlements{}
		for i := 0; i < 25; i++ {
			settlements.pending = append(settlements.pending, task())
		}

		newTestExecutor(settlements).processBatch()

		if len(settlements.settled) != 10 {
			t.Errorf("settled %d tasks, want the batch size of 10", len(settlements.settled))
		}
	})
}
