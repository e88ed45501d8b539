// Package executor drives settlement: a polling worker that picks
// pending inbox tasks and runs the decision for each.
package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ordersaga/internal/payments/usecase"
	"ordersaga/pkg/logger"
)

type Executor struct {
	settlements usecase.SettlementUseCase
	logger      logger.Interface

	pollInterval time.Duration
	taskTimeout  time.Duration
	batchSize    int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	settlements usecase.SettlementUseCase,
	l logger.Interface,
	pollInterval time.Duration,
	taskTimeout time.Duration,
	batchSize int,
) *Executor {
	return &Executor{
		settlements:  settlements,
		logger:       l,
		pollInterval: pollInterval,
		taskTimeout:  taskTimeout,
		batchSize:    batchSize,
	}
}

func (e *Executor) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Executor - Start - worker already started")
	}

	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ticker := time.NewTicker(e.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-e.ctx.Done():
				return
			case <-ticker.C:
				e.processBatch()
			}
		}
	}()

	return nil
}

// processBatch settles tasks one by one. A failing task is left pending
// and merely logged; the next tick retries it, so one bad task cannot
// wedge the ones after it in the batch.
func (e *Executor) processBatch() {
	tasks, err := e.settlements.GetPendingSettlements(e.ctx, e.batchSize)
	if err != nil {
		e.logger.Error(fmt.Errorf("Executor - processBatch - e.settlements.GetPendingSettlements: %w", err))

		return
	}

	for _, task := range tasks {
		select {
		case <-e.ctx.Done():
			return
		default:
		}

		taskCtx, taskCancel := context.WithTimeout(e.ctx, e.taskTimeout)
		err := e.settlements.SettleTask(taskCtx, task)
		taskCancel()
		if err != nil {
			e.logger.Error(fmt.Errorf("Executor - processBatch - e.settlements.SettleTask: %w", err))
		}
	}
}

func (e *Executor) Shutdown(ctx context.Context) error {
	if !e.started.Load() {
		return nil
	}

	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})

	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
