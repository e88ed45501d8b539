// Package app wires the payment ledger: postgres with its migrations,
// the order-created listener feeding the durable inbox, the settlement
// executor, the outbox relay toward the order-settled topic, and the
// REST surface.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ordersaga/config"
	infrakafka "ordersaga/internal/infrastructure/kafka"
	kafkactrl "ordersaga/internal/payments/controller/kafka"
	"ordersaga/internal/payments/controller/restapi"
	"ordersaga/internal/payments/controller/worker/executor"
	"ordersaga/internal/payments/repo/persistent"
	"ordersaga/internal/payments/usecase/payments"
	"ordersaga/internal/worker/inbox"
	"ordersaga/internal/worker/outbox"
	"ordersaga/migrations"
	"ordersaga/pkg/httpserver"
	"ordersaga/pkg/kafka/admin"
	"ordersaga/pkg/kafka/consumer"
	"ordersaga/pkg/kafka/producer"
	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
	"ordersaga/pkg/postgres"
)

func Run(cfg *config.Payments) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Metrics
	m := metrics.New("payments")

	// Postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	err = pg.Migrate(migrations.FS, migrations.PaymentsDir)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - pg.Migrate: %w", err))
	}

	// Topics
	for _, topic := range []string{cfg.Kafka.ProduceTopic, cfg.Kafka.ConsumeTopic} {
		err = admin.EnsureTopic(ctx, cfg.Kafka.Brokers, topic, cfg.Kafka.TopicPartitions)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - admin.EnsureTopic: %w", err))
		}
	}

	// Use-Case
	outboxStore := outbox.NewPostgresStore(pg)
	paymentsUseCase := payments.New(
		persistent.NewAccountRepo(pg),
		persistent.NewInboxRepo(pg),
		outboxStore,
		pg,
		l,
		m,
	)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.NewRelay(
		outboxStore,
		infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.ProduceTopic),
		l,
		m,
		cfg.Kafka.ProduceTopic,
		cfg.Relay.PollInterval,
		cfg.Relay.CleanupInterval,
		cfg.Relay.BatchTimeout,
		cfg.Relay.BatchSize,
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ConsumeTopic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	// Order-Created Listener
	orderListener := inbox.NewListener(
		infrakafka.NewEventConsumer(kafkaConsumer),
		kafkactrl.NewOrderCreatedHandler(paymentsUseCase),
		l,
		m,
		cfg.Kafka.ConsumeTopic,
		cfg.Listener.MaxAttempts,
		cfg.Listener.RetryDelay,
		cfg.Listener.CommitTimeout,
		cfg.Listener.ProcessTimeout,
	)

	// Settlement Executor Worker
	settlementExecutor := executor.New(
		paymentsUseCase,
		l,
		cfg.Executor.PollInterval,
		cfg.Executor.TaskTimeout,
		cfg.Executor.BatchSize,
	)

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, m, paymentsUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = orderListener.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - orderListener.Start: %w", err))
	}
	err = settlementExecutor.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - settlementExecutor.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	exShutdownCtx, exShutdownCancel := context.WithTimeout(ctx, cfg.Executor.ShutdownTimeout)
	defer exShutdownCancel()
	err = settlementExecutor.Shutdown(exShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - settlementExecutor.Shutdown: %w", err))
	}

	olShutdownCtx, olShutdownCancel := context.WithTimeout(ctx, cfg.Listener.ShutdownTimeout)
	defer olShutdownCancel()
	err = orderListener.Shutdown(olShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - orderListener.Shutdown: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.Relay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}
}
