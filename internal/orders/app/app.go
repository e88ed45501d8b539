// Package app wires the order ledger: postgres with its migrations, the
// outbox relay toward the order-created topic, the settlement listener
// on the order-settled topic, and the REST surface.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ordersaga/config"
	infrakafka "ordersaga/internal/infrastructure/kafka"
	kafkactrl "ordersaga/internal/orders/controller/kafka"
	"ordersaga/internal/orders/controller/restapi"
	"ordersaga/internal/orders/repo/persistent"
	"ordersaga/internal/orders/usecase/orders"
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

func Run(cfg *config.Orders) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Metrics
	m := metrics.New("orders")

	// Postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	err = pg.Migrate(migrations.FS, migrations.OrdersDir)
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
	ordersUseCase := orders.New(
		persistent.NewOrderRepo(pg),
		outboxStore,
		pg,
		l,
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

	// Settlement Listener
	settlementListener := inbox.NewListener(
		infrakafka.NewEventConsumer(kafkaConsumer),
		kafkactrl.NewSettlementHandler(ordersUseCase),
		l,
		m,
		cfg.Kafka.ConsumeTopic,
		cfg.Listener.MaxAttempts,
		cfg.Listener.RetryDelay,
		cfg.Listener.CommitTimeout,
		cfg.Listener.ProcessTimeout,
	)

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, m, ordersUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = settlementListener.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - settlementListener.Start: %w", err))
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

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.Relay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}

	slShutdownCtx, slShutdownCancel := context.WithTimeout(ctx, cfg.Listener.ShutdownTimeout)
	defer slShutdownCancel()
	err = settlementListener.Shutdown(slShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - settlementListener.Shutdown: %w", err))
	}
}
