package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	// Orders is the order ledger service configuration.
	Orders struct {
		HTTP     HTTP
		Log      Log
		PG       PG
		Kafka    Kafka
		Relay    Relay
		Listener Listener
		Swagger  Swagger
	}

	// Payments is the payment ledger service configuration.
	Payments struct {
		HTTP     HTTP
		Log      Log
		PG       PG
		Kafka    Kafka
		Relay    Relay
		Listener Listener
		Executor Executor
		Swagger  Swagger
	}

	// Gateway is the routing façade configuration.
	Gateway struct {
		HTTP     HTTP
		Log      Log
		Upstream Upstream
		Client   Client
		Swagger  Swagger
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX,required"`
		URL     string `env:"PG_URL,required"`
	}

	Kafka struct {
		Brokers         []string `env:"KAFKA_BROKERS,required"`
		GroupID         string   `env:"KAFKA_GROUP_ID,required"`
		ConsumeTopic    string   `env:"KAFKA_CONSUME_TOPIC,required"`
		ProduceTopic    string   `env:"KAFKA_PRODUCE_TOPIC,required"`
		TopicPartitions int      `env:"KAFKA_TOPIC_PARTITIONS" envDefault:"3"`
	}

	Relay struct {
		PollInterval    time.Duration `env:"RELAY_POLL_INTERVAL" envDefault:"1s"`
		CleanupInterval time.Duration `env:"RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		BatchTimeout    time.Duration `env:"RELAY_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout time.Duration `env:"RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize       int           `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	}

	Listener struct {
		MaxAttempts     int           `env:"LISTENER_MAX_ATTEMPTS" envDefault:"3"`
		RetryDelay      time.Duration `env:"LISTENER_RETRY_DELAY" envDefault:"1s"`
		CommitTimeout   time.Duration `env:"LISTENER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"LISTENER_PROCESS_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout time.Duration `env:"LISTENER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Executor struct {
		PollInterval    time.Duration `env:"EXECUTOR_POLL_INTERVAL" envDefault:"1s"`
		TaskTimeout     time.Duration `env:"EXECUTOR_TASK_TIMEOUT" envDefault:"10s"`
		ShutdownTimeout time.Duration `env:"EXECUTOR_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize       int           `env:"EXECUTOR_BATCH_SIZE" envDefault:"100"`
	}

	Upstream struct {
		OrdersURL   string `env:"UPSTREAM_ORDERS_URL,required"`
		PaymentsURL string `env:"UPSTREAM_PAYMENTS_URL,required"`
	}

	Client struct {
		ConnectTimeout      time.Duration `env:"CLIENT_CONNECT_TIMEOUT" envDefault:"2s"`
		RequestTimeout      time.Duration `env:"CLIENT_REQUEST_TIMEOUT" envDefault:"10s"`
		MaxIdleConnsPerHost int           `env:"CLIENT_MAX_IDLE_CONNS_PER_HOST" envDefault:"10"`
		MaxRetries          int           `env:"CLIENT_MAX_RETRIES" envDefault:"3"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func NewOrders() (*Orders, error) {
	cfg := &Orders{}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "ORDERS_"}); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func NewPayments() (*Payments, error) {
	cfg := &Payments{}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "PAYMENTS_"}); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func NewGateway() (*Gateway, error) {
	cfg := &Gateway{}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "GATEWAY_"}); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
