// Package app wires the gateway: a retrying HTTP client behind the
// forwarder and the public REST surface.
package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ordersaga/config"
	"ordersaga/internal/gateway/controller/restapi"
	"ordersaga/internal/gateway/service"
	"ordersaga/pkg/httpclient"
	"ordersaga/pkg/httpserver"
	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
)

func Run(cfg *config.Gateway) {
	// Logger
	l := logger.New(cfg.Log.Level)

	// Metrics
	m := metrics.New("gateway")

	// Upstream client
	client := httpclient.New(cfg.Client.ConnectTimeout, cfg.Client.RequestTimeout, cfg.Client.MaxIdleConnsPerHost)
	defer client.CloseIdle()

	forwarder := service.New(httpclient.NewRetryClient(client, cfg.Client.MaxRetries, l), l)

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, m, forwarder, l)

	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err := <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err := httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}
}
