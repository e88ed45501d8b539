package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"ordersaga/config"
	v1 "ordersaga/internal/payments/controller/restapi/v1"
	"ordersaga/internal/payments/usecase"
	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
)

// @title Payment ledger
// @version 1.0.0
// @host localhost:8081
// @BasePath /v1
func NewRouter(app *fiber.App, cfg *config.Payments, m *metrics.Metrics, payments usecase.PaymentsUseCase, l logger.Interface) {
	app.Use(metrics.Middleware(m))

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})
	app.Get("/metrics", metrics.Handler(m))

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewAccountRoutes(apiV1Group, payments, l)
	}
}
