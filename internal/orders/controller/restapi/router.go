package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"ordersaga/config"
	v1 "ordersaga/internal/orders/controller/restapi/v1"
	"ordersaga/internal/orders/usecase"
	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
)

// @title Order ledger
// @version 1.0.0
// @host localhost:8080
// @BasePath /v1
func NewRouter(app *fiber.App, cfg *config.Orders, m *metrics.Metrics, orders usecase.OrdersUseCase, l logger.Interface) {
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
		v1.NewOrderRoutes(apiV1Group, orders, l)
	}
}
