// Package restapi exposes the single public surface of the system and
// routes each call to the ledger service owning it.
package restapi

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"ordersaga/config"
	"ordersaga/internal/gateway/service"
	"ordersaga/pkg/logger"
	"ordersaga/pkg/metrics"
)

type router struct {
	forwarder   *service.Forwarder
	ordersURL   string
	paymentsURL string
	logger      logger.Interface
}

// @title Order saga gateway
// @version 1.0.0
// @host localhost:8082
// @BasePath /v1
func NewRouter(app *fiber.App, cfg *config.Gateway, m *metrics.Metrics, forwarder *service.Forwarder, l logger.Interface) {
	app.Use(metrics.Middleware(m))

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})
	app.Get("/metrics", metrics.Handler(m))

	r := &router{
		forwarder:   forwarder,
		ordersURL:   cfg.Upstream.OrdersURL,
		paymentsURL: cfg.Upstream.PaymentsURL,
		logger:      l,
	}

	apiV1Group := app.Group("/v1")
	{
		// Order ledger
		apiV1Group.Post("/orders", r.proxy(r.ordersURL))
		apiV1Group.Get("/orders", r.proxy(r.ordersURL))
		apiV1Group.Get("/orders/:id/status", r.proxy(r.ordersURL))

		// Payment ledger
		apiV1Group.Post("/accounts", r.proxy(r.paymentsURL))
		apiV1Group.Get("/accounts", r.proxy(r.paymentsURL))
		apiV1Group.Post("/accounts/:id/deposit", r.proxy(r.paymentsURL))
		apiV1Group.Get("/accounts/:id/balance", r.proxy(r.paymentsURL))
	}
}

func (r *router) proxy(baseURL string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		res, err := r.forwarder.Forward(
			ctx.UserContext(),
			ctx.Method(),
			baseURL,
			ctx.Path(),
			ctx.Request().URI().QueryString(),
			ctx.Body(),
		)
		if err != nil {
			r.logger.Error(err, "restapi - proxy")

			return ctx.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "upstream unavailable"})
		}

		if res.ContentType != "" {
			ctx.Set(fiber.HeaderContentType, res.ContentType)
		}

		return ctx.Status(res.Status).Send(res.Body)
	}
}
