package metrics

import (
	"strconv"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware counts every request on the app it is mounted on.
func Middleware(m *Metrics) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()

		m.API.RequestsTotal.WithLabelValues(
			ctx.Method(),
			ctx.Route().Path,
			strconv.Itoa(ctx.Response().StatusCode()),
		).Inc()

		return err
	}
}

// Handler exposes the registry in the Prometheus text format.
func Handler(m *Metrics) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
