package v1

import (
	"github.com/gofiber/fiber/v2"

	"ordersaga/internal/orders/usecase"
	"ordersaga/pkg/logger"
)

func NewOrderRoutes(apiV1Group fiber.Router, orders usecase.OrdersUseCase, l logger.Interface) {
	r := &V1{orders: orders, logger: l}

	{
		apiV1Group.Post("/orders", r.createOrder)
		apiV1Group.Get("/orders", r.getOrders)
		apiV1Group.Get("/orders/:id/status", r.getOrderStatus)
	}
}
