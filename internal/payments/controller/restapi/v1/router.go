package v1

import (
	"github.com/gofiber/fiber/v2"

	"ordersaga/internal/payments/usecase"
	"ordersaga/pkg/logger"
)

func NewAccountRoutes(apiV1Group fiber.Router, payments usecase.PaymentsUseCase, l logger.Interface) {
	r := &V1{payments: payments, logger: l}

	{
		apiV1Group.Post("/accounts", r.createAccount)
		apiV1Group.Get("/accounts", r.getAccountByUser)
		apiV1Group.Post("/accounts/:id/deposit", r.deposit)
		apiV1Group.Get("/accounts/:id/balance", r.getBalance)
	}
}
