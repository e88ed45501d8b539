package v1

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"ordersaga/internal/orders/controller/restapi/v1/response"
	"ordersaga/internal/orders/usecase"
	"ordersaga/pkg/logger"
)

type V1 struct {
	orders usecase.OrdersUseCase
	logger logger.Interface
}

func errorResponse(ctx *fiber.Ctx, code int, msg string) error {
	return ctx.Status(code).JSON(response.Error{Error: msg})
}

func internalError(ctx *fiber.Ctx) error {
	return errorResponse(ctx, http.StatusInternalServerError, "internal problems")
}
