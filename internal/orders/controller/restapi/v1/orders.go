package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ordersaga/internal/orders/controller/restapi/v1/request"
	"ordersaga/internal/orders/controller/restapi/v1/response"
	"ordersaga/internal/orders/entity"
	"ordersaga/pkg/types/errs"
	"ordersaga/pkg/validator"
)

// @Summary  	Create order
// @Description Creates a pending order and schedules its settlement
// @Tags 		orders
// @Accept 		json
// @Produce 	json
// @Param 		order body request.CreateOrder true "Order"
// @Success 	201 {object} response.CreateOrder
// @Failure 	400 {object} response.Error "Malformed body or wrong parameters"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/orders [post]
func (r *V1) createOrder(ctx *fiber.Ctx) error {
	var req request.CreateOrder
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "malformed request body")
	}

	if err := validator.Struct(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	order, err := r.orders.CreateOrder(ctx.UserContext(), req.ProductID, req.UserID, req.Amount, req.UnitPrice, req.Description)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - createOrder")

		return internalError(ctx)
	}

	resp := response.CreateOrder{
		OrderID:     order.ID.String(),
		UserID:      order.UserID,
		ProductID:   order.ProductID,
		Amount:      order.Amount,
		UnitPrice:   order.UnitPrice,
		Description: order.Description,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
	}

	return ctx.Status(http.StatusCreated).JSON(resp)
}

// @Summary 	Get order status
// @Tags 		orders
// @Produce 	json
// @Param 		id path string true "Order ID(uuid)"
// @Success 	200 {object} response.OrderStatus
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Order not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/orders/{id}/status [get]
func (r *V1) getOrderStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	status, err := r.orders.GetOrderStatus(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "order not found")
		}
		r.logger.Error(err, "restapi - v1 - getOrderStatus")

		return internalError(ctx)
	}

	return ctx.Status(http.StatusOK).JSON(response.OrderStatus{
		OrderID: id.String(),
		Status:  string(status),
	})
}

// @Summary 	List user orders
// @Tags 		orders
// @Produce 	json
// @Param 		user_id query int true "User ID"
// @Success 	200 {object} response.Orders
// @Failure 	400 {object} response.Error "Invalid user id"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/orders [get]
func (r *V1) getOrders(ctx *fiber.Ctx) error {
	userID, err := strconv.Atoi(ctx.Query("user_id"))
	if err != nil || userID < 1 {
		return errorResponse(ctx, http.StatusBadRequest, "user_id must be a positive number")
	}

	orders, err := r.orders.GetOrders(ctx.UserContext(), userID)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - getOrders")

		return internalError(ctx)
	}

	resp := response.Orders{
		UserID: userID,
		Orders: make([]response.Order, 0, len(orders)),
	}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(order))
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}

func toOrderResponse(order *entity.Order) response.Order {
	return response.Order{
		OrderID:     order.ID.String(),
		ProductID:   order.ProductID,
		Amount:      order.Amount,
		UnitPrice:   order.UnitPrice,
		Description: order.Description,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
	}
}
