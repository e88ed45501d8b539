package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ordersaga/internal/payments/controller/restapi/v1/request"
	"ordersaga/internal/payments/controller/restapi/v1/response"
	"ordersaga/pkg/types/errs"
	"ordersaga/pkg/validator"
)

// @Summary  	Create account
// @Description Creates the user's account; repeating the call returns the existing one
// @Tags 		accounts
// @Accept 		json
// @Produce 	json
// @Param 		account body request.CreateAccount true "Account"
// @Success 	201 {object} response.Account "Created"
// @Success 	200 {object} response.Account "Already exists"
// @Failure 	400 {object} response.Error "Malformed body or wrong parameters"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/accounts [post]
func (r *V1) createAccount(ctx *fiber.Ctx) error {
	var req request.CreateAccount
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "malformed request body")
	}

	if err := validator.Struct(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	account, created, err := r.payments.CreateAccount(ctx.UserContext(), req.UserID)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - createAccount")

		return internalError(ctx)
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}

	return ctx.Status(code).JSON(response.Account{
		AccountID: account.ID.String(),
		UserID:    account.UserID,
		Balance:   account.Balance,
	})
}

// @Summary 	Deposit money
// @Description Adds a non-negative amount to the account balance
// @Tags 		accounts
// @Accept 		json
// @Produce 	json
// @Param 		id path string true "Account ID(uuid)"
// @Param 		deposit body request.Deposit true "Deposit"
// @Success 	200 {object} response.Deposit
// @Failure 	400 {object} response.Error "Invalid ID or negative amount"
// @Failure 	404 {object} response.Error "Account not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/accounts/{id}/deposit [post]
func (r *V1) deposit(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	var req request.Deposit
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "malformed request body")
	}

	// Withdrawals do not come through this endpoint.
	if err := validator.Struct(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "amount must not be negative")
	}

	balance, err := r.payments.Deposit(ctx.UserContext(), id, req.Amount)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "account not found")
		}
		r.logger.Error(err, "restapi - v1 - deposit")

		return internalError(ctx)
	}

	return ctx.Status(http.StatusOK).JSON(response.Deposit{
		AccountID: id.String(),
		Balance:   balance,
	})
}

// @Summary 	Get balance
// @Tags 		accounts
// @Produce 	json
// @Param 		id path string true "Account ID(uuid)"
// @Success 	200 {object} response.Balance
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Account not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/accounts/{id}/balance [get]
func (r *V1) getBalance(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	balance, err := r.payments.GetBalance(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "account not found")
		}
		r.logger.Error(err, "restapi - v1 - getBalance")

		return internalError(ctx)
	}

	return ctx.Status(http.StatusOK).JSON(response.Balance{
		AccountID: id.String(),
		Balance:   balance,
	})
}

// @Summary 	Get account by user
// @Tags 		accounts
// @Produce 	json
// @Param 		user_id query int true "User ID"
// @Success 	200 {object} response.Account
// @Failure 	400 {object} response.Error "Invalid user id"
// @Failure 	404 {object} response.Error "Account not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/accounts [get]
func (r *V1) getAccountByUser(ctx *fiber.Ctx) error {
	userID, err := strconv.Atoi(ctx.Query("user_id"))
	if err != nil || userID < 1 {
		return errorResponse(ctx, http.StatusBadRequest, "user_id must be a positive number")
	}

	account, err := r.payments.GetAccountByUser(ctx.UserContext(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "account not found")
		}
		r.logger.Error(err, "restapi - v1 - getAccountByUser")

		return internalError(ctx)
	}

	return ctx.Status(http.StatusOK).JSON(response.Account{
		AccountID: account.ID.String(),
		UserID:    account.UserID,
		Balance:   account.Balance,
	})
}
