package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/domain"
)

type errorMapping struct {
	status int
	code   string
}

// errorTable traduce los errores de dominio a status y código HTTP.
var errorTable = []struct {
	err error
	errorMapping
}{
	{domain.ErrNotFound, errorMapping{fiber.StatusNotFound, "NOT_FOUND"}},
	{domain.ErrUserNotFound, errorMapping{fiber.StatusNotFound, "NOT_FOUND"}},
	{domain.ErrTokenNotFound, errorMapping{fiber.StatusNotFound, "TOKEN_NOT_FOUND"}},

	{domain.ErrInvalidInput, errorMapping{fiber.StatusBadRequest, "VALIDATION"}},
	{domain.ErrReasonRequired, errorMapping{fiber.StatusBadRequest, "REASON_REQUIRED"}},
	{domain.ErrInvalidQuantity, errorMapping{fiber.StatusBadRequest, "INVALID_QUANTITY"}},
	{domain.ErrInvalidAmount, errorMapping{fiber.StatusBadRequest, "INVALID_AMOUNT"}},
	{domain.ErrContestReasonRequired, errorMapping{fiber.StatusBadRequest, "REASON_REQUIRED"}},

	{domain.ErrUnauthorized, errorMapping{fiber.StatusUnauthorized, "UNAUTHORIZED"}},
	{domain.ErrForbidden, errorMapping{fiber.StatusForbidden, "FORBIDDEN"}},

	{domain.ErrDuplicate, errorMapping{fiber.StatusConflict, "DUPLICATE"}},
	{domain.ErrEmailAlreadyExists, errorMapping{fiber.StatusConflict, "EMAIL_EXISTS"}},
	{domain.ErrInsufficientStock, errorMapping{fiber.StatusConflict, "INSUFFICIENT_STOCK"}},
	{domain.ErrTokenAlreadyUsed, errorMapping{fiber.StatusConflict, "TOKEN_USED"}},
	{domain.ErrConflict, errorMapping{fiber.StatusConflict, "CONFLICT"}},
	{domain.ErrAlreadyValidated, errorMapping{fiber.StatusConflict, "ALREADY_VALIDATED"}},
	{domain.ErrEmptyPurchase, errorMapping{fiber.StatusConflict, "EMPTY_PURCHASE"}},
	{domain.ErrPurchaseLocked, errorMapping{fiber.StatusConflict, "PURCHASE_LOCKED"}},
	{domain.ErrNoReceivedLines, errorMapping{fiber.StatusConflict, "NO_RECEIVED_LINES"}},
	{domain.ErrContainerValidated, errorMapping{fiber.StatusConflict, "CONTAINER_VALIDATED"}},
	{domain.ErrSessionAlreadyStarted, errorMapping{fiber.StatusConflict, "SESSION_STARTED"}},
	{domain.ErrSessionNotStarted, errorMapping{fiber.StatusConflict, "SESSION_NOT_STARTED"}},
	{domain.ErrSessionEnded, errorMapping{fiber.StatusConflict, "SESSION_ENDED"}},
	{domain.ErrEmptyInvoice, errorMapping{fiber.StatusConflict, "EMPTY_INVOICE"}},
	{domain.ErrNotDraft, errorMapping{fiber.StatusConflict, "NOT_DRAFT"}},
	{domain.ErrInvoiceLocked, errorMapping{fiber.StatusConflict, "INVOICE_LOCKED"}},
	{domain.ErrInvoiceAccepted, errorMapping{fiber.StatusConflict, "INVOICE_ACCEPTED"}},
	{domain.ErrAlreadyTerminal, errorMapping{fiber.StatusConflict, "ALREADY_TERMINAL"}},
	{domain.ErrNotValidated, errorMapping{fiber.StatusConflict, "NOT_VALIDATED"}},
	{domain.ErrInvoiceNotValidated, errorMapping{fiber.StatusConflict, "INVOICE_NOT_VALIDATED"}},
	{domain.ErrNotAccepted, errorMapping{fiber.StatusConflict, "NOT_ACCEPTED"}},
	{domain.ErrNotContested, errorMapping{fiber.StatusConflict, "NOT_CONTESTED"}},
	{domain.ErrAlreadyContested, errorMapping{fiber.StatusConflict, "ALREADY_CONTESTED"}},
	{domain.ErrNothingToRemind, errorMapping{fiber.StatusConflict, "NOTHING_TO_REMIND"}},

	{domain.ErrNoPriceFound, errorMapping{fiber.StatusUnprocessableEntity, "NO_PRICE"}},
	{domain.ErrTokenExpired, errorMapping{fiber.StatusGone, "TOKEN_EXPIRED"}},
	{domain.ErrRetryExhausted, errorMapping{fiber.StatusServiceUnavailable, "RETRY"}},
}

// errorStatus devuelve status y código para err; los errores desconocidos son 500 INTERNAL.
func errorStatus(err error) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// fail responde con el cuerpo de error estándar.
func fail(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
