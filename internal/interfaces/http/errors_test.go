package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gsa-backend/internal/domain"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrTokenNotFound, fiber.StatusNotFound, "TOKEN_NOT_FOUND"},
		{domain.ErrReasonRequired, fiber.StatusBadRequest, "REASON_REQUIRED"},
		{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
		{domain.ErrTokenAlreadyUsed, fiber.StatusConflict, "TOKEN_USED"},
		{domain.ErrSessionEnded, fiber.StatusConflict, "SESSION_ENDED"},
		{domain.ErrNoPriceFound, fiber.StatusUnprocessableEntity, "NO_PRICE"},
		{domain.ErrTokenExpired, fiber.StatusGone, "TOKEN_EXPIRED"},
		{domain.ErrRetryExhausted, fiber.StatusServiceUnavailable, "RETRY"},
		{errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		status, code := errorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

// Los errores envueltos conservan su mapeo.
func TestErrorStatus_ErrorEnvuelto(t *testing.T) {
	status, code := errorStatus(fmt.Errorf("validar factura: %w", domain.ErrEmptyInvoice))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "EMPTY_INVOICE", code)
}
