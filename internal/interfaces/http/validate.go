package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindJSON parsea el body y aplica las reglas `validate` del DTO.
// Si falla, ya respondió 400 y devuelve false.
func bindJSON(c *fiber.Ctx, dst any) bool {
	if err := c.BodyParser(dst); err != nil {
		_ = badRequest(c, "INVALID_BODY", "cuerpo inválido")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		_ = badRequest(c, "VALIDATION", validationMessage(err))
		return false
	}
	return true
}

// bindQuery igual que bindJSON sobre los parámetros de consulta.
func bindQuery(c *fiber.Ctx, dst any) bool {
	if err := c.QueryParser(dst); err != nil {
		_ = badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		_ = badRequest(c, "VALIDATION", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
