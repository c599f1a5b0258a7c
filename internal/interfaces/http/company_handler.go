package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/application/usecase"
)

// CompanyHandler configuración de la empresa (datos impresos en facturas y tasas de TVA).
type CompanyHandler struct {
	uc *usecase.SettingsUseCase
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *usecase.SettingsUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Get godoc
// @Summary      Configuración de la empresa
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CompanySettingsResponse
// @Router       /api/settings/company [get]
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Reemplazar la configuración de la empresa
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CompanySettingsRequest  true  "Configuración"
// @Success      200   {object}  dto.CompanySettingsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settings/company [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var in dto.CompanySettingsRequest
	if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.Update(c.UserContext(), in, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
