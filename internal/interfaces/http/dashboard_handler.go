package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/gsa-backend/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del tablero y reportes.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen del día y del mes
// @Description  Ventas TTC de hoy y del mes (facturas validadas o aceptadas), saldo pendiente,
// @Description  productos en stock bajo, recordatorios pendientes y Top-5 del mes.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}

// StockValue godoc
// @Summary      Valor del stock a una fecha
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "YYYY-MM-DD (default hoy)"
// @Success      200   {object}  dto.StockValueDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/stock-value [get]
func (h *DashboardHandler) StockValue(c *fiber.Ctx) error {
	asOf, ok := queryDate(c, "date")
	if !ok {
		return nil
	}
	day := time.Now()
	if asOf != nil {
		day = *asOf
	}
	out, err := h.uc.StockValue(c.UserContext(), day)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
