package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/application/inventory"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// StockHandler ledger de stock: consulta de movimientos, stock derivado y ajustes manuales.
type StockHandler struct {
	uc *inventory.LedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.LedgerUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// ListMovements godoc
// @Summary      Movimientos del ledger (más reciente primero)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        type        query  string  false  "RECEPTION | SALE | ADJUSTMENT | BREAKAGE"
// @Param        reference   query  string  false  "Referencia exacta"
// @Param        from        query  string  false  "YYYY-MM-DD"
// @Param        to          query  string  false  "YYYY-MM-DD (inclusive)"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	from, ok := queryDate(c, "from")
	if !ok {
		return nil
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return nil
	}
	if to != nil {
		end := inventory.EndOfDay(*to)
		to = &end
	}
	limit, offset := pageParams(c)
	list, err := h.uc.ListMovements(c.UserContext(), repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Type:      c.Query("type"),
		Reference: c.Query("reference"),
		From:      from,
		To:        to,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, movementResponse(m))
	}
	return c.JSON(out)
}

// ProductStock godoc
// @Summary      Stock de un producto (suma del ledger)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del producto"
// @Param        as_of  query  string  false  "YYYY-MM-DD: stock al final de ese día"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/stock/products/{id} [get]
func (h *StockHandler) ProductStock(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return nil
	}
	var (
		stock int
		err   error
	)
	if asOf != nil {
		stock, err = h.uc.StockAt(c.UserContext(), id, *asOf)
	} else {
		stock, err = h.uc.CurrentStock(c.UserContext(), id)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: id, Stock: stock, AsOf: formatDatePtr(asOf)})
}

// Report godoc
// @Summary      Stock de todos los productos activos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        as_of  query  string  false  "YYYY-MM-DD"
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/stock [get]
func (h *StockHandler) Report(c *fiber.Ctx) error {
	asOf, ok := queryDate(c, "as_of")
	if !ok {
		return nil
	}
	levels, err := h.uc.StockReport(c.UserContext(), asOf)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stockLevels(levels))
}

// LowStock godoc
// @Summary      Productos por debajo de su umbral de reposición
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	levels, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stockLevels(levels))
}

// Adjust godoc
// @Summary      Ajuste manual de stock (inventario o rotura)
// @Description  La razón es obligatoria. BREAKAGE siempre resta.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Ajuste"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if !bindJSON(c, &in) {
		return nil
	}
	m, err := h.uc.Adjust(c.UserContext(), inventory.AdjustInput{
		ProductID: in.ProductID,
		QtySigned: in.Qty,
		Type:      in.Type,
		Reason:    in.Reason,
		Reference: in.Reference,
	}, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResponse(m))
}

func stockLevels(levels []inventory.StockLevel) []dto.StockLevelResponse {
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, stockLevelResponse(l))
	}
	return out
}
