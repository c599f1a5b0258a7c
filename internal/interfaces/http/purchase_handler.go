package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/application/purchasing"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// PurchaseHandler compras a proveedores.
type PurchaseHandler struct {
	uc *purchasing.UseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchasing.UseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

// respond devuelve la compra completa tras una mutación.
func (h *PurchaseHandler) respond(c *fiber.Ctx, status int, purchaseID string) error {
	v, err := h.uc.Get(c.UserContext(), purchaseID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(status).JSON(purchaseResponse(v))
}

// Create godoc
// @Summary      Abrir una compra en borrador
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Proveedor y fecha"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if !bindJSON(c, &in) {
		return nil
	}
	date, err := parseDate(in.PurchaseDate)
	if err != nil {
		return badRequest(c, "VALIDATION", "purchase_date debe tener formato YYYY-MM-DD")
	}
	if date.IsZero() {
		date = time.Now()
	}
	p, err := h.uc.Create(c.UserContext(), in.SupplierID, date, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, p.ID)
}

// Get godoc
// @Summary      Obtener compra con líneas, pagos y totales
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	return h.respond(c, fiber.StatusOK, id)
}

// List godoc
// @Summary      Listar compras
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        supplier_id  query  string  false  "Proveedor"
// @Param        status       query  string  false  "DRAFT | VALIDATED"
// @Success      200  {array}  dto.PurchaseResponse
// @Router       /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	views, err := h.uc.List(c.UserContext(), repository.PurchaseFilter{
		SupplierID: c.Query("supplier_id"),
		Status:     c.Query("status"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.PurchaseResponse, 0, len(views))
	for _, v := range views {
		out = append(out, purchaseResponse(v))
	}
	return c.JSON(out)
}

// AddLine godoc
// @Summary      Agregar línea (compra en borrador)
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la compra"
// @Param        body  body  dto.PurchaseLineRequest  true  "Línea"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/lines [post]
func (h *PurchaseHandler) AddLine(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.PurchaseLineRequest
	if !bindJSON(c, &in) {
		return nil
	}
	if _, err := h.uc.AddLine(c.UserContext(), id, purchasing.LineInput{
		ProductID: in.ProductID,
		Qty:       in.Qty,
		UnitPrice: in.UnitPrice,
	}); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, id)
}

// UpdateLine godoc
// @Summary      Cambiar cantidad y precio de una línea
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        lineId  path  string                         true  "ID de la línea"
// @Param        body    body  dto.UpdatePurchaseLineRequest  true  "Cantidad y precio"
// @Success      200     {object}  dto.PurchaseLineResponse
// @Router       /api/purchase-lines/{lineId} [put]
func (h *PurchaseHandler) UpdateLine(c *fiber.Ctx) error {
	id, ok := requireID(c, "lineId")
	if !ok {
		return nil
	}
	var in dto.UpdatePurchaseLineRequest
	if !bindJSON(c, &in) {
		return nil
	}
	line, err := h.uc.UpdateLine(c.UserContext(), id, in.Qty, in.UnitPrice)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(purchaseLineResponse(line))
}

// DeleteLine godoc
// @Summary      Eliminar una línea (compra en borrador)
// @Tags         purchases
// @Security     Bearer
// @Param        lineId  path  string  true  "ID de la línea"
// @Success      204
// @Router       /api/purchase-lines/{lineId} [delete]
func (h *PurchaseHandler) DeleteLine(c *fiber.Ctx) error {
	id, ok := requireID(c, "lineId")
	if !ok {
		return nil
	}
	if err := h.uc.DeleteLine(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Validate godoc
// @Summary      Validar la compra y registrar la recepción en el ledger
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/validate [post]
func (h *PurchaseHandler) Validate(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	if _, err := h.uc.Validate(c.UserContext(), id, actor(c)); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, id)
}

// AddPayment godoc
// @Summary      Registrar un pago al proveedor
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la compra"
// @Param        body  body  dto.PurchasePaymentRequest  true  "Pago"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/payments [post]
func (h *PurchaseHandler) AddPayment(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.PurchasePaymentRequest
	if !bindJSON(c, &in) {
		return nil
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return badRequest(c, "VALIDATION", "date debe tener formato YYYY-MM-DD")
	}
	if _, err := h.uc.AddPayment(c.UserContext(), id, purchasing.PaymentInput{
		Amount:    in.Amount,
		Mode:      in.Mode,
		Date:      date,
		Reference: in.Reference,
	}, actor(c)); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, id)
}

// RemovePayment godoc
// @Summary      Eliminar un pago a proveedor
// @Tags         purchases
// @Security     Bearer
// @Param        paymentId  path  string  true  "ID del pago"
// @Success      204
// @Router       /api/purchase-payments/{paymentId} [delete]
func (h *PurchaseHandler) RemovePayment(c *fiber.Ctx) error {
	id, ok := requireID(c, "paymentId")
	if !ok {
		return nil
	}
	if err := h.uc.RemovePayment(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SupplierDebts godoc
// @Summary      Saldo pendiente por proveedor (compras validadas)
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SupplierDebtResponse
// @Router       /api/purchases/debts [get]
func (h *PurchaseHandler) SupplierDebts(c *fiber.Ctx) error {
	debts, err := h.uc.SupplierDebts(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.SupplierDebtResponse, 0, len(debts))
	for _, d := range debts {
		row := dto.SupplierDebtResponse{
			Purchases: len(d.Purchases),
			Total:     d.Total,
			Paid:      d.Paid,
			Remaining: d.Remaining,
		}
		if d.Supplier != nil {
			row.SupplierID = d.Supplier.ID
			row.SupplierName = d.Supplier.DisplayName()
		}
		out = append(out, row)
	}
	return c.JSON(out)
}
