package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gsa-backend/internal/application/billing"
	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc         *billing.InvoiceUseCase
	acceptance *billing.AcceptanceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, acceptance *billing.AcceptanceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, acceptance: acceptance}
}

func (h *InvoiceHandler) respond(c *fiber.Ctx, status int, invoiceID string, warnings []string) error {
	v, err := h.uc.Get(c.UserContext(), invoiceID)
	if err != nil {
		return fail(c, err)
	}
	out := invoiceViewResponse(v)
	out.Warnings = warnings
	return c.Status(status).JSON(out)
}

// Create godoc
// @Summary      Abrir factura en borrador
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Cliente y tipo"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if !bindJSON(c, &in) {
		return nil
	}
	taxIncluded := false
	if in.TaxIncluded != nil {
		taxIncluded = *in.TaxIncluded
	}
	inv, err := h.uc.Create(c.UserContext(), in.ClientID, in.Type, taxIncluded, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, inv.ID, nil)
}

// GetByID godoc
// @Summary      Detalle de factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	return h.respond(c, fiber.StatusOK, id, nil)
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        client_id  query  string  false  "Cliente"
// @Param        status     query  string  false  "Estado"
// @Param        search     query  string  false  "Número"
// @Param        limit      query  int     false  "Límite"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.InvoiceListResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.uc.List(c.UserContext(), repository.InvoiceFilter{
		ClientID: c.Query("client_id"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return fail(c, err)
	}
	out := dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, inv := range list {
		out.Items = append(out.Items, invoiceResponse(inv))
	}
	return c.JSON(out)
}

// ── Líneas ────────────────────────────────────────────────────────────────────

// AddLine godoc
// @Summary      Agregar línea (precio resuelto por cliente y producto)
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la factura"
// @Param        body  body  dto.InvoiceLineRequest  true  "Producto y cantidad"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/lines [post]
func (h *InvoiceHandler) AddLine(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.InvoiceLineRequest
	if !bindJSON(c, &in) {
		return nil
	}
	if _, err := h.uc.AddLine(c.UserContext(), id, in.ProductID, in.Qty); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, id, nil)
}

// UpdateLine godoc
// @Summary      Cambiar la cantidad de una línea
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        lineId  path  string                        true  "ID de la línea"
// @Param        body    body  dto.UpdateInvoiceLineRequest  true  "Cantidad"
// @Success      200     {object}  dto.InvoiceResponse
// @Router       /api/invoice-lines/{lineId} [put]
func (h *InvoiceHandler) UpdateLine(c *fiber.Ctx) error {
	id, ok := requireID(c, "lineId")
	if !ok {
		return nil
	}
	var in dto.UpdateInvoiceLineRequest
	if !bindJSON(c, &in) {
		return nil
	}
	line, err := h.uc.UpdateLine(c.UserContext(), id, in.Qty)
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, line.InvoiceID, nil)
}

// DeleteLine godoc
// @Summary      Eliminar una línea
// @Tags         invoices
// @Security     Bearer
// @Param        lineId  path  string  true  "ID de la línea"
// @Success      204
// @Router       /api/invoice-lines/{lineId} [delete]
func (h *InvoiceHandler) DeleteLine(c *fiber.Ctx) error {
	id, ok := requireID(c, "lineId")
	if !ok {
		return nil
	}
	if err := h.uc.DeleteLine(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Ciclo de vida ─────────────────────────────────────────────────────────────

// Validate godoc
// @Summary      Validar factura: numera, descuenta stock y genera el PDF
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/validate [post]
func (h *InvoiceHandler) Validate(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	res, err := h.uc.Validate(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, res.Invoice.ID, res.Warnings)
}

// Cancel godoc
// @Summary      Anular factura (repone stock si estaba validada)
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	if _, err := h.uc.Cancel(c.UserContext(), id, actor(c)); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, id, nil)
}

// CreditNote godoc
// @Summary      Emitir avoir sobre una factura validada
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura origen"
// @Success      201  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/credit-note [post]
func (h *InvoiceHandler) CreditNote(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	res, err := h.uc.CreateCreditNote(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, res.Invoice.ID, res.Warnings)
}

// PDF godoc
// @Summary      Descargar el PDF de la factura
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	data, inv, err := h.uc.PDF(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return sendPDF(c, data, billing.Filename(inv))
}

// ── Pagos y recordatorios ─────────────────────────────────────────────────────

// AddPayment godoc
// @Summary      Registrar pago de cliente
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la factura"
// @Param        body  body  dto.InvoicePaymentRequest  true  "Pago"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) AddPayment(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.InvoicePaymentRequest
	if !bindJSON(c, &in) {
		return nil
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return badRequest(c, "VALIDATION", "fecha inválida (YYYY-MM-DD)")
	}
	if date.IsZero() {
		date = time.Now()
	}
	if _, _, err := h.uc.AddPayment(c.UserContext(), id, billing.PaymentInput{
		Amount: in.Amount,
		Mode:   in.Mode,
		Date:   date,
	}, actor(c)); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, id, nil)
}

// RemovePayment godoc
// @Summary      Eliminar un pago de cliente
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        paymentId  path  string  true  "ID del pago"
// @Success      200  {object}  dto.InvoiceResponse
// @Router       /api/invoice-payments/{paymentId} [delete]
func (h *InvoiceHandler) RemovePayment(c *fiber.Ctx) error {
	id, ok := requireID(c, "paymentId")
	if !ok {
		return nil
	}
	inv, err := h.uc.RemovePayment(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, inv.ID, nil)
}

// PostponeReminder godoc
// @Summary      Aplazar el próximo recordatorio
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true   "ID de la factura"
// @Param        body  body  dto.PostponeReminderRequest  false  "Días (7 por defecto)"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/postpone-reminder [post]
func (h *InvoiceHandler) PostponeReminder(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.PostponeReminderRequest
	if len(c.Body()) > 0 && !bindJSON(c, &in) {
		return nil
	}
	if q := c.Query("days"); q != "" && in.Days == 0 {
		d, err := strconv.Atoi(q)
		if err != nil || d < 0 {
			return badRequest(c, "VALIDATION", "days inválido")
		}
		in.Days = d
	}
	if _, err := h.uc.PostponeReminder(c.UserContext(), id, in.Days, actor(c)); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, id, nil)
}

// ── Contestaciones y enlace de aceptación ─────────────────────────────────────

// Contest godoc
// @Summary      Registrar contestación recibida por otro canal
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la factura"
// @Param        body  body  dto.ContestRequest  true  "Motivo"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/contest [post]
func (h *InvoiceHandler) Contest(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.ContestRequest
	if !bindJSON(c, &in) {
		return nil
	}
	if _, err := h.uc.ContestByStaff(c.UserContext(), id, billing.ContestInput{
		Reason:    in.Reason,
		Name:      in.Name,
		Email:     in.Email,
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}, actor(c)); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, id, nil)
}

// ResolveContestation godoc
// @Summary      Resolver la contestación
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID de la factura"
// @Param        body  body  dto.ResolveContestationRequest  true  "Estado final y notas"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/contestation/resolve [post]
func (h *InvoiceHandler) ResolveContestation(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.ResolveContestationRequest
	if !bindJSON(c, &in) {
		return nil
	}
	if _, err := h.uc.ResolveContestation(c.UserContext(), id, in.Status, in.Notes, actor(c)); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, id, nil)
}

// IssueToken godoc
// @Summary      Emitir enlace de aceptación para el cliente
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true   "ID de la factura"
// @Param        body  body  dto.IssueTokenRequest  false  "Vigencia en horas"
// @Success      201   {object}  dto.IssueTokenResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/acceptance-token [post]
func (h *InvoiceHandler) IssueToken(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.IssueTokenRequest
	if len(c.Body()) > 0 && !bindJSON(c, &in) {
		return nil
	}
	tok, err := h.acceptance.Issue(c.UserContext(), id, time.Duration(in.TTLHours)*time.Hour, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.IssueTokenResponse{
		Token:     tok.Token,
		TokenID:   tok.TokenID,
		ExpiresAt: tok.ExpiresAt,
		URL:       tok.URL,
	})
}

func sendPDF(c *fiber.Ctx, data []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(data)
}
