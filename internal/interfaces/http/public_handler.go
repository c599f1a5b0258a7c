package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gsa-backend/internal/application/billing"
	"github.com/jhoicas/gsa-backend/internal/application/dto"
)

// PublicInvoiceHandler endpoints sin autenticación accesibles con el enlace de aceptación.
// El token viaja en la ruta y nunca se registra en logs.
type PublicInvoiceHandler struct {
	uc *billing.AcceptanceUseCase
}

// NewPublicInvoiceHandler construye el handler.
func NewPublicInvoiceHandler(uc *billing.AcceptanceUseCase) *PublicInvoiceHandler {
	return &PublicInvoiceHandler{uc: uc}
}

func (h *PublicInvoiceHandler) respond(c *fiber.Ctx, token string) error {
	v, err := h.uc.View(c.UserContext(), token)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(publicInvoiceResponse(v, "/api/public/invoices/"+token+"/pdf"))
}

// View godoc
// @Summary      Resumen de la factura para el cliente
// @Tags         public
// @Produce      json
// @Param        token  path  string  true  "Token del enlace"
// @Success      200  {object}  dto.PublicInvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      410  {object}  dto.ErrorResponse
// @Router       /api/public/invoices/{token} [get]
func (h *PublicInvoiceHandler) View(c *fiber.Ctx) error {
	token, ok := requireID(c, "token")
	if !ok {
		return nil
	}
	return h.respond(c, token)
}

// PDF godoc
// @Summary      PDF de la factura para el cliente
// @Tags         public
// @Produce      application/pdf
// @Param        token  path  string  true  "Token del enlace"
// @Success      200  {file}  binary
// @Router       /api/public/invoices/{token}/pdf [get]
func (h *PublicInvoiceHandler) PDF(c *fiber.Ctx) error {
	token, ok := requireID(c, "token")
	if !ok {
		return nil
	}
	data, inv, err := h.uc.PDF(c.UserContext(), token)
	if err != nil {
		return fail(c, err)
	}
	return sendPDF(c, data, billing.Filename(inv))
}

// Accept godoc
// @Summary      Aceptar la factura
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        token  path  string             true  "Token del enlace"
// @Param        body   body  dto.AcceptRequest  true  "accept=true y nombre opcional"
// @Success      200  {object}  dto.PublicInvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      410  {object}  dto.ErrorResponse
// @Router       /api/public/invoices/{token}/accept [post]
func (h *PublicInvoiceHandler) Accept(c *fiber.Ctx) error {
	token, ok := requireID(c, "token")
	if !ok {
		return nil
	}
	var in dto.AcceptRequest
	if !bindJSON(c, &in) {
		return nil
	}
	if _, err := h.uc.Accept(c.UserContext(), token, billing.AcceptInput{
		Name:      in.AcceptedName,
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}); err != nil {
		return fail(c, err)
	}
	return h.respond(c, token)
}

// Contest godoc
// @Summary      Contestar una factura aceptada
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        token  path  string              true  "Token del enlace"
// @Param        body   body  dto.ContestRequest  true  "Motivo"
// @Success      201  {object}  dto.ContestationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/public/invoices/{token}/contest [post]
func (h *PublicInvoiceHandler) Contest(c *fiber.Ctx) error {
	token, ok := requireID(c, "token")
	if !ok {
		return nil
	}
	var in dto.ContestRequest
	if !bindJSON(c, &in) {
		return nil
	}
	ct, err := h.uc.Contest(c.UserContext(), token, billing.ContestInput{
		Reason:    in.Reason,
		Name:      in.Name,
		Email:     in.Email,
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contestationResponse(ct))
}
