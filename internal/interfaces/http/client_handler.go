package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/application/usecase"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// ClientHandler clientes (y proveedores) y sus precios negociados.
type ClientHandler struct {
	uc *usecase.ClientUseCase
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *usecase.ClientUseCase) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cliente
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateClientRequest  true  "Datos del cliente"
// @Success      201   {object}  dto.ClientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateClientRequest
	if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener cliente
// @Tags         clients
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.ClientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar clientes
// @Tags         clients
// @Security     Bearer
// @Produce      json
// @Param        q       query  string  false  "Búsqueda por nombre, empresa o email"
// @Param        active  query  bool    false  "Solo activos"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.ClientListResponse
// @Router       /api/clients [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), repository.ClientFilter{
		Search:     c.Query("q"),
		ActiveOnly: c.QueryBool("active", false),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar cliente
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del cliente"
// @Param        body  body  dto.UpdateClientRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.ClientResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.UpdateClientRequest
	if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// ListPrices godoc
// @Summary      Precios negociados del cliente
// @Tags         clients
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {array}  dto.ClientPriceResponse
// @Router       /api/clients/{id}/prices [get]
func (h *ClientHandler) ListPrices(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	out, err := h.uc.ListPrices(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// SetPrice godoc
// @Summary      Fijar precio negociado (crea o reemplaza)
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del cliente"
// @Param        body  body  dto.ClientPriceRequest  true  "Producto y precio"
// @Success      200   {object}  dto.ClientPriceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/clients/{id}/prices [post]
func (h *ClientHandler) SetPrice(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.ClientPriceRequest
	if !bindJSON(c, &in) {
		return nil
	}
	out, err := h.uc.SetPrice(c.UserContext(), id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// UpdatePrice godoc
// @Summary      Cambiar un precio negociado
// @Tags         clients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        priceId  path  string                  true  "ID del precio"
// @Param        body     body  dto.ClientPriceRequest  true  "Nuevo precio"
// @Success      200      {object}  dto.ClientPriceResponse
// @Router       /api/client-prices/{priceId} [put]
func (h *ClientHandler) UpdatePrice(c *fiber.Ctx) error {
	id, ok := requireID(c, "priceId")
	if !ok {
		return nil
	}
	var in dto.ClientPriceRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.UpdatePrice(c.UserContext(), id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// DeletePrice godoc
// @Summary      Eliminar un precio negociado
// @Tags         clients
// @Security     Bearer
// @Param        priceId  path  string  true  "ID del precio"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/client-prices/{priceId} [delete]
func (h *ClientHandler) DeletePrice(c *fiber.Ctx) error {
	id, ok := requireID(c, "priceId")
	if !ok {
		return nil
	}
	if err := h.uc.DeletePrice(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
