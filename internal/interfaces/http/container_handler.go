package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/application/containers"
	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// ContainerHandler contenedores de importación y su sesión de descarga.
type ContainerHandler struct {
	uc *containers.UseCase
}

// NewContainerHandler construye el handler.
func NewContainerHandler(uc *containers.UseCase) *ContainerHandler {
	return &ContainerHandler{uc: uc}
}

func (h *ContainerHandler) respond(c *fiber.Ctx, status int, containerID string) error {
	v, err := h.uc.Get(c.UserContext(), containerID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(status).JSON(containerViewResponse(v))
}

// Create godoc
// @Summary      Registrar contenedor (PLANNED)
// @Tags         containers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateContainerRequest  true  "Referencia y llegada estimada"
// @Success      201   {object}  dto.ContainerResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/containers [post]
func (h *ContainerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateContainerRequest
	if !bindJSON(c, &in) {
		return nil
	}
	eta, err := parseDate(in.EstimatedArrival)
	if err != nil || eta.IsZero() {
		return badRequest(c, "VALIDATION", "estimated_arrival es requerido (YYYY-MM-DD)")
	}
	ct, err := h.uc.Create(c.UserContext(), containers.CreateInput{Ref: in.Ref, EstimatedArrival: eta})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(containerResponse(ct))
}

// Get godoc
// @Summary      Contenedor con manifiesto, recepción y sesión
// @Tags         containers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del contenedor"
// @Success      200  {object}  dto.ContainerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/containers/{id} [get]
func (h *ContainerHandler) Get(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	return h.respond(c, fiber.StatusOK, id)
}

// List godoc
// @Summary      Listar contenedores
// @Tags         containers
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "PLANNED | IN_PROGRESS | UNLOADED | VALIDATED"
// @Success      200  {array}  dto.ContainerResponse
// @Router       /api/containers [get]
func (h *ContainerHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.uc.List(c.UserContext(), c.Query("status"), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.ContainerResponse, 0, len(list))
	for _, ct := range list {
		out = append(out, containerResponse(ct))
	}
	return c.JSON(out)
}

// AddManifestLine godoc
// @Summary      Agregar o reemplazar línea de manifiesto
// @Tags         containers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del contenedor"
// @Param        body  body  dto.ManifestLineRequest  true  "Producto y cantidad esperada"
// @Success      201   {object}  dto.ManifestLineResponse
// @Router       /api/containers/{id}/manifest [post]
func (h *ContainerHandler) AddManifestLine(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.ManifestLineRequest
	if !bindJSON(c, &in) {
		return nil
	}
	line, err := h.uc.AddManifestLine(c.UserContext(), id, in.ProductID, in.QtyExpected)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(manifestLineResponse(line))
}

// AddReceivedLine godoc
// @Summary      Registrar cantidad recibida y rotura de un producto
// @Tags         containers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del contenedor"
// @Param        body  body  dto.ReceivedLineRequest  true  "Recepción"
// @Success      201   {object}  dto.ReceivedLineResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/containers/{id}/received [post]
func (h *ContainerHandler) AddReceivedLine(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.ReceivedLineRequest
	if !bindJSON(c, &in) {
		return nil
	}
	line, err := h.uc.AddReceivedLine(c.UserContext(), id, receivedInput(in))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(receivedLineResponse(line))
}

// UpdateReceivedLine godoc
// @Summary      Corregir una línea recibida
// @Tags         containers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        lineId  path  string                   true  "ID de la línea"
// @Param        body    body  dto.ReceivedLineRequest  true  "Recepción"
// @Success      200     {object}  dto.ReceivedLineResponse
// @Router       /api/received-lines/{lineId} [put]
func (h *ContainerHandler) UpdateReceivedLine(c *fiber.Ctx) error {
	id, ok := requireID(c, "lineId")
	if !ok {
		return nil
	}
	var in dto.ReceivedLineRequest
	if !bindJSON(c, &in) {
		return nil
	}
	line, err := h.uc.UpdateReceivedLine(c.UserContext(), id, receivedInput(in))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(receivedLineResponse(line))
}

// Validate godoc
// @Summary      Validar el contenedor y registrar recibido − rotura en el ledger
// @Tags         containers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del contenedor"
// @Success      200  {object}  dto.ContainerResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/containers/{id}/validate [post]
func (h *ContainerHandler) Validate(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	if _, err := h.uc.Validate(c.UserContext(), id, actor(c)); err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, id)
}

// ── Sesión de descarga ────────────────────────────────────────────────────────

// CreateSession godoc
// @Summary      Crear la sesión de descarga del contenedor
// @Tags         unloading
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del contenedor"
// @Param        body  body  dto.UnloadingSessionRequest  true  "Cuadrilla y monto"
// @Success      201   {object}  dto.UnloadingSessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/containers/{id}/session [post]
func (h *ContainerHandler) CreateSession(c *fiber.Ctx) error {
	id, ok := requireID(c, "id")
	if !ok {
		return nil
	}
	var in dto.UnloadingSessionRequest
	if !bindJSON(c, &in) {
		return nil
	}
	s, err := h.uc.CreateSession(c.UserContext(), id, containers.SessionInput{
		CrewSize:        in.CrewSize,
		AllocatedAmount: in.AllocatedAmount,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sessionResponse(s, nil))
}

type sessionTransition func(uc *containers.UseCase, c *fiber.Ctx, sessionID string, a audit.Actor) (*entity.UnloadingSession, error)

// transition genera el handler de START / PAUSE / RESUME / END.
func (h *ContainerHandler) transition(fn sessionTransition) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := requireID(c, "sessionId")
		if !ok {
			return nil
		}
		s, err := fn(h.uc, c, id, actor(c))
		if err != nil {
			return fail(c, err)
		}
		return h.sessionWithEvents(c, s)
	}
}

// Start godoc
// @Summary      Iniciar la descarga
// @Tags         unloading
// @Security     Bearer
// @Produce      json
// @Param        sessionId  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.UnloadingSessionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/unloading-sessions/{sessionId}/start [post]
func (h *ContainerHandler) Start() fiber.Handler {
	return h.transition(func(uc *containers.UseCase, c *fiber.Ctx, id string, a audit.Actor) (*entity.UnloadingSession, error) {
		return uc.Start(c.UserContext(), id, a)
	})
}

// Pause godoc
// @Summary      Pausar la descarga
// @Tags         unloading
// @Security     Bearer
// @Produce      json
// @Param        sessionId  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.UnloadingSessionResponse
// @Router       /api/unloading-sessions/{sessionId}/pause [post]
func (h *ContainerHandler) Pause() fiber.Handler {
	return h.transition(func(uc *containers.UseCase, c *fiber.Ctx, id string, a audit.Actor) (*entity.UnloadingSession, error) {
		return uc.Pause(c.UserContext(), id, a)
	})
}

// Resume godoc
// @Summary      Reanudar la descarga
// @Tags         unloading
// @Security     Bearer
// @Produce      json
// @Param        sessionId  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.UnloadingSessionResponse
// @Router       /api/unloading-sessions/{sessionId}/resume [post]
func (h *ContainerHandler) Resume() fiber.Handler {
	return h.transition(func(uc *containers.UseCase, c *fiber.Ctx, id string, a audit.Actor) (*entity.UnloadingSession, error) {
		return uc.Resume(c.UserContext(), id, a)
	})
}

// End godoc
// @Summary      Terminar la descarga
// @Tags         unloading
// @Security     Bearer
// @Produce      json
// @Param        sessionId  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.UnloadingSessionResponse
// @Router       /api/unloading-sessions/{sessionId}/end [post]
func (h *ContainerHandler) End() fiber.Handler {
	return h.transition(func(uc *containers.UseCase, c *fiber.Ctx, id string, a audit.Actor) (*entity.UnloadingSession, error) {
		return uc.End(c.UserContext(), id, a)
	})
}

// EditSession godoc
// @Summary      Cambiar cuadrilla o monto asignado (deja un evento EDIT)
// @Tags         unloading
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sessionId  path  string                  true  "ID de la sesión"
// @Param        body       body  dto.EditSessionRequest  true  "Cambios"
// @Success      200  {object}  dto.UnloadingSessionResponse
// @Router       /api/unloading-sessions/{sessionId} [patch]
func (h *ContainerHandler) EditSession(c *fiber.Ctx) error {
	id, ok := requireID(c, "sessionId")
	if !ok {
		return nil
	}
	var in dto.EditSessionRequest
	if !bindJSON(c, &in) {
		return nil
	}
	s, err := h.uc.Edit(c.UserContext(), id, containers.EditInput{
		CrewSize:        in.CrewSize,
		AllocatedAmount: in.AllocatedAmount,
	}, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return h.sessionWithEvents(c, s)
}

// Events godoc
// @Summary      Línea de tiempo de la sesión
// @Tags         unloading
// @Security     Bearer
// @Produce      json
// @Param        sessionId  path  string  true  "ID de la sesión"
// @Success      200  {array}  dto.UnloadingEventResponse
// @Router       /api/unloading-sessions/{sessionId}/events [get]
func (h *ContainerHandler) Events(c *fiber.Ctx) error {
	id, ok := requireID(c, "sessionId")
	if !ok {
		return nil
	}
	events, err := h.uc.Events(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	resp := sessionResponse(&entity.UnloadingSession{}, events)
	if resp.Events == nil {
		resp.Events = []dto.UnloadingEventResponse{}
	}
	return c.JSON(resp.Events)
}

func (h *ContainerHandler) sessionWithEvents(c *fiber.Ctx, s *entity.UnloadingSession) error {
	events, err := h.uc.Events(c.UserContext(), s.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sessionResponse(s, events))
}

func receivedInput(in dto.ReceivedLineRequest) containers.ReceivedInput {
	return containers.ReceivedInput{
		ProductID:   in.ProductID,
		QtyReceived: in.QtyReceived,
		Breakage:    in.Breakage,
		Comment:     in.Comment,
	}
}
