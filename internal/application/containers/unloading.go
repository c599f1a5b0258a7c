package containers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
	"github.com/jhoicas/gsa-backend/internal/domain/unloading"
)

// SessionInput parámetros de la cuadrilla de descarga. La cuadrilla tiene al menos una persona.
type SessionInput struct {
	CrewSize        int
	AllocatedAmount decimal.Decimal
}

// CreateSession abre la sesión de descarga de un contenedor (una por contenedor).
func (uc *UseCase) CreateSession(ctx context.Context, containerID string, in SessionInput) (*entity.UnloadingSession, error) {
	if in.CrewSize < 1 || in.AllocatedAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var s *entity.UnloadingSession
	err := uc.txRunner.Run(ctx, "unloading.create", func(ctx context.Context, r repository.Repositories) error {
		if _, err := openForUpdate(ctx, r, containerID); err != nil {
			return err
		}
		s = &entity.UnloadingSession{
			ID:              uuid.New().String(),
			ContainerID:     containerID,
			CrewSize:        in.CrewSize,
			AllocatedAmount: in.AllocatedAmount.Round(2),
			CreatedAt:       uc.now(),
		}
		return r.Unloading.CreateSession(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start inicia la descarga y registra el evento START. La sesión no debe haber empezado.
func (uc *UseCase) Start(ctx context.Context, sessionID string, actor audit.Actor) (*entity.UnloadingSession, error) {
	return uc.transition(ctx, sessionID, entity.UnloadingEventStart, nil, actor)
}

// Pause registra una pausa. Exige sesión iniciada y no terminada.
func (uc *UseCase) Pause(ctx context.Context, sessionID string, actor audit.Actor) (*entity.UnloadingSession, error) {
	return uc.transition(ctx, sessionID, entity.UnloadingEventPause, nil, actor)
}

// Resume reanuda tras una pausa. Mismas condiciones que Pause.
func (uc *UseCase) Resume(ctx context.Context, sessionID string, actor audit.Actor) (*entity.UnloadingSession, error) {
	return uc.transition(ctx, sessionID, entity.UnloadingEventResume, nil, actor)
}

// End cierra la sesión; el contenedor pasa a descargado.
func (uc *UseCase) End(ctx context.Context, sessionID string, actor audit.Actor) (*entity.UnloadingSession, error) {
	return uc.transition(ctx, sessionID, entity.UnloadingEventEnd, nil, actor)
}

// EditInput campos editables; nil = sin cambio.
type EditInput struct {
	CrewSize        *int
	AllocatedAmount *decimal.Decimal
}

// Edit cambia cuadrilla o monto asignado y deja un evento EDIT con los valores anteriores y nuevos.
func (uc *UseCase) Edit(ctx context.Context, sessionID string, in EditInput, actor audit.Actor) (*entity.UnloadingSession, error) {
	if in.CrewSize == nil && in.AllocatedAmount == nil {
		return nil, domain.ErrInvalidInput
	}
	if (in.CrewSize != nil && *in.CrewSize < 1) || (in.AllocatedAmount != nil && in.AllocatedAmount.IsNegative()) {
		return nil, domain.ErrInvalidInput
	}
	return uc.run(ctx, sessionID, "unloading.edit", func(s *entity.UnloadingSession) (string, map[string]any) {
		meta := map[string]any{"action": "edit"}
		if in.CrewSize != nil {
			meta["crew_size_before"] = s.CrewSize
			meta["crew_size"] = *in.CrewSize
			s.CrewSize = *in.CrewSize
		}
		if in.AllocatedAmount != nil {
			amount := in.AllocatedAmount.Round(2)
			meta["allocated_amount_before"] = s.AllocatedAmount.StringFixed(2)
			meta["allocated_amount"] = amount.StringFixed(2)
			s.AllocatedAmount = amount
		}
		return entity.UnloadingEventEdit, meta
	}, actor)
}

func (uc *UseCase) transition(ctx context.Context, sessionID, eventType string, meta map[string]any, actor audit.Actor) (*entity.UnloadingSession, error) {
	return uc.run(ctx, sessionID, "unloading."+eventType, func(*entity.UnloadingSession) (string, map[string]any) {
		return eventType, meta
	}, actor)
}

// run bloquea la sesión, aplica mutate, registra el evento y mueve el estado del contenedor si corresponde.
func (uc *UseCase) run(
	ctx context.Context,
	sessionID, name string,
	mutate func(s *entity.UnloadingSession) (string, map[string]any),
	actor audit.Actor,
) (*entity.UnloadingSession, error) {
	var s *entity.UnloadingSession
	err := uc.txRunner.Run(ctx, name, func(ctx context.Context, r repository.Repositories) error {
		var err error
		s, err = r.Unloading.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		now := uc.now()
		eventType, meta := mutate(s)
		ev, err := unloading.Apply(s, eventType, actor.UserRef(), meta, now)
		if err != nil {
			return err
		}
		ev.ID = uuid.New().String()
		if err := r.Unloading.UpdateSession(ctx, s); err != nil {
			return err
		}
		if err := r.Unloading.AppendEvent(ctx, ev); err != nil {
			return err
		}
		return uc.advanceContainer(ctx, r, s.ContainerID, eventType, now)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *UseCase) advanceContainer(ctx context.Context, r repository.Repositories, containerID, eventType string, now time.Time) error {
	c, err := r.Containers.GetForUpdate(ctx, containerID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	next := unloading.ContainerStatusAfter(c.Status, eventType)
	if next == "" {
		return nil
	}
	c.Status = next
	if next == entity.ContainerStatusInProgress && c.ActualArrival == nil {
		c.ActualArrival = &now
	}
	c.UpdatedAt = now
	return r.Containers.Update(ctx, c)
}

// Events línea de tiempo de la sesión.
func (uc *UseCase) Events(ctx context.Context, sessionID string) ([]*entity.UnloadingEvent, error) {
	s, err := uc.repos.Unloading.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return uc.repos.Unloading.ListEvents(ctx, sessionID)
}
