// Package audit registra quién cambió qué. Una falla de auditoría nunca aborta la operación de negocio.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// Actor quién ejecuta la operación y desde dónde.
type Actor struct {
	UserID    string
	IP        string
	UserAgent string
}

// System actor de las tareas programadas (sin usuario).
var System = Actor{}

// UserRef devuelve el id del usuario o nil para acciones del sistema.
func (a Actor) UserRef() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

// Entry un evento de auditoría. Before y After se serializan a JSON.
type Entry struct {
	Target entity.Auditable
	Action string
	Before any
	After  any
	Reason string
	Actor  Actor
}

// Recorder escribe entradas sobre un AuditRepository (normalmente atado a la tx en curso).
type Recorder struct {
	repo repository.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewRecorder construye el recorder.
func NewRecorder(repo repository.AuditRepository, log zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log, now: time.Now}
}

// Record guarda la entrada. Los errores solo se registran en el log.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if e.Target == nil {
		r.log.Warn().Str("action", e.Action).Msg("auditoría sin entidad objetivo, se ignora")
		return
	}
	rec := &entity.AuditLog{
		ID:         uuid.New().String(),
		EntityType: e.Target.AuditKind(),
		EntityID:   e.Target.AuditID(),
		Action:     e.Action,
		Before:     r.snapshot(e.Before),
		After:      r.snapshot(e.After),
		UserID:     e.Actor.UserRef(),
		Reason:     e.Reason,
		IPAddress:  e.Actor.IP,
		UserAgent:  e.Actor.UserAgent,
		CreatedAt:  r.now(),
	}
	if err := r.repo.Insert(ctx, rec); err != nil {
		r.log.Error().Err(err).
			Str("action", e.Action).
			Str("entity_type", rec.EntityType).
			Str("entity_id", rec.EntityID).
			Msg("no se pudo registrar la auditoría")
	}
}

func (r *Recorder) snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		r.log.Warn().Err(err).Msg("auditoría: no se pudo serializar el estado")
		return nil
	}
	return b
}

// QueryUseCase consulta del registro de auditoría.
type QueryUseCase struct {
	repo repository.AuditRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(repo repository.AuditRepository) *QueryUseCase {
	return &QueryUseCase{repo: repo}
}

// List devuelve los registros que cumplen el filtro, más recientes primero.
func (uc *QueryUseCase) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return uc.repo.List(ctx, f)
}
