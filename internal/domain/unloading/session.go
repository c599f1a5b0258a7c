// Package unloading implementa las transiciones de una sesión de descarga de contenedor.
// No es una máquina de estados estricta: pausa y reanudación pueden repetirse.
package unloading

import (
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// Start marca el primer inicio. Falla si ya se inició.
func Start(s *entity.UnloadingSession, now time.Time) error {
	if s.StartedAt != nil {
		return domain.ErrSessionAlreadyStarted
	}
	s.StartedAt = &now
	return nil
}

// CheckRunning valida que se pueda pausar o reanudar: iniciada y no terminada.
func CheckRunning(s *entity.UnloadingSession) error {
	if s.StartedAt == nil {
		return domain.ErrSessionNotStarted
	}
	if s.EndedAt != nil {
		return domain.ErrSessionEnded
	}
	return nil
}

// End marca el fin. Falla si no se inició o si ya terminó.
func End(s *entity.UnloadingSession, now time.Time) error {
	if s.StartedAt == nil {
		return domain.ErrSessionNotStarted
	}
	if s.EndedAt != nil {
		return domain.ErrSessionEnded
	}
	s.EndedAt = &now
	return nil
}

// Apply ejecuta la transición indicada por eventType y devuelve el evento a registrar.
func Apply(s *entity.UnloadingSession, eventType string, userID *string, meta map[string]any, now time.Time) (*entity.UnloadingEvent, error) {
	var err error
	switch eventType {
	case entity.UnloadingEventStart:
		err = Start(s, now)
	case entity.UnloadingEventPause, entity.UnloadingEventResume:
		err = CheckRunning(s)
	case entity.UnloadingEventEnd:
		err = End(s, now)
	case entity.UnloadingEventEdit:
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if _, ok := meta["action"]; !ok {
		meta["action"] = actionName(eventType)
	}
	return &entity.UnloadingEvent{
		SessionID: s.ID,
		Type:      eventType,
		UserID:    userID,
		Meta:      meta,
		Timestamp: now,
	}, nil
}

// ContainerStatusAfter estado del contenedor tras el evento; "" si no cambia.
func ContainerStatusAfter(current, eventType string) string {
	switch {
	case eventType == entity.UnloadingEventStart && current == entity.ContainerStatusPlanned:
		return entity.ContainerStatusInProgress
	case eventType == entity.UnloadingEventEnd && current == entity.ContainerStatusInProgress:
		return entity.ContainerStatusUnloaded
	}
	return ""
}

func actionName(eventType string) string {
	switch eventType {
	case entity.UnloadingEventStart:
		return "start"
	case entity.UnloadingEventPause:
		return "pause"
	case entity.UnloadingEventResume:
		return "resume"
	case entity.UnloadingEventEnd:
		return "end"
	}
	return "edit"
}
