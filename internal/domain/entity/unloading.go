package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento de descarga.
const (
	UnloadingEventStart  = "START"
	UnloadingEventPause  = "PAUSE"
	UnloadingEventResume = "RESUME"
	UnloadingEventEnd    = "END"
	UnloadingEventEdit   = "EDIT"
)

// UnloadingSession sesión de descarga (uno a uno con Container).
// Solo guarda el primer inicio y el fin; pausas y reanudaciones viven en los eventos.
type UnloadingSession struct {
	ID              string
	ContainerID     string
	CrewSize        int
	AllocatedAmount decimal.Decimal
	StartedAt       *time.Time
	EndedAt         *time.Time
	CreatedAt       time.Time
}

// UnloadingEvent entrada append-only de la línea de tiempo de una sesión.
type UnloadingEvent struct {
	ID        string
	SessionID string
	Type      string
	UserID    *string
	Meta      map[string]any
	Timestamp time.Time
}
