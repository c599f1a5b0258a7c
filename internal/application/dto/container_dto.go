package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateContainerRequest body para POST /api/containers.
type CreateContainerRequest struct {
	Ref              string `json:"ref" validate:"required,max=100"`
	EstimatedArrival string `json:"estimated_arrival" validate:"required,datetime=2006-01-02"`
}

// ManifestLineRequest cantidad esperada de un producto.
type ManifestLineRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	QtyExpected int    `json:"qty_expected" validate:"min=1"`
}

// ReceivedLineRequest cantidad recibida y rotura de un producto.
type ReceivedLineRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	QtyReceived int    `json:"qty_received" validate:"min=0"`
	Breakage    int    `json:"breakage" validate:"min=0"`
	Comment     string `json:"comment" validate:"max=500"`
}

// UnloadingSessionRequest creación de la sesión de descarga.
type UnloadingSessionRequest struct {
	CrewSize        int             `json:"crew_size" validate:"min=1"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

// EditSessionRequest cambios de equipo o monto (campos opcionales).
type EditSessionRequest struct {
	CrewSize        *int             `json:"crew_size" validate:"omitempty,min=1"`
	AllocatedAmount *decimal.Decimal `json:"allocated_amount"`
}

// ManifestLineResponse línea del manifiesto.
type ManifestLineResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	QtyExpected int    `json:"qty_expected"`
}

// ReceivedLineResponse línea recibida.
type ReceivedLineResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	QtyReceived int    `json:"qty_received"`
	Breakage    int    `json:"breakage"`
	Comment     string `json:"comment,omitempty"`
}

// UnloadingEventResponse evento de la línea de tiempo.
type UnloadingEventResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	UserID    *string        `json:"user_id,omitempty"`
	Meta      map[string]any `json:"meta"`
	Timestamp time.Time      `json:"timestamp"`
}

// UnloadingSessionResponse sesión con su línea de tiempo.
type UnloadingSessionResponse struct {
	ID              string                   `json:"id"`
	ContainerID     string                   `json:"container_id"`
	CrewSize        int                      `json:"crew_size"`
	AllocatedAmount decimal.Decimal          `json:"allocated_amount"`
	StartedAt       *time.Time               `json:"started_at,omitempty"`
	EndedAt         *time.Time               `json:"ended_at,omitempty"`
	Events          []UnloadingEventResponse `json:"events,omitempty"`
}

// ContainerResponse contenedor con manifiesto, recepción y sesión.
type ContainerResponse struct {
	ID               string                    `json:"id"`
	Ref              string                    `json:"ref"`
	EstimatedArrival string                    `json:"estimated_arrival"`
	ActualArrival    *string                   `json:"actual_arrival,omitempty"`
	Status           string                    `json:"status"`
	ValidatedAt      *time.Time                `json:"validated_at,omitempty"`
	Manifest         []ManifestLineResponse    `json:"manifest"`
	Received         []ReceivedLineResponse    `json:"received"`
	Session          *UnloadingSessionResponse `json:"session,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
}
