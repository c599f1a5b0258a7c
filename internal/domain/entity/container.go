package entity

import "time"

// Estados del contenedor.
const (
	ContainerStatusPlanned    = "PLANNED"
	ContainerStatusInProgress = "IN_PROGRESS"
	ContainerStatusUnloaded   = "UNLOADED"
	ContainerStatusValidated  = "VALIDATED"
)

// Container contenedor de importación.
type Container struct {
	ID               string
	Ref              string
	EstimatedArrival time.Time
	ActualArrival    *time.Time
	Status           string
	ValidatedAt      *time.Time
	ValidatedBy      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (c *Container) AuditKind() string { return "container" }
func (c *Container) AuditID() string   { return c.ID }

// ManifestLine cantidad esperada por producto (el plan).
type ManifestLine struct {
	ID          string
	ContainerID string
	ProductID   string
	QtyExpected int
	CreatedAt   time.Time
}

// ReceivedLine cantidad realmente recibida y rotura por producto (la realidad).
// No se fuerza igualdad con el manifiesto.
type ReceivedLine struct {
	ID          string
	ContainerID string
	ProductID   string
	QtyReceived int
	Breakage    int
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
