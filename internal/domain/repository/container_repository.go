package repository

import (
	"context"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// ContainerRepository contenedores, manifiesto y líneas recibidas.
type ContainerRepository interface {
	// Create devuelve domain.ErrDuplicate si la referencia ya existe.
	Create(ctx context.Context, container *entity.Container) error
	GetByID(ctx context.Context, id string) (*entity.Container, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Container, error)
	Update(ctx context.Context, container *entity.Container) error
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Container, error)

	AddManifestLine(ctx context.Context, line *entity.ManifestLine) error
	ListManifest(ctx context.Context, containerID string) ([]*entity.ManifestLine, error)

	AddReceivedLine(ctx context.Context, line *entity.ReceivedLine) error
	GetReceivedLine(ctx context.Context, id string) (*entity.ReceivedLine, error)
	UpdateReceivedLine(ctx context.Context, line *entity.ReceivedLine) error
	ListReceived(ctx context.Context, containerID string) ([]*entity.ReceivedLine, error)
}

// UnloadingRepository sesiones de descarga y su línea de tiempo.
type UnloadingRepository interface {
	// CreateSession devuelve domain.ErrDuplicate si el contenedor ya tiene sesión.
	CreateSession(ctx context.Context, session *entity.UnloadingSession) error
	GetSession(ctx context.Context, id string) (*entity.UnloadingSession, error)
	GetSessionForUpdate(ctx context.Context, id string) (*entity.UnloadingSession, error)
	GetSessionByContainer(ctx context.Context, containerID string) (*entity.UnloadingSession, error)
	UpdateSession(ctx context.Context, session *entity.UnloadingSession) error
	AppendEvent(ctx context.Context, event *entity.UnloadingEvent) error
	ListEvents(ctx context.Context, sessionID string) ([]*entity.UnloadingEvent, error)
}
