package repository

import (
	"context"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// AuditFilter criterios de consulta del registro de auditoría.
type AuditFilter struct {
	EntityType string
	EntityID   string
	Action     string
	Limit      int
	Offset     int
}

// AuditRepository almacén de auditoría. Insert sobre una tx no debe abortarla si falla:
// la implementación aísla la escritura (savepoint) y devuelve el error para que se registre en el log.
type AuditRepository interface {
	Insert(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]*entity.AuditLog, error)
}
