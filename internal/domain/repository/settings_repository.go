package repository

import (
	"context"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// SettingsRepository configuración de empresa (fila única).
type SettingsRepository interface {
	// Get devuelve nil, nil si aún no se guardó ninguna configuración.
	Get(ctx context.Context) (*entity.CompanySettings, error)
	Save(ctx context.Context, s *entity.CompanySettings) error
}
