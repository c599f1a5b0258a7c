package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// MovementFilter criterios de consulta del ledger.
type MovementFilter struct {
	ProductID string
	Type      string
	Reference string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository ledger append-only: no existen Update ni Delete.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	// SumByProduct Σ qty_signed del producto (0 si no hay movimientos).
	SumByProduct(ctx context.Context, productID string) (int, error)
	// SumByProducts igual que SumByProduct para varios productos en una sola consulta.
	SumByProducts(ctx context.Context, productIDs []string) (map[string]int, error)
	// SumUntil Σ qty_signed de los movimientos con created_at <= until.
	SumUntil(ctx context.Context, productID string, until time.Time) (int, error)
	// SumAll stock de todos los productos con movimientos; until nil = sin límite.
	SumAll(ctx context.Context, until *time.Time) (map[string]int, error)
	List(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, error)
}
