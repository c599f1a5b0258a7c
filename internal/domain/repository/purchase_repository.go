package repository

import (
	"context"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// PurchaseFilter criterios de listado de compras.
type PurchaseFilter struct {
	SupplierID string
	Status     string
	Limit      int
	Offset     int
}

// PurchaseRepository compras, sus líneas y pagos a proveedor.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	// GetForUpdate bloquea la fila de la compra (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	Update(ctx context.Context, purchase *entity.Purchase) error
	List(ctx context.Context, f PurchaseFilter) ([]*entity.Purchase, error)
	// MaxReference mayor referencia existente que empieza por prefix ("" si ninguna).
	MaxReference(ctx context.Context, prefix string) (string, error)

	// AddLine devuelve domain.ErrDuplicate si el producto ya está en la compra.
	AddLine(ctx context.Context, line *entity.PurchaseLine) error
	GetLine(ctx context.Context, id string) (*entity.PurchaseLine, error)
	UpdateLine(ctx context.Context, line *entity.PurchaseLine) error
	DeleteLine(ctx context.Context, id string) error
	ListLines(ctx context.Context, purchaseID string) ([]*entity.PurchaseLine, error)

	AddPayment(ctx context.Context, payment *entity.PurchasePayment) error
	GetPayment(ctx context.Context, id string) (*entity.PurchasePayment, error)
	DeletePayment(ctx context.Context, id string) error
	ListPayments(ctx context.Context, purchaseID string) ([]*entity.PurchasePayment, error)
}
