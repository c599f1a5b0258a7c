package repository

import (
	"context"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// ProductFilter criterios de listado del catálogo.
type ProductFilter struct {
	Category   string
	ActiveOnly bool
	Search     string
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, error)
	// LockForStock bloquea las filas de los productos (orden por id) hasta el fin de la tx.
	// Serializa verificaciones de disponibilidad concurrentes sobre el mismo producto.
	LockForStock(ctx context.Context, ids []string) error
}

// PriceRepository precios base y precios por cliente.
type PriceRepository interface {
	GetBasePrice(ctx context.Context, productID string) (*entity.BasePrice, error)
	SetBasePrice(ctx context.Context, price *entity.BasePrice) error
	GetClientPrice(ctx context.Context, clientID, productID string) (*entity.ClientPrice, error)
	GetClientPriceByID(ctx context.Context, id string) (*entity.ClientPrice, error)
	// CreateClientPrice devuelve domain.ErrDuplicate si ya existe el par (cliente, producto).
	CreateClientPrice(ctx context.Context, price *entity.ClientPrice) error
	UpdateClientPrice(ctx context.Context, price *entity.ClientPrice) error
	DeleteClientPrice(ctx context.Context, id string) error
	ListClientPrices(ctx context.Context, clientID string) ([]*entity.ClientPrice, error)
}
