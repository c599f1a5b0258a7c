package repository

import (
	"context"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// ClientFilter criterios de búsqueda de clientes.
type ClientFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ClientRepository define el puerto de persistencia para Client (clientes y proveedores).
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	List(ctx context.Context, f ClientFilter) ([]*entity.Client, error)
}
