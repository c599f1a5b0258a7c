package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// PriceResolver elige el precio a aplicar: el negociado con el cliente y, si no existe, el precio base.
type PriceResolver struct {
	prices repository.PriceRepository
}

// NewPriceResolver construye el resolver sobre un PriceRepository (de pool o de tx).
func NewPriceResolver(prices repository.PriceRepository) PriceResolver {
	return PriceResolver{prices: prices}
}

// Resolve devuelve domain.ErrNoPriceFound si el producto no tiene ningún precio.
func (p PriceResolver) Resolve(ctx context.Context, clientID, productID string) (decimal.Decimal, error) {
	cp, err := p.prices.GetClientPrice(ctx, clientID, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if cp != nil {
		return cp.Price, nil
	}
	bp, err := p.prices.GetBasePrice(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if bp == nil {
		return decimal.Zero, domain.ErrNoPriceFound
	}
	return bp.Price, nil
}
