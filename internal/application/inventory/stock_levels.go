package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	ledger "github.com/jhoicas/gsa-backend/internal/domain/inventory"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// StockLevel stock derivado de un producto activo.
type StockLevel struct {
	Product   *entity.Product
	Stock     int
	Threshold int
	Low       bool
}

// StockReport stock de cada producto activo, al día asOf o actual si asOf es nil.
func (uc *LedgerUseCase) StockReport(ctx context.Context, asOf *time.Time) ([]StockLevel, error) {
	products, err := uc.products.List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	var until *time.Time
	if asOf != nil {
		eod := EndOfDay(*asOf)
		until = &eod
	}
	sums, err := uc.movements.SumAll(ctx, until)
	if err != nil {
		return nil, err
	}

	levels := make([]StockLevel, 0, len(products))
	for _, p := range products {
		threshold := p.ReorderThreshold
		if threshold <= 0 {
			threshold = entity.DefaultReorderThreshold
		}
		stock := sums[p.ID]
		levels = append(levels, StockLevel{
			Product:   p,
			Stock:     stock,
			Threshold: threshold,
			Low:       ledger.IsLowStock(stock, threshold),
		})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Product.Name < levels[j].Product.Name })
	return levels, nil
}

// LowStock productos activos con 0 < stock <= umbral, los más críticos primero.
func (uc *LedgerUseCase) LowStock(ctx context.Context) ([]StockLevel, error) {
	levels, err := uc.StockReport(ctx, nil)
	if err != nil {
		return nil, err
	}
	low := make([]StockLevel, 0)
	for _, l := range levels {
		if l.Low {
			low = append(low, l)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Stock < low[j].Stock })
	return low, nil
}
