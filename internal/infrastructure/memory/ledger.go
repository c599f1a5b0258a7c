package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger en memoria (solo append).
type StockMovementRepo struct{ base }

func (r *StockMovementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	defer r.lock()()
	d := r.data()
	d.movements = append(d.movements, *m)
	return nil
}

func (r *StockMovementRepo) SumByProduct(_ context.Context, productID string) (int, error) {
	defer r.lock()()
	total := 0
	for _, m := range r.data().movements {
		if m.ProductID == productID {
			total += m.QtySigned
		}
	}
	return total, nil
}

func (r *StockMovementRepo) SumByProducts(_ context.Context, productIDs []string) (map[string]int, error) {
	defer r.lock()()
	want := make(map[string]bool, len(productIDs))
	out := make(map[string]int, len(productIDs))
	for _, id := range productIDs {
		want[id] = true
		out[id] = 0
	}
	for _, m := range r.data().movements {
		if want[m.ProductID] {
			out[m.ProductID] += m.QtySigned
		}
	}
	return out, nil
}

func (r *StockMovementRepo) SumUntil(_ context.Context, productID string, until time.Time) (int, error) {
	defer r.lock()()
	total := 0
	for _, m := range r.data().movements {
		if m.ProductID == productID && !m.CreatedAt.After(until) {
			total += m.QtySigned
		}
	}
	return total, nil
}

func (r *StockMovementRepo) SumAll(_ context.Context, until *time.Time) (map[string]int, error) {
	defer r.lock()()
	out := map[string]int{}
	for _, m := range r.data().movements {
		if until != nil && m.CreatedAt.After(*until) {
			continue
		}
		out[m.ProductID] += m.QtySigned
	}
	return out, nil
}

func (r *StockMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	defer r.lock()()
	out := make([]*entity.StockMovement, 0)
	for _, m := range r.data().movements {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Reference != "" && !containsFold(m.Reference, f.Reference) {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return page(out, f.Limit, f.Offset), nil
}
