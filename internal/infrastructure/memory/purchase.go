package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo compras en memoria.
type PurchaseRepo struct{ base }

func (r *PurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	defer r.lock()()
	d := r.data()
	for _, existing := range d.purchases {
		if existing.Reference == p.Reference {
			return domain.ErrDuplicate
		}
	}
	d.purchases[p.ID] = *p
	return nil
}

func (r *PurchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	defer r.lock()()
	p, ok := r.data().purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r *PurchaseRepo) Update(_ context.Context, p *entity.Purchase) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.purchases[p.ID]; !ok {
		return domain.ErrNotFound
	}
	d.purchases[p.ID] = *p
	return nil
}

func (r *PurchaseRepo) List(_ context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, error) {
	defer r.lock()()
	out := make([]*entity.Purchase, 0)
	for _, p := range r.data().purchases {
		if f.SupplierID != "" && p.SupplierID != f.SupplierID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference > out[j].Reference })
	return page(out, f.Limit, f.Offset), nil
}

func (r *PurchaseRepo) MaxReference(_ context.Context, prefix string) (string, error) {
	defer r.lock()()
	refs := make([]string, 0, len(r.data().purchases))
	for _, p := range r.data().purchases {
		refs = append(refs, p.Reference)
	}
	return maxWithPrefix(refs, prefix), nil
}

func (r *PurchaseRepo) AddLine(_ context.Context, l *entity.PurchaseLine) error {
	defer r.lock()()
	d := r.data()
	for _, existing := range d.purchaseLines {
		if existing.PurchaseID == l.PurchaseID && existing.ProductID == l.ProductID {
			return domain.ErrDuplicate
		}
	}
	d.purchaseLines[l.ID] = *l
	return nil
}

func (r *PurchaseRepo) GetLine(_ context.Context, id string) (*entity.PurchaseLine, error) {
	defer r.lock()()
	l, ok := r.data().purchaseLines[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *PurchaseRepo) UpdateLine(_ context.Context, l *entity.PurchaseLine) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.purchaseLines[l.ID]; !ok {
		return domain.ErrNotFound
	}
	d.purchaseLines[l.ID] = *l
	return nil
}

func (r *PurchaseRepo) DeleteLine(_ context.Context, id string) error {
	defer r.lock()()
	delete(r.data().purchaseLines, id)
	return nil
}

func (r *PurchaseRepo) ListLines(_ context.Context, purchaseID string) ([]*entity.PurchaseLine, error) {
	defer r.lock()()
	out := make([]*entity.PurchaseLine, 0)
	for _, l := range r.data().purchaseLines {
		if l.PurchaseID == purchaseID {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *PurchaseRepo) AddPayment(_ context.Context, p *entity.PurchasePayment) error {
	defer r.lock()()
	r.data().purchasePayments[p.ID] = *p
	return nil
}

func (r *PurchaseRepo) GetPayment(_ context.Context, id string) (*entity.PurchasePayment, error) {
	defer r.lock()()
	p, ok := r.data().purchasePayments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PurchaseRepo) DeletePayment(_ context.Context, id string) error {
	defer r.lock()()
	delete(r.data().purchasePayments, id)
	return nil
}

func (r *PurchaseRepo) ListPayments(_ context.Context, purchaseID string) ([]*entity.PurchasePayment, error) {
	defer r.lock()()
	out := make([]*entity.PurchasePayment, 0)
	for _, p := range r.data().purchasePayments {
		if p.PurchaseID == purchaseID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(out[i].Date, out[j].Date, out[i].ID, out[j].ID)
	})
	return out, nil
}
