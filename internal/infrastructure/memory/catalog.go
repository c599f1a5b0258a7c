package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.PriceRepository   = (*PriceRepo)(nil)
	_ repository.ClientRepository  = (*ClientRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ base }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	d.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.data().products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	defer r.lock()()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.data().products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	d.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	defer r.lock()()
	out := make([]*entity.Product, 0)
	for _, p := range r.data().products {
		if f.ActiveOnly && !p.Active {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if !containsFold(p.Name, f.Search) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), nil
}

// LockForStock no bloquea nada: la transacción en memoria ya tiene el lock global.
// Solo verifica que los productos existan, como lo haría el SELECT ... FOR UPDATE.
func (r *ProductRepo) LockForStock(_ context.Context, ids []string) error {
	defer r.lock()()
	for _, id := range sortedIDs(ids) {
		if _, ok := r.data().products[id]; !ok {
			return domain.ErrNotFound
		}
	}
	return nil
}

// PriceRepo precios base y por cliente en memoria.
type PriceRepo struct{ base }

func (r *PriceRepo) GetBasePrice(_ context.Context, productID string) (*entity.BasePrice, error) {
	defer r.lock()()
	p, ok := r.data().basePrices[productID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PriceRepo) SetBasePrice(_ context.Context, p *entity.BasePrice) error {
	defer r.lock()()
	r.data().basePrices[p.ProductID] = *p
	return nil
}

func (r *PriceRepo) GetClientPrice(_ context.Context, clientID, productID string) (*entity.ClientPrice, error) {
	defer r.lock()()
	for _, p := range r.data().clientPrices {
		if p.ClientID == clientID && p.ProductID == productID {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *PriceRepo) GetClientPriceByID(_ context.Context, id string) (*entity.ClientPrice, error) {
	defer r.lock()()
	p, ok := r.data().clientPrices[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PriceRepo) CreateClientPrice(_ context.Context, p *entity.ClientPrice) error {
	defer r.lock()()
	d := r.data()
	for _, existing := range d.clientPrices {
		if existing.ClientID == p.ClientID && existing.ProductID == p.ProductID {
			return domain.ErrDuplicate
		}
	}
	d.clientPrices[p.ID] = *p
	return nil
}

func (r *PriceRepo) UpdateClientPrice(_ context.Context, p *entity.ClientPrice) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.clientPrices[p.ID]; !ok {
		return domain.ErrNotFound
	}
	d.clientPrices[p.ID] = *p
	return nil
}

func (r *PriceRepo) DeleteClientPrice(_ context.Context, id string) error {
	defer r.lock()()
	delete(r.data().clientPrices, id)
	return nil
}

func (r *PriceRepo) ListClientPrices(_ context.Context, clientID string) ([]*entity.ClientPrice, error) {
	defer r.lock()()
	out := make([]*entity.ClientPrice, 0)
	for _, p := range r.data().clientPrices {
		if p.ClientID == clientID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ClientRepo clientes en memoria.
type ClientRepo struct{ base }

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.clients[c.ID]; ok {
		return domain.ErrDuplicate
	}
	d.clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	defer r.lock()()
	c, ok := r.data().clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.clients[c.ID]; !ok {
		return domain.ErrNotFound
	}
	d.clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) List(_ context.Context, f repository.ClientFilter) ([]*entity.Client, error) {
	defer r.lock()()
	out := make([]*entity.Client, 0)
	for _, c := range r.data().clients {
		if f.ActiveOnly && !c.Active {
			continue
		}
		if f.Search != "" && !containsFold(c.DisplayName()+" "+c.Email+" "+c.City, f.Search) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName() < out[j].DisplayName() })
	return page(out, f.Limit, f.Offset), nil
}
