package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var (
	_ repository.InvoiceRepository    = (*InvoiceRepo)(nil)
	_ repository.AcceptanceRepository = (*AcceptanceRepo)(nil)
)

// InvoiceRepo facturas, líneas y pagos en memoria.
type InvoiceRepo struct{ base }

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	defer r.lock()()
	d := r.data()
	if inv.Number != nil {
		for _, existing := range d.invoices {
			if existing.Number != nil && *existing.Number == *inv.Number {
				return domain.ErrDuplicate
			}
		}
	}
	d.invoices[inv.ID] = *inv
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	defer r.lock()()
	inv, ok := r.data().invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	if inv.Number != nil {
		for id, existing := range d.invoices {
			if id != inv.ID && existing.Number != nil && *existing.Number == *inv.Number {
				return domain.ErrDuplicate
			}
		}
	}
	d.invoices[inv.ID] = *inv
	return nil
}

func (r *InvoiceRepo) SetPDFPath(_ context.Context, id, path string) error {
	defer r.lock()()
	d := r.data()
	inv, ok := d.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.PDFPath = path
	d.invoices[id] = inv
	return nil
}

func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	defer r.lock()()
	out := make([]*entity.Invoice, 0)
	for _, inv := range r.data().invoices {
		if f.ClientID != "" && inv.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.Search != "" && (inv.Number == nil || !containsFold(*inv.Number, f.Search)) {
			continue
		}
		inv := inv
		out = append(out, &inv)
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *InvoiceRepo) MaxNumber(_ context.Context, prefix string) (string, error) {
	defer r.lock()()
	numbers := make([]string, 0, len(r.data().invoices))
	for _, inv := range r.data().invoices {
		if inv.Number != nil {
			numbers = append(numbers, *inv.Number)
		}
	}
	return maxWithPrefix(numbers, prefix), nil
}

func (r *InvoiceRepo) ListDueReminders(_ context.Context, day time.Time) ([]*entity.Invoice, error) {
	defer r.lock()()
	out := make([]*entity.Invoice, 0)
	for _, inv := range r.data().invoices {
		if inv.Status != entity.InvoiceStatusValidated || !inv.Remaining.IsPositive() || inv.NextReminderDate == nil {
			continue
		}
		if inv.NextReminderDate.After(day) {
			continue
		}
		inv := inv
		out = append(out, &inv)
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(*out[i].NextReminderDate, *out[j].NextReminderDate, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *InvoiceRepo) AddLine(_ context.Context, l *entity.InvoiceLine) error {
	defer r.lock()()
	r.data().invoiceLines[l.ID] = *l
	return nil
}

func (r *InvoiceRepo) GetLine(_ context.Context, id string) (*entity.InvoiceLine, error) {
	defer r.lock()()
	l, ok := r.data().invoiceLines[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *InvoiceRepo) UpdateLine(_ context.Context, l *entity.InvoiceLine) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.invoiceLines[l.ID]; !ok {
		return domain.ErrNotFound
	}
	d.invoiceLines[l.ID] = *l
	return nil
}

func (r *InvoiceRepo) DeleteLine(_ context.Context, id string) error {
	defer r.lock()()
	delete(r.data().invoiceLines, id)
	return nil
}

func (r *InvoiceRepo) ListLines(_ context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	defer r.lock()()
	out := make([]*entity.InvoiceLine, 0)
	for _, l := range r.data().invoiceLines {
		if l.InvoiceID == invoiceID {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *InvoiceRepo) AddPayment(_ context.Context, p *entity.Payment) error {
	defer r.lock()()
	r.data().payments[p.ID] = *p
	return nil
}

func (r *InvoiceRepo) GetPayment(_ context.Context, id string) (*entity.Payment, error) {
	defer r.lock()()
	p, ok := r.data().payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *InvoiceRepo) DeletePayment(_ context.Context, id string) error {
	defer r.lock()()
	delete(r.data().payments, id)
	return nil
}

func (r *InvoiceRepo) ListPayments(_ context.Context, invoiceID string) ([]*entity.Payment, error) {
	defer r.lock()()
	out := make([]*entity.Payment, 0)
	for _, p := range r.data().payments {
		if p.InvoiceID == invoiceID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(out[i].Date, out[j].Date, out[i].ID, out[j].ID)
	})
	return out, nil
}

// AcceptanceRepo tokens, aceptaciones y contestaciones en memoria.
type AcceptanceRepo struct{ base }

func (r *AcceptanceRepo) CreateToken(_ context.Context, t *entity.AcceptanceToken) error {
	defer r.lock()()
	d := r.data()
	for _, existing := range d.tokens {
		if existing.TokenHash == t.TokenHash {
			return domain.ErrDuplicate
		}
	}
	d.tokens[t.ID] = *t
	return nil
}

func (r *AcceptanceRepo) GetTokenByHash(_ context.Context, hash string) (*entity.AcceptanceToken, error) {
	defer r.lock()()
	for _, t := range r.data().tokens {
		if t.TokenHash == hash {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (r *AcceptanceRepo) GetTokenByHashForUpdate(ctx context.Context, hash string) (*entity.AcceptanceToken, error) {
	return r.GetTokenByHash(ctx, hash)
}

func (r *AcceptanceRepo) MarkTokenUsed(_ context.Context, id string, at time.Time) error {
	defer r.lock()()
	d := r.data()
	t, ok := d.tokens[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.UsedAt = &at
	d.tokens[id] = t
	return nil
}

func (r *AcceptanceRepo) CreateAcceptance(_ context.Context, a *entity.InvoiceAcceptance) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.acceptances[a.InvoiceID]; ok {
		return domain.ErrDuplicate
	}
	d.acceptances[a.InvoiceID] = *a
	return nil
}

func (r *AcceptanceRepo) GetAcceptance(_ context.Context, invoiceID string) (*entity.InvoiceAcceptance, error) {
	defer r.lock()()
	a, ok := r.data().acceptances[invoiceID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AcceptanceRepo) GetContestation(_ context.Context, invoiceID string) (*entity.InvoiceContestation, error) {
	defer r.lock()()
	c, ok := r.data().contestations[invoiceID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *AcceptanceRepo) SaveContestation(_ context.Context, c *entity.InvoiceContestation) error {
	defer r.lock()()
	r.data().contestations[c.InvoiceID] = *c
	return nil
}
