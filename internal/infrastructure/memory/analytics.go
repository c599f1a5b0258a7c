package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados del dashboard sobre el estado en memoria.
type AnalyticsRepo struct{ base }

// NewAnalyticsRepo construye el repositorio de analítica sobre el almacén.
func NewAnalyticsRepo(s *Store) *AnalyticsRepo {
	return &AnalyticsRepo{base{s: s}}
}

func countsAsRevenue(inv entity.Invoice) bool {
	for _, s := range repository.RevenueStatuses {
		if inv.Status == s {
			return true
		}
	}
	return false
}

func validatedBetween(inv entity.Invoice, from, to time.Time) bool {
	return inv.ValidatedAt != nil && !inv.ValidatedAt.Before(from) && !inv.ValidatedAt.After(to)
}

func (r *AnalyticsRepo) GetSalesMetrics(_ context.Context, from, to time.Time) (repository.SalesMetrics, error) {
	defer r.lock()()
	m := repository.SalesMetrics{Revenue: decimal.Zero}
	for _, inv := range r.data().invoices {
		if !countsAsRevenue(inv) || !validatedBetween(inv, from, to) {
			continue
		}
		m.Revenue = m.Revenue.Add(inv.TotalWithTax)
		m.Invoices++
	}
	return m, nil
}

func (r *AnalyticsRepo) GetTopProducts(_ context.Context, from, to time.Time, limit int) ([]repository.ProductSales, error) {
	defer r.lock()()
	d := r.data()
	agg := map[string]*repository.ProductSales{}
	for _, l := range d.invoiceLines {
		inv, ok := d.invoices[l.InvoiceID]
		if !ok || !countsAsRevenue(inv) || !validatedBetween(inv, from, to) {
			continue
		}
		ps, ok := agg[l.ProductID]
		if !ok {
			ps = &repository.ProductSales{
				ProductID:    l.ProductID,
				ProductName:  d.products[l.ProductID].Name,
				QuantitySold: decimal.Zero,
				TotalRevenue: decimal.Zero,
			}
			agg[l.ProductID] = ps
		}
		ps.QuantitySold = ps.QuantitySold.Add(l.Qty)
		ps.TotalRevenue = ps.TotalRevenue.Add(l.LineTotal)
	}
	out := make([]repository.ProductSales, 0, len(agg))
	for _, ps := range agg {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalRevenue.Equal(out[j].TotalRevenue) {
			return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AnalyticsRepo) GetUnpaid(_ context.Context) (repository.SalesMetrics, error) {
	defer r.lock()()
	m := repository.SalesMetrics{Revenue: decimal.Zero}
	for _, inv := range r.data().invoices {
		if !countsAsRevenue(inv) || !inv.Remaining.IsPositive() {
			continue
		}
		m.Revenue = m.Revenue.Add(inv.Remaining)
		m.Invoices++
	}
	return m, nil
}

func (r *AnalyticsRepo) CountDueReminders(_ context.Context, day time.Time) (int, error) {
	defer r.lock()()
	n := 0
	for _, inv := range r.data().invoices {
		if inv.Status != entity.InvoiceStatusValidated || !inv.Remaining.IsPositive() || inv.NextReminderDate == nil {
			continue
		}
		if !inv.NextReminderDate.After(day) {
			n++
		}
	}
	return n, nil
}
