package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetSalesMetrics facturado TTC y número de facturas validadas en el período.
// COALESCE devuelve cero si el período no tiene ventas.
func (r *AnalyticsRepo) GetSalesMetrics(ctx context.Context, from, to time.Time) (repository.SalesMetrics, error) {
	const query = `
	SELECT
	    COALESCE(SUM(i.total_with_tax), 0) AS revenue,
	    COUNT(*)                           AS invoices
	FROM invoices i
	WHERE i.status = ANY($1)
	  AND i.validated_at BETWEEN $2 AND $3`

	var m repository.SalesMetrics
	if err := r.pool.QueryRow(ctx, query, repository.RevenueStatuses, from, to).Scan(&m.Revenue, &m.Invoices); err != nil {
		return m, fmt.Errorf("analytics.GetSalesMetrics: %w", err)
	}
	return m, nil
}

// GetTopProducts los limit productos con mayor total HT en el período.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.ProductSales, error) {
	const query = `
	SELECT
	    p.id                AS product_id,
	    p.name              AS product_name,
	    SUM(l.qty)          AS quantity_sold,
	    SUM(l.line_total)   AS total_revenue
	FROM invoice_lines l
	JOIN invoices i ON i.id = l.invoice_id
	JOIN products p ON p.id = l.product_id
	WHERE i.status = ANY($1)
	  AND i.validated_at BETWEEN $2 AND $3
	GROUP BY p.id, p.name
	ORDER BY total_revenue DESC, p.id
	LIMIT $4`

	rows, err := r.pool.Query(ctx, query, repository.RevenueStatuses, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	results := make([]repository.ProductSales, 0, limit)
	for rows.Next() {
		var item repository.ProductSales
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.QuantitySold, &item.TotalRevenue); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts rows: %w", err)
	}
	return results, nil
}

// GetUnpaid saldo pendiente de clientes.
func (r *AnalyticsRepo) GetUnpaid(ctx context.Context) (repository.SalesMetrics, error) {
	const query = `
	SELECT COALESCE(SUM(remaining), 0), COUNT(*)
	FROM invoices
	WHERE status = ANY($1) AND remaining > 0`

	var m repository.SalesMetrics
	if err := r.pool.QueryRow(ctx, query, repository.RevenueStatuses).Scan(&m.Revenue, &m.Invoices); err != nil {
		return m, fmt.Errorf("analytics.GetUnpaid: %w", err)
	}
	return m, nil
}

// CountDueReminders mismas condiciones que InvoiceRepo.ListDueReminders.
func (r *AnalyticsRepo) CountDueReminders(ctx context.Context, day time.Time) (int, error) {
	const query = `
	SELECT COUNT(*) FROM invoices
	WHERE status = $1 AND remaining > 0 AND next_reminder_date IS NOT NULL AND next_reminder_date <= $2`

	var n int
	if err := r.pool.QueryRow(ctx, query, entity.InvoiceStatusValidated, dateOnly(day)).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.CountDueReminders: %w", err)
	}
	return n, nil
}
