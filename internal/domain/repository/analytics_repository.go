package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// RevenueStatuses estados de factura que cuentan como facturado.
var RevenueStatuses = []string{entity.InvoiceStatusValidated, entity.InvoiceStatusAccepted}

// SalesMetrics facturado TTC y número de facturas en un período.
type SalesMetrics struct {
	Revenue  decimal.Decimal
	Invoices int
}

// ProductSales cantidad y total HT vendidos de un producto.
type ProductSales struct {
	ProductID    string
	ProductName  string
	QuantitySold decimal.Decimal
	TotalRevenue decimal.Decimal
}

// AnalyticsRepository consultas de solo lectura para el dashboard.
// Filtra por validated_at y por RevenueStatuses.
type AnalyticsRepository interface {
	GetSalesMetrics(ctx context.Context, from, to time.Time) (SalesMetrics, error)
	// GetTopProducts los limit productos con mayor total HT en el período.
	GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
	// GetUnpaid saldo pendiente total y número de facturas con saldo.
	GetUnpaid(ctx context.Context) (SalesMetrics, error)
	// CountDueReminders facturas con recordatorio vencido a day.
	CountDueReminders(ctx context.Context, day time.Time) (int, error)
}
