package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// KPIs del día y del mes en curso, saldo pendiente de clientes y Top-5 productos del mes.
type DashboardSummaryDTO struct {
	TodaySales       decimal.Decimal `json:"today_sales"`   // TTC facturado hoy
	MonthlySales     decimal.Decimal `json:"monthly_sales"` // TTC facturado en el mes
	MonthlyInvoices  int             `json:"monthly_invoices"`
	TotalUnpaid      decimal.Decimal `json:"total_unpaid"`
	UnpaidInvoices   int             `json:"unpaid_invoices"`
	LowStockProducts int             `json:"low_stock_products"`
	PendingReminders int             `json:"pending_reminders"`
	TopProducts      []TopProductDTO `json:"top_products"`
	DateLabel        string          `json:"date_label"` // ej: "2026-03"
}

// TopProductDTO producto más vendido del mes.
type TopProductDTO struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"` // HT
}

// StockValueDTO valor del stock (stock × precio base) a una fecha.
type StockValueDTO struct {
	Date       string              `json:"date"`
	TotalValue decimal.Decimal     `json:"total_value"`
	Details    []StockValueLineDTO `json:"stock_details"`
}

// StockValueLineDTO detalle por producto con stock positivo.
type StockValueLineDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	Value       decimal.Decimal `json:"value"`
}
