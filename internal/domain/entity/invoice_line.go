package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinInvoiceQty cantidad mínima de una línea de factura.
var MinInvoiceQty = decimal.RequireFromString("0.01")

// InvoiceLine línea de factura. UnitPriceApplied es una foto del precio al crear la línea.
type InvoiceLine struct {
	ID               string
	InvoiceID        string
	ProductID        string
	Qty              decimal.Decimal
	UnitPriceApplied decimal.Decimal
	LineTotal        decimal.Decimal
	CreatedAt        time.Time
}

// ComputeLineTotal recalcula LineTotal = Qty × UnitPriceApplied (2 decimales).
func (l *InvoiceLine) ComputeLineTotal() {
	l.LineTotal = l.Qty.Mul(l.UnitPriceApplied).Round(2)
}

// LedgerUnits convierte una cantidad decimal de factura en unidades enteras del ledger.
// Se redondea hacia arriba para que la verificación de disponibilidad nunca subestime.
func LedgerUnits(qty decimal.Decimal) int {
	return int(qty.Ceil().IntPart())
}
