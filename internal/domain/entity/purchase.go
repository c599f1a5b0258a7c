package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de compra.
const (
	PurchaseStatusDraft     = "DRAFT"
	PurchaseStatusValidated = "VALIDATED"
)

// Purchase compra a proveedor. Los totales no se guardan: ver PurchaseTotals.
type Purchase struct {
	ID           string
	SupplierID   string
	PurchaseDate time.Time
	Reference    string // ACHAT-YYYY-NNNNNN
	Status       string
	CreatedBy    *string
	ValidatedAt  *time.Time
	ValidatedBy  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Purchase) AuditKind() string { return "purchase" }
func (p *Purchase) AuditID() string   { return p.ID }

// PurchaseLine línea de compra, única por (compra, producto).
type PurchaseLine struct {
	ID         string
	PurchaseID string
	ProductID  string
	Qty        int
	UnitPrice  decimal.Decimal
	CreatedAt  time.Time
}

// PurchaseTotals totales derivados en cada lectura.
type PurchaseTotals struct {
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
}

// ComputePurchaseTotals calcula total = Σ qty×precio, pagado = Σ montos, resto = total − pagado.
func ComputePurchaseTotals(lines []*PurchaseLine, payments []*PurchasePayment) PurchaseTotals {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	total = total.Round(2)
	paid = paid.Round(2)
	return PurchaseTotals{Total: total, Paid: paid, Remaining: total.Sub(paid)}
}
