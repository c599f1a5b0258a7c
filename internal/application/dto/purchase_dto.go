package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseRequest body para POST /api/purchases. purchase_date en formato YYYY-MM-DD.
type CreatePurchaseRequest struct {
	SupplierID   string `json:"supplier_id" validate:"required"`
	PurchaseDate string `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
}

// PurchaseLineRequest línea de compra.
type PurchaseLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Qty       int             `json:"qty" validate:"min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// UpdatePurchaseLineRequest cambio de cantidad y precio.
type UpdatePurchaseLineRequest struct {
	Qty       int             `json:"qty" validate:"min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PurchasePaymentRequest pago a proveedor.
type PurchasePaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode" validate:"required,oneof=CASH TRANSFER CARD CHEQUE"`
	Date      string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Reference string          `json:"reference" validate:"max=100"`
}

// PurchaseLineResponse línea de compra.
type PurchaseLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PurchasePaymentResponse pago a proveedor.
type PurchasePaymentResponse struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode"`
	Date      string          `json:"date"`
	Reference string          `json:"reference,omitempty"`
}

// PurchaseResponse compra con detalle y totales calculados.
type PurchaseResponse struct {
	ID           string                    `json:"id"`
	SupplierID   string                    `json:"supplier_id"`
	PurchaseDate string                    `json:"purchase_date"`
	Reference    string                    `json:"reference"`
	Status       string                    `json:"status"`
	Total        decimal.Decimal           `json:"total"`
	Paid         decimal.Decimal           `json:"paid"`
	Remaining    decimal.Decimal           `json:"remaining"`
	ValidatedAt  *time.Time                `json:"validated_at,omitempty"`
	Lines        []PurchaseLineResponse    `json:"lines"`
	Payments     []PurchasePaymentResponse `json:"payments"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// SupplierDebtResponse saldo pendiente con un proveedor.
type SupplierDebtResponse struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Purchases    int             `json:"purchases"`
	Total        decimal.Decimal `json:"total"`
	Paid         decimal.Decimal `json:"paid"`
	Remaining    decimal.Decimal `json:"remaining"`
}
