package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de pago (facturas y compras).
const (
	PaymentModeCash     = "CASH"
	PaymentModeTransfer = "TRANSFER"
	PaymentModeCard     = "CARD"
	PaymentModeCheque   = "CHEQUE"
)

// ValidPaymentMode indica si m es un modo de pago conocido.
func ValidPaymentMode(m string) bool {
	switch m {
	case PaymentModeCash, PaymentModeTransfer, PaymentModeCard, PaymentModeCheque:
		return true
	}
	return false
}

// Payment pago recibido sobre una factura.
type Payment struct {
	ID        string
	InvoiceID string
	Amount    decimal.Decimal
	Mode      string
	Date      time.Time
	CreatedAt time.Time
}

func (p *Payment) AuditKind() string { return "payment" }
func (p *Payment) AuditID() string   { return p.ID }

// PurchasePayment pago realizado a un proveedor sobre una compra.
type PurchasePayment struct {
	ID         string
	PurchaseID string
	Amount     decimal.Decimal
	Mode       string
	Date       time.Time
	Reference  string
	CreatedBy  *string
	CreatedAt  time.Time
}
