package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura.
const (
	InvoiceStatusDraft      = "DRAFT"
	InvoiceStatusValidated  = "VALIDATED"
	InvoiceStatusAccepted   = "ACCEPTED"
	InvoiceStatusContested  = "CONTESTED"
	InvoiceStatusCancelled  = "CANCELLED"
	InvoiceStatusCreditNote = "CREDIT_NOTE" // avoir
)

// Tipos de factura.
const (
	InvoiceTypeDelivery = "DELIVERY"
	InvoiceTypePickup   = "PICKUP"
)

// Invoice cabecera de factura. Total, TaxJuice, TaxBeer, TotalWithTax, Paid y Remaining
// son columnas cacheadas: solo las escribe billing.CalculateTotals a partir de líneas y pagos.
type Invoice struct {
	ID               string
	ClientID         string
	Number           *string // GSA-YYYY-NNNNNN, asignado en la validación
	Type             string
	Status           string
	TaxIncluded      bool
	TaxJuice         decimal.Decimal
	TaxBeer          decimal.Decimal
	Total            decimal.Decimal
	TotalWithTax     decimal.Decimal
	Paid             decimal.Decimal
	Remaining        decimal.Decimal
	NextReminderDate *time.Time
	PDFPath          string
	CreatedBy        *string
	ValidatedAt      *time.Time
	ValidatedBy      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (i *Invoice) AuditKind() string { return "invoice" }
func (i *Invoice) AuditID() string   { return i.ID }

// NumberOrDraft devuelve el número o una etiqueta de borrador.
func (i *Invoice) NumberOrDraft() string {
	if i.Number != nil && *i.Number != "" {
		return *i.Number
	}
	return "Borrador-" + i.ID
}

// ValidInvoiceType indica si t es DELIVERY o PICKUP.
func ValidInvoiceType(t string) bool {
	return t == InvoiceTypeDelivery || t == InvoiceTypePickup
}
