package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	ClientID    string `json:"client_id" validate:"required"`
	Type        string `json:"type" validate:"omitempty,oneof=DELIVERY PICKUP"`
	TaxIncluded *bool  `json:"tax_included"`
}

// InvoiceLineRequest línea de factura; el precio lo resuelve el servidor.
type InvoiceLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Qty       decimal.Decimal `json:"qty"`
}

// UpdateInvoiceLineRequest solo la cantidad es modificable.
type UpdateInvoiceLineRequest struct {
	Qty decimal.Decimal `json:"qty"`
}

// InvoicePaymentRequest pago de cliente.
type InvoicePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Mode   string          `json:"mode" validate:"required,oneof=CASH TRANSFER CARD CHEQUE"`
	Date   string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// PostponeReminderRequest días a aplazar (7 por defecto).
type PostponeReminderRequest struct {
	Days int `json:"days" validate:"min=0,max=365"`
}

// ResolveContestationRequest cierre de una contestación.
type ResolveContestationRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=VALIDATED ACCEPTED CANCELLED"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// ContestRequest contestación del cliente (enlace público) o registrada por el personal.
type ContestRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=2000"`
	Name   string `json:"name" validate:"max=200"`
	Email  string `json:"email" validate:"omitempty,email"`
}

// AcceptRequest aceptación desde el enlace público. accept debe ser true.
type AcceptRequest struct {
	Accept       bool   `json:"accept" validate:"eq=true"`
	AcceptedName string `json:"accepted_name" validate:"max=200"`
}

// IssueTokenRequest vigencia opcional del enlace en horas.
type IssueTokenRequest struct {
	TTLHours int `json:"ttl_hours" validate:"min=0,max=2160"`
}

// IssueTokenResponse enlace emitido. El token bruto solo se devuelve aquí.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
	URL       string    `json:"url"`
}

// InvoiceLineResponse línea de factura.
type InvoiceLineResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name,omitempty"`
	Qty              decimal.Decimal `json:"qty"`
	UnitPriceApplied decimal.Decimal `json:"unit_price_applied"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// PaymentResponse pago de cliente.
type PaymentResponse struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Mode   string          `json:"mode"`
	Date   string          `json:"date"`
}

// AcceptanceResponse constancia de aceptación.
type AcceptanceResponse struct {
	AcceptedAt   time.Time `json:"accepted_at"`
	AcceptedName *string   `json:"accepted_name,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	PDFHash      string    `json:"pdf_hash,omitempty"`
	TextVersion  string    `json:"text_version,omitempty"`
}

// ContestationResponse contestación y su resolución.
type ContestationResponse struct {
	ContestedAt     time.Time  `json:"contested_at"`
	ContestedName   *string    `json:"contested_name,omitempty"`
	ContestedEmail  *string    `json:"contested_email,omitempty"`
	Reason          string     `json:"reason"`
	Resolved        bool       `json:"resolved"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty"`
}

// InvoiceResponse factura con detalle.
type InvoiceResponse struct {
	ID               string                `json:"id"`
	Number           string                `json:"number"`
	ClientID         string                `json:"client_id"`
	ClientName       string                `json:"client_name,omitempty"`
	Type             string                `json:"type"`
	Status           string                `json:"status"`
	TaxIncluded      bool                  `json:"tax_included"`
	Total            decimal.Decimal       `json:"total"`
	TaxJuice         decimal.Decimal       `json:"tax_juice"`
	TaxBeer          decimal.Decimal       `json:"tax_beer"`
	TotalWithTax     decimal.Decimal       `json:"total_with_tax"`
	Paid             decimal.Decimal       `json:"paid"`
	Remaining        decimal.Decimal       `json:"remaining"`
	NextReminderDate *string               `json:"next_reminder_date,omitempty"`
	HasPDF           bool                  `json:"has_pdf"`
	ValidatedAt      *time.Time            `json:"validated_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	Lines            []InvoiceLineResponse `json:"lines,omitempty"`
	Payments         []PaymentResponse     `json:"payments,omitempty"`
	Acceptance       *AcceptanceResponse   `json:"acceptance,omitempty"`
	Contestation     *ContestationResponse `json:"contestation,omitempty"`
	Warnings         []string              `json:"warnings,omitempty"`
}

// InvoiceListResponse lista paginada de facturas (sin detalle).
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// PublicInvoiceResponse resumen visible con el enlace de aceptación.
type PublicInvoiceResponse struct {
	InvoiceNumber  string                `json:"invoice_number"`
	ClientName     string                `json:"client_name"`
	Total          decimal.Decimal       `json:"total"`
	TotalHT        decimal.Decimal       `json:"total_ht"`
	TaxJuice       decimal.Decimal       `json:"tax_juice"`
	TaxBeer        decimal.Decimal       `json:"tax_beer"`
	Paid           decimal.Decimal       `json:"paid"`
	Remaining      decimal.Decimal       `json:"remaining"`
	Status         string                `json:"status"`
	Accepted       bool                  `json:"accepted"`
	AcceptedAt     *time.Time            `json:"accepted_at,omitempty"`
	AcceptedName   *string               `json:"accepted_name,omitempty"`
	ExpiresAt      time.Time             `json:"expires_at"`
	PDFDownloadURL string                `json:"pdf_download_url"`
	Lines          []InvoiceLineResponse `json:"invoice_lines"`
}
