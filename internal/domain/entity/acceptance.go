package entity

import "time"

// AcceptanceTextVersion versión del texto legal mostrado al cliente al aceptar.
const AcceptanceTextVersion = "v1"

// InvoiceAcceptance registro único de la aceptación de una factura por el cliente.
type InvoiceAcceptance struct {
	ID           string
	InvoiceID    string
	AcceptedAt   time.Time
	IPAddress    string
	UserAgent    string
	PDFHash      string // sha256 hex del PDF servido
	TextVersion  string
	AcceptedName *string
}

// AcceptanceToken token de un solo uso; solo se guarda el hash sha256 del token bruto.
type AcceptanceToken struct {
	ID        string
	InvoiceID string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedBy *string
	CreatedAt time.Time
}

// Expired indica si el token ya venció en el instante now.
func (t *AcceptanceToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// InvoiceContestation disputa del cliente y su ciclo de resolución.
type InvoiceContestation struct {
	ID              string
	InvoiceID       string
	ContestedAt     time.Time
	ContestedName   *string
	ContestedEmail  *string
	Reason          string
	IPAddress       string
	UserAgent       string
	Resolved        bool
	ResolvedAt      *time.Time
	ResolvedBy      *string
	ResolutionNotes *string
}
