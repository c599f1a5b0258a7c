package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// InvoiceFilter criterios de listado de facturas.
type InvoiceFilter struct {
	ClientID string
	Status   string
	Search   string // sobre el número
	Limit    int
	Offset   int
}

// InvoiceRepository define el puerto de persistencia para Invoice, líneas y pagos.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetForUpdate bloquea la fila de la factura (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	// Update guarda estado, número, sellos, totales cacheados, recordatorio y pdf_path.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// SetPDFPath solo actualiza pdf_path (se llama después del commit de la validación).
	SetPDFPath(ctx context.Context, id, path string) error
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, error)
	// MaxNumber mayor número existente que empieza por prefix ("" si ninguno).
	MaxNumber(ctx context.Context, prefix string) (string, error)
	// ListDueReminders facturas VALIDATED con saldo y next_reminder_date <= day.
	ListDueReminders(ctx context.Context, day time.Time) ([]*entity.Invoice, error)

	AddLine(ctx context.Context, line *entity.InvoiceLine) error
	GetLine(ctx context.Context, id string) (*entity.InvoiceLine, error)
	UpdateLine(ctx context.Context, line *entity.InvoiceLine) error
	DeleteLine(ctx context.Context, id string) error
	ListLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error)

	AddPayment(ctx context.Context, payment *entity.Payment) error
	GetPayment(ctx context.Context, id string) (*entity.Payment, error)
	DeletePayment(ctx context.Context, id string) error
	ListPayments(ctx context.Context, invoiceID string) ([]*entity.Payment, error)
}

// AcceptanceRepository tokens de aceptación, aceptaciones y contestaciones.
type AcceptanceRepository interface {
	CreateToken(ctx context.Context, token *entity.AcceptanceToken) error
	GetTokenByHash(ctx context.Context, hash string) (*entity.AcceptanceToken, error)
	// GetTokenByHashForUpdate bloquea la fila del token.
	GetTokenByHashForUpdate(ctx context.Context, hash string) (*entity.AcceptanceToken, error)
	MarkTokenUsed(ctx context.Context, id string, at time.Time) error

	// CreateAcceptance devuelve domain.ErrDuplicate si la factura ya fue aceptada.
	CreateAcceptance(ctx context.Context, acceptance *entity.InvoiceAcceptance) error
	GetAcceptance(ctx context.Context, invoiceID string) (*entity.InvoiceAcceptance, error)

	GetContestation(ctx context.Context, invoiceID string) (*entity.InvoiceContestation, error)
	// SaveContestation inserta o reemplaza la contestación de la factura (una por factura).
	SaveContestation(ctx context.Context, c *entity.InvoiceContestation) error
}
