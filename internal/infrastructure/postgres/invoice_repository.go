package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, client_id, number, type, status, tax_included, tax_juice, tax_beer, total, total_with_tax,
	paid, remaining, next_reminder_date, pdf_path, created_by, validated_at, validated_by, created_at, updated_at`

func scanInvoice(row interface{ Scan(...any) error }) (*entity.Invoice, error) {
	var i entity.Invoice
	err := row.Scan(&i.ID, &i.ClientID, &i.Number, &i.Type, &i.Status, &i.TaxIncluded, &i.TaxJuice, &i.TaxBeer,
		&i.Total, &i.TotalWithTax, &i.Paid, &i.Remaining, &i.NextReminderDate, &i.PDFPath, &i.CreatedBy,
		&i.ValidatedAt, &i.ValidatedBy, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func reminderArg(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dateOnly(*t)
	return &d
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, i *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		i.ID, i.ClientID, i.Number, i.Type, i.Status, i.TaxIncluded, i.TaxJuice, i.TaxBeer,
		i.Total, i.TotalWithTax, i.Paid, i.Remaining, reminderArg(i.NextReminderDate), i.PDFPath, i.CreatedBy,
		i.ValidatedAt, i.ValidatedBy, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) get(ctx context.Context, id, suffix string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`+suffix, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene la factura bloqueando su fila hasta el fin de la tx.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// Update guarda la cabecera completa.
func (r *InvoiceRepo) Update(ctx context.Context, i *entity.Invoice) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE invoices SET number = $2, type = $3, status = $4, tax_included = $5, tax_juice = $6, tax_beer = $7,
		       total = $8, total_with_tax = $9, paid = $10, remaining = $11, next_reminder_date = $12, pdf_path = $13,
		       validated_at = $14, validated_by = $15, updated_at = $16
		WHERE id = $1`,
		i.ID, i.Number, i.Type, i.Status, i.TaxIncluded, i.TaxJuice, i.TaxBeer,
		i.Total, i.TotalWithTax, i.Paid, i.Remaining, reminderArg(i.NextReminderDate), i.PDFPath,
		i.ValidatedAt, i.ValidatedBy, i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetPDFPath solo actualiza pdf_path.
func (r *InvoiceRepo) SetPDFPath(ctx context.Context, id, path string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE invoices SET pdf_path = $2 WHERE id = $1`, id, path)
	if err != nil {
		return fmt.Errorf("set invoice pdf path: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List facturas más recientes primero.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE ($1 = '' OR client_id = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR number ILIKE $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6`,
		f.ClientID, f.Status, f.Search, likeArg(f.Search), limitArg(f.Limit), f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// MaxNumber mayor número de factura con el prefijo dado.
func (r *InvoiceRepo) MaxNumber(ctx context.Context, prefix string) (string, error) {
	return maxWithPrefix(ctx, r.q, "invoices", "number", prefix)
}

// ListDueReminders facturas validadas con saldo y recordatorio vencido a day.
func (r *InvoiceRepo) ListDueReminders(ctx context.Context, day time.Time) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE status = $1 AND remaining > 0 AND next_reminder_date IS NOT NULL AND next_reminder_date <= $2
		ORDER BY next_reminder_date, id`,
		entity.InvoiceStatusValidated, dateOnly(day),
	)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// ── Líneas ───────────────────────────────────────────────────────────────────

const invoiceLineColumns = `id, invoice_id, product_id, qty, unit_price_applied, line_total, created_at`

func scanInvoiceLine(row interface{ Scan(...any) error }) (*entity.InvoiceLine, error) {
	var l entity.InvoiceLine
	if err := row.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.Qty, &l.UnitPriceApplied, &l.LineTotal, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *InvoiceRepo) AddLine(ctx context.Context, l *entity.InvoiceLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoice_lines (`+invoiceLineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.InvoiceID, l.ProductID, l.Qty, l.UnitPriceApplied, l.LineTotal, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetLine(ctx context.Context, id string) (*entity.InvoiceLine, error) {
	l, err := scanInvoiceLine(r.q.QueryRow(ctx, `SELECT `+invoiceLineColumns+` FROM invoice_lines WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice line: %w", err)
	}
	return l, nil
}

func (r *InvoiceRepo) UpdateLine(ctx context.Context, l *entity.InvoiceLine) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE invoice_lines SET qty = $2, unit_price_applied = $3, line_total = $4 WHERE id = $1`,
		l.ID, l.Qty, l.UnitPriceApplied, l.LineTotal)
	if err != nil {
		return fmt.Errorf("update invoice line: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) DeleteLine(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice line: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) ListLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceLineColumns+` FROM invoice_lines WHERE invoice_id = $1 ORDER BY created_at, id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InvoiceLine, 0)
	for rows.Next() {
		l, err := scanInvoiceLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// ── Pagos ────────────────────────────────────────────────────────────────────

func (r *InvoiceRepo) AddPayment(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, invoice_id, amount, mode, date, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.InvoiceID, p.Amount, p.Mode, dateOnly(p.Date), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetPayment(ctx context.Context, id string) (*entity.Payment, error) {
	var p entity.Payment
	err := r.q.QueryRow(ctx, `SELECT id, invoice_id, amount, mode, date, created_at FROM payments WHERE id = $1`, id).
		Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Mode, &p.Date, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (r *InvoiceRepo) DeletePayment(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) ListPayments(ctx context.Context, invoiceID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, amount, mode, date, created_at FROM payments
		WHERE invoice_id = $1 ORDER BY date, id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Payment, 0)
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Mode, &p.Date, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
