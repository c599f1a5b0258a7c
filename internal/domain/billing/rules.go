package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// ReminderDelayDays días entre la validación y el primer recordatorio de pago.
const ReminderDelayDays = 30

// DefaultPostponeDays días por defecto al posponer un recordatorio.
const DefaultPostponeDays = 7

// NextReminderDate devuelve validated_at + 30 días (fecha) si queda saldo y la factura fue validada; si no, nil.
func NextReminderDate(remaining decimal.Decimal, validatedAt *time.Time) *time.Time {
	if !remaining.IsPositive() || validatedAt == nil {
		return nil
	}
	d := dateOf(validatedAt.AddDate(0, 0, ReminderDelayDays))
	return &d
}

// UpdatePaymentStatus aplica NextReminderDate sobre la factura. Un avoir no se cobra: nunca tiene recordatorio.
func UpdatePaymentStatus(inv *entity.Invoice) {
	if inv.Status == entity.InvoiceStatusCreditNote {
		inv.NextReminderDate = nil
		return
	}
	inv.NextReminderDate = NextReminderDate(inv.Remaining, inv.ValidatedAt)
}

// PostponedReminder suma days a la fecha actual de recordatorio, o a hoy si no hay ninguna.
func PostponedReminder(current *time.Time, today time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultPostponeDays
	}
	base := dateOf(today)
	if current != nil {
		base = dateOf(*current)
	}
	return base.AddDate(0, 0, days)
}

// ReminderDue indica si la factura debe recibir un recordatorio en la fecha today.
func ReminderDue(inv *entity.Invoice, today time.Time) bool {
	return inv.Status == entity.InvoiceStatusValidated &&
		inv.Remaining.IsPositive() &&
		inv.NextReminderDate != nil &&
		!dateOf(*inv.NextReminderDate).After(dateOf(today))
}

// CheckLinesEditable: solo un borrador admite cambios de líneas. ACCEPTED tiene su propio error.
func CheckLinesEditable(status string) error {
	switch status {
	case entity.InvoiceStatusDraft:
		return nil
	case entity.InvoiceStatusAccepted:
		return domain.ErrInvoiceAccepted
	default:
		return domain.ErrInvoiceLocked
	}
}

// CheckQty valida la cantidad de una línea de factura: mínimo 0.01 y como mucho 2 decimales.
func CheckQty(qty decimal.Decimal) error {
	if qty.LessThan(entity.MinInvoiceQty) || !qty.Equal(qty.Round(2)) {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// CheckCancellable: CANCELLED y CREDIT_NOTE son terminales.
func CheckCancellable(status string) error {
	if status == entity.InvoiceStatusCancelled || status == entity.InvoiceStatusCreditNote {
		return domain.ErrAlreadyTerminal
	}
	return nil
}

// CancelReversesStock indica si la anulación debe emitir movimientos compensatorios.
func CancelReversesStock(status string) bool {
	return status != entity.InvoiceStatusDraft
}

// CheckPayable: solo se registran pagos sobre facturas emitidas y vigentes. Borrador, anulada y avoir no se cobran.
func CheckPayable(status string) error {
	switch status {
	case entity.InvoiceStatusValidated, entity.InvoiceStatusAccepted, entity.InvoiceStatusContested:
		return nil
	}
	return domain.ErrInvoiceLocked
}

// ResolutionStatus normaliza el estado elegido al resolver una contestación.
func ResolutionStatus(s string) string {
	switch s {
	case entity.InvoiceStatusValidated, entity.InvoiceStatusAccepted, entity.InvoiceStatusCancelled:
		return s
	}
	return entity.InvoiceStatusValidated
}

// UnitsByProduct unidades de ledger por producto: suma de LedgerUnits de cada línea.
// Es la misma cantidad que descuentan los movimientos SALE de la validación.
func UnitsByProduct(lines []*entity.InvoiceLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, l := range lines {
		out[l.ProductID] += entity.LedgerUnits(l.Qty)
	}
	return out
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
