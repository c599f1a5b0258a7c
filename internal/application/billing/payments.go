package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/domain"
	rules "github.com/jhoicas/gsa-backend/internal/domain/billing"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// PaymentInput pago recibido de un cliente.
type PaymentInput struct {
	Amount decimal.Decimal
	Mode   string
	Date   time.Time
}

// AddPayment registra un pago y recalcula pagado, restante y próximo recordatorio en la misma tx.
func (uc *InvoiceUseCase) AddPayment(ctx context.Context, invoiceID string, in PaymentInput, actor audit.Actor) (*entity.Payment, *entity.Invoice, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, domain.ErrInvalidAmount
	}
	if !entity.ValidPaymentMode(in.Mode) {
		return nil, nil, domain.ErrInvalidInput
	}
	var pay *entity.Payment
	var inv *entity.Invoice
	err := uc.txRunner.Run(ctx, "invoice.add_payment", func(ctx context.Context, r repository.Repositories) error {
		var err error
		inv, err = r.Invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := rules.CheckPayable(inv.Status); err != nil {
			return err
		}
		now := uc.now()
		date := in.Date
		if date.IsZero() {
			date = dateOnly(now)
		}
		pay = &entity.Payment{
			ID:        uuid.New().String(),
			InvoiceID: invoiceID,
			Amount:    in.Amount.Round(2),
			Mode:      in.Mode,
			Date:      date,
			CreatedAt: now,
		}
		if err := r.Invoices.AddPayment(ctx, pay); err != nil {
			return err
		}
		inv.UpdatedAt = now
		if err := recompute(ctx, r, inv); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: pay,
			Action: entity.AuditCreatePayment,
			After:  pay,
			Reason: "Paiement facture " + inv.NumberOrDraft(),
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return pay, inv, nil
}

// RemovePayment elimina un pago y recalcula la factura.
func (uc *InvoiceUseCase) RemovePayment(ctx context.Context, paymentID string, actor audit.Actor) (*entity.Invoice, error) {
	var inv *entity.Invoice
	err := uc.txRunner.Run(ctx, "invoice.remove_payment", func(ctx context.Context, r repository.Repositories) error {
		pay, err := r.Invoices.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if pay == nil {
			return domain.ErrNotFound
		}
		inv, err = r.Invoices.GetForUpdate(ctx, pay.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := r.Invoices.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		inv.UpdatedAt = uc.now()
		if err := recompute(ctx, r, inv); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: pay,
			Action: entity.AuditDeletePayment,
			Before: pay,
			Reason: "Paiement facture " + inv.NumberOrDraft(),
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// PostponeReminder aplaza el próximo recordatorio days días (7 por defecto).
func (uc *InvoiceUseCase) PostponeReminder(ctx context.Context, id string, days int, actor audit.Actor) (*entity.Invoice, error) {
	var inv *entity.Invoice
	err := uc.txRunner.Run(ctx, "invoice.postpone_reminder", func(ctx context.Context, r repository.Repositories) error {
		var err error
		inv, err = r.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.Status != entity.InvoiceStatusValidated || inv.Remaining.IsZero() {
			return domain.ErrNothingToRemind
		}
		before := *inv
		next := rules.PostponedReminder(inv.NextReminderDate, uc.now(), days)
		inv.NextReminderDate = &next
		inv.UpdatedAt = uc.now()
		if err := r.Invoices.Update(ctx, inv); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: inv,
			Action: entity.AuditPostponeReminder,
			Before: before,
			After:  inv,
			Reason: "Relance reportée au " + next.Format("2006-01-02"),
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// SendReminders registra un recordatorio por cada factura vencida a la fecha today.
// El envío real (correo) queda fuera; la fecha del próximo recordatorio no se mueve.
func (uc *InvoiceUseCase) SendReminders(ctx context.Context, today time.Time) (int, error) {
	due, err := uc.repos.Invoices.ListDueReminders(ctx, dateOnly(today))
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, candidate := range due {
		err := uc.txRunner.Run(ctx, "invoice.reminder", func(ctx context.Context, r repository.Repositories) error {
			inv, err := r.Invoices.GetForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if inv == nil || !rules.ReminderDue(inv, today) {
				return nil
			}
			reason := "Relance automatique facture " + inv.NumberOrDraft() + " - Reste: " + inv.Remaining.StringFixed(2) + " €"
			audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
				Target: inv,
				Action: entity.AuditReminderSent,
				Reason: reason,
				Actor:  audit.System,
			})
			uc.log.Info().Str("invoice_id", inv.ID).Str("numero", inv.NumberOrDraft()).Str("reste", inv.Remaining.StringFixed(2)).Msg("recordatorio de pago")
			sent++
			return nil
		})
		if err != nil {
			uc.log.Error().Err(err).Str("invoice_id", candidate.ID).Msg("recordatorio fallido")
		}
	}
	return sent, nil
}
