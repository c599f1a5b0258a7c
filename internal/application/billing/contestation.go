package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/domain"
	rules "github.com/jhoicas/gsa-backend/internal/domain/billing"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// ContestInput datos de la contestación enviada por el cliente (o cargada por el personal).
type ContestInput struct {
	Reason    string
	Name      string
	Email     string
	IP        string
	UserAgent string
}

// contestLocked registra la contestación de una factura ACCEPTED ya bloqueada y la pasa a CONTESTED.
func contestLocked(
	ctx context.Context,
	r repository.Repositories,
	inv *entity.Invoice,
	in ContestInput,
	actor audit.Actor,
	now time.Time,
	log zerolog.Logger,
) (*entity.InvoiceContestation, error) {
	if inv.Status != entity.InvoiceStatusAccepted {
		return nil, domain.ErrNotAccepted
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.ErrContestReasonRequired
	}
	existing, err := r.Acceptance.GetContestation(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Resolved {
		return nil, domain.ErrAlreadyContested
	}

	c := &entity.InvoiceContestation{
		ID:          uuid.New().String(),
		InvoiceID:   inv.ID,
		ContestedAt: now,
		Reason:      reason,
		IPAddress:   in.IP,
		UserAgent:   in.UserAgent,
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.ContestedName = &name
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		c.ContestedEmail = &email
	}
	if err := r.Acceptance.SaveContestation(ctx, c); err != nil {
		return nil, err
	}

	before := *inv
	inv.Status = entity.InvoiceStatusContested
	inv.UpdatedAt = now
	if err := r.Invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	audit.NewRecorder(r.Audit, log).Record(ctx, audit.Entry{
		Target: inv,
		Action: entity.AuditContestInvoice,
		Before: before,
		After:  inv,
		Reason: reason,
		Actor:  actor,
	})
	return c, nil
}

// ContestByStaff registra una contestación recibida fuera del enlace público (teléfono, correo).
func (uc *InvoiceUseCase) ContestByStaff(ctx context.Context, id string, in ContestInput, actor audit.Actor) (*entity.InvoiceContestation, error) {
	var c *entity.InvoiceContestation
	err := uc.txRunner.Run(ctx, "invoice.contest", func(ctx context.Context, r repository.Repositories) error {
		inv, err := r.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		c, err = contestLocked(ctx, r, inv, in, actor, uc.now(), uc.log)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ResolveContestation cierra la contestación. newStatus fuera de VALIDATED/ACCEPTED/CANCELLED
// se toma como VALIDATED; CANCELLED repone el stock igual que Cancel.
func (uc *InvoiceUseCase) ResolveContestation(ctx context.Context, id, newStatus, notes string, actor audit.Actor) (*entity.Invoice, error) {
	var inv *entity.Invoice
	err := uc.txRunner.Run(ctx, "invoice.resolve_contestation", func(ctx context.Context, r repository.Repositories) error {
		var err error
		inv, err = r.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.Status != entity.InvoiceStatusContested {
			return domain.ErrNotContested
		}
		c, err := r.Acceptance.GetContestation(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotContested
		}

		now := uc.now()
		c.Resolved = true
		c.ResolvedAt = &now
		c.ResolvedBy = actor.UserRef()
		if notes = strings.TrimSpace(notes); notes != "" {
			c.ResolutionNotes = &notes
		}
		if err := r.Acceptance.SaveContestation(ctx, c); err != nil {
			return err
		}

		before := *inv
		status := rules.ResolutionStatus(newStatus)
		if status == entity.InvoiceStatusCancelled {
			if err := uc.cancelLocked(ctx, r, inv, actor); err != nil {
				return err
			}
		} else {
			inv.Status = status
			inv.UpdatedAt = now
			if err := r.Invoices.Update(ctx, inv); err != nil {
				return err
			}
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: inv,
			Action: entity.AuditResolveContestation,
			Before: before,
			After:  inv,
			Reason: notes,
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("status", inv.Status).Msg("contestación resuelta")
	return inv, nil
}
