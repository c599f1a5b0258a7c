// Package billing implementa el ciclo de vida de la factura: borrador, líneas con precio
// congelado, validación contra el ledger, anulación, avoirs, pagos, recordatorios y la
// aceptación/contestación por el cliente.
package billing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/application/inventory"
	"github.com/jhoicas/gsa-backend/internal/domain"
	rules "github.com/jhoicas/gsa-backend/internal/domain/billing"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	ledger "github.com/jhoicas/gsa-backend/internal/domain/inventory"
	"github.com/jhoicas/gsa-backend/internal/domain/numbering"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// InvoiceUseCase casos de uso de facturas.
type InvoiceUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	docs     *DocumentService
	log      zerolog.Logger
	now      func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. docs genera los PDF después de cada commit.
func NewInvoiceUseCase(
	txRunner repository.TxRunner,
	repos repository.Repositories,
	docs *DocumentService,
	log zerolog.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{txRunner: txRunner, repos: repos, docs: docs, log: log, now: time.Now}
}

// View factura con su detalle.
type View struct {
	Invoice      *entity.Invoice
	Client       *entity.Client
	Lines        []*entity.InvoiceLine
	Products     map[string]*entity.Product
	Payments     []*entity.Payment
	Acceptance   *entity.InvoiceAcceptance
	Contestation *entity.InvoiceContestation
}

// IssueResult factura emitida más avisos no fatales (PDF que no pudo generarse).
type IssueResult struct {
	Invoice  *entity.Invoice
	Warnings []string
}

// Create abre una factura en DRAFT para el cliente.
func (uc *InvoiceUseCase) Create(ctx context.Context, clientID, invoiceType string, taxIncluded bool, actor audit.Actor) (*entity.Invoice, error) {
	if invoiceType == "" {
		invoiceType = entity.InvoiceTypeDelivery
	}
	if clientID == "" || !entity.ValidInvoiceType(invoiceType) {
		return nil, domain.ErrInvalidInput
	}
	var inv *entity.Invoice
	err := uc.txRunner.Run(ctx, "invoice.create", func(ctx context.Context, r repository.Repositories) error {
		client, err := r.Clients.GetByID(ctx, clientID)
		if err != nil {
			return err
		}
		if client == nil {
			return domain.ErrNotFound
		}
		now := uc.now()
		inv = &entity.Invoice{
			ID:           uuid.New().String(),
			ClientID:     clientID,
			Type:         invoiceType,
			Status:       entity.InvoiceStatusDraft,
			TaxIncluded:  taxIncluded,
			TaxJuice:     decimal.Zero,
			TaxBeer:      decimal.Zero,
			Total:        decimal.Zero,
			TotalWithTax: decimal.Zero,
			Paid:         decimal.Zero,
			Remaining:    decimal.Zero,
			CreatedBy:    actor.UserRef(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: inv,
			Action: entity.AuditCreateInvoice,
			After:  inv,
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Get factura con cliente, líneas, pagos, aceptación y contestación.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*View, error) {
	inv, err := loadInvoice(ctx, uc.repos.Invoices, id)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, inv)
}

func (uc *InvoiceUseCase) view(ctx context.Context, inv *entity.Invoice) (*View, error) {
	v := &View{Invoice: inv}
	var err error
	if v.Client, err = uc.repos.Clients.GetByID(ctx, inv.ClientID); err != nil {
		return nil, err
	}
	if v.Lines, err = uc.repos.Invoices.ListLines(ctx, inv.ID); err != nil {
		return nil, err
	}
	if v.Products, err = uc.repos.Products.GetByIDs(ctx, productIDs(v.Lines)); err != nil {
		return nil, err
	}
	if v.Payments, err = uc.repos.Invoices.ListPayments(ctx, inv.ID); err != nil {
		return nil, err
	}
	if v.Acceptance, err = uc.repos.Acceptance.GetAcceptance(ctx, inv.ID); err != nil {
		return nil, err
	}
	if v.Contestation, err = uc.repos.Acceptance.GetContestation(ctx, inv.ID); err != nil {
		return nil, err
	}
	return v, nil
}

// List facturas según el filtro.
func (uc *InvoiceUseCase) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	return uc.repos.Invoices.List(ctx, f)
}

// recompute recalcula las columnas cacheadas desde líneas y pagos y guarda la factura.
// Es la única vía por la que cambian total, TVA, pagado y restante.
func recompute(ctx context.Context, r repository.Repositories, inv *entity.Invoice) error {
	lines, err := r.Invoices.ListLines(ctx, inv.ID)
	if err != nil {
		return err
	}
	payments, err := r.Invoices.ListPayments(ctx, inv.ID)
	if err != nil {
		return err
	}
	products, err := r.Products.GetByIDs(ctx, productIDs(lines))
	if err != nil {
		return err
	}
	categories := make(map[string]string, len(products))
	for id, p := range products {
		categories[id] = p.Category
	}
	settings, err := settingsOrDefault(ctx, r.Settings)
	if err != nil {
		return err
	}
	rules.CalculateTotals(lines, categories, payments, inv.TaxIncluded, rules.RatesFromSettings(settings)).Apply(inv)
	rules.UpdatePaymentStatus(inv)
	return r.Invoices.Update(ctx, inv)
}

// editableForUpdate bloquea la factura y exige que sus líneas sean modificables.
func editableForUpdate(ctx context.Context, r repository.Repositories, id string) (*entity.Invoice, error) {
	inv, err := r.Invoices.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if err := rules.CheckLinesEditable(inv.Status); err != nil {
		return nil, err
	}
	return inv, nil
}

// AddLine agrega un producto con el precio vigente para el cliente (foto del precio).
func (uc *InvoiceUseCase) AddLine(ctx context.Context, invoiceID, productID string, qty decimal.Decimal) (*entity.InvoiceLine, error) {
	if err := rules.CheckQty(qty); err != nil {
		return nil, err
	}
	var line *entity.InvoiceLine
	err := uc.txRunner.Run(ctx, "invoice.add_line", func(ctx context.Context, r repository.Repositories) error {
		inv, err := editableForUpdate(ctx, r, invoiceID)
		if err != nil {
			return err
		}
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		price, err := NewPriceResolver(r.Prices).Resolve(ctx, inv.ClientID, productID)
		if err != nil {
			return err
		}
		line = &entity.InvoiceLine{
			ID:               uuid.New().String(),
			InvoiceID:        invoiceID,
			ProductID:        productID,
			Qty:              qty,
			UnitPriceApplied: price,
			CreatedAt:        uc.now(),
		}
		line.ComputeLineTotal()
		if err := r.Invoices.AddLine(ctx, line); err != nil {
			return err
		}
		inv.UpdatedAt = uc.now()
		return recompute(ctx, r, inv)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateLine cambia la cantidad de una línea. El precio aplicado no cambia.
func (uc *InvoiceUseCase) UpdateLine(ctx context.Context, lineID string, qty decimal.Decimal) (*entity.InvoiceLine, error) {
	if err := rules.CheckQty(qty); err != nil {
		return nil, err
	}
	var line *entity.InvoiceLine
	err := uc.txRunner.Run(ctx, "invoice.update_line", func(ctx context.Context, r repository.Repositories) error {
		var err error
		line, err = r.Invoices.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		inv, err := editableForUpdate(ctx, r, line.InvoiceID)
		if err != nil {
			return err
		}
		line.Qty = qty
		line.ComputeLineTotal()
		if err := r.Invoices.UpdateLine(ctx, line); err != nil {
			return err
		}
		inv.UpdatedAt = uc.now()
		return recompute(ctx, r, inv)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteLine elimina una línea de un borrador.
func (uc *InvoiceUseCase) DeleteLine(ctx context.Context, lineID string) error {
	return uc.txRunner.Run(ctx, "invoice.delete_line", func(ctx context.Context, r repository.Repositories) error {
		line, err := r.Invoices.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		inv, err := editableForUpdate(ctx, r, line.InvoiceID)
		if err != nil {
			return err
		}
		if err := r.Invoices.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		inv.UpdatedAt = uc.now()
		return recompute(ctx, r, inv)
	})
}

// Validate emite la factura: verifica stock con los productos bloqueados, asigna número,
// descuenta el stock (SALE por línea) y recalcula totales, todo en una tx. El PDF se genera
// después del commit; si falla, la factura queda validada y se devuelve un aviso.
func (uc *InvoiceUseCase) Validate(ctx context.Context, id string, actor audit.Actor) (*IssueResult, error) {
	var inv *entity.Invoice
	err := uc.txRunner.Run(ctx, "invoice.validate", func(ctx context.Context, r repository.Repositories) error {
		var err error
		inv, err = r.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		lines, err := r.Invoices.ListLines(ctx, id)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyInvoice
		}
		if inv.Status != entity.InvoiceStatusDraft {
			return domain.ErrNotDraft
		}

		if err := checkStock(ctx, r, lines); err != nil {
			return err
		}

		now := uc.now()
		number, err := numbering.Allocate(ctx, r.Series, numbering.PrefixInvoice, now.Year(), r.Invoices.MaxNumber)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if _, err := inventory.Record(ctx, r.Movements, inventory.MovementInput{
				ProductID: l.ProductID,
				QtySigned: -entity.LedgerUnits(l.Qty),
				Type:      entity.MovementSale,
				Reference: "FACT-" + number,
				UserID:    actor.UserID,
			}, now); err != nil {
				return fmt.Errorf("venta de %s: %w", l.ProductID, err)
			}
		}

		before := *inv
		inv.Number = &number
		inv.Status = entity.InvoiceStatusValidated
		inv.ValidatedAt = &now
		inv.ValidatedBy = actor.UserRef()
		inv.UpdatedAt = now
		if err := recompute(ctx, r, inv); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: inv,
			Action: entity.AuditValidateInvoice,
			Before: before,
			After:  inv,
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("numero", *inv.Number).Str("total_ttc", inv.TotalWithTax.StringFixed(2)).Msg("factura validada")
	return &IssueResult{Invoice: inv, Warnings: uc.docs.IssueWithWarning(ctx, inv)}, nil
}

// checkStock bloquea los productos (orden por id) y compara el stock con las unidades pedidas.
func checkStock(ctx context.Context, r repository.Repositories, lines []*entity.InvoiceLine) error {
	requested := rules.UnitsByProduct(lines)
	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := r.Products.LockForStock(ctx, ids); err != nil {
		return err
	}
	available, err := r.Movements.SumByProducts(ctx, ids)
	if err != nil {
		return err
	}
	short := ledger.CheckAvailability(ids, requested, available)
	if short == nil {
		return nil
	}
	name := short.ProductID
	if p, err := r.Products.GetByID(ctx, short.ProductID); err == nil && p != nil {
		name = p.Name
	}
	return fmt.Errorf("%w: %s (disponible %d, solicitado %d)", domain.ErrInsufficientStock, name, short.Available, short.Requested)
}

// Cancel anula la factura. Si ya había sido emitida, repone el stock con un ADJUSTMENT +qty por línea.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, id string, actor audit.Actor) (*entity.Invoice, error) {
	var inv *entity.Invoice
	err := uc.txRunner.Run(ctx, "invoice.cancel", func(ctx context.Context, r repository.Repositories) error {
		var err error
		inv, err = r.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := rules.CheckCancellable(inv.Status); err != nil {
			return err
		}
		before := *inv
		if err := uc.cancelLocked(ctx, r, inv, actor); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: inv,
			Action: entity.AuditCancelInvoice,
			Before: before,
			After:  inv,
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("numero", inv.NumberOrDraft()).Msg("factura anulada")
	return inv, nil
}

// cancelLocked repone stock (si corresponde) y deja la factura en CANCELLED. Requiere la fila bloqueada.
func (uc *InvoiceUseCase) cancelLocked(ctx context.Context, r repository.Repositories, inv *entity.Invoice, actor audit.Actor) error {
	now := uc.now()
	if rules.CancelReversesStock(inv.Status) {
		lines, err := r.Invoices.ListLines(ctx, inv.ID)
		if err != nil {
			return err
		}
		number := inv.NumberOrDraft()
		for _, l := range lines {
			if _, err := inventory.Record(ctx, r.Movements, inventory.MovementInput{
				ProductID: l.ProductID,
				QtySigned: entity.LedgerUnits(l.Qty),
				Type:      entity.MovementAdjustment,
				Reference: "ANNUL-" + number,
				Reason:    "Annulation facture " + number,
				UserID:    actor.UserID,
			}, now); err != nil {
				return fmt.Errorf("reposición de %s: %w", l.ProductID, err)
			}
		}
	}
	inv.Status = entity.InvoiceStatusCancelled
	inv.UpdatedAt = now
	return r.Invoices.Update(ctx, inv)
}

// CreateCreditNote crea un avoir que copia las líneas de una factura validada. No toca el ledger.
func (uc *InvoiceUseCase) CreateCreditNote(ctx context.Context, sourceID string, actor audit.Actor) (*IssueResult, error) {
	var note *entity.Invoice
	err := uc.txRunner.Run(ctx, "invoice.credit_note", func(ctx context.Context, r repository.Repositories) error {
		src, err := r.Invoices.GetForUpdate(ctx, sourceID)
		if err != nil {
			return err
		}
		if src == nil {
			return domain.ErrNotFound
		}
		if src.Status != entity.InvoiceStatusValidated {
			return domain.ErrNotValidated
		}
		lines, err := r.Invoices.ListLines(ctx, src.ID)
		if err != nil {
			return err
		}

		now := uc.now()
		number, err := numbering.Allocate(ctx, r.Series, numbering.PrefixInvoice, now.Year(), r.Invoices.MaxNumber)
		if err != nil {
			return err
		}
		note = &entity.Invoice{
			ID:          uuid.New().String(),
			ClientID:    src.ClientID,
			Number:      &number,
			Type:        src.Type,
			Status:      entity.InvoiceStatusCreditNote,
			TaxIncluded: src.TaxIncluded,
			CreatedBy:   actor.UserRef(),
			ValidatedAt: &now,
			ValidatedBy: actor.UserRef(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.Invoices.Create(ctx, note); err != nil {
			return err
		}
		for _, l := range lines {
			if err := r.Invoices.AddLine(ctx, &entity.InvoiceLine{
				ID:               uuid.New().String(),
				InvoiceID:        note.ID,
				ProductID:        l.ProductID,
				Qty:              l.Qty,
				UnitPriceApplied: l.UnitPriceApplied,
				LineTotal:        l.LineTotal,
				CreatedAt:        now,
			}); err != nil {
				return err
			}
		}
		if err := recompute(ctx, r, note); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: note,
			Action: entity.AuditCreateCreditNote,
			After:  note,
			Reason: "Avoir de la facture " + src.NumberOrDraft(),
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", note.ID).Str("numero", *note.Number).Str("source_id", sourceID).Msg("avoir creado")
	return &IssueResult{Invoice: note, Warnings: uc.docs.IssueWithWarning(ctx, note)}, nil
}

// PDF devuelve el PDF de la factura, generándolo si aún no existe.
func (uc *InvoiceUseCase) PDF(ctx context.Context, id string) ([]byte, *entity.Invoice, error) {
	inv, err := loadInvoice(ctx, uc.repos.Invoices, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := uc.docs.Stored(ctx, inv)
	if err != nil {
		return nil, nil, err
	}
	return pdf, inv, nil
}
