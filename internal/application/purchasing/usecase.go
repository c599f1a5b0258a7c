// Package purchasing implementa el flujo de compras a proveedor: borrador, líneas, validación
// (entrada al ledger) y pagos.
package purchasing

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
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/numbering"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// UseCase casos de uso de compras.
type UseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewUseCase(txRunner repository.TxRunner, repos repository.Repositories, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, repos: repos, log: log, now: time.Now}
}

// View compra con sus líneas, pagos y totales calculados.
type View struct {
	Purchase *entity.Purchase
	Lines    []*entity.PurchaseLine
	Payments []*entity.PurchasePayment
	Totals   entity.PurchaseTotals
}

// Create abre una compra en DRAFT con la siguiente referencia ACHAT-YYYY-NNNNNN.
func (uc *UseCase) Create(ctx context.Context, supplierID string, date time.Time, actor audit.Actor) (*entity.Purchase, error) {
	if supplierID == "" {
		return nil, domain.ErrInvalidInput
	}
	supplier, err := uc.repos.Clients.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	if date.IsZero() {
		date = now
	}

	var p *entity.Purchase
	err = uc.txRunner.Run(ctx, "purchase.create", func(ctx context.Context, r repository.Repositories) error {
		ref, err := numbering.Allocate(ctx, r.Series, numbering.PrefixPurchase, date.Year(), r.Purchases.MaxReference)
		if err != nil {
			return err
		}
		p = &entity.Purchase{
			ID:           uuid.New().String(),
			SupplierID:   supplierID,
			PurchaseDate: date,
			Reference:    ref,
			Status:       entity.PurchaseStatusDraft,
			CreatedBy:    actor.UserRef(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return r.Purchases.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get compra con detalle y totales.
func (uc *UseCase) Get(ctx context.Context, id string) (*View, error) {
	p, err := uc.repos.Purchases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return uc.view(ctx, uc.repos, p)
}

// List compras con sus totales.
func (uc *UseCase) List(ctx context.Context, f repository.PurchaseFilter) ([]*View, error) {
	purchases, err := uc.repos.Purchases.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*View, 0, len(purchases))
	for _, p := range purchases {
		v, err := uc.view(ctx, uc.repos, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (uc *UseCase) view(ctx context.Context, r repository.Repositories, p *entity.Purchase) (*View, error) {
	lines, err := r.Purchases.ListLines(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	payments, err := r.Purchases.ListPayments(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &View{Purchase: p, Lines: lines, Payments: payments, Totals: entity.ComputePurchaseTotals(lines, payments)}, nil
}

// LineInput cantidad y precio unitario de una línea de compra.
type LineInput struct {
	ProductID string
	Qty       int
	UnitPrice decimal.Decimal
}

func (in LineInput) check() error {
	if in.Qty < 1 || in.UnitPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// draftForUpdate bloquea la compra y exige que siga en borrador.
func draftForUpdate(ctx context.Context, r repository.Repositories, id string) (*entity.Purchase, error) {
	p, err := r.Purchases.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.Status != entity.PurchaseStatusDraft {
		return nil, domain.ErrPurchaseLocked
	}
	return p, nil
}

// AddLine agrega un producto a una compra en borrador. Un producto aparece una sola vez.
func (uc *UseCase) AddLine(ctx context.Context, purchaseID string, in LineInput) (*entity.PurchaseLine, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	var line *entity.PurchaseLine
	err := uc.txRunner.Run(ctx, "purchase.add_line", func(ctx context.Context, r repository.Repositories) error {
		if _, err := draftForUpdate(ctx, r, purchaseID); err != nil {
			return err
		}
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		line = &entity.PurchaseLine{
			ID:         uuid.New().String(),
			PurchaseID: purchaseID,
			ProductID:  in.ProductID,
			Qty:        in.Qty,
			UnitPrice:  in.UnitPrice,
			CreatedAt:  uc.now(),
		}
		return r.Purchases.AddLine(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateLine cambia cantidad y precio de una línea de una compra en borrador.
func (uc *UseCase) UpdateLine(ctx context.Context, lineID string, qty int, unitPrice decimal.Decimal) (*entity.PurchaseLine, error) {
	if err := (LineInput{Qty: qty, UnitPrice: unitPrice}).check(); err != nil {
		return nil, err
	}
	var line *entity.PurchaseLine
	err := uc.txRunner.Run(ctx, "purchase.update_line", func(ctx context.Context, r repository.Repositories) error {
		var err error
		line, err = r.Purchases.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		if _, err := draftForUpdate(ctx, r, line.PurchaseID); err != nil {
			return err
		}
		line.Qty = qty
		line.UnitPrice = unitPrice
		return r.Purchases.UpdateLine(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteLine elimina una línea de una compra en borrador.
func (uc *UseCase) DeleteLine(ctx context.Context, lineID string) error {
	return uc.txRunner.Run(ctx, "purchase.delete_line", func(ctx context.Context, r repository.Repositories) error {
		line, err := r.Purchases.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		if _, err := draftForUpdate(ctx, r, line.PurchaseID); err != nil {
			return err
		}
		return r.Purchases.DeleteLine(ctx, lineID)
	})
}

// Validate pasa la compra a VALIDATED y emite una RECEPTION +qty por línea, todo en una tx.
func (uc *UseCase) Validate(ctx context.Context, id string, actor audit.Actor) (*entity.Purchase, error) {
	var p *entity.Purchase
	var emitted int
	err := uc.txRunner.Run(ctx, "purchase.validate", func(ctx context.Context, r repository.Repositories) error {
		var err error
		p, err = r.Purchases.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.Status == entity.PurchaseStatusValidated {
			return domain.ErrAlreadyValidated
		}
		lines, err := r.Purchases.ListLines(ctx, id)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyPurchase
		}

		now := uc.now()
		before := *p
		for _, l := range lines {
			if _, err := inventory.Record(ctx, r.Movements, inventory.MovementInput{
				ProductID: l.ProductID,
				QtySigned: l.Qty,
				Type:      entity.MovementReception,
				Reference: "ACHAT-" + p.Reference,
				UserID:    actor.UserID,
			}, now); err != nil {
				return fmt.Errorf("recepción de %s: %w", l.ProductID, err)
			}
			emitted++
		}
		p.Status = entity.PurchaseStatusValidated
		p.ValidatedAt = &now
		p.ValidatedBy = actor.UserRef()
		p.UpdatedAt = now
		if err := r.Purchases.Update(ctx, p); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: p,
			Action: entity.AuditValidatePurchase,
			Before: before,
			After:  p,
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("purchase_id", p.ID).Str("reference", p.Reference).Int("movements", emitted).Msg("compra validada")
	return p, nil
}

// PaymentInput pago a proveedor.
type PaymentInput struct {
	Amount    decimal.Decimal
	Mode      string
	Date      time.Time
	Reference string
}

// AddPayment registra un pago sobre una compra. Los totales se recalculan en cada lectura.
func (uc *UseCase) AddPayment(ctx context.Context, purchaseID string, in PaymentInput, actor audit.Actor) (*entity.PurchasePayment, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if !entity.ValidPaymentMode(in.Mode) {
		return nil, domain.ErrInvalidInput
	}
	var pay *entity.PurchasePayment
	err := uc.txRunner.Run(ctx, "purchase.add_payment", func(ctx context.Context, r repository.Repositories) error {
		p, err := r.Purchases.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		now := uc.now()
		date := in.Date
		if date.IsZero() {
			date = now
		}
		pay = &entity.PurchasePayment{
			ID:         uuid.New().String(),
			PurchaseID: purchaseID,
			Amount:     in.Amount.Round(2),
			Mode:       in.Mode,
			Date:       date,
			Reference:  in.Reference,
			CreatedBy:  actor.UserRef(),
			CreatedAt:  now,
		}
		return r.Purchases.AddPayment(ctx, pay)
	})
	if err != nil {
		return nil, err
	}
	return pay, nil
}

// RemovePayment elimina un pago a proveedor.
func (uc *UseCase) RemovePayment(ctx context.Context, paymentID string) error {
	return uc.txRunner.Run(ctx, "purchase.remove_payment", func(ctx context.Context, r repository.Repositories) error {
		pay, err := r.Purchases.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if pay == nil {
			return domain.ErrNotFound
		}
		if _, err := r.Purchases.GetForUpdate(ctx, pay.PurchaseID); err != nil {
			return err
		}
		return r.Purchases.DeletePayment(ctx, paymentID)
	})
}

// SupplierDebt saldo pendiente con un proveedor sobre compras validadas.
type SupplierDebt struct {
	Supplier  *entity.Client
	Purchases []*View
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
}

// SupplierDebts agrupa por proveedor las compras validadas con saldo pendiente.
func (uc *UseCase) SupplierDebts(ctx context.Context) ([]*SupplierDebt, error) {
	views, err := uc.List(ctx, repository.PurchaseFilter{Status: entity.PurchaseStatusValidated})
	if err != nil {
		return nil, err
	}
	bySupplier := map[string]*SupplierDebt{}
	for _, v := range views {
		if !v.Totals.Remaining.IsPositive() {
			continue
		}
		d, ok := bySupplier[v.Purchase.SupplierID]
		if !ok {
			supplier, err := uc.repos.Clients.GetByID(ctx, v.Purchase.SupplierID)
			if err != nil {
				return nil, err
			}
			if supplier == nil {
				supplier = &entity.Client{ID: v.Purchase.SupplierID}
			}
			d = &SupplierDebt{Supplier: supplier, Total: decimal.Zero, Paid: decimal.Zero, Remaining: decimal.Zero}
			bySupplier[v.Purchase.SupplierID] = d
		}
		d.Purchases = append(d.Purchases, v)
		d.Total = d.Total.Add(v.Totals.Total)
		d.Paid = d.Paid.Add(v.Totals.Paid)
		d.Remaining = d.Remaining.Add(v.Totals.Remaining)
	}
	out := make([]*SupplierDebt, 0, len(bySupplier))
	for _, d := range bySupplier {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Remaining.GreaterThan(out[j].Remaining) })
	return out, nil
}
