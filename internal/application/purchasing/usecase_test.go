package purchasing

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc    *UseCase
	repos repository.Repositories
	ctx   context.Context
	actor audit.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	repos := st.Repositories()
	f := &fixture{
		uc:    NewUseCase(memory.NewTxRunner(st), repos, zerolog.Nop()),
		repos: repos,
		ctx:   context.Background(),
		actor: audit.Actor{UserID: "u-log"},
	}
	f.uc.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	require.NoError(t, repos.Clients.Create(f.ctx, &entity.Client{ID: "sup", Company: "Brasseries du Sénégal", Active: true}))
	for _, id := range []string{"flag", "bissap"} {
		require.NoError(t, repos.Products.Create(f.ctx, &entity.Product{ID: id, Name: id, Category: entity.CategoryBeer, Active: true}))
	}
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	n, err := f.repos.Movements.SumByProduct(f.ctx, productID)
	require.NoError(t, err)
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_NumeraConsecutivoPorAnio(t *testing.T) {
	f := newFixture(t)
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p1, err := f.uc.Create(f.ctx, "sup", date, f.actor)
	require.NoError(t, err)
	p2, err := f.uc.Create(f.ctx, "sup", date, f.actor)
	require.NoError(t, err)

	assert.Equal(t, "ACHAT-2026-000001", p1.Reference)
	assert.Equal(t, "ACHAT-2026-000002", p2.Reference)
	assert.Equal(t, entity.PurchaseStatusDraft, p1.Status)
}

func TestCreate_ProveedorInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(f.ctx, "nadie", time.Time{}, f.actor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValidate_EmiteRecepcionPorLinea(t *testing.T) {
	f := newFixture(t)
	p, err := f.uc.Create(f.ctx, "sup", time.Time{}, f.actor)
	require.NoError(t, err)
	_, err = f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "flag", Qty: 120, UnitPrice: dec("0.90")})
	require.NoError(t, err)
	_, err = f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "bissap", Qty: 30, UnitPrice: dec("1.10")})
	require.NoError(t, err)

	validated, err := f.uc.Validate(f.ctx, p.ID, f.actor)
	require.NoError(t, err)

	assert.Equal(t, entity.PurchaseStatusValidated, validated.Status)
	require.NotNil(t, validated.ValidatedBy)
	assert.Equal(t, "u-log", *validated.ValidatedBy)
	assert.Equal(t, 120, f.stock(t, "flag"))
	assert.Equal(t, 30, f.stock(t, "bissap"))

	movs, err := f.repos.Movements.List(f.ctx, repository.MovementFilter{ProductID: "flag"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementReception, movs[0].Type)
	assert.Equal(t, "ACHAT-"+p.Reference, movs[0].Reference)

	logs, err := f.repos.Audit.List(f.ctx, repository.AuditFilter{EntityID: p.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditValidatePurchase, logs[0].Action)
}

func TestValidate_SinLineasNoEmiteNada(t *testing.T) {
	f := newFixture(t)
	p, err := f.uc.Create(f.ctx, "sup", time.Time{}, f.actor)
	require.NoError(t, err)

	_, err = f.uc.Validate(f.ctx, p.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrEmptyPurchase)

	got, err := f.uc.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusDraft, got.Purchase.Status)
}

func TestValidate_DosVeces(t *testing.T) {
	f := newFixture(t)
	p, _ := f.uc.Create(f.ctx, "sup", time.Time{}, f.actor)
	_, err := f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "flag", Qty: 10, UnitPrice: dec("1")})
	require.NoError(t, err)
	_, err = f.uc.Validate(f.ctx, p.ID, f.actor)
	require.NoError(t, err)

	_, err = f.uc.Validate(f.ctx, p.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrAlreadyValidated)
	assert.Equal(t, 10, f.stock(t, "flag"), "la segunda validación no emite movimientos")
}

func TestLineas_BloqueadasTrasValidar(t *testing.T) {
	f := newFixture(t)
	p, _ := f.uc.Create(f.ctx, "sup", time.Time{}, f.actor)
	line, err := f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "flag", Qty: 10, UnitPrice: dec("1")})
	require.NoError(t, err)
	_, err = f.uc.Validate(f.ctx, p.ID, f.actor)
	require.NoError(t, err)

	_, err = f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "bissap", Qty: 1, UnitPrice: dec("1")})
	assert.ErrorIs(t, err, domain.ErrPurchaseLocked)
	_, err = f.uc.UpdateLine(f.ctx, line.ID, 5, dec("1"))
	assert.ErrorIs(t, err, domain.ErrPurchaseLocked)
	assert.ErrorIs(t, f.uc.DeleteLine(f.ctx, line.ID), domain.ErrPurchaseLocked)
}

func TestAddLine_ProductoDuplicadoYCantidadInvalida(t *testing.T) {
	f := newFixture(t)
	p, _ := f.uc.Create(f.ctx, "sup", time.Time{}, f.actor)
	_, err := f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "flag", Qty: 10, UnitPrice: dec("1")})
	require.NoError(t, err)

	_, err = f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "flag", Qty: 3, UnitPrice: dec("1")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "bissap", Qty: 0, UnitPrice: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "bissap", Qty: 1, UnitPrice: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPagos_TotalesCalculadosEnLectura(t *testing.T) {
	f := newFixture(t)
	p, _ := f.uc.Create(f.ctx, "sup", time.Time{}, f.actor)
	_, err := f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "flag", Qty: 100, UnitPrice: dec("0.95")})
	require.NoError(t, err)

	pay, err := f.uc.AddPayment(f.ctx, p.ID, PaymentInput{Amount: dec("40"), Mode: entity.PaymentModeTransfer}, f.actor)
	require.NoError(t, err)

	v, err := f.uc.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, v.Totals.Total.Equal(dec("95")), "total %s", v.Totals.Total)
	assert.True(t, v.Totals.Remaining.Equal(dec("55")), "resto %s", v.Totals.Remaining)

	require.NoError(t, f.uc.RemovePayment(f.ctx, pay.ID))
	v, err = f.uc.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, v.Totals.Remaining.Equal(dec("95")))

	_, err = f.uc.AddPayment(f.ctx, p.ID, PaymentInput{Amount: dec("0"), Mode: entity.PaymentModeCash}, f.actor)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.uc.AddPayment(f.ctx, p.ID, PaymentInput{Amount: dec("1"), Mode: "BITCOIN"}, f.actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSupplierDebts_SoloValidadasConSaldo(t *testing.T) {
	f := newFixture(t)
	draft, _ := f.uc.Create(f.ctx, "sup", time.Time{}, f.actor)
	_, err := f.uc.AddLine(f.ctx, draft.ID, LineInput{ProductID: "flag", Qty: 10, UnitPrice: dec("1")})
	require.NoError(t, err)

	p, _ := f.uc.Create(f.ctx, "sup", time.Time{}, f.actor)
	_, err = f.uc.AddLine(f.ctx, p.ID, LineInput{ProductID: "flag", Qty: 10, UnitPrice: dec("2")})
	require.NoError(t, err)
	_, err = f.uc.Validate(f.ctx, p.ID, f.actor)
	require.NoError(t, err)
	_, err = f.uc.AddPayment(f.ctx, p.ID, PaymentInput{Amount: dec("5"), Mode: entity.PaymentModeCash}, f.actor)
	require.NoError(t, err)

	debts, err := f.uc.SupplierDebts(f.ctx)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, "sup", debts[0].Supplier.ID)
	assert.Len(t, debts[0].Purchases, 1)
	assert.True(t, debts[0].Remaining.Equal(dec("15")))
}
