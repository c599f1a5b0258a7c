package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
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
	uc    *LedgerUseCase
	repos repository.Repositories
	ctx   context.Context
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	repos := st.Repositories()
	f := &fixture{
		uc:    NewLedgerUseCase(memory.NewTxRunner(st), repos.Movements, repos.Products, zerolog.Nop()),
		repos: repos,
		ctx:   context.Background(),
		clock: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.uc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) product(t *testing.T, id, name string, threshold int) {
	t.Helper()
	require.NoError(t, f.repos.Products.Create(f.ctx, &entity.Product{
		ID: id, Name: name, Category: entity.CategoryBeer, Active: true, ReorderThreshold: threshold,
	}))
}

func (f *fixture) receive(t *testing.T, productID string, qty int) {
	t.Helper()
	_, err := f.uc.Record(f.ctx, MovementInput{ProductID: productID, QtySigned: qty, Type: entity.MovementReception, Reference: "CONT-1"})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_SinRazonFalla(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "Gazelle 65cl", 0)

	_, err := f.uc.Adjust(f.ctx, AdjustInput{ProductID: "P", QtySigned: 5, Reason: "   "}, audit.Actor{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	stock, err := f.uc.CurrentStock(f.ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestAdjust_TipoInvalido(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "Gazelle 65cl", 0)

	_, err := f.uc.Adjust(f.ctx, AdjustInput{ProductID: "P", QtySigned: 5, Type: entity.MovementSale, Reason: "x"}, audit.Actor{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjust_ProductoInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Adjust(f.ctx, AdjustInput{ProductID: "nope", QtySigned: 5, Reason: "inventario"}, audit.Actor{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjust_ReferenciaPorDefectoYAuditoria(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "Gazelle 65cl", 0)
	f.receive(t, "P", 10)

	mov, err := f.uc.Adjust(f.ctx, AdjustInput{ProductID: "P", QtySigned: -2, Reason: "inventario físico"}, audit.Actor{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAdjustment, mov.Type)
	assert.Equal(t, "AJUST-Gazelle 65cl", mov.Reference)
	require.NotNil(t, mov.CreatedBy)
	assert.Equal(t, "u1", *mov.CreatedBy)

	stock, err := f.uc.CurrentStock(f.ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 8, stock)

	logs, err := f.repos.Audit.List(f.ctx, repository.AuditFilter{Action: entity.AuditStockAdjustment})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "inventario físico", logs[0].Reason)
	assert.Contains(t, string(logs[0].After), `"stock":8`)
}

func TestAdjust_RoturaSiempreResta(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "Gazelle 65cl", 0)
	f.receive(t, "P", 10)

	mov, err := f.uc.Adjust(f.ctx, AdjustInput{
		ProductID: "P", QtySigned: 3, Type: entity.MovementBreakage, Reason: "caja caída", Reference: "ROT-01",
	}, audit.Actor{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, -3, mov.QtySigned)
	assert.Equal(t, "ROT-01", mov.Reference)

	stock, err := f.uc.CurrentStock(f.ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 7, stock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock derivado
// ──────────────────────────────────────────────────────────────────────────────

func TestStockAt_IncluyeTodoElDia(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "Gazelle 65cl", 0)

	f.clock = time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	f.receive(t, "P", 10)
	f.clock = time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	f.receive(t, "P", 5)

	day1, err := f.uc.StockAt(f.ctx, "P", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 10, day1)

	before, err := f.uc.StockAt(f.ctx, "P", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, before)

	now, err := f.uc.CurrentStock(f.ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 15, now)
}

func TestStockReport_OrdenadoPorNombre(t *testing.T) {
	f := newFixture(t)
	f.product(t, "B", "Top Ananas", 0)
	f.product(t, "A", "Castel 65cl", 0)
	f.receive(t, "A", 100)

	levels, err := f.uc.StockReport(f.ctx, nil)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "Castel 65cl", levels[0].Product.Name)
	assert.Equal(t, 100, levels[0].Stock)
	assert.Equal(t, entity.DefaultReorderThreshold, levels[0].Threshold)
	assert.False(t, levels[0].Low)
	assert.Equal(t, 0, levels[1].Stock)
	assert.False(t, levels[1].Low, "stock cero es agotado, no bajo")
}

func TestLowStock_SoloPositivosBajoUmbral(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Castel 65cl", 10)
	f.product(t, "B", "Gazelle 65cl", 10)
	f.product(t, "C", "Flag 65cl", 0)
	f.product(t, "D", "Top Ananas", 10)
	f.receive(t, "A", 8)
	f.receive(t, "B", 3)
	f.receive(t, "C", 50)
	f.receive(t, "D", 40)

	low, err := f.uc.LowStock(f.ctx)
	require.NoError(t, err)
	require.Len(t, low, 3)
	assert.Equal(t, "B", low[0].Product.ID)
	assert.Equal(t, "A", low[1].Product.ID)
	assert.Equal(t, "C", low[2].Product.ID)
}

func TestEndOfDay(t *testing.T) {
	loc := time.FixedZone("WAT", 3600)
	eod := EndOfDay(time.Date(2026, 3, 10, 14, 5, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, int(time.Second-time.Nanosecond), loc), eod)
}
