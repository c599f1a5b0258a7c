package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newDashboard(t *testing.T) (*DashboardUseCase, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	uc := NewDashboardUseCase(memory.NewAnalyticsRepo(st), st.Repositories())
	uc.now = func() time.Time { return now }
	return uc, st
}

func addInvoice(t *testing.T, st *memory.Store, id, status string, validatedAt time.Time, ttc, remaining string, lines ...entity.InvoiceLine) {
	t.Helper()
	ctx := context.Background()
	repos := st.Repositories()
	inv := &entity.Invoice{
		ID:           id,
		ClientID:     "cli",
		Status:       status,
		TotalWithTax: dec(ttc),
		Remaining:    dec(remaining),
		CreatedAt:    validatedAt,
	}
	if status != entity.InvoiceStatusDraft {
		va := validatedAt
		inv.ValidatedAt = &va
		next := va.AddDate(0, 0, 30)
		inv.NextReminderDate = &next
	}
	require.NoError(t, repos.Invoices.Create(ctx, inv))
	for i := range lines {
		l := lines[i]
		l.InvoiceID = id
		require.NoError(t, repos.Invoices.AddLine(ctx, &l))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Resumen
// ──────────────────────────────────────────────────────────────────────────────

func TestGetSummary_CuentaSoloFacturasValidadasOAceptadas(t *testing.T) {
	uc, st := newDashboard(t)
	ctx := context.Background()
	repos := st.Repositories()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "flag", Name: "Flag 65cl", Active: true, ReorderThreshold: 50}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "bissap", Name: "Bissap 1L", Active: true, ReorderThreshold: 50}))
	require.NoError(t, repos.Movements.Append(ctx, &entity.StockMovement{ID: "m1", ProductID: "flag", QtySigned: 10, Type: entity.MovementReception, CreatedAt: now}))

	addInvoice(t, st, "hoy", entity.InvoiceStatusValidated, now, "120.00", "20.00",
		entity.InvoiceLine{ID: "l1", ProductID: "flag", Qty: dec("50"), LineTotal: dec("100.00")})
	addInvoice(t, st, "mes", entity.InvoiceStatusAccepted, now.AddDate(0, 0, -10), "60.00", "0",
		entity.InvoiceLine{ID: "l2", ProductID: "bissap", Qty: dec("40"), LineTotal: dec("50.00")})
	addInvoice(t, st, "anulada", entity.InvoiceStatusCancelled, now, "999.00", "0")
	addInvoice(t, st, "viejo", entity.InvoiceStatusValidated, now.AddDate(0, -2, 0), "30.00", "30.00")

	sum, err := uc.GetSummary(ctx)
	require.NoError(t, err)

	assert.True(t, sum.TodaySales.Equal(dec("120")))
	assert.True(t, sum.MonthlySales.Equal(dec("180")))
	assert.Equal(t, 2, sum.MonthlyInvoices)
	assert.True(t, sum.TotalUnpaid.Equal(dec("50")))
	assert.Equal(t, 2, sum.UnpaidInvoices)
	assert.Equal(t, 1, sum.LowStockProducts, "flag con 10 unidades; bissap en 0 no es stock bajo")
	assert.Equal(t, 1, sum.PendingReminders, "solo la factura de hace dos meses tiene recordatorio vencido")
	require.Len(t, sum.TopProducts, 2)
	assert.Equal(t, "flag", sum.TopProducts[0].ProductID)
	assert.Equal(t, "Flag 65cl", sum.TopProducts[0].ProductName)
	assert.Equal(t, "2026-03", sum.DateLabel)
}

// ──────────────────────────────────────────────────────────────────────────────
// Valor del stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStockValue_StockPorPrecioBaseALaFecha(t *testing.T) {
	uc, st := newDashboard(t)
	ctx := context.Background()
	repos := st.Repositories()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "flag", Name: "Flag 65cl", Active: true}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "sinprecio", Name: "Sin precio", Active: true}))
	require.NoError(t, repos.Prices.SetBasePrice(ctx, &entity.BasePrice{ProductID: "flag", Price: dec("2.00")}))

	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day5 := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Movements.Append(ctx, &entity.StockMovement{ID: "a", ProductID: "flag", QtySigned: 100, Type: entity.MovementReception, CreatedAt: day1}))
	require.NoError(t, repos.Movements.Append(ctx, &entity.StockMovement{ID: "b", ProductID: "flag", QtySigned: -40, Type: entity.MovementSale, CreatedAt: day5}))
	require.NoError(t, repos.Movements.Append(ctx, &entity.StockMovement{ID: "c", ProductID: "sinprecio", QtySigned: 7, Type: entity.MovementReception, CreatedAt: day1}))

	v, err := uc.StockValue(ctx, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", v.Date)
	assert.True(t, v.TotalValue.Equal(dec("200")))
	require.Len(t, v.Details, 1)
	assert.Equal(t, 100, v.Details[0].Stock)

	v, err = uc.StockValue(ctx, day5)
	require.NoError(t, err)
	assert.True(t, v.TotalValue.Equal(dec("120")))
}
