package billing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Borrador y líneas
// ──────────────────────────────────────────────────────────────────────────────

func TestAddLine_UsaPrecioNegociadoDelCliente(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "cli")

	line, err := f.invoices.AddLine(f.ctx, inv.ID, "flag", dec("100"))
	require.NoError(t, err)

	assert.True(t, dec("1.80").Equal(line.UnitPriceApplied))
	assert.True(t, dec("180.00").Equal(line.LineTotal))
	got := f.invoice(t, inv.ID)
	assert.True(t, dec("180.00").Equal(got.Total))
	assert.True(t, dec("36.00").Equal(got.TaxBeer))
	assert.True(t, dec("216.00").Equal(got.TotalWithTax))
	assert.Nil(t, got.NextReminderDate, "un borrador no tiene recordatorio")
}

func TestAddLine_SinPrecioNegociadoUsaPrecioBase(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "otro", "flag", "10", "bissap", "4")

	got := f.invoice(t, inv.ID)
	assert.True(t, dec("26.00").Equal(got.Total))
	assert.True(t, dec("4.00").Equal(got.TaxBeer))
	assert.True(t, dec("0.33").Equal(got.TaxJuice))
	assert.True(t, dec("30.33").Equal(got.TotalWithTax))
	assert.True(t, dec("30.33").Equal(got.Remaining))
}

func TestAddLine_ProductoSinPrecio(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "cli")
	_, err := f.invoices.AddLine(f.ctx, inv.ID, "sinprecio", dec("1"))
	assert.ErrorIs(t, err, domain.ErrNoPriceFound)
}

func TestAddLine_MasDeDosDecimalesSeRechaza(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "cli", "flag", "1")

	_, err := f.invoices.AddLine(f.ctx, inv.ID, "flag", dec("1.005"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.invoices.AddLine(f.ctx, inv.ID, "flag", dec("1.50"))
	require.NoError(t, err)

	lines, err := f.repos.Invoices.ListLines(f.ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.True(t, l.LineTotal.Equal(l.Qty.Mul(l.UnitPriceApplied).Round(2)))
	}
}

func TestAddLine_CantidadMinima(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "cli")
	_, err := f.invoices.AddLine(f.ctx, inv.ID, "flag", dec("0.001"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.invoices.AddLine(f.ctx, inv.ID, "flag", dec("0.01"))
	assert.NoError(t, err)
}

func TestUpdateLine_ConservaElPrecioCongelado(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "cli")
	line, err := f.invoices.AddLine(f.ctx, inv.ID, "flag", dec("10"))
	require.NoError(t, err)

	// El precio negociado cambia después de crear la línea.
	cp, err := f.repos.Prices.GetClientPriceByID(f.ctx, "cp1")
	require.NoError(t, err)
	cp.Price = dec("2.50")
	require.NoError(t, f.repos.Prices.UpdateClientPrice(f.ctx, cp))

	updated, err := f.invoices.UpdateLine(f.ctx, line.ID, dec("20"))
	require.NoError(t, err)
	assert.True(t, dec("1.80").Equal(updated.UnitPriceApplied))
	assert.True(t, dec("36.00").Equal(updated.LineTotal))
	assert.True(t, dec("36.00").Equal(f.invoice(t, inv.ID).Total))
}

func TestDeleteLine_RecalculaTotales(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "otro", "flag", "10", "bissap", "4")
	lines, err := f.repos.Invoices.ListLines(f.ctx, inv.ID)
	require.NoError(t, err)

	for _, l := range lines {
		if l.ProductID == "bissap" {
			require.NoError(t, f.invoices.DeleteLine(f.ctx, l.ID))
		}
	}
	got := f.invoice(t, inv.ID)
	assert.True(t, dec("20.00").Equal(got.Total))
	assert.True(t, got.TaxJuice.IsZero())
	assert.True(t, dec("24.00").Equal(got.TotalWithTax))
}

func TestRecalculo_EsIdempotente(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "otro", "flag", "10", "bissap", "4")
	first := f.invoice(t, inv.ID)

	require.NoError(t, f.invoices.txRunner.Run(f.ctx, "test.recompute", func(ctx context.Context, r repository.Repositories) error {
		locked, err := r.Invoices.GetForUpdate(ctx, inv.ID)
		if err != nil {
			return err
		}
		return recompute(ctx, r, locked)
	}))
	second := f.invoice(t, inv.ID)
	assert.True(t, first.TotalWithTax.Equal(second.TotalWithTax))
	assert.True(t, first.Remaining.Equal(second.Remaining))
	assert.True(t, first.TaxJuice.Equal(second.TaxJuice))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_CienCervezasA180(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 150)
	inv := f.draft(t, "cli", "flag", "100")

	res, err := f.invoices.Validate(f.ctx, inv.ID, f.actor)
	require.NoError(t, err)

	got := res.Invoice
	require.NotNil(t, got.Number)
	assert.Equal(t, "GSA-2026-000001", *got.Number)
	assert.Equal(t, entity.InvoiceStatusValidated, got.Status)
	assert.True(t, dec("216.00").Equal(got.TotalWithTax))
	assert.True(t, dec("216.00").Equal(got.Remaining))
	require.NotNil(t, got.NextReminderDate)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *got.NextReminderDate)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "mem://2026/facture_GSA-2026-000001.pdf", f.invoice(t, inv.ID).PDFPath)

	assert.Equal(t, 50, f.stock(t, "flag"))
	sales := f.movements(t, "FACT-GSA-2026-000001")
	require.Len(t, sales, 1)
	assert.Equal(t, -100, sales[0].QtySigned)
	assert.Equal(t, entity.MovementSale, sales[0].Type)
	assert.Contains(t, f.auditActions(t, inv.ID), entity.AuditValidateInvoice)
}

func TestValidate_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 5)
	inv := f.draft(t, "cli", "flag", "10")

	_, err := f.invoices.Validate(f.ctx, inv.ID, f.actor)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Flag 65cl")

	got := f.invoice(t, inv.ID)
	assert.Equal(t, entity.InvoiceStatusDraft, got.Status)
	assert.Nil(t, got.Number)
	assert.Equal(t, 5, f.stock(t, "flag"))
	assert.Empty(t, f.movements(t, "FACT-"))
}

func TestValidate_SumaLineasDelMismoProducto(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.draft(t, "cli", "flag", "6", "flag", "6")

	_, err := f.invoices.Validate(f.ctx, inv.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 10, f.stock(t, "flag"))
}

func TestValidate_CantidadFraccionariaRedondeaHaciaArriba(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	f.validated(t, "cli", "flag", "2.5")
	assert.Equal(t, 7, f.stock(t, "flag"))
}

func TestValidate_SinLineasYNoBorrador(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	empty := f.draft(t, "cli")
	_, err := f.invoices.Validate(f.ctx, empty.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrEmptyInvoice)

	inv := f.validated(t, "cli", "flag", "1")
	_, err = f.invoices.Validate(f.ctx, inv.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrNotDraft)
	assert.Equal(t, 9, f.stock(t, "flag"), "la segunda validación no descuenta nada")
}

func TestValidate_FalloDelPDFDevuelveAviso(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	f.renderer.setFail(true)
	inv := f.draft(t, "cli", "flag", "1")

	res, err := f.invoices.Validate(f.ctx, inv.ID, f.actor)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	got := f.invoice(t, inv.ID)
	assert.Equal(t, entity.InvoiceStatusValidated, got.Status)
	assert.Empty(t, got.PDFPath)

	// La descarga posterior genera y guarda el PDF que faltaba.
	f.renderer.setFail(false)
	pdf, _, err := f.invoices.PDF(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.NotEmpty(t, f.invoice(t, inv.ID).PDFPath)
}

func TestValidate_LineasBloqueadasDespuesDeEmitir(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.validated(t, "cli", "flag", "1")

	_, err := f.invoices.AddLine(f.ctx, inv.ID, "flag", dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvoiceLocked)

	tok, err := f.acceptance.Issue(f.ctx, inv.ID, 0, f.actor)
	require.NoError(t, err)
	_, err = f.acceptance.Accept(f.ctx, tok.Token, AcceptInput{IP: "1.2.3.4"})
	require.NoError(t, err)

	_, err = f.invoices.AddLine(f.ctx, inv.ID, "flag", dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvoiceAccepted)
	lines, err := f.repos.Invoices.ListLines(f.ctx, inv.ID)
	require.NoError(t, err)
	_, err = f.invoices.UpdateLine(f.ctx, lines[0].ID, dec("2"))
	assert.ErrorIs(t, err, domain.ErrInvoiceAccepted)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_ConcurrenteSoloUnaConStock(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	const n = 8
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.draft(t, "cli", "flag", "10").ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.invoices.Validate(f.ctx, ids[i], f.actor)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 0, f.stock(t, "flag"))
}

func TestValidate_NumeracionConcurrenteSinHuecos(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 1000)
	const n = 10
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.draft(t, "cli", "flag", "1").ID
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	numbers := make([]string, 0, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			res, err := f.invoices.Validate(f.ctx, id, f.actor)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers = append(numbers, *res.Invoice.Number)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	sort.Strings(numbers)
	require.Len(t, numbers, n)
	for i, num := range numbers {
		assert.Equal(t, fmt.Sprintf("GSA-2026-%06d", i+1), num)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación y avoir
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_ReponeElStock(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 120)
	f.receive(t, "bissap", 30)
	inv := f.validated(t, "cli", "flag", "100", "bissap", "20")
	require.Equal(t, 20, f.stock(t, "flag"))

	got, err := f.invoices.Cancel(f.ctx, inv.ID, f.actor)
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceStatusCancelled, got.Status)
	assert.Equal(t, 120, f.stock(t, "flag"))
	assert.Equal(t, 30, f.stock(t, "bissap"))
	reversals := f.movements(t, "ANNUL-GSA-2026-000001")
	require.Len(t, reversals, 2)
	for _, m := range reversals {
		assert.Equal(t, entity.MovementAdjustment, m.Type)
		assert.Equal(t, "Annulation facture GSA-2026-000001", m.Reason)
	}
	assert.Contains(t, f.auditActions(t, inv.ID), entity.AuditCancelInvoice)
}

func TestCancel_BorradorNoMueveStock(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.draft(t, "cli", "flag", "5")

	_, err := f.invoices.Cancel(f.ctx, inv.ID, f.actor)
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, "flag"))
	assert.Empty(t, f.movements(t, "ANNUL-"))

	_, err = f.invoices.Cancel(f.ctx, inv.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
}

func TestCreateCreditNote_CopiaLineasSinTocarStock(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 100)
	inv := f.validated(t, "cli", "flag", "100")

	res, err := f.invoices.CreateCreditNote(f.ctx, inv.ID, f.actor)
	require.NoError(t, err)
	note := res.Invoice
	assert.Equal(t, entity.InvoiceStatusCreditNote, note.Status)
	assert.Equal(t, "GSA-2026-000002", *note.Number)
	assert.True(t, inv.TotalWithTax.Equal(note.TotalWithTax))
	assert.NotNil(t, note.ValidatedAt)
	assert.Nil(t, note.NextReminderDate, "un avoir no genera recordatorio")
	assert.Equal(t, 0, f.stock(t, "flag"))

	lines, err := f.repos.Invoices.ListLines(f.ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, dec("1.80").Equal(lines[0].UnitPriceApplied))

	_, err = f.invoices.Cancel(f.ctx, note.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
}

func TestCreateCreditNote_SoloSobreValidada(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "cli", "flag", "1")
	_, err := f.invoices.CreateCreditNote(f.ctx, inv.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrNotValidated)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos y recordatorios
// ──────────────────────────────────────────────────────────────────────────────

func TestAddPayment_RecalculaRestante(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 100)
	inv := f.validated(t, "cli", "flag", "100")

	pay, got, err := f.invoices.AddPayment(f.ctx, inv.ID, PaymentInput{Amount: dec("100"), Mode: entity.PaymentModeCash}, f.actor)
	require.NoError(t, err)
	assert.True(t, dec("100.00").Equal(got.Paid))
	assert.True(t, dec("116.00").Equal(got.Remaining))
	assert.NotNil(t, got.NextReminderDate)

	_, got, err = f.invoices.AddPayment(f.ctx, inv.ID, PaymentInput{Amount: dec("116"), Mode: entity.PaymentModeTransfer}, f.actor)
	require.NoError(t, err)
	assert.True(t, got.Remaining.IsZero())
	assert.Nil(t, got.NextReminderDate, "sin saldo no hay recordatorio")

	got, err = f.invoices.RemovePayment(f.ctx, pay.ID, f.actor)
	require.NoError(t, err)
	assert.True(t, dec("100.00").Equal(got.Remaining))
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *got.NextReminderDate)
}

func TestAddPayment_Rechazos(t *testing.T) {
	f := newFixture(t)
	draft := f.draft(t, "cli", "flag", "1")

	_, _, err := f.invoices.AddPayment(f.ctx, draft.ID, PaymentInput{Amount: dec("1"), Mode: entity.PaymentModeCash}, f.actor)
	assert.ErrorIs(t, err, domain.ErrInvoiceLocked)
	_, _, err = f.invoices.AddPayment(f.ctx, draft.ID, PaymentInput{Amount: dec("0"), Mode: entity.PaymentModeCash}, f.actor)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, _, err = f.invoices.AddPayment(f.ctx, draft.ID, PaymentInput{Amount: dec("1"), Mode: "BITCOIN"}, f.actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddPayment_AvoirNoSeCobra(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.validated(t, "cli", "flag", "2")
	res, err := f.invoices.CreateCreditNote(f.ctx, inv.ID, f.actor)
	require.NoError(t, err)

	_, _, err = f.invoices.AddPayment(f.ctx, res.Invoice.ID, PaymentInput{Amount: dec("1"), Mode: entity.PaymentModeCash}, f.actor)
	assert.ErrorIs(t, err, domain.ErrInvoiceLocked)

	payments, err := f.repos.Invoices.ListPayments(f.ctx, res.Invoice.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestSendReminders_SoloFacturasVencidas(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 100)
	inv := f.validated(t, "cli", "flag", "10")
	paid := f.validated(t, "cli", "flag", "10")
	_, _, err := f.invoices.AddPayment(f.ctx, paid.ID, PaymentInput{Amount: paid.TotalWithTax, Mode: entity.PaymentModeCash}, f.actor)
	require.NoError(t, err)

	n, err := f.invoices.SendReminders(f.ctx, time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = f.invoices.SendReminders(f.ctx, time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, f.auditActions(t, inv.ID), entity.AuditReminderSent)
	assert.NotContains(t, f.auditActions(t, paid.ID), entity.AuditReminderSent)
}

func TestPostponeReminder(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 100)
	inv := f.validated(t, "cli", "flag", "10")

	got, err := f.invoices.PostponeReminder(f.ctx, inv.ID, 0, f.actor)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC), *got.NextReminderDate)

	n, err := f.invoices.SendReminders(f.ctx, time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	draft := f.draft(t, "cli", "flag", "1")
	_, err = f.invoices.PostponeReminder(f.ctx, draft.ID, 3, f.actor)
	assert.ErrorIs(t, err, domain.ErrNothingToRemind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Contestación
// ──────────────────────────────────────────────────────────────────────────────

func TestResolveContestation_AnularReponeStock(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 100)
	inv := f.validated(t, "cli", "flag", "40")

	_, err := f.invoices.ContestByStaff(f.ctx, inv.ID, ContestInput{Reason: "cajas rotas"}, f.actor)
	assert.ErrorIs(t, err, domain.ErrNotAccepted)

	tok, err := f.acceptance.Issue(f.ctx, inv.ID, 0, f.actor)
	require.NoError(t, err)
	_, err = f.acceptance.Accept(f.ctx, tok.Token, AcceptInput{Name: "Fatou"})
	require.NoError(t, err)

	_, err = f.invoices.ContestByStaff(f.ctx, inv.ID, ContestInput{Reason: "  "}, f.actor)
	assert.ErrorIs(t, err, domain.ErrContestReasonRequired)
	c, err := f.invoices.ContestByStaff(f.ctx, inv.ID, ContestInput{Reason: "cajas rotas", Email: "fatou@example.com"}, f.actor)
	require.NoError(t, err)
	assert.False(t, c.Resolved)
	assert.Equal(t, entity.InvoiceStatusContested, f.invoice(t, inv.ID).Status)

	got, err := f.invoices.ResolveContestation(f.ctx, inv.ID, entity.InvoiceStatusCancelled, "acuerdo con el cliente", f.actor)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, got.Status)
	assert.Equal(t, 100, f.stock(t, "flag"))

	resolved, err := f.repos.Acceptance.GetContestation(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	require.NotNil(t, resolved.ResolutionNotes)
	assert.Equal(t, "acuerdo con el cliente", *resolved.ResolutionNotes)

	_, err = f.invoices.ResolveContestation(f.ctx, inv.ID, entity.InvoiceStatusValidated, "", f.actor)
	assert.ErrorIs(t, err, domain.ErrNotContested)
}

func TestResolveContestation_EstadoDesconocidoVuelveAValidada(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.validated(t, "cli", "flag", "1")
	tok, err := f.acceptance.Issue(f.ctx, inv.ID, 0, f.actor)
	require.NoError(t, err)
	_, err = f.acceptance.Accept(f.ctx, tok.Token, AcceptInput{})
	require.NoError(t, err)
	_, err = f.acceptance.Contest(f.ctx, tok.Token, ContestInput{Reason: "precio"})
	require.NoError(t, err)

	got, err := f.invoices.ResolveContestation(f.ctx, inv.ID, "DRAFT", "", f.actor)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusValidated, got.Status)
	assert.Equal(t, 9, f.stock(t, "flag"))
}
