package billing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/application/inventory"
	"github.com/jhoicas/gsa-backend/internal/application/ports"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de PDF y almacenamiento
// ──────────────────────────────────────────────────────────────────────────────

type stubRenderer struct {
	mu   sync.Mutex
	fail bool
}

func (s *stubRenderer) RenderInvoice(_ context.Context, doc ports.InvoiceDocument) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("renderer caído")
	}
	return []byte("%PDF-1.4 " + doc.Invoice.NumberOrDraft() + " " + doc.Invoice.TotalWithTax.StringFixed(2)), nil
}

func (s *stubRenderer) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

type memDocs struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memDocs) Put(_ context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files["mem://"+key] = append([]byte(nil), data...)
	return "mem://" + key, nil
}

func (m *memDocs) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[path]
	if !ok {
		return nil, errors.New("no existe " + path)
	}
	return b, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

var clock = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	invoices   *InvoiceUseCase
	acceptance *AcceptanceUseCase
	repos      repository.Repositories
	renderer   *stubRenderer
	docs       *memDocs
	ctx        context.Context
	actor      audit.Actor
}

// newFixture: cliente "cli" con precio negociado de Flag a 1.80; "otro" sin precios propios.
// Precios base: flag 2.00 (BEER), bissap 1.50 (JUICE). "sinprecio" no tiene precio.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	repos := st.Repositories()
	tx := memory.NewTxRunner(st)
	f := &fixture{
		repos:    repos,
		renderer: &stubRenderer{},
		docs:     &memDocs{files: map[string][]byte{}},
		ctx:      context.Background(),
		actor:    audit.Actor{UserID: "u-com", IP: "10.0.0.1"},
	}
	docService := NewDocumentService(repos, f.renderer, f.docs, zerolog.Nop())
	f.invoices = NewInvoiceUseCase(tx, repos, docService, zerolog.Nop())
	f.invoices.now = func() time.Time { return clock }
	f.acceptance = NewAcceptanceUseCase(tx, repos, docService, 0, "https://gsa.example/", zerolog.Nop())
	f.acceptance.now = func() time.Time { return clock }

	ctx := f.ctx
	require.NoError(t, repos.Clients.Create(ctx, &entity.Client{ID: "cli", Company: "Chez Fatou", Active: true}))
	require.NoError(t, repos.Clients.Create(ctx, &entity.Client{ID: "otro", LastName: "Diop", FirstName: "Awa", Active: true}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "flag", Name: "Flag 65cl", Category: entity.CategoryBeer, SaleUnit: entity.SaleUnitBottle, Active: true}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "bissap", Name: "Bissap 1L", Category: entity.CategoryJuice, SaleUnit: entity.SaleUnitBottle, Active: true}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "sinprecio", Name: "Muestra", Category: entity.CategoryJuice, Active: true}))
	require.NoError(t, repos.Prices.SetBasePrice(ctx, &entity.BasePrice{ProductID: "flag", Price: dec("2.00")}))
	require.NoError(t, repos.Prices.SetBasePrice(ctx, &entity.BasePrice{ProductID: "bissap", Price: dec("1.50")}))
	require.NoError(t, repos.Prices.CreateClientPrice(ctx, &entity.ClientPrice{ID: "cp1", ClientID: "cli", ProductID: "flag", Price: dec("1.80")}))
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) receive(t *testing.T, productID string, qty int) {
	t.Helper()
	_, err := inventory.Record(f.ctx, f.repos.Movements, inventory.MovementInput{
		ProductID: productID,
		QtySigned: qty,
		Type:      entity.MovementReception,
		Reference: "CONT-TEST",
	}, clock.Add(-time.Hour))
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	n, err := f.repos.Movements.SumByProduct(f.ctx, productID)
	require.NoError(t, err)
	return n
}

// draft crea un borrador para clientID con una línea por par producto/cantidad.
func (f *fixture) draft(t *testing.T, clientID string, lines ...string) *entity.Invoice {
	t.Helper()
	inv, err := f.invoices.Create(f.ctx, clientID, entity.InvoiceTypeDelivery, true, f.actor)
	require.NoError(t, err)
	for i := 0; i+1 < len(lines); i += 2 {
		_, err := f.invoices.AddLine(f.ctx, inv.ID, lines[i], dec(lines[i+1]))
		require.NoError(t, err)
	}
	return inv
}

func (f *fixture) invoice(t *testing.T, id string) *entity.Invoice {
	t.Helper()
	inv, err := f.repos.Invoices.GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, inv)
	return inv
}

func (f *fixture) validated(t *testing.T, clientID string, lines ...string) *entity.Invoice {
	t.Helper()
	inv := f.draft(t, clientID, lines...)
	res, err := f.invoices.Validate(f.ctx, inv.ID, f.actor)
	require.NoError(t, err)
	return res.Invoice
}

func (f *fixture) movements(t *testing.T, refPrefix string) []*entity.StockMovement {
	t.Helper()
	all, err := f.repos.Movements.List(f.ctx, repository.MovementFilter{})
	require.NoError(t, err)
	out := make([]*entity.StockMovement, 0)
	for _, m := range all {
		if strings.HasPrefix(m.Reference, refPrefix) {
			out = append(out, m)
		}
	}
	return out
}

func (f *fixture) auditActions(t *testing.T, entityID string) []string {
	t.Helper()
	logs, err := f.repos.Audit.List(f.ctx, repository.AuditFilter{EntityID: entityID})
	require.NoError(t, err)
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}
