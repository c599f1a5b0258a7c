package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gsa-backend/internal/application/ports"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// DocumentService genera y guarda el PDF de las facturas emitidas.
// Corre fuera de las transacciones de negocio: un fallo aquí nunca deshace una validación.
type DocumentService struct {
	repos    repository.Repositories
	renderer ports.InvoiceRenderer
	store    ports.DocumentStore
	log      zerolog.Logger
}

// NewDocumentService construye el servicio inyectando renderer y almacenamiento.
func NewDocumentService(
	repos repository.Repositories,
	renderer ports.InvoiceRenderer,
	store ports.DocumentStore,
	log zerolog.Logger,
) *DocumentService {
	return &DocumentService{repos: repos, renderer: renderer, store: store, log: log}
}

// Filename nombre de descarga del PDF.
func Filename(inv *entity.Invoice) string {
	return fmt.Sprintf("facture_%s.pdf", inv.NumberOrDraft())
}

// Render reúne los datos de la factura y produce el PDF.
func (s *DocumentService) Render(ctx context.Context, inv *entity.Invoice) ([]byte, error) {
	settings, err := settingsOrDefault(ctx, s.repos.Settings)
	if err != nil {
		return nil, err
	}
	client, err := s.repos.Clients.GetByID(ctx, inv.ClientID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if client == nil {
		client = &entity.Client{ID: inv.ClientID}
	}
	lines, err := s.repos.Invoices.ListLines(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener líneas: %w", err)
	}
	payments, err := s.repos.Invoices.ListPayments(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener pagos: %w", err)
	}
	products, err := s.repos.Products.GetByIDs(ctx, productIDs(lines))
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener productos: %w", err)
	}

	docLines := make([]ports.DocumentLine, 0, len(lines))
	for _, l := range lines {
		dl := ports.DocumentLine{
			ProductName: "Produit " + l.ProductID,
			Qty:         l.Qty,
			UnitPrice:   l.UnitPriceApplied,
			LineTotal:   l.LineTotal,
		}
		if p := products[l.ProductID]; p != nil {
			dl.ProductName = p.Name
			dl.SaleUnit = p.SaleUnit
			dl.Category = p.Category
		}
		docLines = append(docLines, dl)
	}

	pdf, err := s.renderer.RenderInvoice(ctx, ports.InvoiceDocument{
		Company:  settings,
		Client:   client,
		Invoice:  inv,
		Lines:    docLines,
		Payments: payments,
	})
	if err != nil {
		return nil, fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, nil
}

// Issue renderiza, guarda y registra pdf_path. Devuelve los bytes guardados.
func (s *DocumentService) Issue(ctx context.Context, inv *entity.Invoice) ([]byte, error) {
	pdf, err := s.Render(ctx, inv)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%d/%s", inv.CreatedAt.Year(), Filename(inv))
	if inv.ValidatedAt != nil {
		key = fmt.Sprintf("%d/%s", inv.ValidatedAt.Year(), Filename(inv))
	}
	path, err := s.store.Put(ctx, key, pdf)
	if err != nil {
		return nil, fmt.Errorf("pdf: guardar: %w", err)
	}
	if err := s.repos.Invoices.SetPDFPath(ctx, inv.ID, path); err != nil {
		return nil, fmt.Errorf("pdf: registrar ruta: %w", err)
	}
	inv.PDFPath = path
	return pdf, nil
}

// IssueWithWarning igual que Issue pero convierte el error en un aviso para la respuesta.
func (s *DocumentService) IssueWithWarning(ctx context.Context, inv *entity.Invoice) []string {
	if _, err := s.Issue(ctx, inv); err != nil {
		s.log.Error().Err(err).Str("invoice_id", inv.ID).Str("numero", inv.NumberOrDraft()).Msg("no se pudo generar el PDF")
		return []string{"La factura fue registrada pero el PDF no pudo generarse: " + err.Error()}
	}
	return nil
}

// Stored devuelve el PDF guardado. Si falta (o no se puede leer) lo genera de nuevo; los
// borradores se renderizan sin guardarse.
func (s *DocumentService) Stored(ctx context.Context, inv *entity.Invoice) ([]byte, error) {
	if inv.PDFPath != "" {
		pdf, err := s.store.Get(ctx, inv.PDFPath)
		if err == nil && len(pdf) > 0 {
			return pdf, nil
		}
		s.log.Warn().Err(err).Str("invoice_id", inv.ID).Str("pdf_path", inv.PDFPath).Msg("PDF guardado no disponible, se regenera")
	}
	if inv.Status == entity.InvoiceStatusDraft {
		return s.Render(ctx, inv)
	}
	return s.Issue(ctx, inv)
}

func settingsOrDefault(ctx context.Context, repo repository.SettingsRepository) (entity.CompanySettings, error) {
	s, err := repo.Get(ctx)
	if err != nil {
		return entity.CompanySettings{}, err
	}
	if s == nil {
		return entity.DefaultCompanySettings(), nil
	}
	return *s, nil
}

func productIDs(lines []*entity.InvoiceLine) []string {
	seen := map[string]bool{}
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	return ids
}

func loadInvoice(ctx context.Context, repo repository.InvoiceRepository, id string) (*entity.Invoice, error) {
	inv, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
