// Package pdf genera la factura imprimible (facture) de GSA con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón social + contacto  │  FACTURE N° + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: nombre / dirección / SIRET / TVA                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | Unidad | P.U. | Total              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: HT / TVA jus / TVA bière / TTC / Payé / Reste      │
//	│  PAGOS + mensaje + cuenta bancaria                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/application/ports"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 122, Green: 62, Blue: 18}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoRenderer implementa ports.InvoiceRenderer usando Maroto v2.
type MarotoRenderer struct{}

// NewMarotoRenderer construye el renderer.
func NewMarotoRenderer() *MarotoRenderer { return &MarotoRenderer{} }

var _ ports.InvoiceRenderer = (*MarotoRenderer)(nil)

// RenderInvoice genera el PDF y devuelve sus bytes.
func (r *MarotoRenderer) RenderInvoice(_ context.Context, doc ports.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil {
		return nil, fmt.Errorf("pdf: factura vacía")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Facture "+doc.Invoice.NumberOrDraft(), true).
		WithAuthor(doc.Company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc.Invoice, doc.Company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(doc.Client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(doc.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc.Invoice, doc.Company))

	if len(doc.Payments) > 0 {
		m.AddRows(paymentRows(doc.Payments)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(doc.Company)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y número + fecha + tipo (der).
func headerRow(inv *entity.Invoice, company entity.CompanySettings) core.Row {
	date := inv.CreatedAt
	if inv.ValidatedAt != nil {
		date = *inv.ValidatedAt
	}
	title := "FACTURE"
	switch inv.Status {
	case entity.InvoiceStatusCreditNote:
		title = "AVOIR"
	case entity.InvoiceStatusDraft:
		title = "FACTURE (BROUILLON)"
	}
	kind := "Livraison"
	if inv.Type == entity.InvoiceTypePickup {
		kind = "Enlèvement"
	}

	return row.New(22).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(joinNonEmpty(", ", company.Address, company.PostalCode+" "+company.City, company.Country), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
			text.New(joinNonEmpty("   |   ", company.Phone, company.Email, company.Website), props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.NumberOrDraft(), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date : "+date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
			text.New(kind, props.Text{
				Size: 8, Align: align.Right, Top: 18, Color: colorGray,
			}),
		),
	)
}

// clientRow: datos del cliente facturado.
func clientRow(c *entity.Client) core.Row {
	if c == nil {
		c = &entity.Client{}
	}
	return row.New(20).Add(
		col.New(12).Add(
			text.New("CLIENT", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(c.DisplayName(), "-"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(joinNonEmpty(", ", c.Address, strings.TrimSpace(c.PostalCode+" "+c.City), c.Country), props.Text{
				Size: 8, Top: 11, Color: colorGray,
			}),
			text.New(fmt.Sprintf("SIRET : %s   |   TVA : %s   |   Tél : %s",
				nonEmpty(c.Siret, "-"),
				nonEmpty(c.VATNumber, "-"),
				nonEmpty(c.Phone, "-"),
			), props.Text{Size: 8, Top: 15, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qté", 1, align.Center),
		h("Produit", 5, align.Left),
		h("Unité", 2, align.Center),
		h("P.U.", 2, align.Right),
		h("Total", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea.
func tableDetailRows(lines []ports.DocumentLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				l.Qty.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				l.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				nonEmpty(l.SaleUnit, "-"),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				formatMoney(l.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				formatMoney(l.LineTotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha; el TTC va resaltado.
func totalsRow(inv *entity.Invoice, company entity.CompanySettings) core.Row {
	htLabel := "Total HT :"
	if inv.TaxIncluded {
		htLabel = "Total (TVA incluse) :"
	}
	lines := []struct {
		label string
		value decimal.Decimal
		grand bool
	}{
		{htLabel, inv.Total, false},
		{fmt.Sprintf("TVA jus (%s%%) :", company.RateJuice.StringFixed(2)), inv.TaxJuice, false},
		{fmt.Sprintf("TVA bière (%s%%) :", company.RateBeer.StringFixed(2)), inv.TaxBeer, false},
		{"TOTAL TTC :", inv.TotalWithTax, true},
		{"Payé :", inv.Paid, false},
		{"Reste à payer :", inv.Remaining, false},
	}

	labels := col.New(4)
	values := col.New(3)
	for i, l := range lines {
		lp := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: float64(i) * 5}
		vp := props.Text{Size: 9, Align: align.Right, Right: 1, Top: float64(i) * 5}
		if l.grand {
			lp.Size, lp.Color = 10, colorPrimary
			vp.Size, vp.Color, vp.Style = 10, colorPrimary, fontstyle.Bold
		}
		labels.Add(text.New(l.label, lp))
		values.Add(text.New(formatMoney(l.value), vp))
	}

	return row.New(32).Add(
		col.New(4), // espacio izquierdo
		labels,
		values,
		col.New(1),
	)
}

// paymentRows: pagos recibidos, en orden de registro.
func paymentRows(payments []*entity.Payment) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("RÈGLEMENTS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	for _, p := range payments {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(p.Date.Format("02/01/2006"), props.Text{Size: 8, Left: 2})),
			col.New(3).Add(text.New(paymentModeLabel(p.Mode), props.Text{Size: 8})),
			col.New(3).Add(text.New(formatMoney(p.Amount), props.Text{Size: 8, Align: align.Right, Right: 1})),
			col.New(3),
		))
	}
	return rows
}

// footerRows: mensaje de la factura y datos bancarios.
func footerRows(company entity.CompanySettings) []core.Row {
	var rows []core.Row
	if company.InvoiceMessage != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New(company.InvoiceMessage, props.Text{
				Style: fontstyle.Italic, Size: 9, Align: align.Center, Color: colorPrimary, Top: 2,
			}),
		)))
	}
	if company.BankAccount != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Coordonnées bancaires : "+company.BankAccount, props.Text{
				Size: 7, Align: align.Center, Color: colorGray, Top: 1,
			}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func paymentModeLabel(mode string) string {
	switch mode {
	case entity.PaymentModeCash:
		return "Espèces"
	case entity.PaymentModeTransfer:
		return "Virement"
	case entity.PaymentModeCard:
		return "Carte"
	case entity.PaymentModeCheque:
		return "Chèque"
	}
	return mode
}

// formatMoney formatea con 2 decimales, espacio de miles y coma decimal.
// Ej: 1234.5 → "1 234,50 €"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac + " €"
	if neg {
		out = "-" + out
	}
	return out
}
