// Package billing contiene las reglas puras de facturación: totales con TVA por
// categoría, fecha de recordatorio y guardas de estado.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// TaxRates tasas de TVA en porcentaje (5.50 = 5,5 %).
type TaxRates struct {
	Juice decimal.Decimal
	Beer  decimal.Decimal
}

// RatesFromSettings extrae las tasas de la configuración de empresa.
func RatesFromSettings(s entity.CompanySettings) TaxRates {
	return TaxRates{Juice: s.RateJuice, Beer: s.RateBeer}
}

// Totals resultado de CalculateTotals.
type Totals struct {
	Total        decimal.Decimal
	TaxJuice     decimal.Decimal
	TaxBeer      decimal.Decimal
	TotalWithTax decimal.Decimal
	Paid         decimal.Decimal
	Remaining    decimal.Decimal
}

// CalculateTotals recalcula los totales desde cero a partir de líneas y pagos.
// categories mapea product_id -> categoría. Es idempotente: mismas entradas, mismas salidas.
func CalculateTotals(
	lines []*entity.InvoiceLine,
	categories map[string]string,
	payments []*entity.Payment,
	taxIncluded bool,
	rates TaxRates,
) Totals {
	total := decimal.Zero
	juice := decimal.Zero
	beer := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
		switch categories[l.ProductID] {
		case entity.CategoryJuice:
			juice = juice.Add(l.LineTotal)
		case entity.CategoryBeer:
			beer = beer.Add(l.LineTotal)
		}
	}

	t := Totals{Total: total.Round(2), TaxJuice: decimal.Zero, TaxBeer: decimal.Zero}
	if taxIncluded {
		t.TaxJuice = juice.Mul(rates.Juice).Div(hundred).Round(2)
		t.TaxBeer = beer.Mul(rates.Beer).Div(hundred).Round(2)
	}
	t.TotalWithTax = t.Total.Add(t.TaxJuice).Add(t.TaxBeer)

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	t.Paid = paid.Round(2)
	t.Remaining = t.TotalWithTax.Sub(t.Paid)
	return t
}

// Apply copia los totales en las columnas cacheadas de la factura.
func (t Totals) Apply(inv *entity.Invoice) {
	inv.Total = t.Total
	inv.TaxJuice = t.TaxJuice
	inv.TaxBeer = t.TaxBeer
	inv.TotalWithTax = t.TotalWithTax
	inv.Paid = t.Paid
	inv.Remaining = t.Remaining
}
