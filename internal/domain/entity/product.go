package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de producto. Solo se usan para enrutar la tasa de TVA.
const (
	CategoryBeer  = "BEER"
	CategoryJuice = "JUICE"
)

// Unidades de venta.
const (
	SaleUnitBottle = "BOTTLE"
	SaleUnitPack   = "PACK"
	SaleUnitCarton = "CARTON"
)

// DefaultReorderThreshold umbral de alerta de stock bajo cuando no se define otro.
const DefaultReorderThreshold = 50

// Product representa una referencia del catálogo de bebidas.
// El stock NO vive aquí: se deriva del ledger de movimientos.
type Product struct {
	ID               string
	Name             string
	SaleUnit         string
	Category         string
	Active           bool
	ReorderThreshold int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p *Product) AuditKind() string { return "product" }
func (p *Product) AuditID() string   { return p.ID }

// ValidCategory indica si la categoría es una de las soportadas.
func ValidCategory(c string) bool {
	return c == CategoryBeer || c == CategoryJuice
}

// ValidSaleUnit indica si la unidad de venta es conocida.
func ValidSaleUnit(u string) bool {
	switch u {
	case SaleUnitBottle, SaleUnitPack, SaleUnitCarton:
		return true
	}
	return false
}

// BasePrice precio por defecto de un producto (uno a uno).
type BasePrice struct {
	ProductID string
	Price     decimal.Decimal
	UpdatedAt time.Time
}

// ClientPrice precio negociado para un cliente; tiene prioridad sobre BasePrice.
type ClientPrice struct {
	ID        string
	ClientID  string
	ProductID string
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
