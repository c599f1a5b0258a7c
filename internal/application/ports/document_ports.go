package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// InvoiceDocument datos necesarios para producir el PDF de una factura.
type InvoiceDocument struct {
	Company  entity.CompanySettings
	Client   *entity.Client
	Invoice  *entity.Invoice
	Lines    []DocumentLine
	Payments []*entity.Payment
}

// DocumentLine línea de factura enriquecida con los datos del producto.
type DocumentLine struct {
	ProductName string
	SaleUnit    string
	Category    string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// InvoiceRenderer define el puerto de salida para la representación gráfica de la factura.
// Cualquier adaptador (maroto, plantilla HTML, mock) debe implementar esta interfaz.
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// DocumentStore guarda y recupera los PDF emitidos. La ruta devuelta por Put es la que se
// persiste en invoices.pdf_path y la que se pasa luego a Get.
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
}

// JobLock exclusión mutua entre réplicas para tareas programadas.
// ok=false sin error significa que otra instancia tiene el lock.
type JobLock interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
