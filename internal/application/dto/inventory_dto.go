package dto

import "time"

// AdjustStockRequest body para POST /api/stock/adjustments. Razón obligatoria.
type AdjustStockRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"required,ne=0"`
	Type      string `json:"type" validate:"required,oneof=ADJUSTMENT BREAKAGE"`
	Reason    string `json:"reason" validate:"required,min=1,max=500"`
	Reference string `json:"reference" validate:"max=100"`
}

// MovementResponse entrada del ledger.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	QtySigned int       `json:"qty_signed"`
	Type      string    `json:"type"`
	Reference string    `json:"reference"`
	Reason    string    `json:"reason,omitempty"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StockResponse stock derivado de un producto.
type StockResponse struct {
	ProductID string  `json:"product_id"`
	Stock     int     `json:"stock"`
	AsOf      *string `json:"as_of,omitempty"`
}

// StockLevelResponse fila del reporte de stock / stock bajo.
type StockLevelResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
	Low         bool   `json:"low"`
}
