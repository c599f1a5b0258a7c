package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto con su precio base opcional.
type CreateProductRequest struct {
	Name             string           `json:"name" validate:"required,min=1,max=200"`
	SaleUnit         string           `json:"sale_unit" validate:"required,oneof=BOTTLE PACK CARTON"`
	Category         string           `json:"category" validate:"required,oneof=BEER JUICE"`
	Active           *bool            `json:"active"`
	ReorderThreshold int              `json:"reorder_threshold" validate:"min=0"`
	BasePrice        *decimal.Decimal `json:"base_price"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
type UpdateProductRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=1,max=200"`
	SaleUnit         *string          `json:"sale_unit" validate:"omitempty,oneof=BOTTLE PACK CARTON"`
	Category         *string          `json:"category" validate:"omitempty,oneof=BEER JUICE"`
	Active           *bool            `json:"active"`
	ReorderThreshold *int             `json:"reorder_threshold" validate:"omitempty,min=0"`
	BasePrice        *decimal.Decimal `json:"base_price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	SaleUnit         string           `json:"sale_unit"`
	Category         string           `json:"category"`
	Active           bool             `json:"active"`
	ReorderThreshold int              `json:"reorder_threshold"`
	BasePrice        *decimal.Decimal `json:"base_price,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ClientPriceRequest precio negociado de un producto para un cliente.
type ClientPriceRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Price     decimal.Decimal `json:"price"`
}

// ClientPriceResponse salida de un precio negociado.
type ClientPriceResponse struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
