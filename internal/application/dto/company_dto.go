package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanySettingsRequest datos de empresa impresos en las facturas y tasas de TVA.
type CompanySettingsRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Address        string          `json:"address"`
	City           string          `json:"city" validate:"max=100"`
	PostalCode     string          `json:"postal_code" validate:"max=20"`
	Country        string          `json:"country" validate:"max=100"`
	Phone          string          `json:"phone" validate:"max=50"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Website        string          `json:"website" validate:"max=200"`
	BankAccount    string          `json:"bank_account" validate:"max=100"`
	RateJuice      decimal.Decimal `json:"rate_juice"`
	RateBeer       decimal.Decimal `json:"rate_beer"`
	InvoiceMessage string          `json:"invoice_message"`
}

// CompanySettingsResponse configuración vigente.
type CompanySettingsResponse struct {
	Name           string          `json:"name"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	PostalCode     string          `json:"postal_code"`
	Country        string          `json:"country"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Website        string          `json:"website"`
	BankAccount    string          `json:"bank_account"`
	RateJuice      decimal.Decimal `json:"rate_juice"`
	RateBeer       decimal.Decimal `json:"rate_beer"`
	InvoiceMessage string          `json:"invoice_message"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
