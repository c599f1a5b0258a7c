package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanySettings datos de la empresa impresos en facturas y tasas de TVA por categoría (singleton).
type CompanySettings struct {
	Name           string
	Address        string
	City           string
	PostalCode     string
	Country        string
	Phone          string
	Email          string
	Website        string
	BankAccount    string
	RateJuice      decimal.Decimal // porcentaje, ej. 5.50
	RateBeer       decimal.Decimal // porcentaje, ej. 20.00
	InvoiceMessage string
	UpdatedAt      time.Time
}

func (s *CompanySettings) AuditKind() string { return "company_settings" }
func (s *CompanySettings) AuditID() string   { return "1" }

// DefaultCompanySettings valores usados cuando aún no se ha guardado ninguna configuración.
func DefaultCompanySettings() CompanySettings {
	return CompanySettings{
		Name:           "GOÛTS ET SAVEURS D'AFRIQUE",
		Country:        "Sénégal",
		Website:        "www.gsa-boissons.com",
		RateJuice:      decimal.RequireFromString("5.50"),
		RateBeer:       decimal.RequireFromString("20.00"),
		InvoiceMessage: "Merci pour votre confiance !",
	}
}
