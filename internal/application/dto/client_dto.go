package dto

import "time"

// CreateClientRequest entrada para crear un cliente (o proveedor).
type CreateClientRequest struct {
	LastName   string `json:"last_name" validate:"max=200"`
	FirstName  string `json:"first_name" validate:"max=200"`
	Company    string `json:"company" validate:"max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"max=50"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	City       string `json:"city" validate:"max=100"`
	Country    string `json:"country" validate:"max=100"`
	Siret      string `json:"siret" validate:"max=20"`
	VATNumber  string `json:"vat_number" validate:"max=30"`
	Notes      string `json:"notes"`
}

// UpdateClientRequest entrada para actualizar un cliente (campos opcionales).
type UpdateClientRequest struct {
	LastName   *string `json:"last_name" validate:"omitempty,max=200"`
	FirstName  *string `json:"first_name" validate:"omitempty,max=200"`
	Company    *string `json:"company" validate:"omitempty,max=200"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	PostalCode *string `json:"postal_code"`
	City       *string `json:"city"`
	Country    *string `json:"country"`
	Siret      *string `json:"siret"`
	VATNumber  *string `json:"vat_number"`
	Notes      *string `json:"notes"`
	Active     *bool   `json:"active"`
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	LastName    string    `json:"last_name"`
	FirstName   string    `json:"first_name"`
	Company     string    `json:"company"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	PostalCode  string    `json:"postal_code"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Siret       string    `json:"siret"`
	VATNumber   string    `json:"vat_number"`
	Notes       string    `json:"notes"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClientListResponse lista paginada de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
