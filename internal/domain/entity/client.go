package entity

import (
	"strings"
	"time"
)

// Client representa un cliente o proveedor (las compras referencian un Client como proveedor).
type Client struct {
	ID         string
	LastName   string
	FirstName  string
	Company    string
	Email      string
	Phone      string
	Address    string
	PostalCode string
	City       string
	Country    string
	Siret      string
	VATNumber  string // TVA intracomunitaria
	Notes      string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName nombre para documentos: la empresa si existe, si no "Apellido Nombre".
func (c *Client) DisplayName() string {
	if c.Company != "" {
		return c.Company
	}
	return strings.TrimSpace(c.LastName + " " + c.FirstName)
}
