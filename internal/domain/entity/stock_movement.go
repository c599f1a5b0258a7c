package entity

import (
	"strings"
	"time"
)

// Tipos de movimiento del ledger de stock.
const (
	MovementReception  = "RECEPTION"
	MovementSale       = "SALE"
	MovementAdjustment = "ADJUSTMENT"
	MovementBreakage   = "BREAKAGE"
)

// StockMovement es una entrada inmutable del ledger. El stock de un producto es la
// suma de QtySigned de todos sus movimientos; no existe otro campo de stock escribible.
type StockMovement struct {
	ID        string
	ProductID string
	QtySigned int // positivo = entrada, negativo = salida
	Type      string
	Reference string
	CreatedBy *string
	Reason    string // obligatorio si Type = ADJUSTMENT
	CreatedAt time.Time
}

func (m *StockMovement) AuditKind() string { return "stock_movement" }
func (m *StockMovement) AuditID() string   { return m.ID }

// ValidMovementType indica si t es un tipo de movimiento conocido.
func ValidMovementType(t string) bool {
	switch t {
	case MovementReception, MovementSale, MovementAdjustment, MovementBreakage:
		return true
	}
	return false
}

// RequiresReason indica si el tipo exige una razón no vacía.
func RequiresReason(t string) bool {
	return t == MovementAdjustment
}

// HasReason indica si la razón tiene contenido.
func (m *StockMovement) HasReason() bool {
	return strings.TrimSpace(m.Reason) != ""
}
