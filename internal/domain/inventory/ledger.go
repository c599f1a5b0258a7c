// Package inventory contiene las reglas puras del ledger de stock.
package inventory

import (
	"strings"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

// ValidateMovement verifica un movimiento antes de agregarlo al ledger.
// La cantidad no puede ser 0 y un ADJUSTMENT exige razón.
func ValidateMovement(m *entity.StockMovement) error {
	if m.ProductID == "" || !entity.ValidMovementType(m.Type) {
		return domain.ErrInvalidInput
	}
	if m.QtySigned == 0 {
		return domain.ErrInvalidInput
	}
	if entity.RequiresReason(m.Type) && !m.HasReason() {
		return domain.ErrReasonRequired
	}
	m.Reason = strings.TrimSpace(m.Reason)
	return nil
}

// SumSigned stock = Σ qty_signed. No se limita a valores positivos.
func SumSigned(movs []*entity.StockMovement) int {
	total := 0
	for _, m := range movs {
		total += m.QtySigned
	}
	return total
}

// IsLowStock stock positivo pero en o bajo el umbral. Stock cero o negativo es "agotado", no "bajo".
func IsLowStock(stock, threshold int) bool {
	if threshold <= 0 {
		threshold = entity.DefaultReorderThreshold
	}
	return stock > 0 && stock <= threshold
}

// Shortage describe un producto sin stock suficiente para una venta.
type Shortage struct {
	ProductID string
	Available int
	Requested int
}

// CheckAvailability compara unidades pedidas por producto contra el stock disponible.
// Devuelve el primer faltante en el orden de ids recibido.
func CheckAvailability(ids []string, requested, available map[string]int) *Shortage {
	for _, id := range ids {
		if available[id] < requested[id] {
			return &Shortage{ProductID: id, Available: available[id], Requested: requested[id]}
		}
	}
	return nil
}
