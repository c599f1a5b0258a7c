package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

func TestValidateMovement_AjusteSinRazon(t *testing.T) {
	m := &entity.StockMovement{ProductID: "p1", QtySigned: -3, Type: entity.MovementAdjustment, Reason: "   "}
	assert.ErrorIs(t, ValidateMovement(m), domain.ErrReasonRequired)
}

func TestValidateMovement_CantidadCero(t *testing.T) {
	m := &entity.StockMovement{ProductID: "p1", QtySigned: 0, Type: entity.MovementReception}
	assert.ErrorIs(t, ValidateMovement(m), domain.ErrInvalidInput)
}

func TestValidateMovement_TipoDesconocido(t *testing.T) {
	m := &entity.StockMovement{ProductID: "p1", QtySigned: 4, Type: "GIFT"}
	assert.ErrorIs(t, ValidateMovement(m), domain.ErrInvalidInput)
}

func TestValidateMovement_RecortaRazon(t *testing.T) {
	m := &entity.StockMovement{ProductID: "p1", QtySigned: 2, Type: entity.MovementAdjustment, Reason: "  inventaire  "}
	require.NoError(t, ValidateMovement(m))
	assert.Equal(t, "inventaire", m.Reason)
}

func TestSumSigned_PermiteNegativo(t *testing.T) {
	movs := []*entity.StockMovement{
		{QtySigned: 100}, {QtySigned: -30}, {QtySigned: -90},
	}
	assert.Equal(t, -20, SumSigned(movs))
	assert.Equal(t, 0, SumSigned(nil))
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, IsLowStock(10, 50))
	assert.True(t, IsLowStock(50, 50))
	assert.False(t, IsLowStock(51, 50))
	assert.False(t, IsLowStock(0, 50), "agotado no es bajo")
	assert.True(t, IsLowStock(40, 0), "umbral por defecto 50")
}

func TestCheckAvailability(t *testing.T) {
	ids := []string{"a", "b"}
	s := CheckAvailability(ids, map[string]int{"a": 5, "b": 10}, map[string]int{"a": 5, "b": 5})
	require.NotNil(t, s)
	assert.Equal(t, "b", s.ProductID)
	assert.Equal(t, 5, s.Available)
	assert.Equal(t, 10, s.Requested)

	assert.Nil(t, CheckAvailability(ids, map[string]int{"a": 1}, map[string]int{"a": 1}))
}
