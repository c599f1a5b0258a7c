package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

func boolPtr(b bool) *bool { return &b }

func TestRoleDefaults_SuperAdminTieneTodo(t *testing.T) {
	set := RoleDefaults(entity.RoleSuperAdmin)
	for _, c := range All {
		assert.True(t, set.Has(c), "SUPER_ADMIN debe tener %s", c)
	}
}

func TestRoleDefaults_AdminGSASinGestionUsuarios(t *testing.T) {
	set := RoleDefaults(entity.RoleAdminGSA)
	assert.False(t, set.Has(CanManageUsers))
	assert.True(t, set.Has(CanValidateInvoices))
	assert.True(t, set.Has(CanManageCompanySettings))
}

func TestRoleDefaults_Commercial(t *testing.T) {
	set := RoleDefaults(entity.RoleCommercial)
	assert.True(t, set.Has(CanCreateInvoices))
	assert.True(t, set.Has(CanManagePayments))
	assert.True(t, set.Has(CanManageClientPrices))
	assert.False(t, set.Has(CanValidateInvoices))
	assert.False(t, set.Has(CanAdjustStock))
}

func TestRoleDefaults_Logistique(t *testing.T) {
	set := RoleDefaults(entity.RoleLogistique)
	assert.True(t, set.Has(CanValidateContainers))
	assert.True(t, set.Has(CanAdjustStock))
	assert.False(t, set.Has(CanCreateInvoices))
}

func TestRoleDefaults_LectureNoTieneNada(t *testing.T) {
	set := RoleDefaults(entity.RoleLecture)
	for _, c := range All {
		assert.False(t, set.Has(c))
	}
}

func TestResolve_OverridesNilHeredan(t *testing.T) {
	overrides := map[string]*bool{
		string(CanValidateInvoices): boolPtr(true),
		string(CanManageClients):    boolPtr(false),
		string(CanManagePayments):   nil,
		"capacidad_inexistente":     boolPtr(true),
	}
	set := Resolve(entity.RoleCommercial, overrides)

	assert.True(t, set.Has(CanValidateInvoices), "override true concede")
	assert.False(t, set.Has(CanManageClients), "override false revoca")
	assert.True(t, set.Has(CanManagePayments), "nil hereda el rol")
	assert.False(t, set.Has(Capability("capacidad_inexistente")))
}

func TestForUser_InactivoSinCapacidades(t *testing.T) {
	u := &entity.User{Role: entity.RoleSuperAdmin, Active: false}
	assert.False(t, ForUser(u).Has(CanViewReports))
	u.Active = true
	assert.True(t, ForUser(u).Has(CanViewReports))
}
