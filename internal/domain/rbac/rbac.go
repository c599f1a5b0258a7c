// Package rbac resuelve las capacidades efectivas de un usuario: valores por defecto
// del rol más overrides individuales (nil = hereda).
package rbac

import "github.com/jhoicas/gsa-backend/internal/domain/entity"

// Capability nombre de un permiso.
type Capability string

const (
	CanCreateInvoices        Capability = "can_create_invoices"
	CanValidateInvoices      Capability = "can_validate_invoices"
	CanDeleteInvoices        Capability = "can_delete_invoices"
	CanManagePayments        Capability = "can_manage_payments"
	CanManageStock           Capability = "can_manage_stock"
	CanAdjustStock           Capability = "can_adjust_stock"
	CanManagePurchases       Capability = "can_manage_purchases"
	CanManageContainers      Capability = "can_manage_containers"
	CanValidateContainers    Capability = "can_validate_containers"
	CanManageClients         Capability = "can_manage_clients"
	CanManageClientPrices    Capability = "can_manage_client_prices"
	CanManageProducts        Capability = "can_manage_products"
	CanViewReports           Capability = "can_view_reports"
	CanExportData            Capability = "can_export_data"
	CanManageUsers           Capability = "can_manage_users"
	CanManageCompanySettings Capability = "can_manage_company_settings"
)

// All lista completa, en orden estable.
var All = []Capability{
	CanCreateInvoices, CanValidateInvoices, CanDeleteInvoices, CanManagePayments,
	CanManageStock, CanAdjustStock, CanManagePurchases, CanManageContainers,
	CanValidateContainers, CanManageClients, CanManageClientPrices, CanManageProducts,
	CanViewReports, CanExportData, CanManageUsers, CanManageCompanySettings,
}

// Known indica si name corresponde a una capacidad existente.
func Known(name string) bool {
	for _, c := range All {
		if string(c) == name {
			return true
		}
	}
	return false
}

// CapabilitySet conjunto de capacidades efectivas.
type CapabilitySet map[Capability]bool

// Has indica si la capacidad está concedida.
func (s CapabilitySet) Has(c Capability) bool { return s[c] }

// RoleDefaults valores por defecto de cada rol.
func RoleDefaults(role string) CapabilitySet {
	set := make(CapabilitySet, len(All))
	switch role {
	case entity.RoleSuperAdmin:
		for _, c := range All {
			set[c] = true
		}
	case entity.RoleAdminGSA:
		for _, c := range All {
			set[c] = c != CanManageUsers
		}
	case entity.RoleCommercial:
		grant(set, CanCreateInvoices, CanManagePayments, CanManageClients, CanManageClientPrices, CanViewReports)
	case entity.RoleLogistique:
		grant(set, CanManageStock, CanAdjustStock, CanManagePurchases, CanManageContainers,
			CanValidateContainers, CanManageProducts, CanViewReports)
	}
	// LECTURE y roles desconocidos: nada.
	return set
}

// Resolve aplica los overrides del usuario sobre los valores del rol. Función pura.
func Resolve(role string, overrides map[string]*bool) CapabilitySet {
	set := RoleDefaults(role)
	for name, v := range overrides {
		if v == nil || !Known(name) {
			continue
		}
		set[Capability(name)] = *v
	}
	return set
}

// ForUser atajo sobre Resolve. Un usuario inactivo no tiene capacidades.
func ForUser(u *entity.User) CapabilitySet {
	if u == nil || !u.Active {
		return CapabilitySet{}
	}
	return Resolve(u.Role, u.Overrides)
}

func grant(set CapabilitySet, caps ...Capability) {
	for _, c := range caps {
		set[c] = true
	}
}
