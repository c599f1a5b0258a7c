package entity

import "time"

// Roles válidos para User.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdminGSA   = "ADMIN_GSA"
	RoleLogistique = "LOGISTIQUE"
	RoleCommercial = "COMMERCIAL"
	RoleLecture    = "LECTURE"
)

// ValidRole indica si r es un rol conocido.
func ValidRole(r string) bool {
	switch r {
	case RoleSuperAdmin, RoleAdminGSA, RoleLogistique, RoleCommercial, RoleLecture:
		return true
	}
	return false
}

// User usuario interno. Overrides: por capacidad, nil = hereda el valor del rol.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Active       bool
	Overrides    map[string]*bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
