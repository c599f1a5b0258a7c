package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Role     string `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN_GSA LOGISTIQUE COMMERCIAL LECTURE"`
}

// UpdateUserRequest cambios de rol, estado, password u overrides de capacidades.
// En Overrides, null vuelve a heredar el valor del rol.
type UpdateUserRequest struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Role      *string          `json:"role" validate:"omitempty,oneof=SUPER_ADMIN ADMIN_GSA LOGISTIQUE COMMERCIAL LECTURE"`
	Active    *bool            `json:"active"`
	Password  *string          `json:"password" validate:"omitempty,min=8"`
	Overrides map[string]*bool `json:"overrides"`
}

// UserResponse salida de un usuario (sin password) con sus capacidades efectivas.
type UserResponse struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	Role         string           `json:"role"`
	Active       bool             `json:"active"`
	Overrides    map[string]*bool `json:"overrides,omitempty"`
	Capabilities []string         `json:"capabilities"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // segundos
	User      UserResponse `json:"user"`
}
