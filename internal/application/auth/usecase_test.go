package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/application/usecase"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/rbac"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/memory"
	"github.com/jhoicas/gsa-backend/pkg/jwt"
)

const testSecret = "secreto-de-prueba"

func setup(t *testing.T) (*AuthUseCase, *usecase.UserUseCase, string) {
	t.Helper()
	users := memory.NewStore().Repositories().Users
	userUC := usecase.NewUserUseCase(users)
	u, err := userUC.Create(context.Background(), dto.CreateUserRequest{
		Email: "comercial@gsa.sn", Password: "secreto123", Name: "Comercial", Role: entity.RoleCommercial,
	})
	require.NoError(t, err)
	return NewAuthUseCase(users, JWTConfig{Secret: testSecret, ExpMinutes: 30, Issuer: "gsa-test"}), userUC, u.ID
}

func TestLogin_Exitoso(t *testing.T) {
	uc, _, id := setup(t)

	res, err := uc.Login(context.Background(), dto.LoginRequest{Email: "Comercial@GSA.sn", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, 1800, res.ExpiresIn)
	assert.Equal(t, id, res.User.ID)

	userID, role, err := jwt.Parse(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, userID)
	assert.Equal(t, entity.RoleCommercial, role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Email: "comercial@gsa.sn", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@gsa.sn", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, userUC, id := setup(t)
	ctx := context.Background()
	inactive := false
	_, err := userUC.Update(ctx, id, dto.UpdateUserRequest{Active: &inactive})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "comercial@gsa.sn", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	caps, err := uc.Capabilities(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, caps)
}

func TestCapabilities_ReflejaOverridesSinNuevoLogin(t *testing.T) {
	uc, userUC, id := setup(t)
	ctx := context.Background()

	caps, err := uc.Capabilities(ctx, id)
	require.NoError(t, err)
	assert.True(t, caps.Has(rbac.CanCreateInvoices))

	off := false
	_, err = userUC.Update(ctx, id, dto.UpdateUserRequest{Overrides: map[string]*bool{string(rbac.CanCreateInvoices): &off}})
	require.NoError(t, err)

	caps, err = uc.Capabilities(ctx, id)
	require.NoError(t, err)
	assert.False(t, caps.Has(rbac.CanCreateInvoices))

	_, err = uc.Me(ctx, "desconocido")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
