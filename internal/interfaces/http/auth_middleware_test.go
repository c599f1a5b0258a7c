package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/rbac"
	apphttp "github.com/jhoicas/gsa-backend/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/gsa-backend/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "gsa-test"
	testExpMin    = 60
)

// fakeResolver capacidades fijas por usuario; cuenta las consultas.
type fakeResolver struct {
	sets  map[string]rbac.CapabilitySet
	err   error
	calls int
}

func (f *fakeResolver) Capabilities(_ context.Context, userID string) (rbac.CapabilitySet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	set, ok := f.sets[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return set, nil
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireCapability para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(resolver apphttp.CapabilityResolver, caps ...rbac.Capability) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireCapability(resolver, caps...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireCapability
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireCapability_ConCapacidadPasa(t *testing.T) {
	resolver := &fakeResolver{sets: map[string]rbac.CapabilitySet{
		testUserID: rbac.RoleDefaults("ADMIN_GSA"),
	}}
	app := buildTestApp(resolver, rbac.CanValidateInvoices)
	resp := doRequest(t, app, tokenFor(t, testUserID, "ADMIN_GSA"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "ADMIN_GSA", body["role"])
}

// Basta con una de las capacidades listadas.
func TestRequireCapability_AlgunaDeVarias(t *testing.T) {
	resolver := &fakeResolver{sets: map[string]rbac.CapabilitySet{
		testUserID: {rbac.CanViewReports: true},
	}}
	app := buildTestApp(resolver, rbac.CanManagePurchases, rbac.CanViewReports)
	resp := doRequest(t, app, tokenFor(t, testUserID, "LECTURE"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireCapability_SinCapacidad_Retorna403(t *testing.T) {
	resolver := &fakeResolver{sets: map[string]rbac.CapabilitySet{
		testUserID: {rbac.CanViewReports: true},
	}}
	app := buildTestApp(resolver, rbac.CanManageUsers)
	resp := doRequest(t, app, tokenFor(t, testUserID, "LECTURE"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
	assert.Contains(t, string(body), "can_manage_users")
}

// El rol del token no autoriza: manda lo que diga el resolver en cada petición.
func TestRequireCapability_OverrideRevocadoSinRenovarToken(t *testing.T) {
	set := rbac.RoleDefaults("SUPER_ADMIN")
	resolver := &fakeResolver{sets: map[string]rbac.CapabilitySet{testUserID: set}}
	app := buildTestApp(resolver, rbac.CanAdjustStock)
	token := tokenFor(t, testUserID, "SUPER_ADMIN")

	resp := doRequest(t, app, token)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	set[rbac.CanAdjustStock] = false
	resp = doRequest(t, app, token)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 2, resolver.calls)
}

func TestRequireCapability_UsuarioInexistente_Retorna401(t *testing.T) {
	resolver := &fakeResolver{sets: map[string]rbac.CapabilitySet{}}
	app := buildTestApp(resolver, rbac.CanViewReports)
	resp := doRequest(t, app, tokenFor(t, "desconocido", "ADMIN_GSA"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireCapability_ErrorDelResolver_Retorna500(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("db caída")}
	app := buildTestApp(resolver, rbac.CanViewReports)
	resp := doRequest(t, app, tokenFor(t, testUserID, "ADMIN_GSA"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(&fakeResolver{}, rbac.CanViewReports)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_FormatoIncorrecto_Retorna401(t *testing.T) {
	app := buildTestApp(&fakeResolver{}, rbac.CanViewReports)
	resp := doRequest(t, app, "Token abc")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(&fakeResolver{}, rbac.CanViewReports)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_TokenExpirado_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "ADMIN_GSA", testIssuer, -1)
	require.NoError(t, err)
	app := buildTestApp(&fakeResolver{}, rbac.CanViewReports)
	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenFor(t, testUserID, "LOGISTIQUE"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "LOGISTIQUE", body["role"])
}
