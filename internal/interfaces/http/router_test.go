package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"

	appanalytics "github.com/jhoicas/gsa-backend/internal/application/analytics"
	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/application/auth"
	"github.com/jhoicas/gsa-backend/internal/application/billing"
	"github.com/jhoicas/gsa-backend/internal/application/containers"
	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/application/inventory"
	"github.com/jhoicas/gsa-backend/internal/application/purchasing"
	"github.com/jhoicas/gsa-backend/internal/application/usecase"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/gsa-backend/internal/infrastructure/pdf"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/gsa-backend/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación completa sobre el backend en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	t   *testing.T
	app *fiber.App
}

func newTestAPI(t *testing.T, publicRate string) *testAPI {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()
	repos := store.Repositories()
	txRunner := memory.NewTxRunner(store)

	docStore, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	docs := billing.NewDocumentService(repos, infrapdf.NewMarotoRenderer(), docStore, log)

	users := usecase.NewUserUseCase(repos.Users)
	for _, u := range []dto.CreateUserRequest{
		{Email: "admin@gsa.test", Password: "password-admin", Name: "Admin", Role: "SUPER_ADMIN"},
		{Email: "lecture@gsa.test", Password: "password-lecture", Name: "Lecture", Role: "LECTURE"},
	} {
		_, err := users.Create(context.Background(), u)
		require.NoError(t, err)
	}

	rate, err := limiter.NewRateFromFormatted(publicRate)
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:       auth.NewAuthUseCase(repos.Users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}),
		ProductUC:    usecase.NewProductUseCase(txRunner, repos),
		ClientUC:     usecase.NewClientUseCase(repos.Clients, repos.Prices, repos.Products),
		SettingsUC:   usecase.NewSettingsUseCase(txRunner, repos.Settings, log),
		UserUC:       users,
		LedgerUC:     inventory.NewLedgerUseCase(txRunner, repos.Movements, repos.Products, log),
		PurchaseUC:   purchasing.NewUseCase(txRunner, repos, log),
		ContainerUC:  containers.NewUseCase(txRunner, repos, log),
		InvoiceUC:    billing.NewInvoiceUseCase(txRunner, repos, docs, log),
		AcceptanceUC: billing.NewAcceptanceUseCase(txRunner, repos, docs, 0, "https://gsa.test", log),
		DashboardUC:  appanalytics.NewDashboardUseCase(memory.NewAnalyticsRepo(store), repos),
		AuditUC:      audit.NewQueryUseCase(repos.Audit),
		JWTSecret:    testJWTSecret,
		RateStore:    limitermemory.NewStore(),
		PublicRate:   rate,
		Log:          log,
	})
	return &testAPI{t: t, app: app}
}

func (a *testAPI) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, status, body)
	tok, _ := body["token"].(string)
	require.NotEmpty(a.t, tok)
	return tok
}

func decimalField(t *testing.T, body map[string]any, key string) decimal.Decimal {
	t.Helper()
	s, ok := body[key].(string)
	require.True(t, ok, "campo %s ausente: %v", key, body)
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_LoginCredencialesInvalidas(t *testing.T) {
	api := newTestAPI(t, "100-M")
	status, body := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@gsa.test", "password": "otra-cosa"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestRouter_RutasProtegidasSinToken(t *testing.T) {
	api := newTestAPI(t, "100-M")
	status, _ := api.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_LecturaPuedeListarPeroNoCrear(t *testing.T) {
	api := newTestAPI(t, "100-M")
	token := api.login("lecture@gsa.test", "password-lecture")

	status, _ := api.do(http.MethodGet, "/api/products", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := api.do(http.MethodPost, "/api/products", token, map[string]any{
		"name": "Bière", "sale_unit": "BOTTLE", "category": "BEER",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestRouter_ValidacionDelBody(t *testing.T) {
	api := newTestAPI(t, "100-M")
	token := api.login("admin@gsa.test", "password-admin")

	status, body := api.do(http.MethodPost, "/api/products", token, map[string]any{
		"name": "Bière", "sale_unit": "CAISSE", "category": "BEER",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = api.do(http.MethodPost, "/api/stock/adjustments", token, map[string]any{
		"product_id": "x", "qty": 5, "type": "ADJUSTMENT", "reason": "",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_TokenPublicoDesconocido(t *testing.T) {
	api := newTestAPI(t, "100-M")
	status, body := api.do(http.MethodGet, "/api/public/invoices/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "TOKEN_NOT_FOUND", body["code"])
}

func TestRouter_RateLimitEnEndpointsPublicos(t *testing.T) {
	api := newTestAPI(t, "2-M")
	for i := 0; i < 2; i++ {
		status, _ := api.do(http.MethodGet, "/api/public/invoices/no-existe", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	}
	status, body := api.do(http.MethodGet, "/api/public/invoices/no-existe", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body["code"])
}

// Flujo completo: stock → factura → validación → enlace → aceptación.
func TestRouter_FacturaValidadaYAceptadaPorEnlace(t *testing.T) {
	api := newTestAPI(t, "100-M")
	token := api.login("admin@gsa.test", "password-admin")

	status, product := api.do(http.MethodPost, "/api/products", token, map[string]any{
		"name": "Jus de mangue 1L", "sale_unit": "BOTTLE", "category": "JUICE", "base_price": "2.00",
	})
	require.Equal(t, http.StatusCreated, status, product)
	productID := product["id"].(string)

	status, client := api.do(http.MethodPost, "/api/clients", token, map[string]any{"company": "Épicerie du Port"})
	require.Equal(t, http.StatusCreated, status, client)
	clientID := client["id"].(string)

	status, mov := api.do(http.MethodPost, "/api/stock/adjustments", token, map[string]any{
		"product_id": productID, "qty": 10, "type": "ADJUSTMENT", "reason": "inventaire initial",
	})
	require.Equal(t, http.StatusCreated, status, mov)

	status, inv := api.do(http.MethodPost, "/api/invoices", token, map[string]any{"client_id": clientID})
	require.Equal(t, http.StatusCreated, status, inv)
	invoiceID := inv["id"].(string)
	assert.Equal(t, "DRAFT", inv["status"])

	status, inv = api.do(http.MethodPost, "/api/invoices/"+invoiceID+"/lines", token, map[string]any{
		"product_id": productID, "qty": "3",
	})
	require.Equal(t, http.StatusCreated, status, inv)
	assert.True(t, decimal.NewFromInt(6).Equal(decimalField(t, inv, "total")))

	status, inv = api.do(http.MethodPost, "/api/invoices/"+invoiceID+"/validate", token, nil)
	require.Equal(t, http.StatusOK, status, inv)
	assert.Equal(t, "VALIDATED", inv["status"])
	assert.NotEmpty(t, inv["number"])

	status, stock := api.do(http.MethodGet, "/api/stock/products/"+productID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 7, stock["stock"])

	status, issued := api.do(http.MethodPost, "/api/invoices/"+invoiceID+"/acceptance-token", token, nil)
	require.Equal(t, http.StatusCreated, status, issued)
	raw := issued["token"].(string)
	assert.Contains(t, issued["url"], raw)

	status, view := api.do(http.MethodGet, "/api/public/invoices/"+raw, "", nil)
	require.Equal(t, http.StatusOK, status, view)
	assert.Equal(t, false, view["accepted"])

	status, body := api.do(http.MethodPost, "/api/public/invoices/"+raw+"/accept", "", map[string]any{"accept": false})
	assert.Equal(t, http.StatusBadRequest, status, body)

	status, view = api.do(http.MethodPost, "/api/public/invoices/"+raw+"/accept", "", map[string]any{
		"accept": true, "accepted_name": "M. Client",
	})
	require.Equal(t, http.StatusOK, status, view)
	assert.Equal(t, true, view["accepted"])
	assert.Equal(t, "ACCEPTED", view["status"])

	status, body = api.do(http.MethodPost, "/api/public/invoices/"+raw+"/accept", "", map[string]any{"accept": true})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "TOKEN_USED", body["code"])
}
