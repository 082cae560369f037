package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/order-management-api/internal/application/auth"
	"github.com/jhoicas/order-management-api/internal/application/dto"
	"github.com/jhoicas/order-management-api/internal/application/ordering"
	"github.com/jhoicas/order-management-api/internal/application/usecase"
	apphttp "github.com/jhoicas/order-management-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/order-management-api/pkg/jwt"
	"github.com/jhoicas/order-management-api/pkg/logger"
	"github.com/jhoicas/order-management-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app     *fiber.App
	store   *memStore
	tokens  *pkgjwt.Manager
	metrics *metrics.Metrics
}

func newTestAPI(t *testing.T, limiter *apphttp.IPRateLimiter, opts ...func(*apphttp.RouterDeps)) *testAPI {
	t.Helper()
	tokens, err := pkgjwt.NewManager(testJWTSecret, testIssuer, pkgjwt.DefaultExpMinutes)
	require.NoError(t, err)

	store := newMemStore()
	m := metrics.New("test")
	authUC := auth.NewAuthUseCase(store.Users(), tokens)

	deps := apphttp.RouterDeps{
		ServiceName: "order-management-test",
		Logger:      logger.New(logger.Config{Env: "test", Level: "error", Out: io.Discard}),
		Metrics:     m,
		AuthLimiter: limiter,
		AuthUC:      authUC,
		ProductUC:   usecase.NewProductUseCase(store.Products()),
		UserUC:      usecase.NewUserUseCase(store.Users(), store),
		OrderUC:     ordering.NewOrderUseCase(store.Orders(), store, m),
		Tokens:      tokens,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	app := apphttp.NewApp("order-management-test")
	apphttp.Router(app, deps)
	return &testAPI{app: app, store: store, tokens: tokens, metrics: m}
}

// do lanza la petición; body puede ser nil, un string crudo o cualquier valor serializable.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (a *testAPI) register(t *testing.T, email string) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Name: "Ana", Email: email, Password: "secreta123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.AuthResponse](t, resp)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (a *testAPI) addProduct(t *testing.T, token, name, price string) dto.ProductResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/products/addProduct", token, `{"name":"`+name+`","price":`+price+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.ProductResponse](t, resp)
}

func orderBody(userID, productID int64, qty int) map[string]any {
	return map[string]any{
		"userId": userID,
		"items":  []map[string]any{{"productId": productID, "quantity": qty}},
	}
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenario_RegistroPedidoCancelacion(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")
	userID := api.store.userIDByEmail("a@x.com")
	require.NotZero(t, userID)

	product := api.addProduct(t, token, "Teclado", "25.50")

	resp := api.do(t, http.MethodPost, "/orders/createOrder", token, orderBody(userID, product.ID, 2))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	order := decode[dto.OrderResponse](t, resp)
	assert.Equal(t, "CREATED", order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, product.ID, order.Items[0].Product.ID)
	require.NotNil(t, order.User)
	assert.Equal(t, userID, order.User.ID)
	assert.Equal(t, "a@x.com", order.User.Email)

	resp = api.do(t, http.MethodDelete, "/orders/cancelOrder/"+id(order.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/orders/getOrder/"+id(order.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CANCELLED", decode[dto.OrderResponse](t, resp).Status)

	// Cancelar otra vez deja el mismo estado.
	resp = api.do(t, http.MethodDelete, "/orders/cancelOrder/"+id(order.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestEscenario_UsuarioInexistenteNoCreaPedido(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")
	product := api.addProduct(t, token, "Teclado", "10")

	resp := api.do(t, http.MethodPost, "/orders/createOrder", token, orderBody(999, product.ID, 1))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
	assert.Zero(t, api.store.orderCount())
}

func TestCreateOrder_ProductoInexistenteNoCreaPedido(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")
	userID := api.store.userIDByEmail("a@x.com")
	product := api.addProduct(t, token, "Teclado", "10")

	body := map[string]any{
		"userId": userID,
		"items": []map[string]any{
			{"productId": product.ID, "quantity": 1},
			{"productId": 4040, "quantity": 1},
		},
	}
	resp := api.do(t, http.MethodPost, "/orders/createOrder", token, body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, api.store.orderCount())
}

func TestCreateOrder_Validacion(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")

	cases := map[string]any{
		"items vacío":     map[string]any{"userId": 1, "items": []any{}},
		"sin items":       map[string]any{"userId": 1},
		"cantidad cero":   orderBody(1, 1, 0),
		"sin userId":      map[string]any{"items": []map[string]any{{"productId": 1, "quantity": 1}}},
		"json malformado": `{"userId": 1, "items": [`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := api.do(t, http.MethodPost, "/orders/createOrder", token, body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Zero(t, api.store.orderCount())
}

func TestGetOrder_NoExiste(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")

	resp := api.do(t, http.MethodGet, "/orders/getOrder/12345", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, "/orders/cancelOrder/12345", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/orders/getOrder/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", decode[dto.ErrorResponse](t, resp).Code)
}

func TestOrdersByUser_SinPedidosDevuelveListaVacia(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")

	resp := api.do(t, http.MethodGet, "/orders/user/77", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[]`, string(body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_EmailDuplicado(t *testing.T) {
	api := newTestAPI(t, nil)
	api.register(t, "a@x.com")

	resp := api.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Name: "Otra", Email: "a@x.com", Password: "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRegister_EmailInvalido(t *testing.T) {
	api := newTestAPI(t, nil)
	resp := api.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Name: "Ana", Email: "no-es-email", Password: "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	require.NotEmpty(t, out.Fields)
	assert.Equal(t, "email", out.Fields[0].Field)
}

func TestRegister_PasswordDemasiadoLargo(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Name: "Ana", Email: "a@x.com", Password: strings.Repeat("a", 80)})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	require.NotEmpty(t, out.Fields)
	assert.Equal(t, "password", out.Fields[0].Field)

	// 40 caracteres pero 80 bytes: pasa el límite de caracteres y lo corta bcrypt.
	resp = api.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Name: "Ana", Email: "a@x.com", Password: strings.Repeat("ñ", 40)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
	assert.Zero(t, api.store.userIDByEmail("a@x.com"))

	resp = api.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Name: "Ana", Email: "a@x.com", Password: strings.Repeat("a", 72)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t, nil)
	api.register(t, "a@x.com")

	resp := api.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "a@x.com", Password: "secreta123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tok := decode[dto.AuthResponse](t, resp).Token
	identity, err := api.tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity)

	resp = api.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "a@x.com", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "nadie@x.com", Password: "secreta123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, path := range []string{"/orders/getOrder/1", "/products/getAllProducts", "/users/getUser/1"} {
		resp := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := api.do(t, http.MethodGet, "/products/getAllProducts", "token.invalido.aqui", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRutasProtegidas_TokenDeUsuarioBorrado(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")
	userID := api.store.userIDByEmail("a@x.com")

	resp := api.do(t, http.MethodDelete, "/users/deleteUser/"+id(userID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/products/getAllProducts", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_RateLimit(t *testing.T) {
	api := newTestAPI(t, apphttp.NewIPRateLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		resp := api.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "a@x.com", Password: "x"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := api.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "a@x.com", Password: "x"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "TOO_MANY_REQUESTS", decode[dto.ErrorResponse](t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestProductos_AltaListadoBorrado(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")

	a := api.addProduct(t, token, "Teclado", "25.50")
	b := api.addProduct(t, token, "Teclado", "25.50")
	assert.NotEqual(t, a.ID, b.ID, "no hay deduplicación")
	assert.Equal(t, "25.5", a.Price.String())

	resp := api.do(t, http.MethodGet, "/products/getAllProducts", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.ProductResponse](t, resp), 2)

	resp = api.do(t, http.MethodDelete, "/products/deleteProduct/"+id(a.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = api.do(t, http.MethodDelete, "/products/deleteProduct/999", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "borrar un ID inexistente no es error")

	resp = api.do(t, http.MethodGet, "/products/getAllProducts", token, nil)
	assert.Len(t, decode[[]dto.ProductResponse](t, resp), 1)
}

func TestProductos_Validacion(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")

	for name, body := range map[string]string{
		"precio cero":      `{"name":"Teclado","price":0}`,
		"precio negativo":  `{"name":"Teclado","price":-3}`,
		"nombre en blanco": `{"name":"   ","price":5}`,
		"sin nombre":       `{"price":5}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp := api.do(t, http.MethodPost, "/products/addProduct", token, body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestProductos_PrecioFueraDeRango(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")

	for name, price := range map[string]string{
		"tres decimales":      "0.001",
		"redondeo":            "1.005",
		"notación científica": "1e14",
		"sobre el máximo":     "10000000000",
	} {
		t.Run(name, func(t *testing.T) {
			resp := api.do(t, http.MethodPost, "/products/addProduct", token, `{"name":"Teclado","price":`+price+`}`)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
		})
	}

	p := api.addProduct(t, token, "Servidor", "9999999999.99")
	assert.Equal(t, "9999999999.99", p.Price.String())

	resp := api.do(t, http.MethodGet, "/products/getAllProducts", token, nil)
	assert.Len(t, decode[[]dto.ProductResponse](t, resp), 1)
}

func TestCreateOrder_CantidadFueraDeRango(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")
	userID := api.store.userIDByEmail("a@x.com")
	product := api.addProduct(t, token, "Teclado", "10")

	resp := api.do(t, http.MethodPost, "/orders/createOrder", token, orderBody(userID, product.ID, 3000000000))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
	assert.Zero(t, api.store.orderCount())
}

func TestProductos_BorrarReferenciadoEsConflicto(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")
	userID := api.store.userIDByEmail("a@x.com")
	product := api.addProduct(t, token, "Teclado", "10")

	resp := api.do(t, http.MethodPost, "/orders/createOrder", token, orderBody(userID, product.ID, 1))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, "/products/deleteProduct/"+id(product.ID), token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUsuarios_GetYDelete(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")
	other := api.register(t, "b@x.com")
	otherID := api.store.userIDByEmail("b@x.com")
	product := api.addProduct(t, token, "Teclado", "10")

	resp := api.do(t, http.MethodPost, "/orders/createOrder", other, orderBody(otherID, product.ID, 1))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/users/getUser/"+id(otherID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `"email":"b@x.com"`)
	assert.NotContains(t, string(raw), "password")

	resp = api.do(t, http.MethodGet, "/users/getUser/999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Borrar al usuario se lleva sus pedidos.
	resp = api.do(t, http.MethodDelete, "/users/deleteUser/"+id(otherID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, api.store.orderCount())

	resp = api.do(t, http.MethodDelete, "/users/deleteUser/999", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Operación
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthYRequestID(t *testing.T) {
	api := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	resp = api.do(t, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestDocs_PasaPorMiddlewaresGlobales(t *testing.T) {
	docs := func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/docs") {
			return c.SendString("swagger")
		}
		return c.Next()
	}
	api := newTestAPI(t, nil, func(d *apphttp.RouterDeps) { d.Docs = docs })

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	req.Header.Set("X-Request-ID", "docs-1")
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "docs-1", resp.Header.Get("X-Request-ID"))

	// Las rutas de la API siguen respondiendo con el handler de docs montado.
	resp = api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics_CuentaPedidos(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.register(t, "a@x.com")
	userID := api.store.userIDByEmail("a@x.com")
	product := api.addProduct(t, token, "Teclado", "10")
	api.do(t, http.MethodPost, "/orders/createOrder", token, orderBody(userID, product.ID, 1))

	resp := api.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "test_orders_created_total 1")
	assert.Contains(t, string(body), "test_http_requests_total")
}

func TestRutaInexistente(t *testing.T) {
	api := newTestAPI(t, nil)
	resp := api.do(t, http.MethodGet, "/no/existe", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}
