package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/eshop-service/internal/api/http/handlers"
	"github.com/spec-kit/eshop-service/internal/auth"
	"github.com/spec-kit/eshop-service/internal/config"
	"github.com/spec-kit/eshop-service/internal/domain"
	"github.com/spec-kit/eshop-service/internal/events"
	"github.com/spec-kit/eshop-service/internal/observability"
	"github.com/spec-kit/eshop-service/internal/service"
)

const (
	testSecret = "router-test-secret"
	apiPrefix  = "/api/v1"
)

type testServer struct {
	app        *fiber.App
	codec      *auth.TokenCodec
	metrics    *observability.Metrics
	users      memUserRepo
	categories memCategoryRepo
	products   memProductRepo
	orders     memOrderRepo
	published  []events.Event
}

type serverOption func(*RouteConfig)

func withLoginLimit(perMinute int) serverOption {
	return func(rc *RouteConfig) { rc.LoginLimiter = NewLoginLimiter(perMinute) }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	s := &testServer{
		codec:      auth.NewTokenCodec(testSecret),
		metrics:    observability.NewMetrics(),
		users:      memUserRepo{newMemStore[domain.User]()},
		categories: memCategoryRepo{newMemStore[domain.Category]()},
		products:   memProductRepo{newMemStore[domain.Product]()},
		orders:     memOrderRepo{newMemStore[domain.Order]()},
	}

	rules, err := auth.ParseRules(config.AppConfig{APIPrefix: apiPrefix}.DefaultExemptRoutes())
	require.NoError(t, err)
	policy, err := auth.NewPolicyMatcher(rules)
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{events.EventUserRegistered, events.EventOrderPlaced, events.EventOrderStatusChanged} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			s.published = append(s.published, e)
			return nil
		})
	}

	logger := zap.NewNop()
	credentials := auth.NewCredentialVerifier(s.users, s.codec, bcrypt.MinCost)
	catalog := service.NewCatalogService(s.categories, s.products, nil, logger)

	s.app = fiber.New(fiber.Config{CaseSensitive: true, ErrorHandler: ErrorHandler})
	RegisterMiddlewares(s.app, logger, s.metrics, MiddlewareConfig{Timeout: 5 * time.Second})

	rc := RouteConfig{
		APIPrefix:      apiPrefix,
		Health:         handlers.NewHealthHandler("eshop-service", "test", nil),
		Users:          handlers.NewUsersHandler(service.NewAuthService(s.users, credentials, dispatcher), service.NewUserService(s.users), s.metrics),
		Categories:     handlers.NewCategoriesHandler(catalog),
		Products:       handlers.NewProductsHandler(catalog),
		Orders:         handlers.NewOrdersHandler(service.NewOrderService(s.orders, s.products, dispatcher)),
		AuthMiddleware: auth.NewMiddleware(auth.NewGate(policy, s.codec), s.metrics),
		Metrics:        s.metrics.Handler(),
	}
	for _, opt := range opts {
		opt(&rc)
	}
	RegisterRoutes(s.app, rc)
	return s
}

func (s *testServer) seedUser(t *testing.T, email, password string, isAdmin bool) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{Name: email, Email: email, PasswordHash: hash, IsAdmin: isAdmin}
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func (s *testServer) seedProduct(t *testing.T, name string, price float64) *domain.Product {
	t.Helper()
	category := &domain.Category{Name: "General"}
	require.NoError(t, s.categories.Create(context.Background(), category))
	product := &domain.Product{Name: name, Description: name, Price: price, CategoryID: category.ID, IsFeatured: true}
	require.NoError(t, s.products.Create(context.Background(), product))
	return product
}

func (s *testServer) tokenFor(t *testing.T, user *domain.User) string {
	t.Helper()
	token, err := s.codec.Issue(user.ID, user.IsAdmin)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, raw []byte) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return env
}

func TestLoginThenAdminRouteAsCustomer(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "customer@example.com", "s3cret", false)

	resp, raw := s.do(t, http.MethodPost, apiPrefix+"/users/login", "", map[string]string{
		"email": "customer@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var login struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))
	assert.Equal(t, "customer@example.com", login.Email)
	require.NotEmpty(t, login.Token)

	resp, raw = s.do(t, http.MethodGet, apiPrefix+"/users", login.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_PRIVILEGE", decodeError(t, raw).Error.Code)
	series, err := testutil.GatherAndCount(s.metrics.Registry(), "eshop_login_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "customer@example.com", "s3cret", false)

	cases := []struct {
		name     string
		body     map[string]string
		wantCode string
	}{
		{"wrong password", map[string]string{"email": "customer@example.com", "password": "nope"}, "WRONG_PASSWORD"},
		{"missing password", map[string]string{"email": "customer@example.com"}, "MISSING_PASSWORD"},
		{"unknown user", map[string]string{"email": "ghost@example.com", "password": "s3cret"}, "USER_NOT_FOUND"},
		{"unknown user without password", map[string]string{"email": "ghost@example.com"}, "USER_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := s.do(t, http.MethodPost, apiPrefix+"/users/login", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.wantCode, decodeError(t, raw).Error.Code)
			assert.NotContains(t, string(raw), "token")
		})
	}
}

func TestPublicCatalogWithoutToken(t *testing.T) {
	s := newTestServer(t)
	product := s.seedProduct(t, "Lamp", 19.5)

	resp, raw := s.do(t, http.MethodGet, apiPrefix+"/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "Lamp")
	assertCategoryPopulated(t, raw, true)

	resp, raw = s.do(t, http.MethodGet, apiPrefix+"/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assertCategoryPopulated(t, raw, false)

	resp, _ = s.do(t, http.MethodGet, apiPrefix+"/products/get/featured/0", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, apiPrefix+"/categories", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// assertCategoryPopulated checks that product bodies carry exactly one
// "category" key holding the category document.
func assertCategoryPopulated(t *testing.T, raw []byte, list bool) {
	t.Helper()
	var products []map[string]json.RawMessage
	if list {
		var env struct {
			Data []map[string]json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &env))
		products = env.Data
	} else {
		var env struct {
			Data map[string]json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &env))
		products = append(products, env.Data)
	}
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.NotContains(t, p, "Category")
		var category domain.Category
		require.NoError(t, json.Unmarshal(p["category"], &category), string(p["category"]))
		assert.Equal(t, "General", category.Name)
	}
}

func TestExpiredTokenNeverReachesHandler(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin@example.com", "root", true)
	product := s.seedProduct(t, "Lamp", 19.5)

	issuedAt := time.Now().Add(-25 * time.Hour)
	stale := auth.NewTokenCodec(testSecret, auth.WithClock(func() time.Time { return issuedAt }))
	token, err := stale.Issue(admin.ID, true)
	require.NoError(t, err)

	resp, raw := s.do(t, http.MethodPost, apiPrefix+"/products", token, map[string]any{
		"name": "Desk", "description": "oak", "price": 120, "category": product.CategoryID,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_EXPIRED", decodeError(t, raw).Error.Code)

	n, err := s.products.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAdminManagesCatalog(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin@example.com", "root", true)
	customer := s.seedUser(t, "customer@example.com", "s3cret", false)
	product := s.seedProduct(t, "Lamp", 19.5)

	body := map[string]any{"name": "Desk", "description": "oak", "price": 120, "category": product.CategoryID}

	resp, raw := s.do(t, http.MethodPost, apiPrefix+"/products", s.tokenFor(t, customer), body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))

	resp, raw = s.do(t, http.MethodPost, apiPrefix+"/products", s.tokenFor(t, admin), body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	body["category"] = "missing"
	resp, raw = s.do(t, http.MethodPost, apiPrefix+"/products", s.tokenFor(t, admin), body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid category", decodeError(t, raw).Error.Message)

	resp, _ = s.do(t, http.MethodPut, apiPrefix+"/products/gallery-images/"+product.ID, s.tokenFor(t, admin),
		map[string]any{"images": []string{"/public/uploads/a.png", "/public/uploads/b.png"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stored, err := s.products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Images, 2)
}

func TestAuthenticationRejections(t *testing.T) {
	s := newTestServer(t)
	customer := s.seedUser(t, "customer@example.com", "s3cret", false)
	token := s.tokenFor(t, customer)
	tampered := token[:len(token)-2] + "xx"

	cases := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode string
	}{
		{"no header on protected route", http.MethodGet, apiPrefix + "/orders", "", "NO_TOKEN"},
		{"unknown route", http.MethodGet, apiPrefix + "/nowhere", "", "NO_TOKEN"},
		{"malformed token", http.MethodGet, apiPrefix + "/orders", "abc.def", "MALFORMED_TOKEN"},
		{"bad signature", http.MethodGet, apiPrefix + "/orders", tampered, "BAD_SIGNATURE"},
		{"write to public collection", http.MethodPost, apiPrefix + "/categories", "", "NO_TOKEN"},
		{"case variant of exempt path", http.MethodGet, "/API/v1/products", "", "NO_TOKEN"},
		{"dot segments", http.MethodGet, apiPrefix + "/products/../orders", "", "NO_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := s.do(t, tc.method, tc.path, tc.token, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, string(raw))
			assert.Equal(t, tc.wantCode, decodeError(t, raw).Error.Code)
		})
	}
}

func TestRegisterNeverGrantsAdmin(t *testing.T) {
	s := newTestServer(t)

	resp, raw := s.do(t, http.MethodPost, apiPrefix+"/users/register", "", map[string]any{
		"name": "Mallory", "email": "Mallory@Example.com", "password": "pw", "isAdmin": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.NotContains(t, string(raw), "passwordHash")

	user, err := s.users.GetByEmail(context.Background(), "mallory@example.com")
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
	assert.Equal(t, "mallory@example.com", user.Email)
	require.Len(t, s.published, 1)
	assert.Equal(t, events.EventUserRegistered, s.published[0].Type)

	resp, raw = s.do(t, http.MethodPost, apiPrefix+"/users/register", "", map[string]any{
		"name": "Mallory", "email": "mallory@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))

	resp, raw = s.do(t, http.MethodPost, apiPrefix+"/users/register", "", map[string]any{
		"name": "Eve", "email": "eve@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_PASSWORD", decodeError(t, raw).Error.Code)
}

func TestAdminCreatesAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin@example.com", "root", true)

	resp, raw := s.do(t, http.MethodPost, apiPrefix+"/users", s.tokenFor(t, admin), map[string]any{
		"name": "Ops", "email": "ops@example.com", "password": "pw", "isAdmin": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	user, err := s.users.GetByEmail(context.Background(), "ops@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestUserProfileSelfOrAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin@example.com", "root", true)
	alice := s.seedUser(t, "alice@example.com", "pw", false)
	bob := s.seedUser(t, "bob@example.com", "pw", false)

	resp, _ := s.do(t, http.MethodGet, apiPrefix+"/users/"+alice.ID, s.tokenFor(t, alice), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, apiPrefix+"/users/"+alice.ID, s.tokenFor(t, bob), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, apiPrefix+"/users/"+alice.ID, s.tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := s.do(t, http.MethodGet, apiPrefix+"/users/get/count", s.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":3}`, string(raw))
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin@example.com", "root", true)
	alice := s.seedUser(t, "alice@example.com", "pw", false)
	bob := s.seedUser(t, "bob@example.com", "pw", false)
	lamp := s.seedProduct(t, "Lamp", 19.5)

	resp, raw := s.do(t, http.MethodPost, apiPrefix+"/orders", s.tokenFor(t, alice), map[string]any{
		"orderItems":       []map[string]any{{"product": lamp.ID, "quantity": 2}},
		"shippingAddress1": "1 Main St",
		"city":             "Prague",
		"zip":              "11000",
		"country":          "CZ",
		"phone":            "+420123",
		"totalPrice":       1,
		"user":             bob.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var placed struct {
		Data domain.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &placed))
	assert.Equal(t, alice.ID, placed.Data.UserID)
	assert.InDelta(t, 39.0, placed.Data.TotalPrice, 0.001)
	assert.Equal(t, domain.OrderStatusPending, placed.Data.Status)

	orderPath := apiPrefix + "/orders/" + placed.Data.ID
	resp, _ = s.do(t, http.MethodGet, orderPath, s.tokenFor(t, alice), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, orderPath, s.tokenFor(t, bob), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, apiPrefix+"/orders/get/userorders/"+alice.ID, s.tokenFor(t, bob), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, orderPath, s.tokenFor(t, alice), map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = s.do(t, http.MethodPut, orderPath, s.tokenFor(t, admin), map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = s.do(t, http.MethodGet, apiPrefix+"/orders/get/totalsales", s.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"totalsales":39}`, string(raw))

	var types []events.EventType
	for _, e := range s.published {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.EventType{events.EventOrderPlaced, events.EventOrderStatusChanged}, types)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	s := newTestServer(t)
	alice := s.seedUser(t, "alice@example.com", "pw", false)

	resp, raw := s.do(t, http.MethodPost, apiPrefix+"/orders", s.tokenFor(t, alice), map[string]any{
		"orderItems":       []map[string]any{{"product": "missing", "quantity": 1}},
		"shippingAddress1": "1 Main St",
		"city":             "Prague",
		"zip":              "11000",
		"country":          "CZ",
		"phone":            "+420123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
	n, _ := s.orders.Count(context.Background())
	assert.Zero(t, n)
}

func TestPreflightAnsweredBeforeGate(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, apiPrefix+"/orders", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://shop.example.com")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestLoginRateLimited(t *testing.T) {
	s := newTestServer(t, withLoginLimit(2))
	s.seedUser(t, "customer@example.com", "s3cret", false)
	body := map[string]string{"email": "customer@example.com", "password": "nope"}

	for i := 0; i < 2; i++ {
		resp, _ := s.do(t, http.MethodPost, apiPrefix+"/users/login", "", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
	resp, raw := s.do(t, http.MethodPost, apiPrefix+"/users/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, raw).Error.Code)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestHealthAndMetricsAreExempt(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "eshop_auth_decisions_total")
}
