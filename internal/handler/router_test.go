package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/3dstuff/store-bff-go/internal/domain"
	"github.com/3dstuff/store-bff-go/internal/handler"
	"github.com/3dstuff/store-bff-go/internal/infra/cache"
	"github.com/3dstuff/store-bff-go/internal/infra/observability"
	"github.com/3dstuff/store-bff-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks ---

type stubProducts struct{}

func (stubProducts) ListProducts(_ context.Context, _ string) ([]domain.Product, error) {
	return []domain.Product{{ID: "vaso", Name: "Vaso", Price: 59.90}}, nil
}

func (stubProducts) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if id != "vaso" {
		return nil, &domain.ErrNotFound{Resource: "product", ID: id}
	}
	return &domain.Product{ID: "vaso", Name: "Vaso", Price: 59.90}, nil
}

type stubRelay struct{ sent bool }

func (s *stubRelay) SendContact(_ context.Context, _ *domain.ContactMessage) error {
	s.sent = true
	return nil
}

// --- Helpers ---

type testEnv struct {
	router http.Handler
	relay  *stubRelay
}

func newTestRouter(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	checkoutSvc := service.NewCheckout(
		nil, // fallback mode: payments blocked
		stubProducts{},
		cache.New[[]domain.InstallmentOption](time.Minute),
		metrics,
		logger,
		service.CheckoutOptions{},
	)
	catalogSvc := service.NewCatalog(
		stubProducts{}, nil, nil,
		cache.New[[]domain.Product](time.Minute),
		metrics, logger,
		domain.CompanyInfo{Name: "3D Stuff", Email: "contato@3dstuff.com.br"},
	)
	relay := &stubRelay{}
	contactSvc := service.NewContact(relay, metrics, logger)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	authSvc := service.NewAuth("secret", time.Hour, "admin", string(hash), logger)

	return &testEnv{
		router: handler.NewRouter(checkoutSvc, catalogSvc, contactSvc, authSvc, metrics, []string{"*"}, logger),
		relay:  relay,
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer = bytes.NewBuffer(nil)
	if payload != nil {
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestOperationalEndpoints(t *testing.T) {
	env := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/ping"} {
		rec := doJSON(t, env.router, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestListProducts(t *testing.T) {
	env := newTestRouter(t)

	rec := doJSON(t, env.router, http.MethodGet, "/v1/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var products []domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&products); err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].ID != "vaso" {
		t.Errorf("unexpected products: %+v", products)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestRouter(t)

	rec := doJSON(t, env.router, http.MethodGet, "/v1/products/inexistente", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCheckoutSessionLifecycle(t *testing.T) {
	env := newTestRouter(t)

	// Open.
	rec := doJSON(t, env.router, http.MethodPost, "/v1/checkout/sessions", map[string]string{"product_id": "vaso"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var snap domain.SessionSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.State != domain.StateIdle || snap.AmountDisplay != "R$ 59,90" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	// Read back.
	rec = doJSON(t, env.router, http.MethodGet, "/v1/checkout/sessions/"+snap.SessionID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}

	// Installments endpoint answers the fixed envelope.
	rec = doJSON(t, env.router, http.MethodGet, "/v1/checkout/sessions/"+snap.SessionID+"/installments", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("installments: expected 200, got %d", rec.Code)
	}
	var inst map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&inst); err != nil {
		t.Fatal(err)
	}
	if inst["success"] != true {
		t.Errorf("expected success envelope, got %v", inst)
	}

	// Close, then close again.
	rec = doJSON(t, env.router, http.MethodDelete, "/v1/checkout/sessions/"+snap.SessionID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("close: expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, env.router, http.MethodDelete, "/v1/checkout/sessions/"+snap.SessionID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("double close: expected 404, got %d", rec.Code)
	}
}

func TestSubmitPayment_ValidationAndConfigErrors(t *testing.T) {
	env := newTestRouter(t)

	rec := doJSON(t, env.router, http.MethodPost, "/v1/checkout/sessions", map[string]string{"product_id": "vaso"})
	var snap domain.SessionSnapshot
	json.NewDecoder(rec.Body).Decode(&snap)

	// Bad document -> 400 before anything else.
	rec = doJSON(t, env.router, http.MethodPost, "/v1/checkout/sessions/"+snap.SessionID+"/pay", domain.PaymentRequest{
		Customer: domain.Customer{Name: "Maria", Email: "maria@example.com", Document: "123"},
		Method:   domain.MethodPix,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid document, got %d", rec.Code)
	}

	// Valid request but no backend configured -> 503.
	rec = doJSON(t, env.router, http.MethodPost, "/v1/checkout/sessions/"+snap.SessionID+"/pay", domain.PaymentRequest{
		Customer: domain.Customer{Name: "Maria", Email: "maria@example.com", Document: "123.456.789-09"},
		Method:   domain.MethodPix,
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without backend, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestContactEndpoint(t *testing.T) {
	env := newTestRouter(t)

	rec := doJSON(t, env.router, http.MethodPost, "/v1/contact", domain.ContactMessage{
		Name: "Maria", Email: "maria@example.com", Message: "Olá",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !env.relay.sent {
		t.Error("expected message relayed")
	}

	rec = doJSON(t, env.router, http.MethodPost, "/v1/contact", domain.ContactMessage{Name: "Maria"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete message, got %d", rec.Code)
	}
}

func TestCompanyInfoEndpoint(t *testing.T) {
	env := newTestRouter(t)

	rec := doJSON(t, env.router, http.MethodGet, "/v1/company/info", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var info domain.CompanyInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Name != "3D Stuff" {
		t.Errorf("unexpected company info: %+v", info)
	}
}

func TestCheckoutMetricsEndpoint(t *testing.T) {
	env := newTestRouter(t)

	rec := doJSON(t, env.router, http.MethodGet, "/v1/metrics/checkout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var m domain.CheckoutMetrics
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	if m.Period != "all_time" {
		t.Errorf("unexpected snapshot: %+v", m)
	}
}

func TestAdminProductCreation_RequiresToken(t *testing.T) {
	env := newTestRouter(t)

	payload := domain.NewProductRequest{Name: "Novo", Category: "Decoração", Price: 10}

	// Without a token.
	rec := doJSON(t, env.router, http.MethodPost, "/v1/products", payload)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// Login, then retry with the bearer token.
	rec = doJSON(t, env.router, http.MethodPost, "/v1/auth/login", domain.LoginRequest{Username: "admin", Password: "s3nha"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var login domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&login); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	authRec := httptest.NewRecorder()
	env.router.ServeHTTP(authRec, req)

	// Catalog runs in read-only fallback mode here, so the write is
	// authenticated but blocked by configuration.
	if authRec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 in read-only mode, got %d (%s)", authRec.Code, authRec.Body.String())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestRouter(t)

	rec := doJSON(t, env.router, http.MethodPost, "/v1/auth/login", domain.LoginRequest{Username: "admin", Password: "errada"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
