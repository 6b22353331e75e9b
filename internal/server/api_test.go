package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foliobay/backend/internal/config"
	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer() *APIServer {
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test", Name: "foliobay-api"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-for-unit-tests",
			Issuer:             "foliobay-test",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Ledger: config.LedgerConfig{BaseURL: "http://localhost:0", Timeout: time.Second},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
		Marketplace: config.MarketplaceConfig{
			PlatformFeeRate: decimal.NewFromFloat(0.10),
			MaxAttachments:  30,
			ListingCacheTTL: 2 * time.Minute,
		},
	}
	return NewAPIServer(cfg, nil, nil, nil)
}

func TestHealthCheck(t *testing.T) {
	srv := testServer()

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestRegister_ValidationRejected(t *testing.T) {
	srv := testServer()

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"bad email", `{"email":"not-an-email","password":"longenough","display_name":"x"}`},
		{"short password", `{"email":"a@b.com","password":"short","display_name":"x"}`},
		{"missing display name", `{"email":"a@b.com","password":"longenough"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			srv.Router().ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}

			var resp apierrors.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.Error.Code != apierrors.ErrValidationFailed {
				t.Fatalf("expected validation code, got %s", resp.Error.Code)
			}
		})
	}
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	srv := testServer()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/me/profile"},
		{http.MethodGet, "/api/v1/me/balance"},
		{http.MethodPost, "/api/v1/portfolios"},
		{http.MethodGet, "/api/v1/admin/verification/applications"},
	}

	for _, p := range paths {
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/marketplace/portfolios", nil)
	req.Header.Set("Origin", "https://app.example.com")
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("expected CORS headers on preflight")
	}
}
