package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foliobay/backend/internal/config"
	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testJWTConfig = &config.JWTConfig{
	Secret:             "test-secret-key-for-unit-tests",
	Issuer:             "foliobay-test",
	AccessTokenExpiry:  15 * time.Minute,
	RefreshTokenExpiry: 7 * 24 * time.Hour,
}

func createTestToken(t *testing.T, userID, role, subject string, expiry time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    testJWTConfig.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTConfig.Secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func authedRouter(authenticator *JWTAuthenticator, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{authenticator.JWTAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserIDFromContext(c)})
	})
	router.GET("/protected", handlers...)
	return router
}

func errorCode(t *testing.T, body []byte) apierrors.ErrorCode {
	t.Helper()
	var resp apierrors.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error.Code
}

func TestJWTAuth_ValidToken(t *testing.T) {
	router := authedRouter(NewJWTAuthenticator(testJWTConfig))
	userID := uuid.New().String()
	token := createTestToken(t, userID, "member", "access", time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	router := authedRouter(NewJWTAuthenticator(testJWTConfig))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	router := authedRouter(NewJWTAuthenticator(testJWTConfig))
	token := createTestToken(t, uuid.New().String(), "member", "access", -time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != apierrors.ErrTokenExpired {
		t.Fatalf("expected token expired code, got %s", code)
	}
}

func TestJWTAuth_RefreshTokenRejected(t *testing.T) {
	router := authedRouter(NewJWTAuthenticator(testJWTConfig))
	token := createTestToken(t, uuid.New().String(), "member", "refresh", time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token must not pass access auth, got %d", w.Code)
	}
}

func TestJWTAuth_GarbageToken(t *testing.T) {
	router := authedRouter(NewJWTAuthenticator(testJWTConfig))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	authenticator := NewJWTAuthenticator(testJWTConfig)

	tests := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"member", http.StatusForbidden},
	}
	for _, tt := range tests {
		router := authedRouter(authenticator, RequireAdmin())
		token := createTestToken(t, uuid.New().String(), tt.role, "access", time.Minute)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Errorf("role %s: expected %d, got %d", tt.role, tt.want, w.Code)
		}
	}
}

func TestRequireSellerAccess_Allowed(t *testing.T) {
	authenticator := NewJWTAuthenticator(testJWTConfig)
	checker := func(ctx context.Context, userID uuid.UUID) (bool, error) { return true, nil }
	router := authedRouter(authenticator, RequireSellerAccess(checker))
	token := createTestToken(t, uuid.New().String(), "member", "access", time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireSellerAccess_Denied(t *testing.T) {
	authenticator := NewJWTAuthenticator(testJWTConfig)
	checker := func(ctx context.Context, userID uuid.UUID) (bool, error) { return false, nil }
	router := authedRouter(authenticator, RequireSellerAccess(checker))
	token := createTestToken(t, uuid.New().String(), "member", "access", time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != apierrors.ErrSellerAccessRequired {
		t.Fatalf("expected seller access code, got %s", code)
	}
}

func TestRequireSellerAccess_AdminBypassesStoreCheck(t *testing.T) {
	authenticator := NewJWTAuthenticator(testJWTConfig)
	checker := func(ctx context.Context, userID uuid.UUID) (bool, error) {
		t.Fatal("checker must not be consulted for admins")
		return false, nil
	}
	router := authedRouter(authenticator, RequireSellerAccess(checker))
	token := createTestToken(t, uuid.New().String(), "admin", "access", time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireSellerAccess_CheckerFailure(t *testing.T) {
	authenticator := NewJWTAuthenticator(testJWTConfig)
	checker := func(ctx context.Context, userID uuid.UUID) (bool, error) {
		return false, errors.New("store unavailable")
	}
	router := authedRouter(authenticator, RequireSellerAccess(checker))
	token := createTestToken(t, uuid.New().String(), "member", "access", time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestRequestID_Generated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated request ID")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-supplied" {
		t.Fatalf("expected propagated request ID, got %q", got)
	}
}
