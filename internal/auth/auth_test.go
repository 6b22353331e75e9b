package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/foliobay/backend/internal/config"
	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
)

func testService() *Service {
	return NewService(nil, &config.JWTConfig{
		Secret:             "test-secret-key-for-unit-tests",
		Issuer:             "foliobay-test",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	})
}

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "trader@example.com",
		Role:  models.UserRoleMember,
	}
}

func TestTokenPair_RoundTrip(t *testing.T) {
	svc := testService()
	user := testUser()

	pair, err := svc.generateTokenPair(user)
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("unexpected token type %q", pair.TokenType)
	}

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("access token did not validate: %v", err)
	}
	if claims.UserID != user.ID.String() {
		t.Errorf("claims user %s, want %s", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("claims email %s, want %s", claims.Email, user.Email)
	}
	if claims.Role != string(models.UserRoleMember) {
		t.Errorf("claims role %s, want member", claims.Role)
	}
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	svc := testService()

	pair, err := svc.generateTokenPair(testUser())
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}

	if _, err := svc.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh token, got %v", err)
	}
}

func TestValidateAccessToken_RejectsOtherSecret(t *testing.T) {
	svc := testService()
	other := NewService(nil, &config.JWTConfig{
		Secret:            "a-different-secret",
		Issuer:            "foliobay-test",
		AccessTokenExpiry: 15 * time.Minute,
	})

	pair, err := other.generateTokenPair(testUser())
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}

	if _, err := svc.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := NewService(nil, &config.JWTConfig{
		Secret:            "test-secret-key-for-unit-tests",
		Issuer:            "foliobay-test",
		AccessTokenExpiry: -time.Minute,
	})

	pair, err := svc.generateTokenPair(testUser())
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}

	if _, err := svc.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestGenerateJTI_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		jti := generateJTI()
		if jti == "" {
			t.Fatal("empty JTI")
		}
		if seen[jti] {
			t.Fatalf("duplicate JTI %s", jti)
		}
		seen[jti] = true
	}
}
