package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foliobay/backend/internal/config"
	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/foliobay/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context keys for storing user information
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
	ContextKeyEmail  = "email"
	ContextKeyClaims = "claims"
)

// JWT validation errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTAuthenticator handles JWT token validation
type JWTAuthenticator struct {
	config *config.JWTConfig
}

// NewJWTAuthenticator creates a new JWT authenticator
func NewJWTAuthenticator(cfg *config.JWTConfig) *JWTAuthenticator {
	return &JWTAuthenticator{config: cfg}
}

// JWTAuth creates a middleware that validates JWT tokens from the
// Authorization header and sets user information in the context
func (j *JWTAuthenticator) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondWithError(c, apierrors.ErrInvalidCredentialsError)
			c.Abort()
			return
		}

		tokenString, err := extractBearerToken(authHeader)
		if err != nil {
			respondWithError(c, apierrors.ErrInvalidCredentialsError)
			c.Abort()
			return
		}

		claims, err := j.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				respondWithError(c, apierrors.ErrTokenExpiredError)
			} else {
				respondWithError(c, apierrors.ErrInvalidCredentialsError)
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// ValidateAccessToken validates an access token and returns claims
func (j *JWTAuthenticator) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := j.validateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Subject != "access" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// validateToken parses and validates a JWT token
func (j *JWTAuthenticator) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// extractBearerToken extracts the token from a Bearer authorization header
func extractBearerToken(authHeader string) (string, error) {
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidToken
	}
	return authHeader[len(bearerPrefix):], nil
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, err *apierrors.APIError) {
	c.JSON(err.HTTPStatus, apierrors.ErrorResponse{
		Error:     *err,
		RequestID: c.GetString("request_id"),
	})
}

// RequireAdmin requires the admin role claim.
// Must be used after JWTAuth middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRoleFromContext(c) != models.UserRoleAdmin {
			respondWithError(c, apierrors.ErrForbiddenError)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SellerAccessChecker reports whether a user currently has seller access.
// Implementations consult the store, not the session.
type SellerAccessChecker func(ctx context.Context, userID uuid.UUID) (bool, error)

// RequireSellerAccess gates seller-only endpoints. Admins pass on their role
// claim alone; everyone else is checked against the store on every request,
// because verification status can change from another session at any time.
func RequireSellerAccess(check SellerAccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRoleFromContext(c) == models.UserRoleAdmin {
			c.Next()
			return
		}

		userID, err := uuid.Parse(GetUserIDFromContext(c))
		if err != nil {
			respondWithError(c, apierrors.ErrInvalidCredentialsError)
			c.Abort()
			return
		}

		allowed, err := check(c.Request.Context(), userID)
		if err != nil {
			respondWithError(c, apierrors.ErrInternalServerError)
			c.Abort()
			return
		}
		if !allowed {
			respondWithError(c, apierrors.ErrSellerAccessRequiredError)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserIDFromContext extracts the user ID from the gin context.
// Returns empty string if not found.
func GetUserIDFromContext(c *gin.Context) string {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return ""
	}
	return userID.(string)
}

// GetRoleFromContext extracts the user role from the gin context.
// Returns empty role if not found.
func GetRoleFromContext(c *gin.Context) models.UserRole {
	role, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	return models.UserRole(role.(string))
}

// GetEmailFromContext extracts the email from the gin context.
// Returns empty string if not found.
func GetEmailFromContext(c *gin.Context) string {
	email, exists := c.Get(ContextKeyEmail)
	if !exists {
		return ""
	}
	return email.(string)
}

// RequestID adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// CORS configures CORS headers
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, o := range allowedOrigins {
			if o == origin || o == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			c.Header("Access-Control-Expose-Headers", "X-Request-ID")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Max-Age", "43200")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
