// Package server wires the HTTP API: routing, authentication, and the
// translation between service errors and wire responses.
package server

import (
	"net/http"

	"github.com/foliobay/backend/internal/auth"
	"github.com/foliobay/backend/internal/balance"
	"github.com/foliobay/backend/internal/cache"
	"github.com/foliobay/backend/internal/config"
	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/foliobay/backend/internal/filestore"
	"github.com/foliobay/backend/internal/logging"
	"github.com/foliobay/backend/internal/middleware"
	"github.com/foliobay/backend/internal/monitoring"
	"github.com/foliobay/backend/internal/notification"
	"github.com/foliobay/backend/internal/portfolio"
	"github.com/foliobay/backend/internal/profile"
	"github.com/foliobay/backend/internal/purchase"
	"github.com/foliobay/backend/internal/review"
	"github.com/foliobay/backend/internal/subscription"
	"github.com/foliobay/backend/internal/verification"
	"github.com/foliobay/backend/internal/vote"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// APIServer represents the main API server
type APIServer struct {
	config           *config.Config
	router           *gin.Engine
	db               *pgxpool.Pool
	jwtAuthenticator *middleware.JWTAuthenticator

	authService         *auth.Service
	profileService      *profile.Service
	verificationService *verification.Service
	portfolioService    *portfolio.Service
	voteService         *vote.Service
	reviewService       *review.Service
	balanceService      *balance.Service
	purchaseService     *purchase.Service
	subscriptionService *subscription.Service
	notificationService *notification.Service
	files               *filestore.Store
}

// NewAPIServer creates a new API server instance. cacheClient and files may
// be nil; the features backed by them degrade gracefully.
func NewAPIServer(cfg *config.Config, db *pgxpool.Pool, cacheClient *cache.Redis, files *filestore.Store) *APIServer {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	notificationService := notification.NewService(db)
	balanceService := balance.NewService(db, balance.NewClient(&cfg.Ledger))

	srv := &APIServer{
		config:           cfg,
		router:           router,
		db:               db,
		jwtAuthenticator: middleware.NewJWTAuthenticator(&cfg.JWT),

		authService:         auth.NewService(db, &cfg.JWT),
		profileService:      profile.NewService(db),
		verificationService: verification.NewService(db, notificationService),
		portfolioService:    portfolio.NewService(db, cacheClient, cfg.Marketplace.MaxAttachments, cfg.Marketplace.ListingCacheTTL),
		voteService:         vote.NewService(db),
		reviewService:       review.NewService(db),
		balanceService:      balanceService,
		purchaseService:     purchase.NewService(db, balanceService, notificationService, cfg.Marketplace.PlatformFeeRate),
		subscriptionService: subscription.NewService(db, balanceService, notificationService),
		notificationService: notificationService,
		files:               files,
	}

	srv.setupRoutes()
	return srv
}

// Router returns the gin router
func (s *APIServer) Router() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *APIServer) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	requireAuth := s.jwtAuthenticator.JWTAuth()
	requireSeller := middleware.RequireSellerAccess(s.profileService.CanAccessSellerFeatures)

	v1 := s.router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/logout", s.handleLogout)
			authGroup.POST("/refresh", s.handleRefresh)
		}

		// Marketplace routes (public)
		marketplace := v1.Group("/marketplace")
		{
			marketplace.GET("/portfolios", s.handleListPortfolios)
			marketplace.GET("/portfolios/:id", s.handleGetPortfolio)
			marketplace.GET("/sellers/:id", s.handleGetSellerProfile)
			marketplace.GET("/sellers/:id/reviews", s.handleListReviews)
		}

		// Subscription tiers (public)
		v1.GET("/subscriptions/tiers", s.handleListTiers)

		// Own account routes
		me := v1.Group("/me")
		me.Use(requireAuth)
		{
			me.GET("/profile", s.handleGetOwnProfile)
			me.PUT("/profile", s.handleUpdateProfile)
			me.PUT("/seller-mode", s.handleSetSellerMode)
			me.DELETE("", s.handleDeleteAccount)

			me.GET("/balance", s.handleGetBalance)
			me.POST("/balance/topup", s.handleTopUp)
			me.POST("/balance/withdraw", s.handleWithdraw)

			me.GET("/purchases", s.handleListPurchases)
			me.DELETE("/purchases/:id", s.handleRemovePurchase)

			me.GET("/notifications", s.handleListNotifications)
			me.POST("/notifications/:id/read", s.handleMarkNotificationRead)
			me.POST("/notifications/read-all", s.handleMarkAllNotificationsRead)
			me.DELETE("/notifications/:id", s.handleDeleteNotification)
			me.DELETE("/notifications", s.handleDeleteAllNotifications)

			me.PUT("/subscription", s.handleChangeSubscription)

			me.GET("/verification", s.handleGetOwnVerification)
			me.POST("/verification", s.handleSubmitVerification)
		}

		// Portfolio management (seller gate re-checked on every request)
		portfolios := v1.Group("/portfolios")
		portfolios.Use(requireAuth)
		{
			portfolios.POST("", requireSeller, s.handleCreatePortfolio)
			portfolios.PUT("/:id", requireSeller, s.handleUpdatePortfolio)
			portfolios.DELETE("/:id", requireSeller, s.handleDeletePortfolio)

			portfolios.POST("/:id/blocks", requireSeller, s.handleInsertBlock)
			portfolios.DELETE("/:id/blocks/:blockID", requireSeller, s.handleRemoveBlock)
			portfolios.POST("/:id/blocks/:blockID/split", requireSeller, s.handleSplitBlock)

			// Engagement is open to any authenticated user
			portfolios.POST("/:id/vote", s.handleCastVote)
			portfolios.POST("/:id/purchase", s.handlePurchase)
		}

		// Reviews of sellers
		sellers := v1.Group("/sellers")
		sellers.Use(requireAuth)
		{
			sellers.PUT("/:id/review", s.handleSubmitReview)
			sellers.DELETE("/:id/review", s.handleDeleteReview)
		}

		// Presigned upload URLs
		uploads := v1.Group("/uploads")
		uploads.Use(requireAuth)
		{
			uploads.POST("/avatar", s.handlePresignAvatar)
			uploads.POST("/identity", s.handlePresignIdentity)
			uploads.POST("/attachment", s.handlePresignAttachment)
			uploads.GET("/download", s.handlePresignDownload)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(requireAuth)
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/verification/applications", s.handleListPendingVerifications)
			admin.POST("/verification/applications/:id/approve", s.handleApproveVerification)
			admin.POST("/verification/applications/:id/reject", s.handleRejectVerification)
		}
	}
}

// Health check handler
func (s *APIServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "api",
	})
}

// handleRegister handles user registration
func (s *APIServer) handleRegister(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch err {
		case auth.ErrEmailAlreadyExists:
			respondError(c, apierrors.NewInvalidRequestError("Email already registered"))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// handleLogin handles user login
func (s *APIServer) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			respondError(c, apierrors.ErrInvalidCredentialsError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleLogout handles user logout
func (s *APIServer) handleLogout(c *gin.Context) {
	// Stateless JWT; the client discards its tokens
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// handleRefresh handles token refresh
func (s *APIServer) handleRefresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	tokens, err := s.authService.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case auth.ErrInvalidToken:
			respondError(c, apierrors.ErrInvalidCredentialsError)
		case auth.ErrTokenExpired:
			respondError(c, apierrors.ErrTokenExpiredError)
		case auth.ErrUserNotFound:
			respondError(c, apierrors.ErrUserNotFoundError)
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// currentUserID extracts and parses the authenticated user's ID. Responds
// with an auth error and returns false if it is absent or malformed.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr := middleware.GetUserIDFromContext(c)
	if userIDStr == "" {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		respondError(c, apierrors.ErrInvalidCredentialsError)
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a UUID path parameter. Responds with a validation error
// and returns false if it is malformed.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// respondError sends a standardized error response
func respondError(c *gin.Context, err *apierrors.APIError) {
	requestID, _ := c.Get("request_id")
	reqIDStr, _ := requestID.(string)

	if err.HTTPStatus >= http.StatusInternalServerError {
		logging.LogError(err, reqIDStr, "api", c.FullPath())
	}

	c.JSON(err.HTTPStatus, apierrors.ErrorResponse{
		Error:     *err,
		RequestID: reqIDStr,
	})
}
