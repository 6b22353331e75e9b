package server

import (
	"errors"
	"net/http"

	"github.com/foliobay/backend/internal/balance"
	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/foliobay/backend/internal/middleware"
	"github.com/foliobay/backend/internal/profile"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// handleGetOwnProfile returns the caller's full profile
func (s *APIServer) handleGetOwnProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	p, err := s.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			respondError(c, apierrors.ErrUserNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// handleGetSellerProfile returns a seller's public profile with rating
func (s *APIServer) handleGetSellerProfile(c *gin.Context) {
	sellerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	p, err := s.profileService.Get(c.Request.Context(), sellerID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			respondError(c, apierrors.ErrUserNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	avg, count, err := s.reviewService.SellerRating(c.Request.Context(), sellerID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":        p,
		"average_rating": avg,
		"review_count":   count,
	})
}

// handleUpdateProfile applies a partial profile update
func (s *APIServer) handleUpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req profile.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	p, err := s.profileService.Update(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			respondError(c, apierrors.ErrUserNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// handleSetSellerMode toggles the caller's seller mode
func (s *APIServer) handleSetSellerMode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req profile.SellerModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	p, err := s.profileService.SetSellerMode(c.Request.Context(), userID, *req.SellerMode, middleware.GetRoleFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrVerificationRequired):
			respondError(c, apierrors.ErrSellerAccessRequiredError)
		case errors.Is(err, profile.ErrProfileNotFound):
			respondError(c, apierrors.ErrUserNotFoundError)
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// handleDeleteAccount soft-deletes the caller's account
func (s *APIServer) handleDeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := s.profileService.SoftDelete(c.Request.Context(), userID); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			respondError(c, apierrors.ErrUserNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

type amountRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
}

// handleGetBalance returns the caller's balance
func (s *APIServer) handleGetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	b, err := s.balanceService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, b)
}

// handleTopUp credits the caller's balance through the ledger
func (s *APIServer) handleTopUp(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	result, err := s.balanceService.TopUp(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleWithdraw debits the caller's balance through the ledger
func (s *APIServer) handleWithdraw(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	result, err := s.balanceService.Withdraw(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondLedgerError translates ledger failures into wire responses.
// Business-rule rejections get actionable 422s; transport failures get 503.
func respondLedgerError(c *gin.Context, err error) {
	if errors.Is(err, balance.ErrInvalidAmount) {
		respondError(c, apierrors.NewInvalidRequestError("Amount must be positive"))
		return
	}

	var txErr *balance.TransactionError
	if errors.As(err, &txErr) {
		if txErr.Code == balance.CodeInsufficientFunds {
			respondError(c, apierrors.NewInsufficientFundsError(
				txErr.RequiredAmount.StringFixed(2),
				txErr.CurrentBalance.StringFixed(2),
				txErr.Shortfall().StringFixed(2),
			))
		} else {
			respondError(c, apierrors.NewTransactionDeniedError(txErr.Message))
		}
		return
	}

	respondError(c, apierrors.ErrLedgerUnavailableError)
}
