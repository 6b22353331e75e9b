package server

import (
	"errors"
	"net/http"

	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/foliobay/backend/internal/monitoring"
	"github.com/foliobay/backend/internal/subscription"
	"github.com/gin-gonic/gin"
)

// handleListTiers lists the available subscription tiers
func (s *APIServer) handleListTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tiers": subscription.Tiers()})
}

// handleChangeSubscription moves the caller to a different tier
func (s *APIServer) handleChangeSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req subscription.ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	result, err := s.subscriptionService.Change(c.Request.Context(), userID, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrUnknownTier):
			respondError(c, apierrors.NewValidationError("Unknown subscription tier"))
		case errors.Is(err, subscription.ErrSameTier):
			respondError(c, apierrors.NewInvalidRequestError("Already on this tier"))
		case errors.Is(err, subscription.ErrUserNotFound):
			respondError(c, apierrors.ErrUserNotFoundError)
		default:
			respondLedgerError(c, err)
		}
		return
	}

	monitoring.RecordSubscriptionChange(result.Tier)
	c.JSON(http.StatusOK, result)
}
