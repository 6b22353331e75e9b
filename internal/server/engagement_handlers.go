package server

import (
	"errors"
	"net/http"
	"strconv"

	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/foliobay/backend/internal/logging"
	"github.com/foliobay/backend/internal/monitoring"
	"github.com/foliobay/backend/internal/purchase"
	"github.com/foliobay/backend/internal/review"
	"github.com/foliobay/backend/internal/vote"
	"github.com/gin-gonic/gin"
)

// handleCastVote toggles the caller's vote on a portfolio
func (s *APIServer) handleCastVote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req vote.CastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.voteService.Cast(c.Request.Context(), userID, portfolioID, req.VoteType)
	if err != nil {
		if errors.Is(err, vote.ErrPortfolioNotFound) {
			respondError(c, apierrors.ErrPortfolioNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	monitoring.RecordVote(string(req.VoteType))
	c.JSON(http.StatusOK, resp)
}

// handleSubmitReview creates or replaces the caller's review of a seller
func (s *APIServer) handleSubmitReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sellerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req review.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	r, err := s.reviewService.Upsert(c.Request.Context(), userID, sellerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrSelfReview):
			respondError(c, apierrors.NewInvalidRequestError("You cannot review yourself"))
		case errors.Is(err, review.ErrSellerNotFound):
			respondError(c, apierrors.ErrUserNotFoundError)
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, r)
}

// handleListReviews lists a seller's reviews with the live aggregate
func (s *APIServer) handleListReviews(c *gin.Context) {
	sellerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	page, pageSize := paging(c)
	resp, err := s.reviewService.List(c.Request.Context(), sellerID, page, pageSize)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleDeleteReview removes the caller's review of a seller
func (s *APIServer) handleDeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sellerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := s.reviewService.Delete(c.Request.Context(), userID, sellerID); err != nil {
		if errors.Is(err, review.ErrReviewNotFound) {
			respondError(c, apierrors.NewInvalidRequestError("Review not found"))
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// handlePurchase buys a portfolio at its current price
func (s *APIServer) handlePurchase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	requestID := c.GetString("request_id")
	result, err := s.purchaseService.Purchase(c.Request.Context(), userID, portfolioID)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrPortfolioNotFound):
			respondError(c, apierrors.ErrPortfolioNotFoundError)
		case errors.Is(err, purchase.ErrSelfPurchase):
			respondError(c, apierrors.ErrSelfPurchaseError)
		case errors.Is(err, purchase.ErrAlreadyPurchased):
			respondError(c, apierrors.NewInvalidRequestError("Portfolio already purchased"))
		default:
			monitoring.RecordPurchase("failed", 0)
			logging.LogPurchase(requestID, userID.String(), portfolioID.String(), "failed", 0)
			respondLedgerError(c, err)
			return
		}
		monitoring.RecordPurchase("rejected", 0)
		logging.LogPurchase(requestID, userID.String(), portfolioID.String(), "rejected", 0)
		return
	}

	amount, _ := result.AmountCharged.Float64()
	monitoring.RecordPurchase("completed", amount)
	logging.LogPurchase(requestID, userID.String(), portfolioID.String(), "completed", amount)
	c.JSON(http.StatusCreated, result)
}

// handleListPurchases lists the caller's purchase history
func (s *APIServer) handleListPurchases(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, pageSize := paging(c)
	resp, err := s.purchaseService.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleRemovePurchase hides a purchase from the caller's list
func (s *APIServer) handleRemovePurchase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	purchaseID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := s.purchaseService.Remove(c.Request.Context(), userID, purchaseID); err != nil {
		if errors.Is(err, purchase.ErrPurchaseNotFound) {
			respondError(c, apierrors.ErrPurchaseNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Purchase removed from your list"})
}

// paging parses page and page_size query parameters
func paging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}
