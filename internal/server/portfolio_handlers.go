package server

import (
	"errors"
	"net/http"

	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/foliobay/backend/internal/middleware"
	"github.com/foliobay/backend/internal/monitoring"
	"github.com/foliobay/backend/internal/portfolio"
	"github.com/gin-gonic/gin"
)

// handleListPortfolios serves the marketplace listing. A degraded response
// comes from cache during a primary-store outage and is flagged as such.
func (s *APIServer) handleListPortfolios(c *gin.Context) {
	var filter portfolio.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.portfolioService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	if resp.Degraded {
		monitoring.RecordDegradedRead()
	}

	c.JSON(http.StatusOK, resp)
}

// handleGetPortfolio serves a single enriched portfolio
func (s *APIServer) handleGetPortfolio(c *gin.Context) {
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	listing, err := s.portfolioService.Get(c.Request.Context(), portfolioID)
	if err != nil {
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			respondError(c, apierrors.ErrPortfolioNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, listing)
}

// handleCreatePortfolio creates a listing for the caller
func (s *APIServer) handleCreatePortfolio(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req portfolio.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	p, err := s.portfolioService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	monitoring.Get().PortfoliosCreated.Inc()
	c.JSON(http.StatusCreated, p)
}

// handleUpdatePortfolio applies a partial update to a listing
func (s *APIServer) handleUpdatePortfolio(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req portfolio.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	p, err := s.portfolioService.Update(c.Request.Context(), portfolioID, userID, middleware.GetRoleFromContext(c), &req)
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// handleDeletePortfolio removes a listing
func (s *APIServer) handleDeletePortfolio(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	err := s.portfolioService.Delete(c.Request.Context(), portfolioID, userID, middleware.GetRoleFromContext(c))
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Portfolio deleted"})
}

// handleInsertBlock inserts a content block into a listing
func (s *APIServer) handleInsertBlock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req portfolio.InsertBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	p, err := s.portfolioService.InsertContentBlock(c.Request.Context(), portfolioID, userID, middleware.GetRoleFromContext(c), &req)
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// handleRemoveBlock removes a content block from a listing
func (s *APIServer) handleRemoveBlock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	p, err := s.portfolioService.RemoveContentBlock(c.Request.Context(), portfolioID, userID, middleware.GetRoleFromContext(c), c.Param("blockID"))
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// handleSplitBlock splits a text block at a cursor position
func (s *APIServer) handleSplitBlock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	portfolioID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req portfolio.SplitBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	p, err := s.portfolioService.SplitContentBlock(c.Request.Context(), portfolioID, userID, middleware.GetRoleFromContext(c), c.Param("blockID"), req.Position)
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// respondPortfolioError translates portfolio service errors to wire responses
func respondPortfolioError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, portfolio.ErrPortfolioNotFound):
		respondError(c, apierrors.ErrPortfolioNotFoundError)
	case errors.Is(err, portfolio.ErrNotOwner):
		respondError(c, apierrors.ErrNotOwnerError)
	case errors.Is(err, portfolio.ErrLastBlock),
		errors.Is(err, portfolio.ErrAttachmentLimit),
		errors.Is(err, portfolio.ErrBlockNotFound),
		errors.Is(err, portfolio.ErrNotTextBlock),
		errors.Is(err, portfolio.ErrInvalidCursor),
		errors.Is(err, portfolio.ErrEmptyContent),
		errors.Is(err, portfolio.ErrMissingAttachment),
		errors.Is(err, portfolio.ErrNegativePrice):
		respondError(c, apierrors.NewInvalidRequestError(err.Error()))
	default:
		respondError(c, apierrors.ErrInternalServerError)
	}
}
