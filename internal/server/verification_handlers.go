package server

import (
	"errors"
	"io"
	"net/http"

	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/foliobay/backend/internal/logging"
	"github.com/foliobay/backend/internal/monitoring"
	"github.com/foliobay/backend/internal/profile"
	"github.com/foliobay/backend/internal/verification"
	"github.com/gin-gonic/gin"
)

// handleSubmitVerification files a seller verification application
func (s *APIServer) handleSubmitVerification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req verification.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	app, err := s.verificationService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrApplicationPending):
			respondError(c, apierrors.NewInvalidRequestError("An application is already pending review"))
		case errors.Is(err, verification.ErrAlreadyVerified):
			respondError(c, apierrors.NewInvalidRequestError("You are already verified"))
		case errors.Is(err, verification.ErrIdentityDocumentMissing):
			respondError(c, apierrors.NewValidationError("An identity document is required"))
		case errors.Is(err, profile.ErrProfileNotFound):
			respondError(c, apierrors.ErrUserNotFoundError)
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, app)
}

// handleGetOwnVerification returns the caller's most recent application
func (s *APIServer) handleGetOwnVerification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	app, err := s.verificationService.GetLatest(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, verification.ErrApplicationNotFound) {
			respondError(c, apierrors.ErrApplicationNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, app)
}

// handleListPendingVerifications lists applications awaiting review
func (s *APIServer) handleListPendingVerifications(c *gin.Context) {
	page, pageSize := paging(c)
	resp, err := s.verificationService.ListPending(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleApproveVerification grants verified status
func (s *APIServer) handleApproveVerification(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	applicationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	// An empty body approves without notes
	var req verification.ApproveRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	app, err := s.verificationService.Approve(c.Request.Context(), applicationID, reviewerID, &req)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	monitoring.RecordVerificationDecision("approved")
	logging.LogVerificationDecision(app.UserID.String(), reviewerID.String(), "approved")
	c.JSON(http.StatusOK, app)
}

// handleRejectVerification declines an application with a reason
func (s *APIServer) handleRejectVerification(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	applicationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req verification.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	app, err := s.verificationService.Reject(c.Request.Context(), applicationID, reviewerID, &req)
	if err != nil {
		respondVerificationError(c, err)
		return
	}

	monitoring.RecordVerificationDecision("rejected")
	logging.LogVerificationDecision(app.UserID.String(), reviewerID.String(), "rejected")
	c.JSON(http.StatusOK, app)
}

// bindOptionalJSON binds a JSON request body into dest, treating an absent
// body as all zero values rather than a validation failure.
func bindOptionalJSON(c *gin.Context, dest any) error {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// respondVerificationError translates verification errors to wire responses
func respondVerificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, verification.ErrApplicationNotFound):
		respondError(c, apierrors.ErrApplicationNotFoundError)
	case errors.Is(err, verification.ErrAlreadyDecided):
		respondError(c, apierrors.NewInvalidRequestError("Application has already been decided"))
	case errors.Is(err, verification.ErrRejectionReasonMissing):
		respondError(c, apierrors.NewValidationError("A rejection reason is required"))
	default:
		respondError(c, apierrors.ErrInternalServerError)
	}
}
