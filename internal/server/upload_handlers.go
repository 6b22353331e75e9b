package server

import (
	"net/http"
	"time"

	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/foliobay/backend/internal/filestore"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type presignRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}

type presignResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handlePresignAvatar issues an upload URL for a profile avatar
func (s *APIServer) handlePresignAvatar(c *gin.Context) {
	s.presignUpload(c, filestore.AvatarKey)
}

// handlePresignIdentity issues an upload URL for a verification document
func (s *APIServer) handlePresignIdentity(c *gin.Context) {
	s.presignUpload(c, filestore.IdentityDocumentKey)
}

// handlePresignAttachment issues an upload URL for a portfolio attachment
func (s *APIServer) handlePresignAttachment(c *gin.Context) {
	s.presignUpload(c, filestore.AttachmentKey)
}

func (s *APIServer) presignUpload(c *gin.Context, keyFn func(uuid.UUID, string) string) {
	if s.files == nil {
		respondError(c, apierrors.ErrStorageUnavailableError)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	key := keyFn(userID, req.Filename)
	url, expiresAt, err := s.files.PresignUpload(c.Request.Context(), key, req.ContentType)
	if err != nil {
		respondError(c, apierrors.ErrStorageUnavailableError)
		return
	}

	c.JSON(http.StatusOK, presignResponse{
		UploadURL: url,
		Key:       key,
		ExpiresAt: expiresAt,
	})
}

// handlePresignDownload issues a download URL for a stored object
func (s *APIServer) handlePresignDownload(c *gin.Context) {
	if s.files == nil {
		respondError(c, apierrors.ErrStorageUnavailableError)
		return
	}

	if _, ok := currentUserID(c); !ok {
		return
	}

	key := c.Query("key")
	if key == "" {
		respondError(c, apierrors.NewInvalidRequestError("key query parameter is required"))
		return
	}

	url, expiresAt, err := s.files.PresignDownload(c.Request.Context(), key)
	if err != nil {
		respondError(c, apierrors.ErrStorageUnavailableError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"download_url": url,
		"expires_at":   expiresAt,
	})
}
