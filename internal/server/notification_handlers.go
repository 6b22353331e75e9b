package server

import (
	"errors"
	"net/http"

	apierrors "github.com/foliobay/backend/internal/errors"
	"github.com/foliobay/backend/internal/notification"
	"github.com/gin-gonic/gin"
)

// handleListNotifications lists the caller's notifications
func (s *APIServer) handleListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, pageSize := paging(c)
	resp, err := s.notificationService.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleMarkNotificationRead marks one notification read
func (s *APIServer) handleMarkNotificationRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	notificationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := s.notificationService.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			respondError(c, apierrors.ErrNotificationNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

// handleMarkAllNotificationsRead marks all of the caller's notifications read
func (s *APIServer) handleMarkAllNotificationsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	updated, err := s.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// handleDeleteNotification deletes one notification
func (s *APIServer) handleDeleteNotification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	notificationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := s.notificationService.Delete(c.Request.Context(), userID, notificationID); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			respondError(c, apierrors.ErrNotificationNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// handleDeleteAllNotifications deletes all of the caller's notifications
func (s *APIServer) handleDeleteAllNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deleted, err := s.notificationService.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
