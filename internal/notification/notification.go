// Package notification stores and serves per-user event notifications.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Notification-specific errors
var (
	ErrNotFound = errors.New("notification not found")
)

// Service handles notification operations
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new notification service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// ListResponse is a paged notification listing
type ListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
	Total         int                   `json:"total"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
	TotalPages    int                   `json:"total_pages"`
}

// Create inserts a notification for a user
func (s *Service) Create(ctx context.Context, userID uuid.UUID, typ models.NotificationType, title, message string, relatedID *uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	err := s.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, type, related_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, title, message, type, related_id, read, created_at
	`, userID, title, message, typ, relatedID).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.RelatedID, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

// Notify is the fire-and-forget variant used after a primary operation has
// committed. A notification failure never fails the operation it announces.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, typ models.NotificationType, title, message string, relatedID *uuid.UUID) {
	if _, err := s.Create(ctx, userID, typ, title, message, relatedID); err != nil {
		log.Warn().Err(err).
			Str("user_id", userID.String()).
			Str("type", string(typ)).
			Msg("Failed to create notification")
	}
}

// List returns the user's notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, page, pageSize int) (*ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total, unread int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT read)
		FROM notifications WHERE user_id = $1
	`, userID).Scan(&total, &unread)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, message, type, related_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0, pageSize)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.RelatedID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize

	return &ListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
	}, nil
}

// MarkRead marks one notification read. Scoped to the owner.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks all of the user's notifications read and returns how
// many changed
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE user_id = $1 AND NOT read
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Delete removes one notification. Scoped to the owner.
func (s *Service) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM notifications WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes all of the user's notifications and returns how many
// were deleted
func (s *Service) DeleteAll(ctx context.Context, userID uuid.UUID) (int, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM notifications WHERE user_id = $1
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Get retrieves one notification. Scoped to the owner.
func (s *Service) Get(ctx context.Context, userID, notificationID uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, title, message, type, related_id, read, created_at
		FROM notifications WHERE id = $1 AND user_id = $2
	`, notificationID, userID).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.RelatedID, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}
