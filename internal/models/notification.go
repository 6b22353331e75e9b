package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the event class of a notification
type NotificationType string

const (
	NotificationVerificationApproved NotificationType = "verification_approved"
	NotificationVerificationRejected NotificationType = "verification_rejected"
	NotificationPurchaseCompleted    NotificationType = "purchase_completed"
	NotificationSaleCompleted        NotificationType = "sale_completed"
	NotificationSubscriptionChanged  NotificationType = "subscription_changed"
)

// Notification is a message to a user about a system event. Only the read
// flag is ever mutated; users may delete individually or in bulk.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	RelatedID *uuid.UUID       `json:"related_id,omitempty" db:"related_id"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
