package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus represents the status of a verification application
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// VerificationApplication represents a seller's request for verified status.
// An application is reviewed exactly once; resubmission after rejection
// creates a new row and prior rows are kept for audit.
type VerificationApplication struct {
	ID                     uuid.UUID         `json:"id" db:"id"`
	UserID                 uuid.UUID         `json:"user_id" db:"user_id"`
	FullName               string            `json:"full_name" db:"full_name"`
	ContactEmail           string            `json:"contact_email" db:"contact_email"`
	Phone                  *string           `json:"phone,omitempty" db:"phone"`
	IdentityDocumentKey    string            `json:"identity_document_key" db:"identity_document_key"`
	AdditionalDocumentKeys []string          `json:"additional_document_keys" db:"additional_document_keys"`
	Status                 ApplicationStatus `json:"status" db:"status"`
	ReviewerID             *uuid.UUID        `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ReviewedAt             *time.Time        `json:"reviewed_at,omitempty" db:"reviewed_at"`
	AdminNotes             *string           `json:"admin_notes,omitempty" db:"admin_notes"`
	RejectionReason        *string           `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt              time.Time         `json:"created_at" db:"created_at"`
}
