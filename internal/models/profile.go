package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus represents the seller verification status on a profile
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// Profile represents a user's public and seller profile.
// A profile is provisioned automatically with the account and mutated by
// profile edits, verification decisions, and subscription changes.
type Profile struct {
	UserID             uuid.UUID          `json:"user_id" db:"user_id"`
	DisplayName        string             `json:"display_name" db:"display_name"`
	Bio                *string            `json:"bio,omitempty" db:"bio"`
	AvatarURL          *string            `json:"avatar_url,omitempty" db:"avatar_url"`
	SocialLinks        map[string]string  `json:"social_links" db:"social_links"`
	Specialties        []string           `json:"specialties" db:"specialties"`
	SellerMode         bool               `json:"seller_mode" db:"seller_mode"`
	VerificationStatus VerificationStatus `json:"verification_status" db:"verification_status"`
	SubscriptionTier   string             `json:"subscription_tier" db:"subscription_tier"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// ProfileSummary is the seller subset embedded in marketplace listings
type ProfileSummary struct {
	UserID             uuid.UUID          `json:"user_id"`
	DisplayName        string             `json:"display_name"`
	AvatarURL          *string            `json:"avatar_url,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}
