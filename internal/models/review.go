package models

import (
	"time"

	"github.com/google/uuid"
)

// Review represents a buyer's rating of a seller.
// One logical review exists per (reviewer, seller) pair; resubmitting
// replaces the previous rating and text.
type Review struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ReviewerID uuid.UUID `json:"reviewer_id" db:"reviewer_id"`
	SellerID   uuid.UUID `json:"seller_id" db:"seller_id"`
	Rating     int       `json:"rating" db:"rating"`
	Content    *string   `json:"content,omitempty" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
