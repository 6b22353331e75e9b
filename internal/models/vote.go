package models

import (
	"time"

	"github.com/google/uuid"
)

// VoteType represents the direction of a vote
type VoteType string

const (
	VoteTypeUp   VoteType = "up"
	VoteTypeDown VoteType = "down"
)

// Vote represents one user's vote on a portfolio.
// At most one row exists per (user, portfolio) pair.
type Vote struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	PortfolioID uuid.UUID `json:"portfolio_id" db:"portfolio_id"`
	Type        VoteType  `json:"vote_type" db:"vote_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// VoteTally is the aggregated vote count for a portfolio
type VoteTally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Total     int `json:"total_votes"`
}
