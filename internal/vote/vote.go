// Package vote implements portfolio voting. A user holds at most one vote
// per portfolio; repeating the same vote retracts it and the opposite vote
// replaces it.
package vote

import (
	"context"
	"errors"
	"fmt"

	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Vote-specific errors
var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
)

// Toggle computes the next vote state from the current one. A nil current
// means no vote; a nil result means the vote is retracted.
func Toggle(current *models.VoteType, requested models.VoteType) *models.VoteType {
	if current != nil && *current == requested {
		return nil
	}
	next := requested
	return &next
}

// Score is the approval score in [-100, 100]: the net vote margin as a
// percentage of total votes. A portfolio with no votes scores zero.
func Score(tally models.VoteTally) float64 {
	if tally.Total == 0 {
		return 0
	}
	return float64(tally.Upvotes-tally.Downvotes) / float64(tally.Total) * 100
}

// Service handles vote persistence
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new vote service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// CastRequest is a vote submission
type CastRequest struct {
	VoteType models.VoteType `json:"vote_type" binding:"required,oneof=up down"`
}

// CastResponse reports the caller's resulting vote and the new tally
type CastResponse struct {
	UserVote *models.VoteType `json:"user_vote"`
	Tally    models.VoteTally `json:"tally"`
}

// Cast applies a vote toggle for the user on a portfolio and returns the
// resulting state. The row is locked so concurrent toggles serialize.
func (s *Service) Cast(ctx context.Context, userID, portfolioID uuid.UUID, requested models.VoteType) (*CastResponse, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM portfolios WHERE id = $1)", portfolioID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check portfolio: %w", err)
	}
	if !exists {
		return nil, ErrPortfolioNotFound
	}

	var current *models.VoteType
	var existing models.VoteType
	err = tx.QueryRow(ctx, `
		SELECT vote_type FROM votes
		WHERE user_id = $1 AND portfolio_id = $2
		FOR UPDATE
	`, userID, portfolioID).Scan(&existing)
	switch {
	case err == nil:
		current = &existing
	case errors.Is(err, pgx.ErrNoRows):
		current = nil
	default:
		return nil, fmt.Errorf("failed to load vote: %w", err)
	}

	next := Toggle(current, requested)
	if next == nil {
		_, err = tx.Exec(ctx, `
			DELETE FROM votes WHERE user_id = $1 AND portfolio_id = $2
		`, userID, portfolioID)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO votes (user_id, portfolio_id, vote_type)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, portfolio_id) DO UPDATE SET vote_type = EXCLUDED.vote_type
		`, userID, portfolioID, *next)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply vote: %w", err)
	}

	var tally models.VoteTally
	err = tx.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE vote_type = 'up'),
			COUNT(*) FILTER (WHERE vote_type = 'down'),
			COUNT(*)
		FROM votes WHERE portfolio_id = $1
	`, portfolioID).Scan(&tally.Upvotes, &tally.Downvotes, &tally.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &CastResponse{UserVote: next, Tally: tally}, nil
}

// Tally returns the vote counts for a portfolio
func (s *Service) Tally(ctx context.Context, portfolioID uuid.UUID) (*models.VoteTally, error) {
	var tally models.VoteTally
	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE vote_type = 'up'),
			COUNT(*) FILTER (WHERE vote_type = 'down'),
			COUNT(*)
		FROM votes WHERE portfolio_id = $1
	`, portfolioID).Scan(&tally.Upvotes, &tally.Downvotes, &tally.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	return &tally, nil
}

// UserVote returns the caller's current vote on a portfolio, if any
func (s *Service) UserVote(ctx context.Context, userID, portfolioID uuid.UUID) (*models.VoteType, error) {
	var vt models.VoteType
	err := s.db.QueryRow(ctx, `
		SELECT vote_type FROM votes WHERE user_id = $1 AND portfolio_id = $2
	`, userID, portfolioID).Scan(&vt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load vote: %w", err)
	}
	return &vt, nil
}
