package portfolio

import (
	"context"
	"fmt"

	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
)

// InsertBlockRequest adds a block at a position in the portfolio body
type InsertBlockRequest struct {
	Index int                 `json:"index"`
	Block models.ContentBlock `json:"block" binding:"required"`
}

// SplitBlockRequest splits a text block at a rune position
type SplitBlockRequest struct {
	Position int `json:"position"`
}

// InsertContentBlock inserts a block into a stored portfolio. The row is
// locked so concurrent editors serialize.
func (s *Service) InsertContentBlock(ctx context.Context, portfolioID, actorID uuid.UUID, actorRole models.UserRole, req *InsertBlockRequest) (*models.Portfolio, error) {
	return s.mutateContent(ctx, portfolioID, actorID, actorRole, func(blocks []models.ContentBlock) ([]models.ContentBlock, error) {
		return InsertBlock(blocks, req.Index, req.Block, s.maxAttachments)
	})
}

// RemoveContentBlock removes a block from a stored portfolio
func (s *Service) RemoveContentBlock(ctx context.Context, portfolioID, actorID uuid.UUID, actorRole models.UserRole, blockID string) (*models.Portfolio, error) {
	return s.mutateContent(ctx, portfolioID, actorID, actorRole, func(blocks []models.ContentBlock) ([]models.ContentBlock, error) {
		return RemoveBlock(blocks, blockID)
	})
}

// SplitContentBlock splits a stored text block in two
func (s *Service) SplitContentBlock(ctx context.Context, portfolioID, actorID uuid.UUID, actorRole models.UserRole, blockID string, position int) (*models.Portfolio, error) {
	return s.mutateContent(ctx, portfolioID, actorID, actorRole, func(blocks []models.ContentBlock) ([]models.ContentBlock, error) {
		return SplitTextBlock(blocks, blockID, position)
	})
}

func (s *Service) mutateContent(ctx context.Context, portfolioID, actorID uuid.UUID, actorRole models.UserRole, mutate func([]models.ContentBlock) ([]models.ContentBlock, error)) (*models.Portfolio, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1 FOR UPDATE
	`, portfolioID)
	p, err := scanPortfolio(row)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != actorID && actorRole != models.UserRoleAdmin {
		return nil, ErrNotOwner
	}

	next, err := mutate(p.Content)
	if err != nil {
		return nil, err
	}

	row = tx.QueryRow(ctx, `
		UPDATE portfolios SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+portfolioColumns,
		portfolioID, next)
	p, err = scanPortfolio(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateListings(ctx)
	return p, nil
}
