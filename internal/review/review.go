// Package review implements seller reviews. Each buyer holds one review per
// seller; resubmitting replaces the previous rating and text.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Review-specific errors
var (
	ErrReviewNotFound = errors.New("review not found")
	ErrSelfReview     = errors.New("you cannot review yourself")
	ErrSellerNotFound = errors.New("seller not found")
)

// Service handles review operations
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new review service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// SubmitRequest is a review submission
type SubmitRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Content *string `json:"content,omitempty" binding:"omitempty,max=5000"`
}

// ListResponse is a paged review listing with the seller's aggregate
type ListResponse struct {
	Reviews       []ReviewWithAuthor `json:"reviews"`
	AverageRating float64            `json:"average_rating"`
	ReviewCount   int                `json:"review_count"`
	Page          int                `json:"page"`
	PageSize      int                `json:"page_size"`
	TotalPages    int                `json:"total_pages"`
}

// ReviewWithAuthor is a review joined with its author's public identity
type ReviewWithAuthor struct {
	models.Review
	AuthorName      string  `json:"author_name"`
	AuthorAvatarURL *string `json:"author_avatar_url,omitempty"`
}

// Aggregate computes the mean rating rounded to one decimal place.
// An empty slice aggregates to zero, never NaN.
func Aggregate(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return float64(int(mean*10+0.5)) / 10
}

// Upsert creates or replaces the caller's review of a seller
func (s *Service) Upsert(ctx context.Context, reviewerID, sellerID uuid.UUID, req *SubmitRequest) (*models.Review, error) {
	if reviewerID == sellerID {
		return nil, ErrSelfReview
	}

	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND deleted_at IS NULL)
	`, sellerID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check seller: %w", err)
	}
	if !exists {
		return nil, ErrSellerNotFound
	}

	var r models.Review
	err = s.db.QueryRow(ctx, `
		INSERT INTO reviews (reviewer_id, seller_id, rating, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (reviewer_id, seller_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			content = EXCLUDED.content,
			updated_at = NOW()
		RETURNING id, reviewer_id, seller_id, rating, content, created_at, updated_at
	`, reviewerID, sellerID, req.Rating, req.Content).Scan(
		&r.ID, &r.ReviewerID, &r.SellerID, &r.Rating, &r.Content, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	return &r, nil
}

// List returns a seller's reviews, newest first, with the live aggregate
func (s *Service) List(ctx context.Context, sellerID uuid.UUID, page, pageSize int) (*ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	avg, count, err := s.SellerRating(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.reviewer_id, r.seller_id, r.rating, r.content, r.created_at, r.updated_at,
			p.display_name, p.avatar_url
		FROM reviews r
		JOIN profiles p ON p.user_id = r.reviewer_id
		WHERE r.seller_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`, sellerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]ReviewWithAuthor, 0, pageSize)
	for rows.Next() {
		var r ReviewWithAuthor
		if err := rows.Scan(
			&r.ID, &r.ReviewerID, &r.SellerID, &r.Rating, &r.Content, &r.CreatedAt, &r.UpdatedAt,
			&r.AuthorName, &r.AuthorAvatarURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}

	return &ListResponse{
		Reviews:       reviews,
		AverageRating: avg,
		ReviewCount:   count,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    (count + pageSize - 1) / pageSize,
	}, nil
}

// SellerRating returns the seller's mean rating (one decimal place) and
// review count, computed on read
func (s *Service) SellerRating(ctx context.Context, sellerID uuid.UUID) (float64, int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT rating FROM reviews WHERE seller_id = $1
	`, sellerID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return 0, 0, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("failed to read ratings: %w", err)
	}

	return Aggregate(ratings), len(ratings), nil
}

// Get returns the caller's review of a seller, if any
func (s *Service) Get(ctx context.Context, reviewerID, sellerID uuid.UUID) (*models.Review, error) {
	var r models.Review
	err := s.db.QueryRow(ctx, `
		SELECT id, reviewer_id, seller_id, rating, content, created_at, updated_at
		FROM reviews WHERE reviewer_id = $1 AND seller_id = $2
	`, reviewerID, sellerID).Scan(
		&r.ID, &r.ReviewerID, &r.SellerID, &r.Rating, &r.Content, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &r, nil
}

// Delete removes the caller's review of a seller
func (s *Service) Delete(ctx context.Context, reviewerID, sellerID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM reviews WHERE reviewer_id = $1 AND seller_id = $2
	`, reviewerID, sellerID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}
