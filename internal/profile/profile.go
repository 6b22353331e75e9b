// Package profile manages user profiles, seller mode, and account removal.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile-specific errors
var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrVerificationRequired = errors.New("seller verification required")
)

// Service handles profile operations
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new profile service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// UpdateRequest carries the editable profile fields. Nil pointers leave the
// current value untouched.
type UpdateRequest struct {
	DisplayName *string            `json:"display_name,omitempty" binding:"omitempty,min=1,max=100"`
	Bio         *string            `json:"bio,omitempty" binding:"omitempty,max=2000"`
	AvatarURL   *string            `json:"avatar_url,omitempty" binding:"omitempty,max=1000"`
	SocialLinks *map[string]string `json:"social_links,omitempty"`
	Specialties *[]string          `json:"specialties,omitempty" binding:"omitempty,max=20,dive,min=1,max=50"`
}

// SellerModeRequest toggles the profile's seller mode flag
type SellerModeRequest struct {
	SellerMode *bool `json:"seller_mode" binding:"required"`
}

const profileColumns = `user_id, display_name, bio, avatar_url, social_links, specialties,
		seller_mode, verification_status, subscription_tier, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.UserID, &p.DisplayName, &p.Bio, &p.AvatarURL, &p.SocialLinks, &p.Specialties,
		&p.SellerMode, &p.VerificationStatus, &p.SubscriptionTier, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return &p, nil
}

// Get retrieves a profile by user ID. Profiles of deleted accounts are
// treated as missing.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles p
		WHERE p.user_id = $1
		  AND EXISTS (SELECT 1 FROM users u WHERE u.id = p.user_id AND u.deleted_at IS NULL)
	`, userID)
	return scanProfile(row)
}

// Update applies the provided fields to the user's profile
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req *UpdateRequest) (*models.Profile, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE profiles SET
			display_name = COALESCE($2, display_name),
			bio          = COALESCE($3, bio),
			avatar_url   = COALESCE($4, avatar_url),
			social_links = COALESCE($5, social_links),
			specialties  = COALESCE($6, specialties),
			updated_at   = NOW()
		WHERE user_id = $1
		RETURNING `+profileColumns,
		userID, req.DisplayName, req.Bio, req.AvatarURL, req.SocialLinks, req.Specialties)
	return scanProfile(row)
}

// HasSellerAccess reports whether a verification status grants seller
// features
func HasSellerAccess(status models.VerificationStatus) bool {
	return status == models.VerificationVerified
}

// CanEnableSellerMode reports whether the actor may turn seller mode on.
// Admins always may; everyone else needs a verified profile.
func CanEnableSellerMode(role models.UserRole, status models.VerificationStatus) bool {
	return role == models.UserRoleAdmin || HasSellerAccess(status)
}

// SetSellerMode toggles the seller mode flag. Enabling re-checks the seller
// gate against the current verification status; disabling is always allowed.
func (s *Service) SetSellerMode(ctx context.Context, userID uuid.UUID, enabled bool, actorRole models.UserRole) (*models.Profile, error) {
	if enabled {
		var status models.VerificationStatus
		err := s.db.QueryRow(ctx, `
			SELECT verification_status FROM profiles WHERE user_id = $1
		`, userID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrProfileNotFound
			}
			return nil, fmt.Errorf("failed to check verification status: %w", err)
		}
		if !CanEnableSellerMode(actorRole, status) {
			return nil, ErrVerificationRequired
		}
	}

	row := s.db.QueryRow(ctx, `
		UPDATE profiles SET seller_mode = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+profileColumns,
		userID, enabled)
	return scanProfile(row)
}

// CanAccessSellerFeatures reports whether the user may use seller-only
// features right now. Read from the store on every call so a revocation in
// one session is visible to all others immediately. Admins never reach this
// path; their role claim alone passes the gate.
func (s *Service) CanAccessSellerFeatures(ctx context.Context, userID uuid.UUID) (bool, error) {
	var status models.VerificationStatus
	err := s.db.QueryRow(ctx, `
		SELECT verification_status FROM profiles WHERE user_id = $1
	`, userID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check seller access: %w", err)
	}
	return HasSellerAccess(status), nil
}

// SetVerificationStatus updates the denormalized verification status on the
// profile. Called by the verification service inside its decision
// transaction.
func SetVerificationStatus(ctx context.Context, tx pgx.Tx, userID uuid.UUID, status models.VerificationStatus) error {
	tag, err := tx.Exec(ctx, `
		UPDATE profiles SET verification_status = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, status)
	if err != nil {
		return fmt.Errorf("failed to update verification status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SoftDelete marks the account deleted. Profile, portfolios, and purchase
// history stay in place for audit; the account simply stops authenticating
// and disappears from public surfaces.
func (s *Service) SoftDelete(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Summary returns the seller subset embedded in marketplace listings
func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*models.ProfileSummary, error) {
	var sum models.ProfileSummary
	err := s.db.QueryRow(ctx, `
		SELECT user_id, display_name, avatar_url, verification_status
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&sum.UserID, &sum.DisplayName, &sum.AvatarURL, &sum.VerificationStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile summary: %w", err)
	}
	return &sum, nil
}
