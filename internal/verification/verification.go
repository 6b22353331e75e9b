// Package verification implements the seller verification workflow: users
// submit identity applications, administrators approve or reject them, and
// the decision is reflected on the profile's verification status.
package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/foliobay/backend/internal/models"
	"github.com/foliobay/backend/internal/notification"
	"github.com/foliobay/backend/internal/profile"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Verification-specific errors
var (
	ErrApplicationNotFound     = errors.New("verification application not found")
	ErrApplicationPending      = errors.New("an application is already pending review")
	ErrAlreadyVerified         = errors.New("user is already verified")
	ErrIdentityDocumentMissing = errors.New("identity document is required")
	ErrRejectionReasonMissing  = errors.New("rejection reason is required")
	ErrAlreadyDecided          = errors.New("application has already been decided")
)

// Service handles verification applications
type Service struct {
	db            *pgxpool.Pool
	notifications *notification.Service
}

// NewService creates a new verification service
func NewService(db *pgxpool.Pool, notifications *notification.Service) *Service {
	return &Service{db: db, notifications: notifications}
}

// SubmitRequest is a user's application for verified seller status
type SubmitRequest struct {
	FullName               string   `json:"full_name" binding:"required,min=1,max=200"`
	ContactEmail           string   `json:"contact_email" binding:"required,email"`
	Phone                  *string  `json:"phone,omitempty" binding:"omitempty,max=50"`
	IdentityDocumentKey    string   `json:"identity_document_key" binding:"required"`
	AdditionalDocumentKeys []string `json:"additional_document_keys" binding:"omitempty,max=10"`
}

// RejectRequest carries an admin's rejection with its mandatory reason
type RejectRequest struct {
	Reason     string  `json:"reason" binding:"required,min=1,max=2000"`
	AdminNotes *string `json:"admin_notes,omitempty" binding:"omitempty,max=2000"`
}

// ApproveRequest carries optional notes with an approval
type ApproveRequest struct {
	AdminNotes *string `json:"admin_notes,omitempty" binding:"omitempty,max=2000"`
}

// PendingListResponse is a paged listing of applications awaiting review
type PendingListResponse struct {
	Applications []models.VerificationApplication `json:"applications"`
	Total        int                              `json:"total"`
	Page         int                              `json:"page"`
	PageSize     int                              `json:"page_size"`
	TotalPages   int                              `json:"total_pages"`
}

// canReview reports whether an application in the given status can still be
// decided, and whether an approve call should be treated as an idempotent
// success instead of an error.
func canReview(status models.ApplicationStatus, approving bool) (reviewable, idempotent bool) {
	switch status {
	case models.ApplicationStatusPending:
		return true, false
	case models.ApplicationStatusApproved:
		// A second approval changes nothing and is not a fault
		return false, approving
	default:
		return false, false
	}
}

const applicationColumns = `id, user_id, full_name, contact_email, phone, identity_document_key,
		additional_document_keys, status, reviewer_id, reviewed_at, admin_notes, rejection_reason, created_at`

func scanApplication(row pgx.Row) (*models.VerificationApplication, error) {
	var a models.VerificationApplication
	err := row.Scan(
		&a.ID, &a.UserID, &a.FullName, &a.ContactEmail, &a.Phone, &a.IdentityDocumentKey,
		&a.AdditionalDocumentKeys, &a.Status, &a.ReviewerID, &a.ReviewedAt, &a.AdminNotes,
		&a.RejectionReason, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return &a, nil
}

// Submit files a new application and moves the profile to pending. A user
// may resubmit after rejection; prior rows are kept for audit.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req *SubmitRequest) (*models.VerificationApplication, error) {
	if req.IdentityDocumentKey == "" {
		return nil, ErrIdentityDocumentMissing
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the profile row so concurrent submissions serialize
	var status models.VerificationStatus
	err = tx.QueryRow(ctx, `
		SELECT verification_status FROM profiles WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	switch status {
	case models.VerificationPending:
		return nil, ErrApplicationPending
	case models.VerificationVerified:
		return nil, ErrAlreadyVerified
	}

	additional := req.AdditionalDocumentKeys
	if additional == nil {
		additional = []string{}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO verification_applications
			(user_id, full_name, contact_email, phone, identity_document_key, additional_document_keys)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+applicationColumns,
		userID, req.FullName, req.ContactEmail, req.Phone, req.IdentityDocumentKey, additional)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}

	if err := profile.SetVerificationStatus(ctx, tx, userID, models.VerificationPending); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return app, nil
}

// Approve grants verified status. Approving an already-approved application
// is an idempotent success; approving a rejected one is an error.
func (s *Service) Approve(ctx context.Context, applicationID, reviewerID uuid.UUID, req *ApproveRequest) (*models.VerificationApplication, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM verification_applications WHERE id = $1 FOR UPDATE
	`, applicationID)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}

	reviewable, idempotent := canReview(app.Status, true)
	if !reviewable {
		if idempotent {
			return app, nil
		}
		return nil, ErrAlreadyDecided
	}

	row = tx.QueryRow(ctx, `
		UPDATE verification_applications SET
			status = $2, reviewer_id = $3, reviewed_at = NOW(), admin_notes = $4
		WHERE id = $1
		RETURNING `+applicationColumns,
		applicationID, models.ApplicationStatusApproved, reviewerID, req.AdminNotes)
	app, err = scanApplication(row)
	if err != nil {
		return nil, err
	}

	if err := profile.SetVerificationStatus(ctx, tx, app.UserID, models.VerificationVerified); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Str("application_id", applicationID.String()).
		Str("user_id", app.UserID.String()).
		Str("reviewer_id", reviewerID.String()).
		Msg("Verification application approved")

	s.notifications.Notify(ctx, app.UserID, models.NotificationVerificationApproved,
		"Verification approved",
		"Your seller verification has been approved. You can now publish portfolios.",
		&app.ID)

	return app, nil
}

// Reject declines an application. A non-empty reason is mandatory and is
// delivered to the applicant.
func (s *Service) Reject(ctx context.Context, applicationID, reviewerID uuid.UUID, req *RejectRequest) (*models.VerificationApplication, error) {
	if req.Reason == "" {
		return nil, ErrRejectionReasonMissing
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM verification_applications WHERE id = $1 FOR UPDATE
	`, applicationID)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}

	if reviewable, _ := canReview(app.Status, false); !reviewable {
		return nil, ErrAlreadyDecided
	}

	row = tx.QueryRow(ctx, `
		UPDATE verification_applications SET
			status = $2, reviewer_id = $3, reviewed_at = NOW(), admin_notes = $4, rejection_reason = $5
		WHERE id = $1
		RETURNING `+applicationColumns,
		applicationID, models.ApplicationStatusRejected, reviewerID, req.AdminNotes, req.Reason)
	app, err = scanApplication(row)
	if err != nil {
		return nil, err
	}

	if err := profile.SetVerificationStatus(ctx, tx, app.UserID, models.VerificationRejected); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Str("application_id", applicationID.String()).
		Str("user_id", app.UserID.String()).
		Str("reviewer_id", reviewerID.String()).
		Msg("Verification application rejected")

	s.notifications.Notify(ctx, app.UserID, models.NotificationVerificationRejected,
		"Verification rejected",
		"Your seller verification was rejected: "+req.Reason,
		&app.ID)

	return app, nil
}

// ListPending returns applications awaiting review, oldest first
func (s *Service) ListPending(ctx context.Context, page, pageSize int) (*PendingListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM verification_applications WHERE status = $1
	`, models.ApplicationStatusPending).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM verification_applications
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, models.ApplicationStatusPending, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	applications := make([]models.VerificationApplication, 0, pageSize)
	for rows.Next() {
		var a models.VerificationApplication
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.FullName, &a.ContactEmail, &a.Phone, &a.IdentityDocumentKey,
			&a.AdditionalDocumentKeys, &a.Status, &a.ReviewerID, &a.ReviewedAt, &a.AdminNotes,
			&a.RejectionReason, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		applications = append(applications, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applications: %w", err)
	}

	return &PendingListResponse{
		Applications: applications,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   (total + pageSize - 1) / pageSize,
	}, nil
}

// GetLatest returns the user's most recent application, if any
func (s *Service) GetLatest(ctx context.Context, userID uuid.UUID) (*models.VerificationApplication, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM verification_applications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
	return scanApplication(row)
}

// Get retrieves an application by ID
func (s *Service) Get(ctx context.Context, applicationID uuid.UUID) (*models.VerificationApplication, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM verification_applications WHERE id = $1
	`, applicationID)
	return scanApplication(row)
}
