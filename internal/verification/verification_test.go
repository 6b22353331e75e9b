package verification

import (
	"testing"

	"github.com/foliobay/backend/internal/models"
)

func TestCanReview(t *testing.T) {
	tests := []struct {
		name       string
		status     models.ApplicationStatus
		approving  bool
		reviewable bool
		idempotent bool
	}{
		{"pending can be approved", models.ApplicationStatusPending, true, true, false},
		{"pending can be rejected", models.ApplicationStatusPending, false, true, false},
		{"approved again is idempotent", models.ApplicationStatusApproved, true, false, true},
		{"approved cannot be rejected", models.ApplicationStatusApproved, false, false, false},
		{"rejected cannot be approved", models.ApplicationStatusRejected, true, false, false},
		{"rejected cannot be rejected again", models.ApplicationStatusRejected, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviewable, idempotent := canReview(tt.status, tt.approving)
			if reviewable != tt.reviewable || idempotent != tt.idempotent {
				t.Fatalf("canReview(%s, approving=%v) = (%v, %v), want (%v, %v)",
					tt.status, tt.approving, reviewable, idempotent, tt.reviewable, tt.idempotent)
			}
		})
	}
}
