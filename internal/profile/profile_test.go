package profile

import (
	"testing"

	"github.com/foliobay/backend/internal/models"
)

func TestHasSellerAccess(t *testing.T) {
	tests := []struct {
		status models.VerificationStatus
		want   bool
	}{
		{models.VerificationVerified, true},
		{models.VerificationUnverified, false},
		{models.VerificationPending, false},
		{models.VerificationRejected, false},
	}
	for _, tt := range tests {
		if got := HasSellerAccess(tt.status); got != tt.want {
			t.Errorf("HasSellerAccess(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCanEnableSellerMode(t *testing.T) {
	tests := []struct {
		name   string
		role   models.UserRole
		status models.VerificationStatus
		want   bool
	}{
		{"verified member", models.UserRoleMember, models.VerificationVerified, true},
		{"unverified member", models.UserRoleMember, models.VerificationUnverified, false},
		{"pending member", models.UserRoleMember, models.VerificationPending, false},
		{"rejected member", models.UserRoleMember, models.VerificationRejected, false},
		{"unverified admin", models.UserRoleAdmin, models.VerificationUnverified, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEnableSellerMode(tt.role, tt.status); got != tt.want {
				t.Fatalf("CanEnableSellerMode(%s, %s) = %v, want %v", tt.role, tt.status, got, tt.want)
			}
		})
	}
}
