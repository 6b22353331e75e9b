// Package subscription manages profile subscription tiers. Paid tiers are
// charged from the account balance through the ledger.
package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/foliobay/backend/internal/balance"
	"github.com/foliobay/backend/internal/models"
	"github.com/foliobay/backend/internal/notification"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Subscription-specific errors
var (
	ErrUnknownTier  = errors.New("unknown subscription tier")
	ErrSameTier     = errors.New("already on this tier")
	ErrUserNotFound = errors.New("user not found")
)

// Tier names
const (
	TierFree = "free"
	TierPlus = "plus"
	TierPro  = "pro"
)

// Tier describes a subscription level and its monthly price
type Tier struct {
	Name         string          `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Description  string          `json:"description"`
}

// Tiers returns the available tiers in ascending price order
func Tiers() []Tier {
	return []Tier{
		{Name: TierFree, MonthlyPrice: decimal.Zero, Description: "Browse and purchase portfolios"},
		{Name: TierPlus, MonthlyPrice: decimal.NewFromFloat(9.99), Description: "Priority listing placement and extended analytics"},
		{Name: TierPro, MonthlyPrice: decimal.NewFromFloat(29.99), Description: "Everything in Plus, plus promotional tools"},
	}
}

// TierByName looks up a tier definition
func TierByName(name string) (Tier, bool) {
	for _, t := range Tiers() {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// Service handles subscription changes
type Service struct {
	db            *pgxpool.Pool
	balances      *balance.Service
	notifications *notification.Service
}

// NewService creates a new subscription service
func NewService(db *pgxpool.Pool, balances *balance.Service, notifications *notification.Service) *Service {
	return &Service{db: db, balances: balances, notifications: notifications}
}

// ChangeRequest asks to move the caller to a tier
type ChangeRequest struct {
	Tier string `json:"tier" binding:"required,oneof=free plus pro"`
}

// ChangeResult reports the completed tier change
type ChangeResult struct {
	Tier          string           `json:"tier"`
	AmountCharged decimal.Decimal  `json:"amount_charged"`
	NewBalance    *decimal.Decimal `json:"new_balance,omitempty"`
}

// Change moves the user to the requested tier. Paid tiers charge the first
// month immediately; if the ledger rejects the charge the tier does not
// change. Downgrading to free is never charged.
func (s *Service) Change(ctx context.Context, userID uuid.UUID, tierName string) (*ChangeResult, error) {
	tier, ok := TierByName(tierName)
	if !ok {
		return nil, ErrUnknownTier
	}

	var current string
	err := s.db.QueryRow(ctx, `
		SELECT subscription_tier FROM profiles WHERE user_id = $1
	`, userID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if current == tier.Name {
		return nil, ErrSameTier
	}

	result := &ChangeResult{Tier: tier.Name, AmountCharged: decimal.Zero}

	// Charge before recording the tier so a rejected charge leaves the
	// profile untouched
	if tier.MonthlyPrice.IsPositive() {
		charge, err := s.balances.ChargeSubscription(ctx, userID, tier.MonthlyPrice,
			fmt.Sprintf("Subscription: %s tier", tier.Name))
		if err != nil {
			return nil, err
		}
		result.AmountCharged = tier.MonthlyPrice
		result.NewBalance = &charge.NewBalance
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE profiles SET subscription_tier = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, tier.Name)
	if err != nil {
		// The charge already landed; this needs operator attention
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("tier", tier.Name).
			Msg("Subscription charge succeeded but tier update failed")
		return nil, fmt.Errorf("failed to update subscription tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("from_tier", current).
		Str("to_tier", tier.Name).
		Msg("Subscription tier changed")

	s.notifications.Notify(ctx, userID, models.NotificationSubscriptionChanged,
		"Subscription updated",
		fmt.Sprintf("Your subscription is now on the %s tier.", tier.Name),
		nil)

	return result, nil
}
