package balance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Service reads account balances for advisory checks and routes all
// mutations through the ledger client. Balance rows are never written here;
// the ledger owns the non-negative invariant.
type Service struct {
	db     *pgxpool.Pool
	client *Client
}

// NewService creates a new balance service
func NewService(db *pgxpool.Pool, client *Client) *Service {
	return &Service{db: db, client: client}
}

// Check is the advisory sufficiency check. The result is informational
// only; the ledger re-validates before committing any mutation.
type Check struct {
	Sufficient     bool            `json:"sufficient"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Shortfall      decimal.Decimal `json:"shortfall"`
}

// Get retrieves a user's current balance. Users without a balance row are
// reported at zero rather than missing.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*models.AccountBalance, error) {
	var b models.AccountBalance
	err := s.db.QueryRow(ctx, `
		SELECT user_id, balance, currency, updated_at
		FROM account_balances WHERE user_id = $1
	`, userID).Scan(&b.UserID, &b.Balance, &b.Currency, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.AccountBalance{
				UserID:    userID,
				Balance:   decimal.Zero,
				Currency:  "USD",
				UpdatedAt: time.Now(),
			}, nil
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &b, nil
}

// CheckSufficient reports whether the user's balance covers amount
func (s *Service) CheckSufficient(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*Check, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	b, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	shortfall := amount.Sub(b.Balance)
	if shortfall.IsNegative() {
		shortfall = decimal.Zero
	}

	return &Check{
		Sufficient:     b.Balance.GreaterThanOrEqual(amount),
		CurrentBalance: b.Balance,
		Shortfall:      shortfall,
	}, nil
}

// TopUp credits the user's balance through the ledger
func (s *Service) TopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*UpdateResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.client.UpdateBalance(ctx, userID, amount, models.TransactionKindTopup, description)
}

// Withdraw debits the user's balance through the ledger. The ledger fails
// the operation outright when the amount exceeds the current balance.
func (s *Service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*UpdateResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.client.UpdateBalance(ctx, userID, amount.Neg(), models.TransactionKindWithdrawal, description)
}

// ChargeSubscription debits a subscription charge through the ledger
func (s *Service) ChargeSubscription(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*UpdateResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.client.UpdateBalance(ctx, userID, amount.Neg(), models.TransactionKindSubscriptionCharge, description)
}

// ExecutePurchase forwards a validated purchase to the ledger
func (s *Service) ExecutePurchase(ctx context.Context, buyerID, sellerID, portfolioID uuid.UUID, amount decimal.Decimal) (*PurchaseResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.client.ExecutePurchase(ctx, buyerID, sellerID, portfolioID, amount)
}
