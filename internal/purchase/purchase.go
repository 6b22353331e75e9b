// Package purchase implements balance-funded portfolio purchases. The
// external ledger moves the money; this package validates the request,
// records the purchase fact, and notifies both parties.
package purchase

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

// Purchase-specific errors
var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrSelfPurchase      = errors.New("you cannot purchase your own portfolio")
	ErrAlreadyPurchased  = errors.New("portfolio already purchased")
)

// Service handles purchase operations
type Service struct {
	db            *pgxpool.Pool
	balances      *balance.Service
	notifications *notification.Service
	feeRate       decimal.Decimal
}

// NewService creates a new purchase service. feeRate is the configured
// platform cut, used to cross-check the ledger's split.
func NewService(db *pgxpool.Pool, balances *balance.Service, notifications *notification.Service, feeRate decimal.Decimal) *Service {
	if !feeRate.IsPositive() {
		feeRate = balance.DefaultPlatformFeeRate
	}
	return &Service{db: db, balances: balances, notifications: notifications, feeRate: feeRate}
}

// Result is the outcome of a completed purchase. Purchase is nil in the
// rare case where the ledger transfer succeeded but recording the purchase
// fact failed; the money has moved either way.
type Result struct {
	Purchase        *models.Purchase `json:"purchase,omitempty"`
	AmountCharged   decimal.Decimal  `json:"amount_charged"`
	BuyerNewBalance decimal.Decimal  `json:"buyer_new_balance"`
}

// ListResponse is a paged purchase history
type ListResponse struct {
	Purchases  []PurchaseWithPortfolio `json:"purchases"`
	Total      int                     `json:"total"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalPages int                     `json:"total_pages"`
}

// PurchaseWithPortfolio joins a purchase with the listing it bought
type PurchaseWithPortfolio struct {
	models.Purchase
	PortfolioTitle string `json:"portfolio_title"`
	SellerName     string `json:"seller_name"`
}

// ValidatePurchase applies the local business rules that can be decided
// before the ledger is consulted
func ValidatePurchase(buyerID, sellerID uuid.UUID, price decimal.Decimal) error {
	if buyerID == sellerID {
		return ErrSelfPurchase
	}
	if price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

// Purchase buys a portfolio at its current price. Local rules are checked
// first, then the ledger executes the transfer; only after the ledger
// confirms is the purchase fact recorded. Insufficient funds surfaces as a
// *balance.TransactionError.
func (s *Service) Purchase(ctx context.Context, buyerID, portfolioID uuid.UUID) (*Result, error) {
	var sellerID uuid.UUID
	var price decimal.Decimal
	var title string
	err := s.db.QueryRow(ctx, `
		SELECT p.owner_id, p.price, p.title
		FROM portfolios p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1 AND u.deleted_at IS NULL
	`, portfolioID).Scan(&sellerID, &price, &title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	if err := ValidatePurchase(buyerID, sellerID, price); err != nil {
		return nil, err
	}

	var already bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM purchases WHERE buyer_id = $1 AND portfolio_id = $2)
	`, buyerID, portfolioID).Scan(&already)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase history: %w", err)
	}
	if already {
		return nil, ErrAlreadyPurchased
	}

	ledgerResult, err := s.balances.ExecutePurchase(ctx, buyerID, sellerID, portfolioID, price)
	if err != nil {
		return nil, err
	}

	if drift := feeDrift(ledgerResult.AmountCharged, ledgerResult.SellerReceived, s.feeRate); !drift.IsZero() {
		log.Warn().
			Str("portfolio_id", portfolioID.String()).
			Str("amount", ledgerResult.AmountCharged.String()).
			Str("seller_received", ledgerResult.SellerReceived.String()).
			Str("drift", drift.String()).
			Msg("Ledger fee split disagrees with configured platform fee rate")
	}

	result := &Result{
		AmountCharged:   ledgerResult.AmountCharged,
		BuyerNewBalance: ledgerResult.BuyerNewBalance,
	}

	var relatedID *uuid.UUID
	var p models.Purchase
	err = s.db.QueryRow(ctx, `
		INSERT INTO purchases (buyer_id, seller_id, portfolio_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, buyer_id, seller_id, portfolio_id, amount, created_at, removed_at
	`, buyerID, sellerID, portfolioID, ledgerResult.AmountCharged).Scan(
		&p.ID, &p.BuyerID, &p.SellerID, &p.PortfolioID, &p.Amount, &p.CreatedAt, &p.RemovedAt,
	)
	if err != nil {
		// The money already moved, so this is still a completed purchase.
		// The missing row surfaces here and in ledger reconciliation.
		log.Error().Err(err).
			Str("buyer_id", buyerID.String()).
			Str("portfolio_id", portfolioID.String()).
			Msg("Ledger transfer succeeded but purchase record failed")
	} else {
		result.Purchase = &p
		relatedID = &p.ID
	}

	s.notifications.Notify(ctx, buyerID, models.NotificationPurchaseCompleted,
		"Purchase completed",
		fmt.Sprintf("You purchased %q for %s.", title, ledgerResult.AmountCharged.StringFixed(2)),
		relatedID)
	s.notifications.Notify(ctx, sellerID, models.NotificationSaleCompleted,
		"Portfolio sold",
		fmt.Sprintf("%q was purchased. You received %s after the platform fee.", title, ledgerResult.SellerReceived.StringFixed(2)),
		relatedID)

	return result, nil
}

// feeDrift returns how far the ledger's seller payout deviates from the
// configured fee split. Zero means the splits agree.
func feeDrift(charged, sellerReceived, feeRate decimal.Decimal) decimal.Decimal {
	return sellerReceived.Sub(balance.SellerShare(charged, feeRate))
}

// List returns the buyer's purchase history, newest first. Purchases the
// buyer removed from their list are excluded.
func (s *Service) List(ctx context.Context, buyerID uuid.UUID, page, pageSize int) (*ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchases WHERE buyer_id = $1 AND removed_at IS NULL
	`, buyerID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT pu.id, pu.buyer_id, pu.seller_id, pu.portfolio_id, pu.amount, pu.created_at, pu.removed_at,
			COALESCE(po.title, 'No longer available'), pr.display_name
		FROM purchases pu
		LEFT JOIN portfolios po ON po.id = pu.portfolio_id
		JOIN profiles pr ON pr.user_id = pu.seller_id
		WHERE pu.buyer_id = $1 AND pu.removed_at IS NULL
		ORDER BY pu.created_at DESC
		LIMIT $2 OFFSET $3
	`, buyerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]PurchaseWithPortfolio, 0, pageSize)
	for rows.Next() {
		var p PurchaseWithPortfolio
		if err := rows.Scan(
			&p.ID, &p.BuyerID, &p.SellerID, &p.PortfolioID, &p.Amount, &p.CreatedAt, &p.RemovedAt,
			&p.PortfolioTitle, &p.SellerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read purchases: %w", err)
	}

	return &ListResponse{
		Purchases:  purchases,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Remove hides a purchase from the buyer's list. No refund is issued and
// the row survives for audit and investor counts.
func (s *Service) Remove(ctx context.Context, buyerID, purchaseID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE purchases SET removed_at = NOW()
		WHERE id = $1 AND buyer_id = $2 AND removed_at IS NULL
	`, purchaseID, buyerID)
	if err != nil {
		return fmt.Errorf("failed to remove purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}

// HasPurchased reports whether the buyer has ever purchased the portfolio,
// including purchases hidden from their list
func (s *Service) HasPurchased(ctx context.Context, buyerID, portfolioID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM purchases WHERE buyer_id = $1 AND portfolio_id = $2)
	`, buyerID, portfolioID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return exists, nil
}
