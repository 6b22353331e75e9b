package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase records that a buyer acquired a portfolio. The row is an audit
// fact separate from the ledger entry that moved the money. Buyers may hide
// a purchase from their list (removed_at) without refund. PortfolioID goes
// nil when the portfolio is later deleted; the purchase itself survives.
type Purchase struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	BuyerID     uuid.UUID       `json:"buyer_id" db:"buyer_id"`
	SellerID    uuid.UUID       `json:"seller_id" db:"seller_id"`
	PortfolioID *uuid.UUID      `json:"portfolio_id,omitempty" db:"portfolio_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	RemovedAt   *time.Time      `json:"removed_at,omitempty" db:"removed_at"`
}
