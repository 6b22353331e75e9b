package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind represents the kind of a validated balance mutation
type TransactionKind string

const (
	TransactionKindTopup              TransactionKind = "topup"
	TransactionKindWithdrawal         TransactionKind = "withdrawal"
	TransactionKindSubscriptionCharge TransactionKind = "subscription_charge"
	TransactionKindPurchase           TransactionKind = "purchase"
)

// AccountBalance represents a user's spendable funds. Rows are written only
// by the ledger service; this application reads them for advisory checks.
type AccountBalance struct {
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	Currency  string          `json:"currency" db:"currency"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
