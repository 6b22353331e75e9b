package balance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/foliobay/backend/internal/config"
	"github.com/foliobay/backend/internal/models"
	"github.com/foliobay/backend/internal/monitoring"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger rejection codes
const (
	CodeInsufficientFunds = "insufficient_funds"
	CodeRejected          = "rejected"
)

// TransactionError is a business-rule rejection from the ledger service.
// It is an expected outcome, distinct from transport failures, and carries
// the figures the caller needs for actionable messaging.
type TransactionError struct {
	Code           string          `json:"code"`
	Message        string          `json:"message"`
	RequiredAmount decimal.Decimal `json:"required_amount"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// Error implements the error interface
func (e *TransactionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Shortfall returns how much is missing to cover the required amount
func (e *TransactionError) Shortfall() decimal.Decimal {
	short := e.RequiredAmount.Sub(e.CurrentBalance)
	if short.IsNegative() {
		return decimal.Zero
	}
	return short
}

// IsInsufficientFunds reports whether err is an insufficient-funds rejection
func IsInsufficientFunds(err error) bool {
	var txErr *TransactionError
	return errors.As(err, &txErr) && txErr.Code == CodeInsufficientFunds
}

// Client calls the external ledger service, the sole authority for balance
// mutations. The ledger guarantees atomicity of debit/credit pairs and
// rejects any operation that would drive a balance negative.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a ledger client from configuration
func NewClient(cfg *config.LedgerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PurchaseResult is the ledger's confirmation of a completed purchase
type PurchaseResult struct {
	AmountCharged   decimal.Decimal `json:"amount_charged"`
	BuyerNewBalance decimal.Decimal `json:"buyer_new_balance"`
	SellerReceived  decimal.Decimal `json:"seller_received"`
}

// UpdateResult is the ledger's confirmation of a single-account mutation
type UpdateResult struct {
	NewBalance decimal.Decimal `json:"new_balance"`
}

type purchaseRequest struct {
	BuyerID     uuid.UUID       `json:"buyer_id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	PortfolioID uuid.UUID       `json:"portfolio_id"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
}

type updateRequest struct {
	UserID      uuid.UUID       `json:"user_id"`
	Delta       decimal.Decimal `json:"delta"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
}

type ledgerErrorResponse struct {
	Error TransactionError `json:"error"`
}

// ExecutePurchase asks the ledger to move funds from buyer to seller,
// retaining the platform fee. Business-rule rejections come back as a
// *TransactionError; any other error is a transport failure.
func (c *Client) ExecutePurchase(ctx context.Context, buyerID, sellerID, portfolioID uuid.UUID, amount decimal.Decimal) (*PurchaseResult, error) {
	req := purchaseRequest{
		BuyerID:     buyerID,
		SellerID:    sellerID,
		PortfolioID: portfolioID,
		Amount:      amount,
		Kind:        string(models.TransactionKindPurchase),
	}

	var result PurchaseResult
	if err := c.post(ctx, "purchase", "/v1/transactions/purchase", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateBalance asks the ledger to apply a signed delta to a single account.
// Withdrawal and subscription charges fail, never clamp, when the delta
// exceeds the current balance.
func (c *Client) UpdateBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal, kind models.TransactionKind, description string) (*UpdateResult, error) {
	req := updateRequest{
		UserID:      userID,
		Delta:       delta,
		Kind:        string(kind),
		Description: description,
	}

	var result UpdateResult
	if err := c.post(ctx, string(kind), "/v1/transactions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, operation, path string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		monitoring.RecordLedgerRequest(operation, "error", time.Since(start))
		return fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()
	monitoring.RecordLedgerRequest(operation, ledgerOutcome(resp.StatusCode), time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read ledger response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		if err := json.Unmarshal(respBody, dest); err != nil {
			return fmt.Errorf("failed to decode ledger response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		// Business-rule rejection, an expected outcome
		var lerr ledgerErrorResponse
		if err := json.Unmarshal(respBody, &lerr); err != nil || lerr.Error.Code == "" {
			return &TransactionError{Code: CodeRejected, Message: "transaction rejected"}
		}
		return &lerr.Error
	default:
		return fmt.Errorf("ledger returned status %d: %s", resp.StatusCode, string(respBody))
	}
}

// ledgerOutcome maps a ledger status code to a metric label
func ledgerOutcome(statusCode int) string {
	switch {
	case statusCode == http.StatusOK || statusCode == http.StatusCreated:
		return "ok"
	case statusCode == http.StatusUnprocessableEntity:
		return "rejected"
	default:
		return "error"
	}
}
