package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foliobay/backend/internal/config"
	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.LedgerConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestExecutePurchase_Success(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transactions/purchase" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var req purchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if !req.Amount.Equal(decimal.NewFromInt(100)) {
			t.Errorf("unexpected amount %s", req.Amount)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(PurchaseResult{
			AmountCharged:   decimal.NewFromInt(100),
			BuyerNewBalance: decimal.NewFromInt(400),
			SellerReceived:  decimal.NewFromInt(90),
		})
	})

	result, err := client.ExecutePurchase(context.Background(), uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.SellerReceived.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected seller received 90, got %s", result.SellerReceived)
	}
	if !result.BuyerNewBalance.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected buyer balance 400, got %s", result.BuyerNewBalance)
	}
}

func TestExecutePurchase_InsufficientFunds(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ledgerErrorResponse{Error: TransactionError{
			Code:           CodeInsufficientFunds,
			Message:        "insufficient funds",
			RequiredAmount: decimal.NewFromInt(50),
			CurrentBalance: decimal.NewFromInt(30),
		}})
	})

	_, err := client.ExecutePurchase(context.Background(), uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(50))
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsInsufficientFunds(err) {
		t.Fatalf("expected insufficient funds rejection, got %v", err)
	}

	var txErr *TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected *TransactionError, got %T", err)
	}
	if !txErr.Shortfall().Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected shortfall 20, got %s", txErr.Shortfall())
	}
}

func TestExecutePurchase_TransportFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ExecutePurchase(context.Background(), uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(10))
	if err == nil {
		t.Fatal("expected error")
	}

	// A server failure must not look like a business rejection
	var txErr *TransactionError
	if errors.As(err, &txErr) {
		t.Fatalf("transport failure reported as transaction error: %v", err)
	}
}

func TestExecutePurchase_MalformedRejection(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("not json"))
	})

	_, err := client.ExecutePurchase(context.Background(), uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(10))

	var txErr *TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected *TransactionError, got %v", err)
	}
	if txErr.Code != CodeRejected {
		t.Fatalf("expected generic rejection code, got %q", txErr.Code)
	}
}

func TestUpdateBalance(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Kind != string(models.TransactionKindWithdrawal) {
			t.Errorf("unexpected kind %q", req.Kind)
		}
		if !req.Delta.Equal(decimal.NewFromInt(-25)) {
			t.Errorf("unexpected delta %s", req.Delta)
		}

		json.NewEncoder(w).Encode(UpdateResult{NewBalance: decimal.NewFromInt(75)})
	})

	result, err := client.UpdateBalance(context.Background(), uuid.New(), decimal.NewFromInt(-25), models.TransactionKindWithdrawal, "test withdrawal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.NewBalance.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected new balance 75, got %s", result.NewBalance)
	}
}
