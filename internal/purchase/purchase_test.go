package purchase

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestValidatePurchase(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()

	if err := ValidatePurchase(buyer, seller, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Free portfolios can still be acquired
	if err := ValidatePurchase(buyer, seller, decimal.Zero); err != nil {
		t.Fatalf("zero price should be valid: %v", err)
	}

	if err := ValidatePurchase(buyer, buyer, decimal.NewFromInt(10)); !errors.Is(err, ErrSelfPurchase) {
		t.Fatalf("expected ErrSelfPurchase, got %v", err)
	}

	if err := ValidatePurchase(buyer, seller, decimal.NewFromInt(-1)); err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestFeeDrift(t *testing.T) {
	rate := decimal.NewFromFloat(0.10)

	if d := feeDrift(decimal.NewFromInt(100), decimal.NewFromInt(90), rate); !d.IsZero() {
		t.Fatalf("expected zero drift for an agreeing split, got %s", d)
	}
	if d := feeDrift(decimal.NewFromInt(100), decimal.NewFromInt(85), rate); !d.Equal(decimal.NewFromInt(-5)) {
		t.Fatalf("expected drift -5 when the seller was shorted, got %s", d)
	}
}

func TestResult_OmitsMissingPurchaseFact(t *testing.T) {
	// A charged buyer still gets a success body even when the purchase
	// row could not be recorded
	body, err := json.Marshal(Result{
		AmountCharged:   decimal.NewFromInt(100),
		BuyerNewBalance: decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(body), `"purchase"`) {
		t.Fatalf("nil purchase fact should be omitted: %s", body)
	}
	if !strings.Contains(string(body), `"amount_charged"`) {
		t.Fatalf("charge figures must survive: %s", body)
	}
}
