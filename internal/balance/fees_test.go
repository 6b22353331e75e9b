package balance

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"100.00", "10.00"},
		{"9.99", "1.00"},
		{"0.01", "0.00"},
		{"250.50", "25.05"},
	}
	for _, tt := range tests {
		amount := decimal.RequireFromString(tt.amount)
		got := PlatformFee(amount, DefaultPlatformFeeRate)
		if got.String() != decimal.RequireFromString(tt.want).String() {
			t.Errorf("PlatformFee(%s) = %s, want %s", tt.amount, got, tt.want)
		}
	}
}

func TestSellerShare(t *testing.T) {
	amount := decimal.NewFromInt(100)
	share := SellerShare(amount, DefaultPlatformFeeRate)
	if !share.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected seller share 90, got %s", share)
	}
}

// TestProperty_FeeAndShareSumToAmount verifies no money is created or
// destroyed by the fee split
func TestProperty_FeeAndShareSumToAmount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cents := rapid.Int64Range(0, 10_000_000).Draw(rt, "cents")
		amount := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))

		fee := PlatformFee(amount, DefaultPlatformFeeRate)
		share := SellerShare(amount, DefaultPlatformFeeRate)

		if !fee.Add(share).Equal(amount) {
			t.Fatalf("PROPERTY VIOLATION: fee %s + share %s != amount %s", fee, share, amount)
		}
		if fee.IsNegative() || share.IsNegative() {
			t.Fatalf("PROPERTY VIOLATION: negative split %s / %s for amount %s", fee, share, amount)
		}
	})
}
