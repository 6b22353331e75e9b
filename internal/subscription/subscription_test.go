package subscription

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTiers_AscendingPrice(t *testing.T) {
	tiers := Tiers()
	if len(tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(tiers))
	}
	if tiers[0].Name != TierFree || !tiers[0].MonthlyPrice.IsZero() {
		t.Fatalf("first tier should be free at 0, got %+v", tiers[0])
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].MonthlyPrice.LessThanOrEqual(tiers[i-1].MonthlyPrice) {
			t.Fatalf("tiers not in ascending price order: %s then %s",
				tiers[i-1].MonthlyPrice, tiers[i].MonthlyPrice)
		}
	}
}

func TestTierByName(t *testing.T) {
	plus, ok := TierByName(TierPlus)
	if !ok {
		t.Fatal("plus tier should exist")
	}
	if !plus.MonthlyPrice.Equal(decimal.NewFromFloat(9.99)) {
		t.Fatalf("unexpected plus price %s", plus.MonthlyPrice)
	}

	if _, ok := TierByName("platinum"); ok {
		t.Fatal("unknown tier should not resolve")
	}
}
