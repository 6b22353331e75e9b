package review

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil); got != 0 {
		t.Fatalf("expected 0 for no reviews, got %v", got)
	}
	if got := Aggregate([]int{}); got != 0 {
		t.Fatalf("expected 0 for empty slice, got %v", got)
	}
}

func TestAggregate_Examples(t *testing.T) {
	tests := []struct {
		ratings []int
		want    float64
	}{
		{[]int{5}, 5},
		{[]int{4, 5}, 4.5},
		{[]int{1, 2, 3, 4, 5}, 3},
		{[]int{5, 5, 4}, 4.7},
		{[]int{1, 1, 2}, 1.3},
	}
	for _, tt := range tests {
		if got := Aggregate(tt.ratings); got != tt.want {
			t.Errorf("Aggregate(%v) = %v, want %v", tt.ratings, got, tt.want)
		}
	}
}

// TestProperty_Aggregate_Bounded verifies a non-empty aggregate stays within
// the rating scale and carries at most one decimal place
func TestProperty_Aggregate_Bounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ratings := rapid.SliceOfN(rapid.IntRange(1, 5), 1, 200).Draw(rt, "ratings")

		got := Aggregate(ratings)
		if got < 1 || got > 5 {
			t.Fatalf("PROPERTY VIOLATION: aggregate %v out of [1, 5] for %v", got, ratings)
		}

		scaled := got * 10
		if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Fatalf("PROPERTY VIOLATION: aggregate %v not rounded to one decimal", got)
		}
	})
}

// TestProperty_Aggregate_Uniform verifies that identical ratings aggregate
// to exactly that rating
func TestProperty_Aggregate_Uniform(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rating := rapid.IntRange(1, 5).Draw(rt, "rating")
		n := rapid.IntRange(1, 100).Draw(rt, "n")

		ratings := make([]int, n)
		for i := range ratings {
			ratings[i] = rating
		}

		if got := Aggregate(ratings); got != float64(rating) {
			t.Fatalf("PROPERTY VIOLATION: %d identical ratings of %d aggregated to %v", n, rating, got)
		}
	})
}
