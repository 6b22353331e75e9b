package vote

import (
	"testing"

	"github.com/foliobay/backend/internal/models"
	"pgregory.net/rapid"
)

func TestToggle_SameTypeRetracts(t *testing.T) {
	up := models.VoteTypeUp
	if got := Toggle(&up, models.VoteTypeUp); got != nil {
		t.Fatalf("expected retraction, got %v", *got)
	}

	down := models.VoteTypeDown
	if got := Toggle(&down, models.VoteTypeDown); got != nil {
		t.Fatalf("expected retraction, got %v", *got)
	}
}

func TestToggle_OppositeTypeReplaces(t *testing.T) {
	up := models.VoteTypeUp
	got := Toggle(&up, models.VoteTypeDown)
	if got == nil || *got != models.VoteTypeDown {
		t.Fatalf("expected down, got %v", got)
	}
}

func TestToggle_NoVoteSets(t *testing.T) {
	got := Toggle(nil, models.VoteTypeUp)
	if got == nil || *got != models.VoteTypeUp {
		t.Fatalf("expected up, got %v", got)
	}
}

// TestProperty_Toggle_DoubleToggleRetracts verifies that applying the same
// vote twice from any starting state always ends with no vote
func TestProperty_Toggle_DoubleToggleRetracts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		requested := models.VoteType(rapid.SampledFrom([]string{"up", "down"}).Draw(rt, "requested"))

		first := Toggle(nil, requested)
		second := Toggle(first, requested)

		if second != nil {
			t.Fatalf("PROPERTY VIOLATION: double toggle of %s should retract, got %v", requested, *second)
		}
	})
}

// TestProperty_Toggle_AtMostOneVote verifies the result is always nil or
// exactly the requested type
func TestProperty_Toggle_AtMostOneVote(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var current *models.VoteType
		if rapid.Bool().Draw(rt, "hasVote") {
			v := models.VoteType(rapid.SampledFrom([]string{"up", "down"}).Draw(rt, "current"))
			current = &v
		}
		requested := models.VoteType(rapid.SampledFrom([]string{"up", "down"}).Draw(rt, "requested"))

		next := Toggle(current, requested)
		if next != nil && *next != requested {
			t.Fatalf("PROPERTY VIOLATION: next vote %v is neither nil nor the requested %s", *next, requested)
		}
	})
}

func TestScore_NoVotes(t *testing.T) {
	if got := Score(models.VoteTally{}); got != 0 {
		t.Fatalf("expected 0 for no votes, got %v", got)
	}
}

func TestScore_Examples(t *testing.T) {
	tests := []struct {
		up, down int
		want     float64
	}{
		{7, 3, 40},
		{10, 0, 100},
		{0, 10, -100},
		{5, 5, 0},
	}
	for _, tt := range tests {
		tally := models.VoteTally{Upvotes: tt.up, Downvotes: tt.down, Total: tt.up + tt.down}
		if got := Score(tally); got != tt.want {
			t.Errorf("Score(%d up, %d down) = %v, want %v", tt.up, tt.down, got, tt.want)
		}
	}
}

// TestProperty_Score_Bounded verifies the score always lies in [-100, 100]
func TestProperty_Score_Bounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		up := rapid.IntRange(0, 100000).Draw(rt, "up")
		down := rapid.IntRange(0, 100000).Draw(rt, "down")

		score := Score(models.VoteTally{Upvotes: up, Downvotes: down, Total: up + down})
		if score < -100 || score > 100 {
			t.Fatalf("PROPERTY VIOLATION: score %v out of [-100, 100] for %d up, %d down", score, up, down)
		}
	})
}
