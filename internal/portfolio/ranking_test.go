package portfolio

import (
	"testing"

	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
)

func listing(title string, score float64, reviewCount int, rating float64) Listing {
	return Listing{
		Portfolio:     models.Portfolio{ID: uuid.New(), Title: title},
		VoteScore:     score,
		ReviewCount:   reviewCount,
		AverageRating: rating,
	}
}

func titles(items []Listing) []string {
	out := make([]string, len(items))
	for i, l := range items {
		out[i] = l.Title
	}
	return out
}

func TestSortListings_VoteScoreFirst(t *testing.T) {
	items := []Listing{
		listing("low", 10, 100, 5),
		listing("high", 80, 0, 0),
		listing("mid", 40, 2, 3),
	}

	SortListings(items)

	want := []string{"high", "mid", "low"}
	for i, w := range want {
		if items[i].Title != w {
			t.Fatalf("position %d: got %v, want %v (order %v)", i, items[i].Title, w, titles(items))
		}
	}
}

func TestSortListings_ReviewWeightBreaksTies(t *testing.T) {
	// Weights: few 2*4=8, many 10*4.5=45
	items := []Listing{
		listing("few", 50, 2, 4),
		listing("many", 50, 10, 4.5),
	}

	SortListings(items)

	if items[0].Title != "many" {
		t.Fatalf("expected review weight to break tie, got %v", titles(items))
	}
}

func TestSortListings_PagingAfterGlobalSort(t *testing.T) {
	// Newest-first arrival order; the top-scored entry is the oldest
	items := []Listing{
		listing("newest", 10, 0, 0),
		listing("mid-a", 20, 0, 0),
		listing("mid-b", 30, 0, 0),
		listing("oldest-best", 100, 0, 0),
	}

	SortListings(items)

	page1 := PageOf(items, 1, 2)
	if len(page1) != 2 || page1[0].Title != "oldest-best" {
		t.Fatalf("page 1 must lead with the globally top-scored portfolio, got %v", titles(page1))
	}
	page2 := PageOf(items, 2, 2)
	if len(page2) != 2 || page2[0].Title != "mid-a" || page2[1].Title != "newest" {
		t.Fatalf("unexpected page 2: %v", titles(page2))
	}
}

func TestPageOf_Bounds(t *testing.T) {
	items := []Listing{listing("a", 0, 0, 0), listing("b", 0, 0, 0), listing("c", 0, 0, 0)}

	if got := PageOf(items, 2, 2); len(got) != 1 || got[0].Title != "c" {
		t.Fatalf("unexpected partial page: %v", titles(got))
	}
	if got := PageOf(items, 3, 2); len(got) != 0 {
		t.Fatalf("out-of-range page should be empty, got %v", titles(got))
	}
}

func TestSortListings_StableForEqual(t *testing.T) {
	items := []Listing{
		listing("first", 50, 4, 3),
		listing("second", 50, 3, 4),
		listing("third", 50, 12, 1),
	}

	SortListings(items)

	// All weights equal 12; input order must survive
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if items[i].Title != w {
			t.Fatalf("stable order violated: got %v", titles(items))
		}
	}
}
