package portfolio

import "sort"

// Sort orders accepted by listings
const (
	SortNewest      = "newest"
	SortMostPopular = "most_popular"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
)

// SortListings orders listings in place for the most-popular view: vote
// score descending, ties broken by review weight (count times rating)
// descending. The sort is stable so equal listings keep their newest-first
// order from the store.
func SortListings(items []Listing) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].VoteScore != items[j].VoteScore {
			return items[i].VoteScore > items[j].VoteScore
		}
		wi := float64(items[i].ReviewCount) * items[i].AverageRating
		wj := float64(items[j].ReviewCount) * items[j].AverageRating
		return wi > wj
	})
}

// PageOf returns the 1-based page of an already ordered list. Out-of-range
// pages come back empty.
func PageOf(items []Listing, page, pageSize int) []Listing {
	start := (page - 1) * pageSize
	if start < 0 || start >= len(items) {
		return []Listing{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
