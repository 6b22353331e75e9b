// Command diagnose runs data-invariant checks against the store and prints
// one pass/fail line per check. Exit status is non-zero when any check
// fails, so it can run in cron or CI against a staging database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/foliobay/backend/internal/database"
)

type check struct {
	name  string
	query string
}

// Each query counts violating rows; zero means the invariant holds.
var checks = []check{
	{
		name:  "no negative balances",
		query: `SELECT COUNT(*) FROM account_balances WHERE balance < 0`,
	},
	{
		name: "at most one vote per user and portfolio",
		query: `SELECT COUNT(*) FROM (
			SELECT user_id, portfolio_id FROM votes
			GROUP BY user_id, portfolio_id HAVING COUNT(*) > 1
		) d`,
	},
	{
		name: "at most one review per reviewer and seller",
		query: `SELECT COUNT(*) FROM (
			SELECT reviewer_id, seller_id FROM reviews
			GROUP BY reviewer_id, seller_id HAVING COUNT(*) > 1
		) d`,
	},
	{
		name: "profiles carry a known subscription tier",
		query: `SELECT COUNT(*) FROM profiles
			WHERE subscription_tier NOT IN ('free', 'plus', 'pro')`,
	},
	{
		name: "decided applications carry a reviewer",
		query: `SELECT COUNT(*) FROM verification_applications
			WHERE status IN ('approved', 'rejected') AND reviewer_id IS NULL`,
	},
	{
		name: "pending profiles have a pending application",
		query: `SELECT COUNT(*) FROM profiles p
			WHERE p.verification_status = 'pending'
			AND NOT EXISTS (
				SELECT 1 FROM verification_applications a
				WHERE a.user_id = p.user_id AND a.status = 'pending'
			)`,
	},
	{
		name: "every user has a profile",
		query: `SELECT COUNT(*) FROM users u
			LEFT JOIN profiles p ON p.user_id = u.id
			WHERE u.deleted_at IS NULL AND p.user_id IS NULL`,
	},
	{
		name: "portfolio content is never empty",
		query: `SELECT COUNT(*) FROM portfolios
			WHERE jsonb_array_length(content) = 0`,
	},
}

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database", "", "Database URL (overrides DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable or -database flag is required")
		os.Exit(2)
	}

	db, err := database.New(databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(2)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	failed := 0
	for _, c := range checks {
		var violations int
		if err := db.Pool.QueryRow(ctx, c.query).Scan(&violations); err != nil {
			fmt.Printf("ERROR %-50s %v\n", c.name, err)
			failed++
			continue
		}
		if violations == 0 {
			fmt.Printf("PASS  %s\n", c.name)
		} else {
			fmt.Printf("FAIL  %-50s %d violating rows\n", c.name, violations)
			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d checks failed\n", failed, len(checks))
		os.Exit(1)
	}
	fmt.Printf("\nall %d checks passed\n", len(checks))
}
