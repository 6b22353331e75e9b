// Package portfolio implements portfolio listings: CRUD restricted to the
// owner, block-structured content, and the enriched marketplace view with
// seller, rating, vote, and investor aggregates computed on read.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foliobay/backend/internal/cache"
	"github.com/foliobay/backend/internal/models"
	"github.com/foliobay/backend/internal/monitoring"
	"github.com/foliobay/backend/internal/vote"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Portfolio-specific errors
var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrNotOwner          = errors.New("only the owner or an administrator may modify this portfolio")
	ErrNegativePrice     = errors.New("price must not be negative")
)

const listingCachePrefix = "listings:"

// staleCacheTTL bounds how old a degraded-read copy may be
const staleCacheTTL = 24 * time.Hour

// Service handles portfolio operations
type Service struct {
	db             *pgxpool.Pool
	cache          *cache.Redis
	maxAttachments int
	listingTTL     time.Duration
}

// NewService creates a new portfolio service. cache may be nil, in which
// case listings always hit the primary store.
func NewService(db *pgxpool.Pool, c *cache.Redis, maxAttachments int, listingTTL time.Duration) *Service {
	if maxAttachments < 1 {
		maxAttachments = 30
	}
	if listingTTL <= 0 {
		listingTTL = 2 * time.Minute
	}
	return &Service{db: db, cache: c, maxAttachments: maxAttachments, listingTTL: listingTTL}
}

// MaxAttachments returns the per-portfolio attachment cap
func (s *Service) MaxAttachments() int {
	return s.maxAttachments
}

// CreateRequest is a portfolio creation payload
type CreateRequest struct {
	Title       string                `json:"title" binding:"required,min=1,max=200"`
	Description string                `json:"description" binding:"max=5000"`
	Price       decimal.Decimal       `json:"price" binding:"required"`
	Category    string                `json:"category" binding:"max=100"`
	RiskLevel   models.RiskLevel      `json:"risk_level" binding:"required,oneof=low medium high"`
	Content     []models.ContentBlock `json:"content" binding:"required,min=1"`
}

// UpdateRequest carries the editable portfolio fields. Nil pointers leave
// the current value untouched.
type UpdateRequest struct {
	Title       *string                `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string                `json:"description,omitempty" binding:"omitempty,max=5000"`
	Price       *decimal.Decimal       `json:"price,omitempty"`
	Category    *string                `json:"category,omitempty" binding:"omitempty,max=100"`
	RiskLevel   *models.RiskLevel      `json:"risk_level,omitempty" binding:"omitempty,oneof=low medium high"`
	Content     *[]models.ContentBlock `json:"content,omitempty" binding:"omitempty,min=1"`
}

// ListFilter narrows and orders a marketplace listing query
type ListFilter struct {
	Category  string           `form:"category"`
	RiskLevel models.RiskLevel `form:"risk_level" binding:"omitempty,oneof=low medium high"`
	OwnerID   *uuid.UUID       `form:"owner_id"`
	Sort      string           `form:"sort" binding:"omitempty,oneof=newest most_popular price_asc price_desc"`
	Page      int              `form:"page"`
	PageSize  int              `form:"page_size"`
}

// Listing is a portfolio enriched with its read-time aggregates
type Listing struct {
	models.Portfolio
	Seller        models.ProfileSummary `json:"seller"`
	AverageRating float64               `json:"average_rating"`
	ReviewCount   int                   `json:"review_count"`
	Tally         models.VoteTally      `json:"tally"`
	VoteScore     float64               `json:"vote_score"`
	InvestorCount int                   `json:"investor_count"`
}

// ListResponse is a paged marketplace listing. Degraded marks a cached copy
// served because the primary store was unreachable; it may be stale and is
// never authoritative.
type ListResponse struct {
	Portfolios []Listing `json:"portfolios"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	Degraded   bool      `json:"degraded,omitempty"`
}

const portfolioColumns = `id, owner_id, title, description, price, category, risk_level, content, created_at, updated_at`

func scanPortfolio(row pgx.Row) (*models.Portfolio, error) {
	var p models.Portfolio
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Price, &p.Category,
		&p.RiskLevel, &p.Content, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to scan portfolio: %w", err)
	}
	return &p, nil
}

// Create inserts a new portfolio for the owner
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req *CreateRequest) (*models.Portfolio, error) {
	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	content := NormalizeContent(req.Content)
	if err := ValidateContent(content, s.maxAttachments); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO portfolios (owner_id, title, description, price, category, risk_level, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+portfolioColumns,
		ownerID, req.Title, req.Description, req.Price, req.Category, req.RiskLevel, content)
	p, err := scanPortfolio(row)
	if err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	return p, nil
}

// Get retrieves a single portfolio with its aggregates
func (s *Service) Get(ctx context.Context, portfolioID uuid.UUID) (*Listing, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1
	`, portfolioID)
	p, err := scanPortfolio(row)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, p)
}

// Update applies the provided fields. Only the owner or an admin may edit.
func (s *Service) Update(ctx context.Context, portfolioID, actorID uuid.UUID, actorRole models.UserRole, req *UpdateRequest) (*models.Portfolio, error) {
	current, err := s.getRaw(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != actorID && actorRole != models.UserRoleAdmin {
		return nil, ErrNotOwner
	}

	if req.Price != nil && req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	var content *[]models.ContentBlock
	if req.Content != nil {
		normalized := NormalizeContent(*req.Content)
		if err := ValidateContent(normalized, s.maxAttachments); err != nil {
			return nil, err
		}
		content = &normalized
	}

	row := s.db.QueryRow(ctx, `
		UPDATE portfolios SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			price       = COALESCE($4, price),
			category    = COALESCE($5, category),
			risk_level  = COALESCE($6, risk_level),
			content     = COALESCE($7, content),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING `+portfolioColumns,
		portfolioID, req.Title, req.Description, req.Price, req.Category, req.RiskLevel, content)
	p, err := scanPortfolio(row)
	if err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	return p, nil
}

// Delete removes a portfolio. Only the owner or an admin may delete.
// Votes cascade away; purchase rows survive for audit.
func (s *Service) Delete(ctx context.Context, portfolioID, actorID uuid.UUID, actorRole models.UserRole) error {
	current, err := s.getRaw(ctx, portfolioID)
	if err != nil {
		return err
	}
	if current.OwnerID != actorID && actorRole != models.UserRoleAdmin {
		return ErrNotOwner
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPortfolioNotFound
	}

	s.invalidateListings(ctx)
	return nil
}

// List returns the marketplace view. Fresh responses come from the primary
// store and are cached; if the store is unreachable a cached copy is served
// marked degraded.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	if filter.Sort == "" {
		filter.Sort = SortNewest
	}

	key := s.listingKey(filter)

	if s.cache != nil {
		var cached ListResponse
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			monitoring.RecordCacheHit("listings")
			return &cached, nil
		}
		monitoring.RecordCacheMiss("listings")
	}

	resp, err := s.listFromStore(ctx, filter)
	if err != nil {
		if stale := s.staleListing(ctx, key); stale != nil {
			log.Warn().Err(err).Msg("Primary store unavailable, serving degraded listing from cache")
			stale.Degraded = true
			return stale, nil
		}
		return nil, err
	}

	if s.cache != nil {
		if cerr := s.cache.SetJSON(ctx, key, resp, s.listingTTL); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to cache listing")
		}
		if cerr := s.cache.SetJSON(ctx, "stale:"+key, resp, staleCacheTTL); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to cache stale listing copy")
		}
	}

	return resp, nil
}

func (s *Service) listFromStore(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	where := "WHERE u.deleted_at IS NULL"
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		where += " AND p.category = " + arg(filter.Category)
	}
	if filter.RiskLevel != "" {
		where += " AND p.risk_level = " + arg(filter.RiskLevel)
	}
	if filter.OwnerID != nil {
		where += " AND p.owner_id = " + arg(*filter.OwnerID)
	}

	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM portfolios p
		JOIN users u ON u.id = p.owner_id `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count portfolios: %w", err)
	}

	orderBy := "p.created_at DESC"
	switch filter.Sort {
	case SortPriceAsc:
		orderBy = "p.price ASC, p.created_at DESC"
	case SortPriceDesc:
		orderBy = "p.price DESC, p.created_at DESC"
	}

	// Popularity is a read-time aggregate, so the most-popular view is
	// ordered in Go over the full result set and paged afterwards. Paging
	// in SQL would order each page independently.
	pageInSQL := filter.Sort != SortMostPopular

	query := `
		SELECT p.id, p.owner_id, p.title, p.description, p.price, p.category, p.risk_level,
			p.content, p.created_at, p.updated_at,
			pr.display_name, pr.avatar_url, pr.verification_status,
			COALESCE(v.upvotes, 0), COALESCE(v.downvotes, 0),
			COALESCE(r.review_count, 0), COALESCE(r.avg_rating, 0),
			COALESCE(b.investor_count, 0)
		FROM portfolios p
		JOIN users u ON u.id = p.owner_id
		JOIN profiles pr ON pr.user_id = p.owner_id
		LEFT JOIN (
			SELECT portfolio_id,
				COUNT(*) FILTER (WHERE vote_type = 'up') AS upvotes,
				COUNT(*) FILTER (WHERE vote_type = 'down') AS downvotes
			FROM votes GROUP BY portfolio_id
		) v ON v.portfolio_id = p.id
		LEFT JOIN (
			SELECT seller_id, COUNT(*) AS review_count, AVG(rating) AS avg_rating
			FROM reviews GROUP BY seller_id
		) r ON r.seller_id = p.owner_id
		LEFT JOIN (
			SELECT portfolio_id, COUNT(*) AS investor_count
			FROM purchases GROUP BY portfolio_id
		) b ON b.portfolio_id = p.id
		` + where + `
		ORDER BY ` + orderBy
	if pageInSQL {
		query += `
		LIMIT ` + arg(filter.PageSize) + ` OFFSET ` + arg((filter.Page-1)*filter.PageSize)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	listings := make([]Listing, 0, filter.PageSize)
	for rows.Next() {
		var l Listing
		var avgRating float64
		if err := rows.Scan(
			&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.Category, &l.RiskLevel,
			&l.Content, &l.CreatedAt, &l.UpdatedAt,
			&l.Seller.DisplayName, &l.Seller.AvatarURL, &l.Seller.VerificationStatus,
			&l.Tally.Upvotes, &l.Tally.Downvotes,
			&l.ReviewCount, &avgRating,
			&l.InvestorCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		l.Seller.UserID = l.OwnerID
		l.Tally.Total = l.Tally.Upvotes + l.Tally.Downvotes
		l.VoteScore = vote.Score(l.Tally)
		l.AverageRating = roundRating(avgRating)
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listings: %w", err)
	}

	if filter.Sort == SortMostPopular {
		SortListings(listings)
		listings = PageOf(listings, filter.Page, filter.PageSize)
	}

	return &ListResponse{
		Portfolios: listings,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
	}, nil
}

// enrich loads the read-time aggregates for a single portfolio
func (s *Service) enrich(ctx context.Context, p *models.Portfolio) (*Listing, error) {
	l := Listing{Portfolio: *p}

	err := s.db.QueryRow(ctx, `
		SELECT pr.display_name, pr.avatar_url, pr.verification_status,
			COALESCE((SELECT COUNT(*) FROM votes WHERE portfolio_id = $1 AND vote_type = 'up'), 0),
			COALESCE((SELECT COUNT(*) FROM votes WHERE portfolio_id = $1 AND vote_type = 'down'), 0),
			COALESCE((SELECT COUNT(*) FROM reviews WHERE seller_id = $2), 0),
			COALESCE((SELECT AVG(rating) FROM reviews WHERE seller_id = $2), 0),
			COALESCE((SELECT COUNT(*) FROM purchases WHERE portfolio_id = $1), 0)
		FROM profiles pr WHERE pr.user_id = $2
	`, p.ID, p.OwnerID).Scan(
		&l.Seller.DisplayName, &l.Seller.AvatarURL, &l.Seller.VerificationStatus,
		&l.Tally.Upvotes, &l.Tally.Downvotes,
		&l.ReviewCount, &l.AverageRating,
		&l.InvestorCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich portfolio: %w", err)
	}

	l.Seller.UserID = p.OwnerID
	l.Tally.Total = l.Tally.Upvotes + l.Tally.Downvotes
	l.VoteScore = vote.Score(l.Tally)
	l.AverageRating = roundRating(l.AverageRating)
	return &l, nil
}

func (s *Service) getRaw(ctx context.Context, portfolioID uuid.UUID) (*models.Portfolio, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1
	`, portfolioID)
	return scanPortfolio(row)
}

func (s *Service) listingKey(f ListFilter) string {
	owner := ""
	if f.OwnerID != nil {
		owner = f.OwnerID.String()
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%d:%d",
		listingCachePrefix, f.Category, f.RiskLevel, owner, f.Sort, f.Page, f.PageSize)
}

func (s *Service) staleListing(ctx context.Context, key string) *ListResponse {
	if s.cache == nil {
		return nil
	}
	var stale ListResponse
	if err := s.cache.GetJSON(ctx, "stale:"+key, &stale); err != nil {
		return nil
	}
	return &stale
}

func (s *Service) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.DeleteByPattern(ctx, listingCachePrefix+"*")
	s.cache.DeleteByPattern(ctx, "stale:"+listingCachePrefix+"*")
}

// roundRating rounds a mean rating to one decimal place
func roundRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	return float64(int(r*10+0.5)) / 10
}
