package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiskLevel represents the declared risk level of a portfolio
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// BlockType represents the kind of a content block
type BlockType string

const (
	BlockTypeText  BlockType = "text"
	BlockTypeImage BlockType = "image"
	BlockTypeVideo BlockType = "video"
	BlockTypeFile  BlockType = "file"
)

// ContentBlock is one segment of a portfolio body. Text blocks carry text,
// all other types carry an attachment key into object storage.
type ContentBlock struct {
	ID            string    `json:"id"`
	Type          BlockType `json:"type"`
	Text          string    `json:"text,omitempty"`
	AttachmentKey string    `json:"attachment_key,omitempty"`
	Caption       string    `json:"caption,omitempty"`
}

// Portfolio represents a sellable listing. Rating, vote, and investor
// aggregates are computed on read and never stored on the row.
type Portfolio struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OwnerID     uuid.UUID       `json:"owner_id" db:"owner_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	RiskLevel   RiskLevel       `json:"risk_level" db:"risk_level"`
	Content     []ContentBlock  `json:"content" db:"content"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
