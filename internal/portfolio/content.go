package portfolio

import (
	"errors"

	"github.com/foliobay/backend/internal/models"
	"github.com/google/uuid"
)

// Content invariant errors
var (
	ErrLastBlock         = errors.New("a portfolio must keep at least one content block")
	ErrAttachmentLimit   = errors.New("attachment limit reached")
	ErrBlockNotFound     = errors.New("content block not found")
	ErrNotTextBlock      = errors.New("block is not a text block")
	ErrInvalidCursor     = errors.New("split position is out of range")
	ErrEmptyContent      = errors.New("content must have at least one block")
	ErrMissingAttachment = errors.New("non-text blocks require an attachment key")
)

// CountAttachments returns the number of attachment-bearing blocks
func CountAttachments(blocks []models.ContentBlock) int {
	n := 0
	for _, b := range blocks {
		if b.Type != models.BlockTypeText {
			n++
		}
	}
	return n
}

// ValidateContent checks the block-level invariants on a full content body
func ValidateContent(blocks []models.ContentBlock, maxAttachments int) error {
	if len(blocks) == 0 {
		return ErrEmptyContent
	}
	if CountAttachments(blocks) > maxAttachments {
		return ErrAttachmentLimit
	}
	for _, b := range blocks {
		if b.Type != models.BlockTypeText && b.AttachmentKey == "" {
			return ErrMissingAttachment
		}
	}
	return nil
}

// NormalizeContent assigns IDs to blocks that lack one
func NormalizeContent(blocks []models.ContentBlock) []models.ContentBlock {
	out := make([]models.ContentBlock, len(blocks))
	copy(out, blocks)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.New().String()
		}
	}
	return out
}

// InsertBlock inserts a block at index, clamping index into [0, len].
// Attachment-bearing blocks count against the attachment cap.
func InsertBlock(blocks []models.ContentBlock, index int, block models.ContentBlock, maxAttachments int) ([]models.ContentBlock, error) {
	if block.Type != models.BlockTypeText {
		if block.AttachmentKey == "" {
			return nil, ErrMissingAttachment
		}
		if CountAttachments(blocks) >= maxAttachments {
			return nil, ErrAttachmentLimit
		}
	}
	if block.ID == "" {
		block.ID = uuid.New().String()
	}
	if index < 0 {
		index = 0
	}
	if index > len(blocks) {
		index = len(blocks)
	}

	out := make([]models.ContentBlock, 0, len(blocks)+1)
	out = append(out, blocks[:index]...)
	out = append(out, block)
	out = append(out, blocks[index:]...)
	return out, nil
}

// RemoveBlock removes the block with the given ID. Removing the only
// remaining block is rejected; a portfolio body is never empty.
func RemoveBlock(blocks []models.ContentBlock, blockID string) ([]models.ContentBlock, error) {
	idx := indexOf(blocks, blockID)
	if idx < 0 {
		return nil, ErrBlockNotFound
	}
	if len(blocks) == 1 {
		return nil, ErrLastBlock
	}

	out := make([]models.ContentBlock, 0, len(blocks)-1)
	out = append(out, blocks[:idx]...)
	out = append(out, blocks[idx+1:]...)
	return out, nil
}

// SplitTextBlock splits a text block at the given rune position into two
// sequential text blocks. The concatenation of the halves equals the
// original text. Splitting at either end is allowed and yields an empty
// half, which keeps editor cursor semantics simple.
func SplitTextBlock(blocks []models.ContentBlock, blockID string, position int) ([]models.ContentBlock, error) {
	idx := indexOf(blocks, blockID)
	if idx < 0 {
		return nil, ErrBlockNotFound
	}
	if blocks[idx].Type != models.BlockTypeText {
		return nil, ErrNotTextBlock
	}

	runes := []rune(blocks[idx].Text)
	if position < 0 || position > len(runes) {
		return nil, ErrInvalidCursor
	}

	first := blocks[idx]
	first.Text = string(runes[:position])

	second := models.ContentBlock{
		ID:   uuid.New().String(),
		Type: models.BlockTypeText,
		Text: string(runes[position:]),
	}

	out := make([]models.ContentBlock, 0, len(blocks)+1)
	out = append(out, blocks[:idx]...)
	out = append(out, first, second)
	out = append(out, blocks[idx+1:]...)
	return out, nil
}

func indexOf(blocks []models.ContentBlock, blockID string) int {
	for i, b := range blocks {
		if b.ID == blockID {
			return i
		}
	}
	return -1
}
