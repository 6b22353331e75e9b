package portfolio

import (
	"errors"
	"strings"
	"testing"

	"github.com/foliobay/backend/internal/models"
	"pgregory.net/rapid"
)

func textBlock(id, text string) models.ContentBlock {
	return models.ContentBlock{ID: id, Type: models.BlockTypeText, Text: text}
}

func imageBlock(id string) models.ContentBlock {
	return models.ContentBlock{ID: id, Type: models.BlockTypeImage, AttachmentKey: "attachments/u/" + id}
}

func TestRemoveBlock_LastBlockRejected(t *testing.T) {
	blocks := []models.ContentBlock{textBlock("a", "hello")}

	_, err := RemoveBlock(blocks, "a")
	if !errors.Is(err, ErrLastBlock) {
		t.Fatalf("expected ErrLastBlock, got %v", err)
	}
}

func TestRemoveBlock_Middle(t *testing.T) {
	blocks := []models.ContentBlock{textBlock("a", "one"), imageBlock("b"), textBlock("c", "two")}

	out, err := RemoveBlock(blocks, "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestRemoveBlock_NotFound(t *testing.T) {
	blocks := []models.ContentBlock{textBlock("a", "one"), textBlock("b", "two")}

	if _, err := RemoveBlock(blocks, "missing"); !errors.Is(err, ErrBlockNotFound) {
		t.Fatalf("expected ErrBlockNotFound, got %v", err)
	}
}

func TestInsertBlock_AttachmentLimit(t *testing.T) {
	const limit = 3
	blocks := []models.ContentBlock{textBlock("t", "x")}
	var err error
	for i := 0; i < limit; i++ {
		blocks, err = InsertBlock(blocks, len(blocks), imageBlock(string(rune('a'+i))), limit)
		if err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	if _, err := InsertBlock(blocks, 0, imageBlock("z"), limit); !errors.Is(err, ErrAttachmentLimit) {
		t.Fatalf("expected ErrAttachmentLimit, got %v", err)
	}

	// Text blocks are not capped
	if _, err := InsertBlock(blocks, 0, textBlock("", "more text"), limit); err != nil {
		t.Fatalf("text insert should not be capped: %v", err)
	}
}

func TestInsertBlock_MissingAttachmentKey(t *testing.T) {
	blocks := []models.ContentBlock{textBlock("t", "x")}
	bad := models.ContentBlock{Type: models.BlockTypeFile}

	if _, err := InsertBlock(blocks, 0, bad, 30); !errors.Is(err, ErrMissingAttachment) {
		t.Fatalf("expected ErrMissingAttachment, got %v", err)
	}
}

func TestInsertBlock_AssignsID(t *testing.T) {
	blocks := []models.ContentBlock{textBlock("t", "x")}

	out, err := InsertBlock(blocks, 1, textBlock("", "new"), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[1].ID == "" {
		t.Fatal("inserted block should get an ID")
	}
}

func TestSplitTextBlock_Examples(t *testing.T) {
	blocks := []models.ContentBlock{textBlock("a", "hello world")}

	out, err := SplitTextBlock(blocks, "a", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(out))
	}
	if out[0].Text != "hello" || out[1].Text != " world" {
		t.Fatalf("unexpected split: %q / %q", out[0].Text, out[1].Text)
	}
	if out[1].Type != models.BlockTypeText || out[1].ID == "" {
		t.Fatalf("second half malformed: %+v", out[1])
	}
}

func TestSplitTextBlock_NonText(t *testing.T) {
	blocks := []models.ContentBlock{imageBlock("a"), textBlock("b", "x")}

	if _, err := SplitTextBlock(blocks, "a", 0); !errors.Is(err, ErrNotTextBlock) {
		t.Fatalf("expected ErrNotTextBlock, got %v", err)
	}
}

func TestSplitTextBlock_CursorOutOfRange(t *testing.T) {
	blocks := []models.ContentBlock{textBlock("a", "abc")}

	if _, err := SplitTextBlock(blocks, "a", 4); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
	if _, err := SplitTextBlock(blocks, "a", -1); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

// TestProperty_SplitTextBlock_PreservesText verifies splitting never loses
// or reorders characters, including multi-byte ones
func TestProperty_SplitTextBlock_PreservesText(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringN(0, 200, -1).Draw(rt, "text")
		runes := []rune(text)
		position := rapid.IntRange(0, len(runes)).Draw(rt, "position")

		blocks := []models.ContentBlock{textBlock("a", text)}
		out, err := SplitTextBlock(blocks, "a", position)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		joined := out[0].Text + out[1].Text
		if joined != text {
			t.Fatalf("PROPERTY VIOLATION: split at %d of %q lost text, got %q", position, text, joined)
		}
	})
}

// TestProperty_RemoveBlock_NeverEmpty verifies content never becomes empty
// through removals
func TestProperty_RemoveBlock_NeverEmpty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		blocks := make([]models.ContentBlock, 0, n)
		for i := 0; i < n; i++ {
			blocks = append(blocks, textBlock(strings.Repeat("x", i+1), "t"))
		}

		for len(blocks) > 0 {
			next, err := RemoveBlock(blocks, blocks[0].ID)
			if len(blocks) == 1 {
				if !errors.Is(err, ErrLastBlock) {
					t.Fatalf("PROPERTY VIOLATION: removing last block returned %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			blocks = next
		}
	})
}

func TestValidateContent(t *testing.T) {
	if err := ValidateContent(nil, 30); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if err := ValidateContent([]models.ContentBlock{textBlock("a", "x")}, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateContent([]models.ContentBlock{imageBlock("a"), imageBlock("b")}, 1); !errors.Is(err, ErrAttachmentLimit) {
		t.Fatalf("expected ErrAttachmentLimit, got %v", err)
	}
}
