package types

import "strings"

// BlockType is the structural kind of a DescriptionBlock.
type BlockType string

const (
	// BlockHeading is a heading of any source level (H1-H6 collapse to one kind)
	BlockHeading BlockType = "heading"
	// BlockBulletItem is a single list item
	BlockBulletItem BlockType = "bullet_item"
	// BlockParagraph is any other block-level run of text
	BlockParagraph BlockType = "paragraph"
)

// TextAnnotations carries the inline styling of a segment.
type TextAnnotations struct {
	Bold   bool `json:"bold"`
	Italic bool `json:"italic"`
}

// Widen returns the union of both annotation sets. Styling is never cleared.
func (a TextAnnotations) Widen(bold, italic bool) TextAnnotations {
	return TextAnnotations{
		Bold:   a.Bold || bold,
		Italic: a.Italic || italic,
	}
}

// RichTextSegment is a run of text sharing one annotation state.
type RichTextSegment struct {
	Text        string          `json:"text"`
	Annotations TextAnnotations `json:"annotations"`
}

// DescriptionBlock is one rendered block-level unit in document order.
type DescriptionBlock struct {
	Type     BlockType         `json:"type"`
	RichText []RichTextSegment `json:"rich_text"`
}

// PlainText concatenates the text of all segments without trimming.
func (b DescriptionBlock) PlainText() string {
	var sb strings.Builder
	for _, seg := range b.RichText {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// HasContent reports whether any segment carries non-whitespace text.
func (b DescriptionBlock) HasContent() bool {
	for _, seg := range b.RichText {
		if strings.TrimSpace(seg.Text) != "" {
			return true
		}
	}
	return false
}

// DescriptionResult is the output of description extraction.
// Text is always derived from Blocks.
type DescriptionResult struct {
	Text   string             `json:"text"`
	Blocks []DescriptionBlock `json:"blocks"`
}
