// Package notion saves scraped jobs as pages in a Notion database.
package notion

import (
	"github.com/jonathan/careerstack/internal/types"
)

// MaxTextLength is the longest text content Notion accepts in one rich text object.
const MaxTextLength = 2000

// Block types written by this package.
const (
	BlockHeading2         = "heading_2"
	BlockHeading3         = "heading_3"
	BlockBulletedListItem = "bulleted_list_item"
	BlockParagraph        = "paragraph"
)

// Link is a rich text hyperlink.
type Link struct {
	URL string `json:"url"`
}

// Text is the content of a text rich text object.
type Text struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Annotations are the rich text styles this package sets.
type Annotations struct {
	Bold   bool `json:"bold"`
	Italic bool `json:"italic"`
}

// RichText is one Notion rich text object.
type RichText struct {
	Type        string       `json:"type,omitempty"`
	Text        Text         `json:"text"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// RichTextBody is the payload shared by text-bearing blocks.
type RichTextBody struct {
	RichText []RichText `json:"rich_text"`
}

// Block is a Notion block object. Exactly one payload field is set, matching Type.
type Block struct {
	Object           string        `json:"object"`
	Type             string        `json:"type"`
	Heading2         *RichTextBody `json:"heading_2,omitempty"`
	Heading3         *RichTextBody `json:"heading_3,omitempty"`
	BulletedListItem *RichTextBody `json:"bulleted_list_item,omitempty"`
	Paragraph        *RichTextBody `json:"paragraph,omitempty"`
}

// Content returns the concatenated text of the block.
func (b Block) Content() string {
	var body *RichTextBody
	switch b.Type {
	case BlockHeading2:
		body = b.Heading2
	case BlockHeading3:
		body = b.Heading3
	case BlockBulletedListItem:
		body = b.BulletedListItem
	case BlockParagraph:
		body = b.Paragraph
	}
	if body == nil {
		return ""
	}
	var s string
	for _, rt := range body.RichText {
		s += rt.Text.Content
	}
	return s
}

func newBlock(blockType string, rich []RichText) Block {
	body := &RichTextBody{RichText: rich}
	b := Block{Object: "block", Type: blockType}
	switch blockType {
	case BlockHeading2:
		b.Heading2 = body
	case BlockHeading3:
		b.Heading3 = body
	case BlockBulletedListItem:
		b.BulletedListItem = body
	default:
		b.Type = BlockParagraph
		b.Paragraph = body
	}
	return b
}

func plainBlock(blockType, content string) Block {
	return newBlock(blockType, []RichText{{Text: Text{Content: content}}})
}

// EncodeBlock converts a description block. Headings become heading_3 so they sit below the
// page's own heading_2 sections. Each segment is cut to MaxTextLength.
func EncodeBlock(block types.DescriptionBlock) Block {
	rich := make([]RichText, 0, len(block.RichText))
	for _, seg := range block.RichText {
		rich = append(rich, RichText{
			Type: "text",
			Text: Text{Content: truncate(seg.Text, MaxTextLength)},
			Annotations: &Annotations{
				Bold:   seg.Annotations.Bold,
				Italic: seg.Annotations.Italic,
			},
		})
	}

	switch block.Type {
	case types.BlockHeading:
		return newBlock(BlockHeading3, rich)
	case types.BlockBulletItem:
		return newBlock(BlockBulletedListItem, rich)
	default:
		return newBlock(BlockParagraph, rich)
	}
}

// EncodeBlocks converts structured description blocks in order.
func EncodeBlocks(blocks []types.DescriptionBlock) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, EncodeBlock(b))
	}
	return out
}

// Encode uses the structured blocks when there are any and otherwise chunks the plain text.
func Encode(blocks []types.DescriptionBlock, text string) []Block {
	if len(blocks) > 0 {
		return EncodeBlocks(blocks)
	}
	return ChunkText(text)
}

// ChunkText splits text into paragraph blocks of at most MaxTextLength characters. A chunk ends
// after the last newline inside the window, else after the last space, else at the limit.
// Concatenating the chunks gives back text.
func ChunkText(text string) []Block {
	if text == "" {
		return []Block{}
	}
	runes := []rune(text)
	var blocks []Block

	for i := 0; i < len(runes); {
		end := min(i+MaxTextLength, len(runes))

		if end < len(runes) {
			if nl := lastIndex(runes, '\n', i, end); nl > i {
				end = nl + 1
			} else if sp := lastIndex(runes, ' ', i, end); sp > i {
				end = sp + 1
			}
		}

		blocks = append(blocks, plainBlock(BlockParagraph, string(runes[i:end])))
		i = end
	}
	return blocks
}

// lastIndex finds the last r in runes[from:to], or -1.
func lastIndex(runes []rune, r rune, from, to int) int {
	for j := to - 1; j >= from; j-- {
		if runes[j] == r {
			return j
		}
	}
	return -1
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
