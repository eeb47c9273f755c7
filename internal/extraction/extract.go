// Package extraction turns job description DOM subtrees into plain text and typed rich-text blocks,
// and provides the small text helpers the scrapers share.
package extraction

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonathan/careerstack/internal/types"
)

var lineBreakRuns = regexp.MustCompile(`[\n\t]+`)

// Extractor converts a DOM subtree into a DescriptionResult.
type Extractor struct {
	styles StyleResolver
}

// NewExtractor creates an extractor. A nil resolver uses DefaultStyles.
func NewExtractor(styles StyleResolver) *Extractor {
	if styles == nil {
		styles = DefaultStyles
	}
	return &Extractor{styles: styles}
}

// ExtractDescription extracts the first node of sel with the default style resolver.
func ExtractDescription(sel *goquery.Selection) types.DescriptionResult {
	if sel == nil || sel.Length() == 0 {
		return types.DescriptionResult{Text: "", Blocks: []types.DescriptionBlock{}}
	}
	return NewExtractor(nil).Extract(sel.Get(0))
}

// Extract walks root in document order and returns its blocks plus the text derived from them.
// The tree is only read.
func (e *Extractor) Extract(root *html.Node) types.DescriptionResult {
	blocks := []types.DescriptionBlock{}
	if root == nil {
		return types.DescriptionResult{Text: "", Blocks: blocks}
	}

	t := &traversal{styles: e.styles, blockType: types.BlockParagraph, blocks: blocks}
	t.visit(root, types.TextAnnotations{})
	t.flush()

	return types.DescriptionResult{
		Text:   RenderText(t.blocks),
		Blocks: t.blocks,
	}
}

// traversal holds the block accumulator for one Extract call.
type traversal struct {
	styles    StyleResolver
	blockType types.BlockType
	pending   []types.RichTextSegment
	blocks    []types.DescriptionBlock
}

// flush emits the pending block if it has visible content and resets to an empty paragraph.
func (t *traversal) flush() {
	segments := make([]types.RichTextSegment, 0, len(t.pending))
	for _, seg := range t.pending {
		if seg.Text != "" {
			segments = append(segments, seg)
		}
	}
	block := types.DescriptionBlock{Type: t.blockType, RichText: segments}
	if block.HasContent() {
		t.blocks = append(t.blocks, block)
	}
	t.blockType = types.BlockParagraph
	t.pending = nil
}

func (t *traversal) push(text string, ctx types.TextAnnotations) {
	t.pending = append(t.pending, types.RichTextSegment{Text: text, Annotations: ctx})
}

func (t *traversal) visit(n *html.Node, ctx types.TextAnnotations) {
	switch n.Type {
	case html.TextNode:
		if txt := lineBreakRuns.ReplaceAllString(n.Data, " "); txt != "" {
			t.push(txt, ctx)
		}
		return
	case html.ElementNode:
	case html.DocumentNode:
		t.visitChildren(n, ctx, false)
		return
	default:
		return
	}

	style := t.styles.ComputedStyle(n)
	if style.Hidden() {
		return
	}

	tag := strings.ToUpper(n.Data)
	inner := ctx.Widen(
		tag == "STRONG" || tag == "B" || style.Bold(),
		tag == "EM" || tag == "I" || style.Italic(),
	)

	switch tag {
	case "H1", "H2", "H3", "H4", "H5", "H6":
		t.flush()
		t.blockType = types.BlockHeading
		t.visitChildren(n, inner, false)
		t.flush()
	case "UL", "OL":
		t.flush()
		t.visitChildren(n, inner, true)
		t.flush()
	case "LI":
		t.flush()
		t.blockType = types.BlockBulletItem
		t.visitChildren(n, inner, false)
		t.flush()
	case "BR":
		t.push("\n", ctx)
	case "DIV", "P", "SECTION", "ARTICLE", "BLOCKQUOTE":
		t.flush()
		t.visitChildren(n, inner, false)
		t.flush()
	default:
		t.visitChildren(n, inner, false)
	}
}

func (t *traversal) visitChildren(n *html.Node, ctx types.TextAnnotations, elementsOnly bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if elementsOnly && c.Type != html.ElementNode {
			continue
		}
		t.visit(c, ctx)
	}
}
