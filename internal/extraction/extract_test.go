package extraction

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/jonathan/careerstack/internal/types"
)

// parseBody parses an HTML fragment and returns the <body> selection.
func parseBody(t *testing.T, fragment string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + fragment + "</body></html>"))
	require.NoError(t, err)
	return doc.Find("body")
}

func TestExtractDescription_RequirementsExample(t *testing.T) {
	body := parseBody(t, `<h2>Requirements</h2><ul><li>5+ years experience</li></ul><p><strong>Strong</strong> communication skills.</p>`)

	result := ExtractDescription(body)

	require.Len(t, result.Blocks, 3)

	assert.Equal(t, types.BlockHeading, result.Blocks[0].Type)
	assert.Equal(t, "Requirements", result.Blocks[0].PlainText())
	// headings render bold in a browser, so their text is bold too
	assert.True(t, result.Blocks[0].RichText[0].Annotations.Bold)

	assert.Equal(t, types.BlockBulletItem, result.Blocks[1].Type)
	assert.Equal(t, "5+ years experience", result.Blocks[1].PlainText())

	para := result.Blocks[2]
	assert.Equal(t, types.BlockParagraph, para.Type)
	require.Len(t, para.RichText, 2)
	assert.Equal(t, "Strong", para.RichText[0].Text)
	assert.True(t, para.RichText[0].Annotations.Bold)
	assert.False(t, para.RichText[1].Annotations.Bold)
	assert.Contains(t, para.RichText[1].Text, "communication skills.")

	assert.Equal(t, "**Requirements**\n\n\n• 5+ years experience\nStrong communication skills.", result.Text)
}

func TestExtractDescription_HiddenOnly(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
	}{
		{"display none", `<div style="display:none"><p>secret</p></div>`},
		{"visibility hidden", `<p style="visibility: hidden">secret</p>`},
		{"opacity zero", `<span style="opacity:0">secret</span>`},
		{"opacity decimal zero", `<span style="opacity: 0.0">secret</span>`},
		{"hidden attribute", `<div hidden>secret</div>`},
		{"script and style", `<script>var x = 1;</script><style>.a{}</style>`},
		{"computed style stamp", `<div data-computed-style="display:none">secret</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseBody(t, `<div id="root">`+tt.fragment+`</div>`).Find("#root")
			result := ExtractDescription(root)
			assert.Equal(t, "", result.Text)
			assert.Empty(t, result.Blocks)
		})
	}
}

func TestExtractDescription_NestedEmphasisComposes(t *testing.T) {
	body := parseBody(t, `<p><em><strong>x</strong></em><span>plain</span></p>`)

	result := ExtractDescription(body)

	require.Len(t, result.Blocks, 1)
	segs := result.Blocks[0].RichText
	require.Len(t, segs, 2)
	assert.Equal(t, types.TextAnnotations{Bold: true, Italic: true}, segs[0].Annotations)
	assert.Equal(t, types.TextAnnotations{Bold: false, Italic: false}, segs[1].Annotations)
}

func TestExtractDescription_StyleDetection(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		expected types.TextAnnotations
	}{
		{"b tag", `<p><b>x</b></p>`, types.TextAnnotations{Bold: true}},
		{"heading", `<h4>x</h4>`, types.TextAnnotations{Bold: true}},
		{"table header", `<table><tr><th>x</th></tr></table>`, types.TextAnnotations{Bold: true}},
		{"cite", `<p><cite>x</cite></p>`, types.TextAnnotations{Italic: true}},
		{"heading style override", `<h2 style="font-weight: normal">x</h2>`, types.TextAnnotations{}},
		{"i tag", `<p><i>x</i></p>`, types.TextAnnotations{Italic: true}},
		{"font-weight bold", `<p><span style="font-weight: bold">x</span></p>`, types.TextAnnotations{Bold: true}},
		{"font-weight 600", `<p><span style="font-weight:600">x</span></p>`, types.TextAnnotations{Bold: true}},
		{"font-weight 500", `<p><span style="font-weight:500">x</span></p>`, types.TextAnnotations{}},
		{"font-style italic", `<p><span style="font-style: italic">x</span></p>`, types.TextAnnotations{Italic: true}},
		{"bold ancestor propagates", `<div style="font-weight:700"><p><span>x</span></p></div>`, types.TextAnnotations{Bold: true}},
		{"descendant cannot clear", `<p><b><span style="font-weight:400">x</span></b></p>`, types.TextAnnotations{Bold: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractDescription(parseBody(t, tt.fragment))
			require.Len(t, result.Blocks, 1)
			require.Len(t, result.Blocks[0].RichText, 1)
			assert.Equal(t, tt.expected, result.Blocks[0].RichText[0].Annotations)
		})
	}
}

func TestExtractDescription_HeadingLevelsCollapse(t *testing.T) {
	body := parseBody(t, `<h1>One</h1><h3>Three</h3><h6>Six</h6>`)

	result := ExtractDescription(body)

	require.Len(t, result.Blocks, 3)
	for _, b := range result.Blocks {
		assert.Equal(t, types.BlockHeading, b.Type)
	}
}

func TestExtractDescription_LineBreakStaysInBlock(t *testing.T) {
	body := parseBody(t, `<p>first<br>second</p>`)

	result := ExtractDescription(body)

	require.Len(t, result.Blocks, 1)
	segs := result.Blocks[0].RichText
	require.Len(t, segs, 3)
	assert.Equal(t, "first", segs[0].Text)
	assert.Equal(t, "\n", segs[1].Text)
	assert.Equal(t, "second", segs[2].Text)
	assert.Equal(t, "first\nsecond", result.Text)
}

func TestExtractDescription_CollapsesNewlinesAndTabsInText(t *testing.T) {
	body := parseBody(t, "<p>alpha\n\t\tbeta <span>gamma</span></p>")

	result := ExtractDescription(body)

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "alpha beta ", result.Blocks[0].RichText[0].Text)
	assert.Equal(t, "gamma", result.Blocks[0].RichText[1].Text)
}

func TestExtractDescription_WhitespaceOnlyBlocksDropped(t *testing.T) {
	body := parseBody(t, "<div>   </div><p>\n\t</p><div><br></div><p>kept</p><div> <span> </span> </div>")

	result := ExtractDescription(body)

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "kept", result.Blocks[0].PlainText())
	for _, b := range result.Blocks {
		assert.True(t, b.HasContent())
	}
}

func TestExtractDescription_ListTextOutsideItemsIgnored(t *testing.T) {
	body := parseBody(t, `<ul>stray<li>one</li><li>two</li></ul>`)

	result := ExtractDescription(body)

	require.Len(t, result.Blocks, 2)
	assert.Equal(t, "one", result.Blocks[0].PlainText())
	assert.Equal(t, "two", result.Blocks[1].PlainText())
	assert.Equal(t, "• one\n• two", result.Text)
}

func TestExtractDescription_DocumentOrderNoDedup(t *testing.T) {
	body := parseBody(t, `<p>same</p><p>same</p><h4>Head</h4><p>same</p>`)

	result := ExtractDescription(body)

	require.Len(t, result.Blocks, 4)
	assert.Equal(t, []types.BlockType{
		types.BlockParagraph, types.BlockParagraph, types.BlockHeading, types.BlockParagraph,
	}, []types.BlockType{result.Blocks[0].Type, result.Blocks[1].Type, result.Blocks[2].Type, result.Blocks[3].Type})
}

func TestExtractDescription_InlineTextBetweenBlocks(t *testing.T) {
	body := parseBody(t, `Intro <b>bold</b><p>para</p>tail`)

	result := ExtractDescription(body)

	require.Len(t, result.Blocks, 3)
	assert.Equal(t, "Intro bold", result.Blocks[0].PlainText())
	assert.Equal(t, "para", result.Blocks[1].PlainText())
	assert.Equal(t, "tail", result.Blocks[2].PlainText())
}

func TestExtractDescription_DoesNotMutateTree(t *testing.T) {
	body := parseBody(t, `<div><h2>T</h2><ul><li>a</li></ul></div>`)
	before, err := body.Html()
	require.NoError(t, err)

	_ = ExtractDescription(body)

	after, err := body.Html()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestExtractDescription_EmptySelection(t *testing.T) {
	result := ExtractDescription(nil)
	assert.Equal(t, "", result.Text)
	assert.Empty(t, result.Blocks)

	result = ExtractDescription(parseBody(t, "").Find(".missing"))
	assert.Equal(t, "", result.Text)
	assert.Empty(t, result.Blocks)
}

func TestExtractor_CustomStyleResolver(t *testing.T) {
	body := parseBody(t, `<p class="secret">hidden by stylesheet</p><p>visible</p>`)
	resolver := StyleResolverFunc(func(n *html.Node) Style {
		s := DefaultStyles.ComputedStyle(n)
		for _, a := range n.Attr {
			if a.Key == "class" && a.Val == "secret" {
				s.Display = "none"
			}
		}
		return s
	})

	result := NewExtractor(resolver).Extract(body.Get(0))

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "visible", result.Text)
}

func TestRenderText_Deterministic(t *testing.T) {
	blocks := []types.DescriptionBlock{
		{Type: types.BlockHeading, RichText: []types.RichTextSegment{{Text: " About "}}},
		{Type: types.BlockParagraph, RichText: []types.RichTextSegment{{Text: "We build "}, {Text: "things", Annotations: types.TextAnnotations{Bold: true}}}},
		{Type: types.BlockBulletItem, RichText: []types.RichTextSegment{{Text: "Go"}}},
		{Type: types.BlockBulletItem, RichText: []types.RichTextSegment{{Text: "SQL "}}},
	}

	first := RenderText(blocks)
	second := RenderText(blocks)

	assert.Equal(t, first, second)
	assert.Equal(t, "**About**\n\n\nWe build things\n\n• Go\n• SQL", first)
}

func TestRenderText_Empty(t *testing.T) {
	assert.Equal(t, "", RenderText(nil))
}
