package extraction

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>?`)
	spaceRuns      = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// SanitizeText strips stray HTML tags and surrounding whitespace from a scraped scalar field.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(text, ""))
}

// InnerText approximates the rendered text of the first node in sel: hidden subtrees are skipped,
// line breaks and block boundaries become newlines, and runs of spaces collapse.
func InnerText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var sb strings.Builder
	writeInnerText(&sb, sel.Get(0))

	lines := strings.Split(sb.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func writeInnerText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case html.ElementNode:
		if DefaultStyles.ComputedStyle(n).Hidden() {
			return
		}
		switch strings.ToLower(n.Data) {
		case "br":
			sb.WriteString("\n")
			return
		case "p", "div", "li", "ul", "ol", "section", "article", "blockquote",
			"h1", "h2", "h3", "h4", "h5", "h6", "tr":
			sb.WriteString("\n")
			defer sb.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeInnerText(sb, c)
	}
}
