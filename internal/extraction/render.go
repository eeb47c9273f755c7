package extraction

import (
	"strings"

	"github.com/jonathan/careerstack/internal/types"
)

// BulletGlyph prefixes bullet items in rendered text.
const BulletGlyph = "•"

// RenderText derives the plain-text form of blocks. Headings are set off by blank lines and
// wrapped in ** markers, bullet items start with a bullet glyph and paragraphs sit on their own line.
func RenderText(blocks []types.DescriptionBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		content := strings.TrimSpace(b.PlainText())
		switch b.Type {
		case types.BlockHeading:
			sb.WriteString("\n\n**")
			sb.WriteString(content)
			sb.WriteString("**\n\n")
		case types.BlockBulletItem:
			sb.WriteString("\n")
			sb.WriteString(BulletGlyph)
			sb.WriteString(" ")
			sb.WriteString(content)
		default:
			sb.WriteString("\n")
			sb.WriteString(content)
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}
