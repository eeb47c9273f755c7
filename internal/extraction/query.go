package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// QueryFirst tries selectors in order under root and returns the first element matched by the
// first selector that matches anything. It returns nil when nothing matches.
// Invalid selectors match nothing.
func QueryFirst(root *goquery.Selection, selectors []string) *goquery.Selection {
	if root == nil {
		return nil
	}
	for _, selector := range selectors {
		if strings.TrimSpace(selector) == "" {
			continue
		}
		if found := root.Find(selector); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

// Closest returns the nearest ancestor-or-self of sel matching selector, or nil.
func Closest(sel *goquery.Selection, selector string) *goquery.Selection {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	if found := sel.Closest(selector); found.Length() > 0 {
		return found
	}
	return nil
}
