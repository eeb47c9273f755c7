package scrapers

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// href returns the absolute link target of sel resolved against pageURL, the way a browser
// reports an anchor's href. Elements without an href yield "".
func href(sel *goquery.Selection, pageURL string) string {
	if sel == nil {
		return ""
	}
	raw, ok := sel.Attr("href")
	if !ok {
		return ""
	}
	raw = strings.TrimSpace(raw)

	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if base, err := url.Parse(pageURL); err == nil && base.IsAbs() {
		ref = base.ResolveReference(ref)
	}
	if ref.IsAbs() && ref.Host != "" && ref.Path == "" && ref.Opaque == "" {
		ref.Path = "/"
	}
	return ref.String()
}

// stripQuery drops everything from the first "?".
func stripQuery(link string) string {
	if i := strings.Index(link, "?"); i >= 0 {
		return link[:i]
	}
	return link
}

// isAnchor reports whether sel is an <a> element.
func isAnchor(sel *goquery.Selection) bool {
	return sel != nil && sel.Length() > 0 && goquery.NodeName(sel) == "a"
}

// unwrapRedirect returns the destination of a LinkedIn redirect wrapper, or link unchanged.
// ok is false for a redirect wrapper without a destination.
func unwrapRedirect(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return link, true
	}
	if u.Hostname() == "www.linkedin.com" && strings.Contains(u.Path, "/redirect") {
		target := u.Query().Get("url")
		return target, target != ""
	}
	return link, true
}
