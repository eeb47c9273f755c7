package extraction

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ComputedStyleAttr is the attribute the browser renderer stamps onto every element
// with the values of getComputedStyle that extraction cares about.
const ComputedStyleAttr = "data-computed-style"

// Style is the subset of an element's computed style used during extraction.
type Style struct {
	Display    string
	Visibility string
	Opacity    string
	FontWeight string
	FontStyle  string
}

// Hidden reports whether the element and its subtree are not rendered.
// Only display, visibility and opacity are inspected.
func (s Style) Hidden() bool {
	if s.Display == "none" || s.Visibility == "hidden" {
		return true
	}
	if s.Opacity != "" {
		if v, err := strconv.ParseFloat(s.Opacity, 64); err == nil && v == 0 {
			return true
		}
	}
	return false
}

// Bold reports a bold keyword or a numeric weight of at least 600.
func (s Style) Bold() bool {
	switch s.FontWeight {
	case "bold", "bolder":
		return true
	case "":
		return false
	}
	w, err := strconv.Atoi(s.FontWeight)
	return err == nil && w >= 600
}

// Italic reports an italic font style.
func (s Style) Italic() bool {
	return s.FontStyle == "italic"
}

// StyleResolver returns the computed style of an element node.
type StyleResolver interface {
	ComputedStyle(n *html.Node) Style
}

// StyleResolverFunc adapts a function to StyleResolver.
type StyleResolverFunc func(n *html.Node) Style

// ComputedStyle implements StyleResolver.
func (f StyleResolverFunc) ComputedStyle(n *html.Node) Style { return f(n) }

// DefaultStyles resolves style from user-agent defaults, the hidden attribute,
// the inline style attribute and, when present, the renderer's computed style stamp,
// in increasing order of precedence. Stylesheet rules are not evaluated.
var DefaultStyles StyleResolver = StyleResolverFunc(resolveStyle)

var uaHidden = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true,
	"template": true, "meta": true, "link": true, "title": true,
}

var uaBold = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"b": true, "strong": true, "th": true,
}

var uaItalic = map[string]bool{
	"em": true, "i": true, "cite": true, "var": true, "dfn": true, "address": true,
}

func resolveStyle(n *html.Node) Style {
	var s Style
	if n == nil || n.Type != html.ElementNode {
		return s
	}
	tag := strings.ToLower(n.Data)
	if uaHidden[tag] {
		s.Display = "none"
	}
	if uaBold[tag] {
		s.FontWeight = "bold"
	}
	if uaItalic[tag] {
		s.FontStyle = "italic"
	}
	if _, ok := attr(n, "hidden"); ok {
		s.Display = "none"
	}
	if inline, ok := attr(n, "style"); ok {
		applyDeclarations(&s, inline)
	}
	if computed, ok := attr(n, ComputedStyleAttr); ok {
		applyDeclarations(&s, computed)
	}
	return s
}

// applyDeclarations overlays "prop: value; prop: value" declarations onto s.
func applyDeclarations(s *Style, decls string) {
	for _, decl := range strings.Split(decls, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.ToLower(strings.TrimSpace(value))
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		switch name {
		case "display":
			s.Display = value
		case "visibility":
			s.Visibility = value
		case "opacity":
			s.Opacity = value
		case "font-weight":
			s.FontWeight = value
		case "font-style":
			s.FontStyle = value
		}
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
