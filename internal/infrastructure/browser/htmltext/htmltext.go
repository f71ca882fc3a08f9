// Package htmltext extracts human-facing text from raw HTML: document
// titles for HTTP-level checks, and short visible-text previews attached to
// failure reports.
package htmltext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipped elements never contribute visible text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Iframe:   true,
	atom.Template: true,
	atom.Head:     true,
}

// Title returns the trimmed text of the first <title> element, or "".
func Title(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	n := find(doc, atom.Title)
	if n == nil {
		return ""
	}
	var sb strings.Builder
	collect(n, &sb, false)
	return collapse(sb.String())
}

// VisibleText returns the body text with scripts, styles and hidden
// elements removed and whitespace collapsed.
func VisibleText(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	root := find(doc, atom.Body)
	if root == nil {
		root = doc
	}
	var sb strings.Builder
	collect(root, &sb, true)
	return collapse(sb.String())
}

// Preview is VisibleText cut to at most max bytes on a rune boundary, with an ellipsis when
// something was cut.
func Preview(rawHTML string, max int) string {
	text := VisibleText(rawHTML)
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, a); f != nil {
			return f
		}
	}
	return nil
}

func collect(n *html.Node, sb *strings.Builder, visibleOnly bool) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if visibleOnly && (skipped[n.DataAtom] || Hidden(n)) {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, sb, visibleOnly)
	}
}

// Hidden reports whether the element itself is hidden via the hidden
// attribute, aria-hidden, type=hidden or an inline display:none /
// visibility:hidden style. Ancestors are not consulted.
func Hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "type":
			if n.DataAtom == atom.Input && strings.EqualFold(a.Val, "hidden") {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
