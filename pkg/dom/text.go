package dom

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// isSkippedElement returns true for elements whose content is never rendered as text.
func isSkippedElement(tagName string) bool {
	skipped := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"template": true,
		"head":     true,
		"iframe":   true,
		"object":   true,
		"svg":      true,
		"textarea": true,
		"select":   true,
	}
	return skipped[tagName]
}

// isBlockElement returns true for elements that start a new line of text.
func isBlockElement(tagName string) bool {
	blocks := map[string]bool{
		"div":        true,
		"p":          true,
		"section":    true,
		"article":    true,
		"header":     true,
		"footer":     true,
		"nav":        true,
		"main":       true,
		"aside":      true,
		"h1":         true,
		"h2":         true,
		"h3":         true,
		"h4":         true,
		"h5":         true,
		"h6":         true,
		"ul":         true,
		"ol":         true,
		"li":         true,
		"table":      true,
		"tr":         true,
		"form":       true,
		"fieldset":   true,
		"blockquote": true,
		"pre":        true,
		"figure":     true,
		"figcaption": true,
		"dl":         true,
		"dt":         true,
		"dd":         true,
		"hr":         true,
	}
	return blocks[tagName]
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// isHidden reports whether an element is not rendered at all.
func isHidden(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	tag := strings.ToLower(n.Data)
	if isSkippedElement(tag) {
		return true
	}
	if _, ok := Attr(n, "hidden"); ok {
		return true
	}
	if tag == "input" {
		if typ, _ := Attr(n, "type"); strings.EqualFold(typ, "hidden") {
			return true
		}
	}
	if style, ok := Attr(n, "style"); ok {
		compact := strings.ToLower(strings.ReplaceAll(style, " ", ""))
		if strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden") {
			return true
		}
	}
	return false
}

// VisibleText approximates the browser's innerText for n: hidden subtrees are
// skipped, whitespace is collapsed and block elements break lines.
func VisibleText(n *html.Node) string {
	w := &textWriter{}
	writeVisible(n, w)
	return w.String()
}

func writeVisible(n *html.Node, w *textWriter) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		if isHidden(n) {
			return
		}
		tag := strings.ToLower(n.Data)
		if tag == "br" {
			w.forceBreak()
			return
		}
		block := isBlockElement(tag)
		if block {
			w.lineBreak()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeVisible(c, w)
		}
		if block {
			w.lineBreak()
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeVisible(c, w)
	}
}

type textWriter struct {
	lines []string
	cur   strings.Builder
	space bool
}

func (w *textWriter) text(s string) {
	if s == "" {
		return
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		if w.cur.Len() > 0 {
			w.space = true
		}
		return
	}
	lead := unicode.IsSpace(rune(s[0]))
	if (lead || w.space) && w.cur.Len() > 0 {
		w.cur.WriteByte(' ')
	}
	w.cur.WriteString(strings.Join(words, " "))
	w.space = unicode.IsSpace(rune(s[len(s)-1]))
}

func (w *textWriter) lineBreak() {
	if w.cur.Len() == 0 {
		return
	}
	w.forceBreak()
}

func (w *textWriter) forceBreak() {
	w.lines = append(w.lines, w.cur.String())
	w.cur.Reset()
	w.space = false
}

func (w *textWriter) String() string {
	w.lineBreak()
	return strings.TrimSpace(strings.Join(w.lines, "\n"))
}

// normalizedText is the lowercased single-line visible text of n, used for matching.
func normalizedText(n *html.Node) string {
	return strings.ToLower(strings.Join(strings.Fields(VisibleText(n)), " "))
}
