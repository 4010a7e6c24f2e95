package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// CSSPath returns a selector that matches n as the first result of a
// querySelector call against the document n belongs to.
//
// The path climbs until it reaches an ancestor (or n itself) whose id is
// unique in the document, then descends with tag:nth-child steps:
//
//	[id="projects"] > div:nth-child(2) > h3:nth-child(1)
//
// Without a unique id anchor the path starts at html.
func CSSPath(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	root := documentRoot(n)
	var steps []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if id, ok := Attr(cur, "id"); ok && id != "" && countIDs(root, id) == 1 {
			steps = append(steps, IDSelector(id))
			break
		}
		tag := strings.ToLower(cur.Data)
		if cur.Parent == nil || cur.Parent.Type != html.ElementNode {
			steps = append(steps, tag)
			break
		}
		steps = append(steps, fmt.Sprintf("%s:nth-child(%d)", tag, elementIndex(cur)))
	}

	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return strings.Join(steps, " > ")
}

// elementIndex is n's 1-based position among its parent's element children.
func elementIndex(n *html.Node) int {
	idx := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			idx++
		}
	}
	return idx
}

func documentRoot(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func countIDs(root *html.Node, id string) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if v, ok := Attr(n, "id"); ok && v == id {
				count++
			}
		}
		for c := n.FirstChild; c != nil && count < 2; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return count
}
