package dom

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Stage is one tier of the text locator. Match returns the best element in
// doc for query, or nil. Stages must not mutate doc.
type Stage struct {
	Name  string
	Match func(doc *html.Node, query string) *html.Node
}

// Default stage tiers, from most to least specific.
var (
	HeadingStage    = SmallestTextMatch("headings", "h1, h2, h3, h4, h5, h6")
	InlineTextStage = SmallestTextMatch("inline text", "a, button, label, span, strong, em, b, small, p, li")
	BlockStage      = SmallestTextMatch("block containers", "section, article, div, header, footer, nav, main, aside, form")
)

// SmallestTextMatch builds a stage that selects, among the elements matching
// selector, the visible one with the shortest text containing the query
// (case-insensitive). Ties go to the element first in document order.
func SmallestTextMatch(name, selector string) Stage {
	sel := cascadia.MustCompile(selector)
	return Stage{
		Name: name,
		Match: func(doc *html.Node, query string) *html.Node {
			query = strings.ToLower(strings.TrimSpace(query))
			if query == "" {
				return nil
			}
			var best *html.Node
			bestLen := -1
			for _, n := range cascadia.QueryAll(doc, sel) {
				if !isRendered(n) {
					continue
				}
				text := normalizedText(n)
				if !strings.Contains(text, query) {
					continue
				}
				if bestLen < 0 || len(text) < bestLen {
					best, bestLen = n, len(text)
				}
			}
			return best
		},
	}
}

func isRendered(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if isHidden(cur) {
			return false
		}
	}
	return true
}

// Locator searches a document snapshot tier by tier and stops at the first hit.
type Locator struct {
	stages []Stage
}

// NewLocator creates a locator with the given stages, or the default
// headings, inline text, block containers tiers when none are given.
func NewLocator(stages ...Stage) *Locator {
	if len(stages) == 0 {
		stages = []Stage{HeadingStage, InlineTextStage, BlockStage}
	}
	return &Locator{stages: stages}
}

// Stages returns the stage names in search order.
func (l *Locator) Stages() []string {
	names := make([]string, len(l.stages))
	for i, s := range l.stages {
		names[i] = s.Name
	}
	return names
}

// Locate tries every query against each stage in order. It returns the
// matched node and the name of the stage that produced it.
func (l *Locator) Locate(doc *html.Node, queries []string) (*html.Node, string) {
	for _, stage := range l.stages {
		for _, q := range queries {
			if n := stage.Match(doc, q); n != nil {
				return n, stage.Name
			}
		}
	}
	return nil, ""
}

var (
	quotedPattern = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	tokenPattern  = regexp.MustCompile(`([#.])([A-Za-z_][\w-]*)`)
	cssSyntax     = regexp.MustCompile(`[#.\[\]:>+~=()*]`)
)

// ExtractQueries derives text search terms from a selector that failed to
// match. Quoted substrings win; a selector with no CSS syntax is used as-is;
// otherwise id tokens then class tokens are used with dashes and underscores
// read as spaces. All queries are lowercased.
func ExtractQueries(selector string) []string {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil
	}

	var queries []string
	seen := make(map[string]bool)
	add := func(q string) {
		q = strings.ToLower(strings.Join(strings.Fields(q), " "))
		if q != "" && !seen[q] {
			seen[q] = true
			queries = append(queries, q)
		}
	}

	for _, m := range quotedPattern.FindAllStringSubmatch(selector, -1) {
		if m[1] != "" {
			add(m[1])
		} else {
			add(m[2])
		}
	}
	if len(queries) > 0 {
		return queries
	}

	if !cssSyntax.MatchString(selector) {
		add(selector)
		return queries
	}

	tokens := tokenPattern.FindAllStringSubmatch(selector, -1)
	for _, prefix := range []string{"#", "."} {
		for _, m := range tokens {
			if m[1] == prefix {
				add(strings.NewReplacer("-", " ", "_", " ").Replace(m[2]))
			}
		}
	}
	return queries
}

// Resolve finds the element a selector refers to on page. The selector is
// tried directly first; if it matches nothing or cannot be parsed, the page
// snapshot is searched with the locator and the hit is returned as a CSSPath.
// ok is false when neither approach finds an element.
func Resolve(ctx context.Context, page Page, locator *Locator, selector string) (resolved string, ok bool, err error) {
	found, err := page.Exists(ctx, selector)
	if err != nil && !errors.Is(err, ErrInvalidSelector) {
		return "", false, err
	}
	if err == nil && found {
		return selector, true, nil
	}

	queries := ExtractQueries(selector)
	if len(queries) == 0 {
		return "", false, nil
	}

	snapshot, err := page.Snapshot(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to snapshot page: %w", err)
	}
	doc, err := html.Parse(strings.NewReader(snapshot))
	if err != nil {
		return "", false, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	n, _ := locator.Locate(doc, queries)
	if n == nil {
		return "", false, nil
	}
	return CSSPath(n), true, nil
}
