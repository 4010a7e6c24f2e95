// Package dom defines the boundary between the assistant's actions and a
// rendered document, plus the pure helpers that work on HTML snapshots:
// selector quoting, structural CSS paths, visible text extraction and the
// staged text locator used when a selector does not match.
//
// Two Page implementations exist: MemoryPage in this package, an in-memory
// document that records every side effect, and browser.Page, which drives a
// live Chromium page through Playwright.
package dom

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidSelector is returned when a selector cannot be parsed.
var ErrInvalidSelector = errors.New("invalid selector")

// ScrollBlock is the vertical alignment used by ScrollIntoView.
type ScrollBlock string

const (
	BlockStart  ScrollBlock = "start"
	BlockCenter ScrollBlock = "center"
)

// Rect is an element's bounding rectangle in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Overlay is a temporary highlight box drawn above the page.
type Overlay struct {
	ID    string
	Rect  Rect
	Color string
}

// Page is a rendered document the assistant can act on.
//
// Selectors are CSS selectors. Methods that take a selector act on the first
// match and return ErrInvalidSelector (wrapped) when the selector cannot be
// parsed. Scrolling is smooth where the implementation supports it.
type Page interface {
	// Exists reports whether selector matches at least one element.
	Exists(ctx context.Context, selector string) (bool, error)

	// Snapshot returns the current document serialized as HTML.
	Snapshot(ctx context.Context) (string, error)

	// ScrollIntoView scrolls the first match into view with the given alignment.
	ScrollIntoView(ctx context.Context, selector string, block ScrollBlock) error

	// ScrollBy scrolls the window vertically by dy pixels.
	ScrollBy(ctx context.Context, dy float64) error

	// ScrollTo scrolls the window to the absolute vertical offset y.
	ScrollTo(ctx context.Context, y float64) error

	// ViewportHeight returns the window's inner height.
	ViewportHeight(ctx context.Context) (float64, error)

	// DocumentHeight returns the scrollable height of the document body.
	DocumentHeight(ctx context.Context) (float64, error)

	// InnerText returns the rendered text of the first match. found is false
	// when nothing matches.
	InnerText(ctx context.Context, selector string) (text string, found bool, err error)

	// SetValue assigns value through the element's native value setter,
	// bypassing framework property overrides.
	SetValue(ctx context.Context, selector, value string) error

	// Dispatch fires a bubbling event of the given type on the first match.
	Dispatch(ctx context.Context, selector, eventType string) error

	// Click invokes the first match's click behavior.
	Click(ctx context.Context, selector string) error

	// BoundingRect returns the first match's bounding rectangle.
	BoundingRect(ctx context.Context, selector string) (Rect, error)

	// AddOverlay draws a pulsing highlight box.
	AddOverlay(ctx context.Context, overlay Overlay) error

	// FadeOverlay stops the pulse and fades the overlay to transparent.
	FadeOverlay(ctx context.Context, id string) error

	// RemoveOverlay detaches the overlay from the document.
	RemoveOverlay(ctx context.Context, id string) error

	// OpenWindow opens url in a new browsing context.
	OpenWindow(ctx context.Context, url, target, features string) error

	// Navigate routes the page to path within the current site.
	Navigate(ctx context.Context, path string) error
}

// Quote returns s as a double-quoted CSS string.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\a `)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// IDSelector returns a selector matching the element whose id is exactly id.
// Unlike "#id" it is valid for any id string.
func IDSelector(id string) string {
	return "[id=" + Quote(id) + "]"
}
