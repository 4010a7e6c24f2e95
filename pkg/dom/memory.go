package dom

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Synthetic layout used by MemoryPage, which has no rendering engine.
const (
	DefaultViewportHeight = 800
	memoryLineHeight      = 40
	memoryContentWidth    = 960
)

// Event is a DOM event dispatched on an element.
type Event struct {
	Selector string
	Type     string
}

// ScrollRecord is one scroll performed on a MemoryPage.
type ScrollRecord struct {
	// Selector is set for ScrollIntoView, empty for window scrolls.
	Selector string
	Block    ScrollBlock
	// By is the relative offset for ScrollBy.
	By float64
	// To is the absolute offset for ScrollTo.
	To       float64
	Absolute bool
}

// OpenedWindow is a window.open call recorded by a MemoryPage.
type OpenedWindow struct {
	URL      string
	Target   string
	Features string
}

// OverlayState tracks a highlight overlay's lifecycle on a MemoryPage.
type OverlayState struct {
	Overlay
	Faded   bool
	Removed bool
}

// MemoryPage is an in-memory Page over a parsed HTML document. It records
// every side effect so callers can inspect what an action did.
// It is safe for concurrent use; deferred effects run on timer goroutines.
type MemoryPage struct {
	mu             sync.Mutex
	doc            *html.Node
	viewportHeight float64
	scrollY        float64
	path           string

	scrolls  []ScrollRecord
	clicks   []string
	events   []Event
	values   map[string]string
	overlays []*OverlayState
	windows  []OpenedWindow
	visits   []string
}

// MemoryOption configures a MemoryPage.
type MemoryOption func(*MemoryPage)

// WithViewportHeight sets the synthetic viewport height.
func WithViewportHeight(h float64) MemoryOption {
	return func(p *MemoryPage) {
		p.viewportHeight = h
	}
}

// WithPath sets the initial route of the page.
func WithPath(path string) MemoryOption {
	return func(p *MemoryPage) {
		p.path = path
	}
}

// NewMemoryPage parses rawHTML into a page.
func NewMemoryPage(rawHTML string, opts ...MemoryOption) (*MemoryPage, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	p := &MemoryPage{
		doc:            doc,
		viewportHeight: DefaultViewportHeight,
		path:           "/",
		values:         make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func compile(selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
	}
	return sel, nil
}

// first returns the first element matching selector. Callers hold p.mu.
func (p *MemoryPage) first(selector string) (*html.Node, error) {
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return sel.MatchFirst(p.doc), nil
}

func (p *MemoryPage) mustFirst(selector string) (*html.Node, error) {
	n, err := p.first(selector)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return n, nil
}

// Exists implements Page.
func (p *MemoryPage) Exists(_ context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.first(selector)
	if err != nil {
		return false, err
	}
	return n != nil, nil
}

// Snapshot implements Page.
func (p *MemoryPage) Snapshot(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var buf bytes.Buffer
	if err := html.Render(&buf, p.doc); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

// ScrollIntoView implements Page.
func (p *MemoryPage) ScrollIntoView(_ context.Context, selector string, block ScrollBlock) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.mustFirst(selector)
	if err != nil {
		return err
	}
	top := p.layoutTop(n)
	if block == BlockCenter {
		top -= p.viewportHeight / 2
	}
	p.scrollY = clamp(top, 0, p.documentHeight()-p.viewportHeight)
	p.scrolls = append(p.scrolls, ScrollRecord{Selector: selector, Block: block})
	return nil
}

// ScrollBy implements Page.
func (p *MemoryPage) ScrollBy(_ context.Context, dy float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.scrollY = clamp(p.scrollY+dy, 0, p.documentHeight()-p.viewportHeight)
	p.scrolls = append(p.scrolls, ScrollRecord{By: dy})
	return nil
}

// ScrollTo implements Page.
func (p *MemoryPage) ScrollTo(_ context.Context, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.scrollY = clamp(y, 0, p.documentHeight()-p.viewportHeight)
	p.scrolls = append(p.scrolls, ScrollRecord{To: y, Absolute: true})
	return nil
}

// ViewportHeight implements Page.
func (p *MemoryPage) ViewportHeight(_ context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewportHeight, nil
}

// DocumentHeight implements Page.
func (p *MemoryPage) DocumentHeight(_ context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.documentHeight(), nil
}

// InnerText implements Page.
func (p *MemoryPage) InnerText(_ context.Context, selector string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.first(selector)
	if err != nil || n == nil {
		return "", false, err
	}
	return VisibleText(n), true, nil
}

// SetValue implements Page. Textareas get their text content replaced,
// other elements get a value attribute.
func (p *MemoryPage) SetValue(_ context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.mustFirst(selector)
	if err != nil {
		return err
	}
	if strings.EqualFold(n.Data, "textarea") {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			c = next
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	} else {
		setAttr(n, "value", value)
	}
	p.values[selector] = value
	return nil
}

// Dispatch implements Page.
func (p *MemoryPage) Dispatch(_ context.Context, selector, eventType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.mustFirst(selector); err != nil {
		return err
	}
	p.events = append(p.events, Event{Selector: selector, Type: eventType})
	return nil
}

// Click implements Page.
func (p *MemoryPage) Click(_ context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.mustFirst(selector); err != nil {
		return err
	}
	p.clicks = append(p.clicks, selector)
	return nil
}

// BoundingRect implements Page using a synthetic one-line-per-element layout.
func (p *MemoryPage) BoundingRect(_ context.Context, selector string) (Rect, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.mustFirst(selector)
	if err != nil {
		return Rect{}, err
	}
	return Rect{
		Top:    p.layoutTop(n) - p.scrollY,
		Left:   0,
		Width:  memoryContentWidth,
		Height: memoryLineHeight,
	}, nil
}

// AddOverlay implements Page.
func (p *MemoryPage) AddOverlay(_ context.Context, overlay Overlay) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.overlays = append(p.overlays, &OverlayState{Overlay: overlay})
	return nil
}

// FadeOverlay implements Page.
func (p *MemoryPage) FadeOverlay(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	o := p.overlay(id)
	if o == nil {
		return fmt.Errorf("overlay %q not found", id)
	}
	o.Faded = true
	return nil
}

// RemoveOverlay implements Page.
func (p *MemoryPage) RemoveOverlay(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	o := p.overlay(id)
	if o == nil {
		return fmt.Errorf("overlay %q not found", id)
	}
	o.Removed = true
	return nil
}

// OpenWindow implements Page.
func (p *MemoryPage) OpenWindow(_ context.Context, url, target, features string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.windows = append(p.windows, OpenedWindow{URL: url, Target: target, Features: features})
	return nil
}

// Navigate implements Page.
func (p *MemoryPage) Navigate(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.path = path
	p.scrollY = 0
	p.visits = append(p.visits, path)
	return nil
}

// Scrolls returns the recorded scrolls.
func (p *MemoryPage) Scrolls() []ScrollRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ScrollRecord(nil), p.scrolls...)
}

// ScrollY returns the current synthetic scroll offset.
func (p *MemoryPage) ScrollY() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollY
}

// Clicks returns the selectors clicked so far.
func (p *MemoryPage) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// Events returns the dispatched events.
func (p *MemoryPage) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Value returns the last value set through selector.
func (p *MemoryPage) Value(selector string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[selector]
	return v, ok
}

// Overlays returns a copy of every overlay ever added.
func (p *MemoryPage) Overlays() []OverlayState {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]OverlayState, len(p.overlays))
	for i, o := range p.overlays {
		out[i] = *o
	}
	return out
}

// Windows returns the recorded window.open calls.
func (p *MemoryPage) Windows() []OpenedWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]OpenedWindow(nil), p.windows...)
}

// Path returns the current route.
func (p *MemoryPage) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// Visits returns every route navigated to.
func (p *MemoryPage) Visits() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visits...)
}

// SideEffects returns the total number of recorded mutations.
func (p *MemoryPage) SideEffects() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.scrolls) + len(p.clicks) + len(p.events) + len(p.values) +
		len(p.overlays) + len(p.windows) + len(p.visits)
}

func (p *MemoryPage) overlay(id string) *OverlayState {
	for _, o := range p.overlays {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// layoutTop places n by its document-order position among visible text-bearing elements.
func (p *MemoryPage) layoutTop(target *html.Node) float64 {
	line := 0
	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n == target {
			found = true
			return
		}
		if n.Type == html.ElementNode && isBlockElement(strings.ToLower(n.Data)) {
			line++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p.doc)
	return float64(line * memoryLineHeight)
}

func (p *MemoryPage) documentHeight() float64 {
	lines := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isBlockElement(strings.ToLower(n.Data)) {
			lines++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p.doc)
	h := float64(lines * memoryLineHeight)
	if h < p.viewportHeight {
		return p.viewportHeight
	}
	return h
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
