// Package actions implements the co-browsing actions the assistant can take
// on a page: scrolling, highlighting, clicking, reading, filling forms,
// opening project links and navigating.
//
// Every action returns a human-readable status string and never an error.
// The string is fed back to the model verbatim as evidence of what happened,
// so failures such as a missing element are reported in the same channel as
// successes.
package actions

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/cobrowse/pkg/dom"
	"github.com/entrhq/cobrowse/pkg/logging"
	"github.com/entrhq/cobrowse/pkg/portfolio"
)

// Defaults for the action library.
const (
	DefaultHighlightColor = "#22c55e"
	DefaultContactSection = "contact"
	DefaultClickDelay     = 400 * time.Millisecond
	DefaultFadeAfter      = 2500 * time.Millisecond
	DefaultRemoveAfter    = 500 * time.Millisecond
	DefaultMaxReadLength  = 3000
	ScrollFraction        = 0.75
)

// NotInBrowser is returned by every action when no page is attached.
const NotInBrowser = "Not in browser environment."

const truncationMarker = "\n... (content truncated)"

var actionsLog *logging.Logger

func init() {
	actionsLog = logging.MustNew("actions")
}

// Scheduler runs deferred side effects such as delayed clicks and overlay
// removal. The library never waits for them.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Library executes actions against a page.
type Library struct {
	page      dom.Page
	locator   *dom.Locator
	scheduler Scheduler
	projects  *portfolio.Data
	contactID string
	allowed   []glob.Glob

	clickDelay    time.Duration
	fadeAfter     time.Duration
	removeAfter   time.Duration
	maxReadLength int

	overlaySeq atomic.Int64
}

// Option configures a Library.
type Option func(*Library)

// WithLocator replaces the default staged text locator.
func WithLocator(l *dom.Locator) Option {
	return func(lib *Library) {
		lib.locator = l
	}
}

// WithScheduler replaces the timer-based scheduler for deferred effects.
func WithScheduler(s Scheduler) Option {
	return func(lib *Library) {
		lib.scheduler = s
	}
}

// WithPortfolio sets the project catalog used by OpenProjectLink.
func WithPortfolio(d *portfolio.Data) Option {
	return func(lib *Library) {
		lib.projects = d
	}
}

// WithContactSection sets the section FillForm scrolls to when it is done.
func WithContactSection(id string) Option {
	return func(lib *Library) {
		lib.contactID = id
	}
}

// WithAllowedPaths restricts Navigate to paths matching one of the globs.
func WithAllowedPaths(patterns ...glob.Glob) Option {
	return func(lib *Library) {
		lib.allowed = patterns
	}
}

// WithClickDelay sets the settle delay between scrolling and clicking.
func WithClickDelay(d time.Duration) Option {
	return func(lib *Library) {
		lib.clickDelay = d
	}
}

// WithHighlightTimings sets when an overlay fades and how long after the
// fade it is removed.
func WithHighlightTimings(fadeAfter, removeAfter time.Duration) Option {
	return func(lib *Library) {
		lib.fadeAfter = fadeAfter
		lib.removeAfter = removeAfter
	}
}

// WithMaxReadLength caps ReadPageContent output, in characters.
func WithMaxReadLength(n int) Option {
	return func(lib *Library) {
		lib.maxReadLength = n
	}
}

// CompileAllowList compiles navigation globs. '/' is the path separator, so
// "*" matches one segment and "**" matches any depth.
func CompileAllowList(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid navigation pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// DefaultAllowList permits every path on the current site.
func DefaultAllowList() []glob.Glob {
	return []glob.Glob{glob.MustCompile("/**", '/')}
}

// NewLibrary creates a library acting on page. A nil page yields a library
// whose actions all report NotInBrowser.
func NewLibrary(page dom.Page, opts ...Option) *Library {
	lib := &Library{
		page:          page,
		locator:       dom.NewLocator(),
		scheduler:     timerScheduler{},
		projects:      portfolio.Default(),
		contactID:     DefaultContactSection,
		allowed:       DefaultAllowList(),
		clickDelay:    DefaultClickDelay,
		fadeAfter:     DefaultFadeAfter,
		removeAfter:   DefaultRemoveAfter,
		maxReadLength: DefaultMaxReadLength,
	}
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

// HasPage reports whether actions can reach a page.
func (l *Library) HasPage() bool {
	return l.page != nil
}

// Portfolio returns the catalog the library resolves projects against.
func (l *Library) Portfolio() *portfolio.Data {
	return l.projects
}

// failed logs an unexpected page error and renders it for the model.
func failed(action string, err error) string {
	actionsLog.Errorf("%s failed: %v", action, err)
	return fmt.Sprintf("Failed to %s: %v", action, err)
}

// resolve finds an element for selector, falling back to the text locator.
func (l *Library) resolve(ctx context.Context, selector string) (string, bool, error) {
	resolved, ok, err := dom.Resolve(ctx, l.page, l.locator, selector)
	if err != nil {
		return "", false, err
	}
	if ok && resolved != selector {
		actionsLog.Debugf("Selector %q resolved by text search to %q", selector, resolved)
	}
	return resolved, ok, nil
}

// deferred runs f on the scheduler with a context detached from the turn.
func (l *Library) deferred(d time.Duration, what string, f func(ctx context.Context) error) {
	l.scheduler.AfterFunc(d, func() {
		if err := f(context.Background()); err != nil {
			actionsLog.Warnf("Deferred %s failed: %v", what, err)
		}
	})
}
