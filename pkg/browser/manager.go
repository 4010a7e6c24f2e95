// Package browser drives a live Chromium page through Playwright and exposes
// it as a dom.Page, so the action library can act on a real rendered site.
package browser

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/cobrowse/pkg/logging"
)

// Defaults for launched pages.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	DefaultTimeout        = 30000 // milliseconds
)

var browserLog *logging.Logger

func init() {
	browserLog = logging.MustNew("browser")
}

// Options configures a launched page.
type Options struct {
	// URL is loaded after launch.
	URL string

	// Headless runs the browser without a window.
	Headless bool

	Width  int
	Height int

	// Timeout is the default operation timeout in milliseconds.
	Timeout float64
}

// Manager owns the Playwright driver and the pages launched through it.
type Manager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	pages       []*Page
	initialized bool
}

// NewManager creates a manager. Initialize must be called before Open.
func NewManager() *Manager {
	return &Manager{}
}

// Initialize installs the browser driver if needed and starts Playwright.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver output would corrupt the terminal UI.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// Open launches Chromium and loads opts.URL.
func (m *Manager) Open(opts Options) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}

	if opts.Width == 0 {
		opts.Width = DefaultViewportWidth
	}
	if opts.Height == 0 {
		opts.Height = DefaultViewportHeight
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	browser, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: opts.Width, Height: opts.Height},
	})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	pwPage, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	pwPage.SetDefaultTimeout(opts.Timeout)

	if opts.URL != "" {
		if _, err := pwPage.Goto(opts.URL); err != nil {
			_ = bctx.Close()
			_ = browser.Close()
			return nil, fmt.Errorf("navigation to %s failed: %w", opts.URL, err)
		}
	}

	page := &Page{browser: browser, context: bctx, page: pwPage}
	m.pages = append(m.pages, page)
	browserLog.Infof("Opened page at %s (headless=%v)", opts.URL, opts.Headless)
	return page, nil
}

// Shutdown closes every page and stops Playwright.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.pages {
		p.close()
	}
	m.pages = nil

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}
