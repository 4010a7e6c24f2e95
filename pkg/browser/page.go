package browser

import (
	"context"
	"fmt"
	"net/url"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/cobrowse/pkg/dom"
)

// Page is a dom.Page backed by a live Playwright page. Every operation runs
// one script in the page; the scripts report missing elements and invalid
// selectors in a small result object instead of throwing.
type Page struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

var _ dom.Page = (*Page)(nil)

// Scripts take a single argument array and return
// {ok, invalid, missing, value}.
const (
	queryPrelude = `const find = (sel) => { try { return { el: document.querySelector(sel) }; } catch (e) { return { invalid: true }; } };`

	existsScript = `([sel]) => { ` + queryPrelude + ` const r = find(sel); if (r.invalid) return { invalid: true }; return { ok: true, value: !!r.el }; }`

	scrollIntoViewScript = `([sel, block]) => { ` + queryPrelude + ` const r = find(sel); if (r.invalid) return { invalid: true }; if (!r.el) return { missing: true };
r.el.scrollIntoView({ behavior: 'smooth', block }); return { ok: true }; }`

	scrollByScript = `([dy]) => { window.scrollBy({ top: dy, behavior: 'smooth' }); return { ok: true }; }`

	scrollToScript = `([y]) => { window.scrollTo({ top: y, behavior: 'smooth' }); return { ok: true }; }`

	viewportHeightScript = `() => ({ ok: true, value: window.innerHeight })`

	documentHeightScript = `() => ({ ok: true, value: document.body.scrollHeight })`

	innerTextScript = `([sel]) => { ` + queryPrelude + ` const r = find(sel); if (r.invalid) return { invalid: true }; return { ok: true, value: r.el ? r.el.innerText : null }; }`

	setValueScript = `([sel, value]) => { ` + queryPrelude + ` const r = find(sel); if (r.invalid) return { invalid: true }; if (!r.el) return { missing: true };
const el = r.el;
const proto = el instanceof HTMLTextAreaElement ? HTMLTextAreaElement.prototype
  : el instanceof HTMLSelectElement ? HTMLSelectElement.prototype : HTMLInputElement.prototype;
const desc = Object.getOwnPropertyDescriptor(proto, 'value');
if (desc && desc.set) { desc.set.call(el, value); } else { el.value = value; }
return { ok: true }; }`

	dispatchScript = `([sel, type]) => { ` + queryPrelude + ` const r = find(sel); if (r.invalid) return { invalid: true }; if (!r.el) return { missing: true };
r.el.dispatchEvent(new Event(type, { bubbles: true })); return { ok: true }; }`

	clickScript = `([sel]) => { ` + queryPrelude + ` const r = find(sel); if (r.invalid) return { invalid: true }; if (!r.el) return { missing: true }; r.el.click(); return { ok: true }; }`

	boundingRectScript = `([sel]) => { ` + queryPrelude + ` const r = find(sel); if (r.invalid) return { invalid: true }; if (!r.el) return { missing: true };
const b = r.el.getBoundingClientRect(); return { ok: true, value: { top: b.top, left: b.left, width: b.width, height: b.height } }; }`

	addOverlayScript = `([id, top, left, width, height, color]) => {
if (!document.getElementById('cobrowse-overlay-style')) {
  const style = document.createElement('style');
  style.id = 'cobrowse-overlay-style';
  style.textContent = '@keyframes cobrowse-pulse { 0%, 100% { opacity: 1; } 50% { opacity: 0.5; } }';
  document.head.appendChild(style);
}
const box = document.createElement('div');
box.id = id;
Object.assign(box.style, {
  position: 'absolute', top: (top + window.scrollY - 4) + 'px', left: (left + window.scrollX - 4) + 'px',
  width: (width + 8) + 'px', height: (height + 8) + 'px', border: '4px solid ' + color, borderRadius: '8px',
  pointerEvents: 'none', zIndex: '9999', animation: 'cobrowse-pulse 1s ease-in-out infinite',
  transition: 'opacity 0.5s ease-out',
});
document.body.appendChild(box);
return { ok: true }; }`

	fadeOverlayScript = `([id]) => { const box = document.getElementById(id); if (!box) return { missing: true };
box.style.animation = 'none'; box.style.opacity = '0'; return { ok: true }; }`

	removeOverlayScript = `([id]) => { const box = document.getElementById(id); if (!box) return { missing: true }; box.remove(); return { ok: true }; }`

	openWindowScript = `([url, target, features]) => { window.open(url, target, features); return { ok: true }; }`
)

// run evaluates script with args and decodes its result object.
func (p *Page) run(ctx context.Context, script string, subject string, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if args == nil {
		args = []interface{}{}
	}

	raw, err := p.page.Evaluate(script, args)
	if err != nil {
		return nil, fmt.Errorf("script failed: %w", err)
	}

	res, err := decodeResult(raw)
	if err != nil {
		return nil, err
	}
	switch {
	case res.invalid:
		return nil, fmt.Errorf("%w %q", dom.ErrInvalidSelector, subject)
	case res.missing:
		return nil, fmt.Errorf("no element matches %q", subject)
	}
	return res.value, nil
}

// Exists implements dom.Page.
func (p *Page) Exists(ctx context.Context, selector string) (bool, error) {
	v, err := p.run(ctx, existsScript, selector, selector)
	if err != nil {
		return false, err
	}
	found, _ := v.(bool)
	return found, nil
}

// Snapshot implements dom.Page.
func (p *Page) Snapshot(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := p.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}

// ScrollIntoView implements dom.Page.
func (p *Page) ScrollIntoView(ctx context.Context, selector string, block dom.ScrollBlock) error {
	_, err := p.run(ctx, scrollIntoViewScript, selector, selector, string(block))
	return err
}

// ScrollBy implements dom.Page.
func (p *Page) ScrollBy(ctx context.Context, dy float64) error {
	_, err := p.run(ctx, scrollByScript, "window", dy)
	return err
}

// ScrollTo implements dom.Page.
func (p *Page) ScrollTo(ctx context.Context, y float64) error {
	_, err := p.run(ctx, scrollToScript, "window", y)
	return err
}

// ViewportHeight implements dom.Page.
func (p *Page) ViewportHeight(ctx context.Context) (float64, error) {
	v, err := p.run(ctx, viewportHeightScript, "window")
	if err != nil {
		return 0, err
	}
	return toFloat(v), nil
}

// DocumentHeight implements dom.Page.
func (p *Page) DocumentHeight(ctx context.Context) (float64, error) {
	v, err := p.run(ctx, documentHeightScript, "body")
	if err != nil {
		return 0, err
	}
	return toFloat(v), nil
}

// InnerText implements dom.Page.
func (p *Page) InnerText(ctx context.Context, selector string) (string, bool, error) {
	v, err := p.run(ctx, innerTextScript, selector, selector)
	if err != nil {
		return "", false, err
	}
	text, found := v.(string)
	return text, found, nil
}

// SetValue implements dom.Page.
func (p *Page) SetValue(ctx context.Context, selector, value string) error {
	_, err := p.run(ctx, setValueScript, selector, selector, value)
	return err
}

// Dispatch implements dom.Page.
func (p *Page) Dispatch(ctx context.Context, selector, eventType string) error {
	_, err := p.run(ctx, dispatchScript, selector, selector, eventType)
	return err
}

// Click implements dom.Page.
func (p *Page) Click(ctx context.Context, selector string) error {
	_, err := p.run(ctx, clickScript, selector, selector)
	return err
}

// BoundingRect implements dom.Page.
func (p *Page) BoundingRect(ctx context.Context, selector string) (dom.Rect, error) {
	v, err := p.run(ctx, boundingRectScript, selector, selector)
	if err != nil {
		return dom.Rect{}, err
	}
	m, _ := v.(map[string]interface{})
	return dom.Rect{
		Top:    toFloat(m["top"]),
		Left:   toFloat(m["left"]),
		Width:  toFloat(m["width"]),
		Height: toFloat(m["height"]),
	}, nil
}

// AddOverlay implements dom.Page.
func (p *Page) AddOverlay(ctx context.Context, overlay dom.Overlay) error {
	r := overlay.Rect
	_, err := p.run(ctx, addOverlayScript, overlay.ID, overlay.ID, r.Top, r.Left, r.Width, r.Height, overlay.Color)
	return err
}

// FadeOverlay implements dom.Page.
func (p *Page) FadeOverlay(ctx context.Context, id string) error {
	_, err := p.run(ctx, fadeOverlayScript, id, id)
	return err
}

// RemoveOverlay implements dom.Page.
func (p *Page) RemoveOverlay(ctx context.Context, id string) error {
	_, err := p.run(ctx, removeOverlayScript, id, id)
	return err
}

// OpenWindow implements dom.Page.
func (p *Page) OpenWindow(ctx context.Context, url, target, features string) error {
	_, err := p.run(ctx, openWindowScript, url, url, target, features)
	return err
}

// Navigate implements dom.Page. path is resolved against the current URL.
func (p *Page) Navigate(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := resolveURL(p.page.URL(), path)
	if err != nil {
		return err
	}
	if _, err := p.page.Goto(target); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// URL returns the page's current URL.
func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) close() {
	_ = p.page.Close()
	_ = p.context.Close()
	_ = p.browser.Close()
}

// resolveURL resolves ref against base.
func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

type scriptResult struct {
	ok      bool
	invalid bool
	missing bool
	value   interface{}
}

// decodeResult reads the {ok, invalid, missing, value} object scripts return.
func decodeResult(raw interface{}) (scriptResult, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return scriptResult{}, fmt.Errorf("unexpected script result %T", raw)
	}
	res := scriptResult{value: m["value"]}
	res.ok, _ = m["ok"].(bool)
	res.invalid, _ = m["invalid"].(bool)
	res.missing, _ = m["missing"].(bool)
	if !res.ok && !res.invalid && !res.missing {
		return scriptResult{}, fmt.Errorf("script reported no outcome")
	}
	return res, nil
}

// toFloat converts a number returned by Playwright, which decodes integral
// values as int.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
