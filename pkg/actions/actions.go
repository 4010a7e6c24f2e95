package actions

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/entrhq/cobrowse/pkg/dom"
	"github.com/entrhq/cobrowse/pkg/types"
)

// ScrollToSection scrolls the element with the given id to the top of the viewport.
func (l *Library) ScrollToSection(ctx context.Context, sectionID string) string {
	if l.page == nil {
		return NotInBrowser
	}

	sel := dom.IDSelector(sectionID)
	found, err := l.page.Exists(ctx, sel)
	if err != nil {
		return failed("scroll to section", err)
	}
	if !found {
		return fmt.Sprintf("Section %q not found on the page.", sectionID)
	}
	if err := l.page.ScrollIntoView(ctx, sel, dom.BlockStart); err != nil {
		return failed("scroll to section", err)
	}
	return fmt.Sprintf("Scrolled to section %q.", sectionID)
}

// ScrollWindow scrolls by three quarters of the viewport or to either end of
// the page. direction is case-insensitive.
func (l *Library) ScrollWindow(ctx context.Context, direction string) string {
	if l.page == nil {
		return NotInBrowser
	}

	switch strings.ToLower(direction) {
	case "down", "up":
		height, err := l.page.ViewportHeight(ctx)
		if err != nil {
			return failed("scroll", err)
		}
		amount := height * ScrollFraction
		if strings.EqualFold(direction, "up") {
			if err := l.page.ScrollBy(ctx, -amount); err != nil {
				return failed("scroll", err)
			}
			return "Scrolled up."
		}
		if err := l.page.ScrollBy(ctx, amount); err != nil {
			return failed("scroll", err)
		}
		return "Scrolled down."
	case "top":
		if err := l.page.ScrollTo(ctx, 0); err != nil {
			return failed("scroll", err)
		}
		return "Scrolled to the top of the page."
	case "bottom":
		height, err := l.page.DocumentHeight(ctx)
		if err != nil {
			return failed("scroll", err)
		}
		if err := l.page.ScrollTo(ctx, height); err != nil {
			return failed("scroll", err)
		}
		return "Scrolled to the bottom of the page."
	default:
		return fmt.Sprintf("Unknown direction %q. Use \"up\", \"down\", \"top\", or \"bottom\".", direction)
	}
}

// HighlightElement draws a pulsing box over the element selector refers to.
// The box fades after fadeAfter and is removed removeAfter later.
func (l *Library) HighlightElement(ctx context.Context, selector, color string) string {
	if l.page == nil {
		return NotInBrowser
	}
	if color == "" {
		color = DefaultHighlightColor
	}

	resolved, ok, err := l.resolve(ctx, selector)
	if err != nil {
		return failed("highlight element", err)
	}
	if !ok {
		return fmt.Sprintf("No element found for selector %q.", selector)
	}

	if err := l.page.ScrollIntoView(ctx, resolved, dom.BlockCenter); err != nil {
		return failed("highlight element", err)
	}
	rect, err := l.page.BoundingRect(ctx, resolved)
	if err != nil {
		return failed("highlight element", err)
	}

	id := fmt.Sprintf("cobrowse-highlight-%d", l.overlaySeq.Add(1))
	if err := l.page.AddOverlay(ctx, dom.Overlay{ID: id, Rect: rect, Color: color}); err != nil {
		return failed("highlight element", err)
	}

	l.deferred(l.fadeAfter, "overlay fade", func(ctx context.Context) error {
		if err := l.page.FadeOverlay(ctx, id); err != nil {
			return err
		}
		l.deferred(l.removeAfter, "overlay removal", func(ctx context.Context) error {
			return l.page.RemoveOverlay(ctx, id)
		})
		return nil
	})

	return fmt.Sprintf("Highlighted element matching %q.", selector)
}

// ClickElement scrolls the element into view and clicks it once scrolling
// has had clickDelay to settle. The click is not awaited.
func (l *Library) ClickElement(ctx context.Context, selector string) string {
	if l.page == nil {
		return NotInBrowser
	}

	resolved, ok, err := l.resolve(ctx, selector)
	if err != nil {
		return failed("click element", err)
	}
	if !ok {
		return fmt.Sprintf("No element found for selector %q.", selector)
	}

	if err := l.page.ScrollIntoView(ctx, resolved, dom.BlockCenter); err != nil {
		return failed("click element", err)
	}
	l.deferred(l.clickDelay, "click", func(ctx context.Context) error {
		return l.page.Click(ctx, resolved)
	})

	return fmt.Sprintf("Clicked element matching %q.", selector)
}

// ReadPageContent returns the visible text of a section, or of <main> when
// sectionID is empty, truncated to maxReadLength characters.
func (l *Library) ReadPageContent(ctx context.Context, sectionID string) string {
	if l.page == nil {
		return NotInBrowser
	}

	sel := "main"
	if sectionID != "" {
		sel = dom.IDSelector(sectionID)
	}
	text, found, err := l.page.InnerText(ctx, sel)
	if err != nil {
		return failed("read page content", err)
	}
	if !found {
		if sectionID != "" {
			return fmt.Sprintf("Section %q not found.", sectionID)
		}
		return "No <main> element found on this page."
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "Section appears to be empty."
	}
	if utf8.RuneCountInString(text) > l.maxReadLength {
		return string([]rune(text)[:l.maxReadLength]) + truncationMarker
	}
	return text
}

// fieldSelectors lists, in priority order, the selectors tried for a form field.
func fieldSelectors(field string) []string {
	q := dom.Quote(field)
	return []string{
		"input[name=" + q + "]",
		"textarea[name=" + q + "]",
		"input[id=" + q + "]",
		"textarea[id=" + q + "]",
		"input[placeholder*=" + q + " i]",
		"textarea[placeholder*=" + q + " i]",
	}
}

// FillForm fills each field, in sorted field order, into the first input or
// textarea matched by name, id or placeholder. Each filled element gets one
// input and one change event. The contact section is scrolled into view at
// the end.
func (l *Library) FillForm(ctx context.Context, data map[string]string) string {
	if l.page == nil {
		return NotInBrowser
	}
	if len(data) == 0 {
		return "No form data provided."
	}

	results := make([]string, 0, len(data))
	for _, field := range types.SortedKeys(data) {
		value := data[field]
		sel, ok := l.findField(ctx, field)
		if !ok {
			results = append(results, fmt.Sprintf("Could not find form field for %q.", field))
			continue
		}
		if err := l.setValue(ctx, sel, value); err != nil {
			results = append(results, failed(fmt.Sprintf("fill %q", field), err))
			continue
		}
		results = append(results, fmt.Sprintf("Filled %q with %q.", field, value))
	}

	if l.contactID != "" {
		contact := dom.IDSelector(l.contactID)
		if found, err := l.page.Exists(ctx, contact); err == nil && found {
			if err := l.page.ScrollIntoView(ctx, contact, dom.BlockStart); err != nil {
				actionsLog.Warnf("Failed to scroll to contact section: %v", err)
			}
		}
	}

	return strings.Join(results, " ")
}

func (l *Library) findField(ctx context.Context, field string) (string, bool) {
	for _, sel := range fieldSelectors(field) {
		found, err := l.page.Exists(ctx, sel)
		if err != nil {
			actionsLog.Debugf("Skipping field selector %q: %v", sel, err)
			continue
		}
		if found {
			return sel, true
		}
	}
	return "", false
}

// setValue assigns value with the native setter and fires input then change.
func (l *Library) setValue(ctx context.Context, sel, value string) error {
	if err := l.page.SetValue(ctx, sel, value); err != nil {
		return err
	}
	for _, event := range []string{"input", "change"} {
		if err := l.page.Dispatch(ctx, sel, event); err != nil {
			return err
		}
	}
	return nil
}

// FillField sets a single element's value. Only the selector itself is
// tried; there is no text search fallback for form fields.
func (l *Library) FillField(ctx context.Context, selector, value string) string {
	if l.page == nil {
		return NotInBrowser
	}

	found, err := l.page.Exists(ctx, selector)
	if err != nil || !found {
		return fmt.Sprintf("No element found for selector %q.", selector)
	}
	if err := l.setValue(ctx, selector, value); err != nil {
		return failed("fill field", err)
	}
	return fmt.Sprintf("Filled field %q with %q.", selector, value)
}

// OpenProjectLink opens a project's demo or GitHub link in a new tab.
// linkType defaults to "demo".
func (l *Library) OpenProjectLink(ctx context.Context, projectName, linkType string) string {
	if l.page == nil {
		return NotInBrowser
	}

	linkType = strings.ToLower(strings.TrimSpace(linkType))
	if linkType == "" {
		linkType = "demo"
	}

	project, ok := l.projects.FindProject(projectName)
	if !ok || strings.TrimSpace(projectName) == "" {
		return fmt.Sprintf("No project found matching %q. Available projects: %s",
			projectName, strings.Join(l.projects.ProjectTitles(), ", "))
	}

	url := project.Link
	if linkType == "github" {
		url = project.GitHub
	}
	if url == "" {
		return fmt.Sprintf("Project %q does not have a %s link.", project.Title, linkType)
	}

	if err := l.page.OpenWindow(ctx, url, "_blank", "noopener,noreferrer"); err != nil {
		return failed("open project link", err)
	}
	return fmt.Sprintf("Opened %s link for %q: %s", linkType, project.Title, url)
}

// Navigate routes the page to path when the allow-list permits it.
func (l *Library) Navigate(ctx context.Context, path string) string {
	if l.page == nil {
		return NotInBrowser
	}

	if !l.navigationAllowed(path) {
		actionsLog.Warnf("Blocked navigation to %q", path)
		return fmt.Sprintf("Navigation to %q is not allowed.", path)
	}
	if err := l.page.Navigate(ctx, path); err != nil {
		return failed("navigate", err)
	}
	return fmt.Sprintf("Navigated to %q.", path)
}

func (l *Library) navigationAllowed(path string) bool {
	if !isSitePath(path) {
		return false
	}
	for _, g := range l.allowed {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// isSitePath reports whether path stays on the current site. Protocol-relative
// references ("//host", "/\\host") resolve to another host.
func isSitePath(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") || strings.HasPrefix(path, "\\") {
		return false
	}
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
