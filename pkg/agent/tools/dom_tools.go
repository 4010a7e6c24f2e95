package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/cobrowse/pkg/actions"
	"github.com/entrhq/cobrowse/pkg/types"
)

// quoteList renders values as a comma separated list of double-quoted strings.
func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

// ScrollToSectionTool scrolls a page section into view.
type ScrollToSectionTool struct {
	lib      *actions.Library
	name     string
	sections []string
}

// NewScrollToSectionTool creates the tool under the given name.
func NewScrollToSectionTool(lib *actions.Library, name string, sections []string) *ScrollToSectionTool {
	return &ScrollToSectionTool{lib: lib, name: name, sections: sections}
}

// Name returns the tool's identifier
func (t *ScrollToSectionTool) Name() string { return t.name }

// Description returns a description of what this tool does
func (t *ScrollToSectionTool) Description() string {
	return "Smooth scroll to a specific section on the page by its ID. " +
		"Use when the user wants to see, show, go to, or navigate to a section."
}

// Parameters returns the tool's parameters
func (t *ScrollToSectionTool) Parameters() []types.ParamSpec {
	return []types.ParamSpec{
		stringParam("sectionId", fmt.Sprintf("The section ID. Available: %s.", quoteList(t.sections)), true),
	}
}

// Execute scrolls to the requested section
func (t *ScrollToSectionTool) Execute(ctx context.Context, call types.ToolCallIntent) string {
	return t.lib.ScrollToSection(ctx, call.StringArg("sectionId"))
}

// ScrollWindowTool scrolls the viewport.
type ScrollWindowTool struct {
	lib *actions.Library
}

// NewScrollWindowTool creates the scroll_window tool.
func NewScrollWindowTool(lib *actions.Library) *ScrollWindowTool {
	return &ScrollWindowTool{lib: lib}
}

// Name returns the tool's identifier
func (t *ScrollWindowTool) Name() string { return "scroll_window" }

// Description returns a description of what this tool does
func (t *ScrollWindowTool) Description() string {
	return `Scroll the browser window. Use for generic scroll requests like "scroll down", "go to top", etc.`
}

// Parameters returns the tool's parameters
func (t *ScrollWindowTool) Parameters() []types.ParamSpec {
	return []types.ParamSpec{
		stringParam("direction", `"up", "down", "top", or "bottom".`, true, "up", "down", "top", "bottom"),
	}
}

// Execute scrolls the window
func (t *ScrollWindowTool) Execute(ctx context.Context, call types.ToolCallIntent) string {
	return t.lib.ScrollWindow(ctx, call.StringArg("direction"))
}

// HighlightElementTool draws a temporary highlight around an element.
type HighlightElementTool struct {
	lib  *actions.Library
	name string
}

// NewHighlightElementTool creates the tool under the given name.
func NewHighlightElementTool(lib *actions.Library, name string) *HighlightElementTool {
	return &HighlightElementTool{lib: lib, name: name}
}

// Name returns the tool's identifier
func (t *HighlightElementTool) Name() string { return t.name }

// Description returns a description of what this tool does
func (t *HighlightElementTool) Description() string {
	return "Draw a temporary green highlight box around a UI element to draw the user's attention. " +
		"Use when the user asks to highlight, point out, or find something on the page."
}

// Parameters returns the tool's parameters
func (t *HighlightElementTool) Parameters() []types.ParamSpec {
	return []types.ParamSpec{
		stringParam("selector", `CSS selector of the element to highlight, e.g. "#contact", ".navbar". Visible text in quotes also works, e.g. h2:contains("Projects").`, true),
		stringParam("color", `Optional CSS color of the box. Defaults to "#22c55e".`, false),
	}
}

// Execute highlights the element
func (t *HighlightElementTool) Execute(ctx context.Context, call types.ToolCallIntent) string {
	return t.lib.HighlightElement(ctx, call.StringArg("selector"), call.StringArg("color"))
}

// ClickElementTool clicks an element.
type ClickElementTool struct {
	lib *actions.Library
}

// NewClickElementTool creates the click_element tool.
func NewClickElementTool(lib *actions.Library) *ClickElementTool {
	return &ClickElementTool{lib: lib}
}

// Name returns the tool's identifier
func (t *ClickElementTool) Name() string { return "click_element" }

// Description returns a description of what this tool does
func (t *ClickElementTool) Description() string {
	return "Simulate a click on a button, link, or interactive element. Use when the user asks to click, press, or open something on the page."
}

// Parameters returns the tool's parameters
func (t *ClickElementTool) Parameters() []types.ParamSpec {
	return []types.ParamSpec{
		stringParam("selector", "CSS selector of the element to click.", true),
	}
}

// Execute clicks the element
func (t *ClickElementTool) Execute(ctx context.Context, call types.ToolCallIntent) string {
	return t.lib.ClickElement(ctx, call.StringArg("selector"))
}

// ReadPageContentTool reads visible text from the page.
type ReadPageContentTool struct {
	lib      *actions.Library
	sections []string
}

// NewReadPageContentTool creates the read_page_content tool.
func NewReadPageContentTool(lib *actions.Library, sections []string) *ReadPageContentTool {
	return &ReadPageContentTool{lib: lib, sections: sections}
}

// Name returns the tool's identifier
func (t *ReadPageContentTool) Name() string { return "read_page_content" }

// Description returns a description of what this tool does
func (t *ReadPageContentTool) Description() string {
	return "Read visible text content from the main page or a specific section. Use this to answer questions about what's on the page."
}

// Parameters returns the tool's parameters
func (t *ReadPageContentTool) Parameters() []types.ParamSpec {
	return []types.ParamSpec{
		stringParam("sectionId", fmt.Sprintf("Optional section ID to read from. If omitted, reads the entire <main> tag. Available: %s.", quoteList(t.sections)), false),
	}
}

// Execute reads the page
func (t *ReadPageContentTool) Execute(ctx context.Context, call types.ToolCallIntent) string {
	return t.lib.ReadPageContent(ctx, call.StringArg("sectionId"))
}

// FillFormTool fills several contact form fields at once.
type FillFormTool struct {
	lib *actions.Library
}

// NewFillFormTool creates the fill_form tool.
func NewFillFormTool(lib *actions.Library) *FillFormTool {
	return &FillFormTool{lib: lib}
}

// Name returns the tool's identifier
func (t *FillFormTool) Name() string { return "fill_form" }

// Description returns a description of what this tool does
func (t *FillFormTool) Description() string {
	return "Fill form input fields with provided data. Use when the user provides their name, email, or a message to fill into the contact form."
}

// Parameters returns the tool's parameters
func (t *FillFormTool) Parameters() []types.ParamSpec {
	return []types.ParamSpec{
		{
			Name:        "data",
			Type:        types.ParamObject,
			Description: `Object with form field names as keys and values to fill. Example: {"name": "John", "email": "john@example.com", "message": "Hello!"}`,
			Required:    true,
			Properties: []types.ParamSpec{
				stringParam("name", "The name to fill.", false),
				stringParam("email", "The email to fill.", false),
				stringParam("message", "The message to fill.", false),
			},
		},
	}
}

// Execute fills the form
func (t *FillFormTool) Execute(ctx context.Context, call types.ToolCallIntent) string {
	return t.lib.FillForm(ctx, call.MapArg("data"))
}

// FillFieldTool fills one form field addressed by selector.
type FillFieldTool struct {
	lib *actions.Library
}

// NewFillFieldTool creates the fillForm tool of the server-mediated catalog.
func NewFillFieldTool(lib *actions.Library) *FillFieldTool {
	return &FillFieldTool{lib: lib}
}

// Name returns the tool's identifier
func (t *FillFieldTool) Name() string { return "fillForm" }

// Description returns a description of what this tool does
func (t *FillFieldTool) Description() string {
	return "Fill a form input field with a specific value. Use this to help the user fill out the contact form."
}

// Parameters returns the tool's parameters
func (t *FillFieldTool) Parameters() []types.ParamSpec {
	return []types.ParamSpec{
		stringParam("selector", `The CSS selector of the input field (e.g., 'input[name="name"]', 'textarea[name="message"]').`, true),
		stringParam("value", "The value to fill into the input field.", true),
	}
}

// Execute fills the field
func (t *FillFieldTool) Execute(ctx context.Context, call types.ToolCallIntent) string {
	return t.lib.FillField(ctx, call.StringArg("selector"), call.StringArg("value"))
}

// OpenProjectLinkTool opens a project's demo or repository.
type OpenProjectLinkTool struct {
	lib      *actions.Library
	projects []string
}

// NewOpenProjectLinkTool creates the open_project_link tool. projects are
// the short names listed in the description.
func NewOpenProjectLinkTool(lib *actions.Library, projects []string) *OpenProjectLinkTool {
	return &OpenProjectLinkTool{lib: lib, projects: projects}
}

// Name returns the tool's identifier
func (t *OpenProjectLinkTool) Name() string { return "open_project_link" }

// Description returns a description of what this tool does
func (t *OpenProjectLinkTool) Description() string {
	return "Open a project's live demo or GitHub repository in a new browser tab. Use when the user asks to see, open, visit, or demo a specific project."
}

// Parameters returns the tool's parameters
func (t *OpenProjectLinkTool) Parameters() []types.ParamSpec {
	return []types.ParamSpec{
		stringParam("projectName", fmt.Sprintf("The name (or partial name) of the project. Available: %s.", quoteList(t.projects)), true),
		stringParam("linkType", `"demo" to open the live site, "github" to open the GitHub repo. Defaults to "demo".`, false, "demo", "github"),
	}
}

// Execute opens the link
func (t *OpenProjectLinkTool) Execute(ctx context.Context, call types.ToolCallIntent) string {
	return t.lib.OpenProjectLink(ctx, call.StringArg("projectName"), call.StringArg("linkType"))
}

// NavigateTool routes the page to another path.
type NavigateTool struct {
	lib *actions.Library
}

// NewNavigateTool creates the navigate tool.
func NewNavigateTool(lib *actions.Library) *NavigateTool {
	return &NavigateTool{lib: lib}
}

// Name returns the tool's identifier
func (t *NavigateTool) Name() string { return "navigate" }

// Description returns a description of what this tool does
func (t *NavigateTool) Description() string {
	return "Navigate to a different page or route within the application. Use when the user asks to open a page that is not a section of the current one."
}

// Parameters returns the tool's parameters
func (t *NavigateTool) Parameters() []types.ParamSpec {
	return []types.ParamSpec{
		stringParam("path", "The path to navigate to (e.g., '/', '/projects').", true),
	}
}

// Execute navigates
func (t *NavigateTool) Execute(ctx context.Context, call types.ToolCallIntent) string {
	return t.lib.Navigate(ctx, call.StringArg("path"))
}
