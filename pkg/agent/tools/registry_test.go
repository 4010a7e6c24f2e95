package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cobrowse/pkg/actions"
	"github.com/entrhq/cobrowse/pkg/dom"
	"github.com/entrhq/cobrowse/pkg/types"
)

const testPage = `<html><body><main>
<section id="about"><h1>About</h1></section>
<section id="desktop"><h2>Projects</h2></section>
<section id="contact"><form><input name="name"><input name="email"><textarea name="message"></textarea></form></section>
</main></body></html>`

type nopScheduler struct{}

func (nopScheduler) AfterFunc(time.Duration, func()) {}

func newTestLibrary(t *testing.T) (*actions.Library, *dom.MemoryPage) {
	t.Helper()
	page, err := dom.NewMemoryPage(testPage)
	require.NoError(t, err)
	return actions.NewLibrary(page, actions.WithScheduler(nopScheduler{})), page
}

func TestClientCatalog(t *testing.T) {
	lib, _ := newTestLibrary(t)
	reg, err := NewRegistry(ClientCatalog(lib)...)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"scroll_to_section",
		"scroll_window",
		"highlight_element",
		"click_element",
		"read_page_content",
		"fill_form",
		"open_project_link",
		"navigate",
	}, reg.Names())

	specs := reg.Specs()
	byName := make(map[string]types.ToolSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	scroll := byName["scroll_window"]
	require.Len(t, scroll.Parameters, 1)
	assert.Equal(t, []string{"up", "down", "top", "bottom"}, scroll.Parameters[0].Enum)

	section := byName["scroll_to_section"]
	assert.Contains(t, section.Parameters[0].Description, `"about", "desktop", "contact"`)

	link := byName["open_project_link"]
	assert.Equal(t, []string{"projectName"}, link.RequiredParams())
	assert.Contains(t, link.Parameters[0].Description, `"MockMate"`)
	assert.Equal(t, []string{"demo", "github"}, link.Parameters[1].Enum)

	form := byName["fill_form"]
	require.Len(t, form.Parameters, 1)
	assert.Equal(t, types.ParamObject, form.Parameters[0].Type)
	assert.Len(t, form.Parameters[0].Properties, 3)
}

func TestServerCatalog(t *testing.T) {
	lib, _ := newTestLibrary(t)
	reg, err := NewRegistry(ServerCatalog(lib)...)
	require.NoError(t, err)

	assert.Equal(t, []string{"scrollToSection", "highlightElement", "navigate", "fillForm"}, reg.Names())

	fill, ok := reg.Get("fillForm")
	require.True(t, ok)
	assert.Equal(t, []string{"selector", "value"}, SpecOf(fill).RequiredParams())
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	lib, _ := newTestLibrary(t)
	_, err := NewRegistry(NewNavigateTool(lib), NewNavigateTool(lib))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"navigate"`)
}

func TestSpecsReturnsCopy(t *testing.T) {
	lib, _ := newTestLibrary(t)
	reg, err := NewRegistry(ClientCatalog(lib)...)
	require.NoError(t, err)

	specs := reg.Specs()
	specs[0].Name = "mutated"
	specs[1].Parameters[0].Enum[0] = "sideways"

	fresh := reg.Specs()
	assert.Equal(t, "scroll_to_section", fresh[0].Name)
	assert.Equal(t, "up", fresh[1].Parameters[0].Enum[0])
}

func TestRegistryExecute(t *testing.T) {
	tests := []struct {
		name     string
		call     types.ToolCallIntent
		expected string
	}{
		{
			name:     "scroll to section",
			call:     types.ToolCallIntent{ID: "c1", Name: "scroll_to_section", Args: map[string]interface{}{"sectionId": "desktop"}},
			expected: `Scrolled to section "desktop".`,
		},
		{
			name:     "missing section",
			call:     types.ToolCallIntent{Name: "scroll_to_section", Args: map[string]interface{}{"sectionId": "blog"}},
			expected: `Section "blog" not found on the page.`,
		},
		{
			name:     "scroll window",
			call:     types.ToolCallIntent{Name: "scroll_window", Args: map[string]interface{}{"direction": "top"}},
			expected: "Scrolled to the top of the page.",
		},
		{
			name:     "unknown tool",
			call:     types.ToolCallIntent{ID: "c9", Name: "teleport", Args: map[string]interface{}{}},
			expected: "Unknown tool: teleport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, _ := newTestLibrary(t)
			reg, err := NewRegistry(ClientCatalog(lib)...)
			require.NoError(t, err)

			result := reg.Execute(context.Background(), tt.call)
			assert.Equal(t, tt.call.ID, result.CallID)
			assert.Equal(t, tt.call.Name, result.Name)
			assert.Equal(t, tt.expected, result.Result)
		})
	}
}

func TestFillFormTool(t *testing.T) {
	lib, page := newTestLibrary(t)
	reg, err := NewRegistry(ClientCatalog(lib)...)
	require.NoError(t, err)

	result := reg.Execute(context.Background(), types.ToolCallIntent{
		Name: "fill_form",
		Args: map[string]interface{}{
			"data": map[string]interface{}{"name": "Ada", "email": "ada@example.com"},
		},
	})

	assert.Equal(t, `Filled "email" with "ada@example.com". Filled "name" with "Ada".`, result.Result)
	value, ok := page.Value(`input[name="name"]`)
	require.True(t, ok)
	assert.Equal(t, "Ada", value)
}

func TestFillFieldTool(t *testing.T) {
	lib, page := newTestLibrary(t)
	reg, err := NewRegistry(ServerCatalog(lib)...)
	require.NoError(t, err)

	result := reg.Execute(context.Background(), types.ToolCallIntent{
		Name: "fillForm",
		Args: map[string]interface{}{"selector": `textarea[name="message"]`, "value": "Hello!"},
	})

	assert.Equal(t, `Filled field "textarea[name=\"message\"]" with "Hello!".`, result.Result)
	value, ok := page.Value(`textarea[name="message"]`)
	require.True(t, ok)
	assert.Equal(t, "Hello!", value)
}
