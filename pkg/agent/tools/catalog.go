package tools

import (
	"strings"

	"github.com/entrhq/cobrowse/pkg/actions"
)

// ClientCatalog returns the tools offered by the client-native loop, in the
// order they are presented to the model.
func ClientCatalog(lib *actions.Library) []Tool {
	data := lib.Portfolio()
	return []Tool{
		NewScrollToSectionTool(lib, "scroll_to_section", data.SectionIDs()),
		NewScrollWindowTool(lib),
		NewHighlightElementTool(lib, "highlight_element"),
		NewClickElementTool(lib),
		NewReadPageContentTool(lib, data.SectionIDs()),
		NewFillFormTool(lib),
		NewOpenProjectLinkTool(lib, shortProjectNames(data.ProjectTitles())),
		NewNavigateTool(lib),
	}
}

// ServerCatalog returns the smaller catalog of the server-mediated variant.
// Its names follow the camelCase convention of that endpoint.
func ServerCatalog(lib *actions.Library) []Tool {
	return []Tool{
		NewScrollToSectionTool(lib, "scrollToSection", lib.Portfolio().SectionIDs()),
		NewHighlightElementTool(lib, "highlightElement"),
		NewNavigateTool(lib),
		NewFillFieldTool(lib),
	}
}

// shortProjectNames keeps the part of each title before a " - " subtitle.
func shortProjectNames(titles []string) []string {
	names := make([]string, len(titles))
	for i, title := range titles {
		name, _, _ := strings.Cut(title, " - ")
		names[i] = strings.TrimSpace(name)
	}
	return names
}
