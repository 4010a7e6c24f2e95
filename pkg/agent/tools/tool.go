// Package tools binds the co-browsing actions to named tools the model can
// call, and groups them into the catalogs offered by each deployment
// variant.
package tools

import (
	"context"

	"github.com/entrhq/cobrowse/pkg/types"
)

// Tool represents an action the model can invoke by name.
//
// Name, Description and Parameters are part of the contract the model reads
// when deciding whether to call the tool: descriptions state when to use it
// and list closed parameter values literally.
type Tool interface {
	// Name returns the unique identifier the model calls (e.g., "scroll_window")
	Name() string

	// Description returns the usage guidance shown to the model
	Description() string

	// Parameters returns the ordered parameter list
	Parameters() []types.ParamSpec

	// Execute runs the tool with the model's arguments and returns a status
	// string. Failures are reported in the string, never as a panic.
	Execute(ctx context.Context, call types.ToolCallIntent) string
}

// SpecOf returns the declarative description of t.
func SpecOf(t Tool) types.ToolSpec {
	return types.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// stringParam builds a string parameter.
func stringParam(name, description string, required bool, enum ...string) types.ParamSpec {
	return types.ParamSpec{
		Name:        name,
		Type:        types.ParamString,
		Description: description,
		Required:    required,
		Enum:        enum,
	}
}
