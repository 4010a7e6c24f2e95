package types

import (
	"fmt"
	"sort"
)

// Parameter types understood by every provider's function-calling schema.
const (
	ParamString  = "string"
	ParamObject  = "object"
	ParamInteger = "integer"
	ParamBoolean = "boolean"
)

// ParamSpec describes a single tool parameter.
type ParamSpec struct {
	// Name is the argument key the model must use.
	Name string

	// Type is one of the Param* constants.
	Type string

	// Description tells the model what to put in this field.
	Description string

	// Required marks the parameter as mandatory.
	Required bool

	// Enum lists the only accepted values for closed string parameters.
	Enum []string

	// Properties describes the fields of an object parameter.
	Properties []ParamSpec
}

// ToolSpec is the declarative description of a tool offered to the model.
// Parameters are ordered so the generated schema is deterministic.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  []ParamSpec
}

// RequiredParams returns the names of the required parameters in declaration order.
func (s ToolSpec) RequiredParams() []string {
	var required []string
	for _, p := range s.Parameters {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return required
}

// JSONSchema renders the parameters as a JSON Schema object.
func (s ToolSpec) JSONSchema() map[string]interface{} {
	return objectSchema(s.Parameters)
}

func objectSchema(params []ParamSpec) map[string]interface{} {
	properties := make(map[string]interface{}, len(params))
	var required []string
	for _, p := range params {
		properties[p.Name] = p.schema()
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]interface{}{
		"type":       ParamObject,
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (p ParamSpec) schema() map[string]interface{} {
	if p.Type == ParamObject {
		schema := objectSchema(p.Properties)
		if p.Description != "" {
			schema["description"] = p.Description
		}
		return schema
	}

	schema := map[string]interface{}{
		"type": p.Type,
	}
	if p.Description != "" {
		schema["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		schema["enum"] = append([]string(nil), p.Enum...)
	}
	return schema
}

// ToolCallIntent is a structured request from the model to run a tool.
type ToolCallIntent struct {
	// ID is the provider's call identifier, empty when the provider has none.
	ID   string                 `json:"id,omitempty"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// ToolExecutionResult is the human-readable outcome of a tool call, returned
// to the model as a function-response payload.
type ToolExecutionResult struct {
	CallID string `json:"call_id,omitempty"`
	Name   string `json:"name"`
	Result string `json:"result"`
}

// StringArg returns args[key] as a string. Non-string scalars are formatted,
// missing keys and nulls yield "".
func (i ToolCallIntent) StringArg(key string) string {
	v, ok := i.Args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// MapArg returns args[key] as a string map with sorted keys available via
// SortedKeys. Non-object values yield an empty map.
func (i ToolCallIntent) MapArg(key string) map[string]string {
	out := make(map[string]string)
	raw, ok := i.Args[key].(map[string]interface{})
	if !ok {
		return out
	}
	for k, v := range raw {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
