// Package headless replays a scripted conversation against a page without a
// terminal UI, for smoke tests of a portfolio site and its tool catalog.
//
// A script is a YAML file listing user messages, each with optional
// expectations about the reply text and the tools the assistant called:
//
//	name: contact flow
//	constraints:
//	  allowed_tools: ["scroll_*", "fill_form", "read_page_content"]
//	  max_tool_calls: 10
//	  timeout: 2m
//	steps:
//	  - message: "Go to contact"
//	    expect_tools: [scroll_to_section]
//	  - message: "My name is Ada, email ada@example.com"
//	    expect_tools: [fill_form]
//	    expect_reply: "filled"
//
// Safety Constraints:
//
// The constraint manager wraps the tool executor, so a tool outside the
// allow list or past the call limit is refused before it touches the page.
// The model sees the refusal as the tool's result.
//
// Artifacts:
//
// The artifact writer generates run reports:
// - execution.json: Full run summary
// - summary.md: Human-readable markdown summary
package headless
