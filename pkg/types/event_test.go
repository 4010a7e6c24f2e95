package types

import (
	"errors"
	"testing"
	"time"
)

func TestAgentEventType(t *testing.T) {
	tests := []struct {
		eventType AgentEventType
		name      string
		expected  string
	}{
		{name: "state_change", eventType: EventTypeStateChange, expected: "state_change"},
		{name: "api_call_start", eventType: EventTypeAPICallStart, expected: "api_call_start"},
		{name: "api_call_end", eventType: EventTypeAPICallEnd, expected: "api_call_end"},
		{name: "rate_limit_wait", eventType: EventTypeRateLimitWait, expected: "rate_limit_wait"},
		{name: "tool_call", eventType: EventTypeToolCall, expected: "tool_call"},
		{name: "tool_result", eventType: EventTypeToolResult, expected: "tool_result"},
		{name: "update_busy", eventType: EventTypeUpdateBusy, expected: "update_busy"},
		{name: "turn_end", eventType: EventTypeTurnEnd, expected: "turn_end"},
		{name: "error", eventType: EventTypeError, expected: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.eventType) != tt.expected {
				t.Errorf("AgentEventType = %v, want %v", tt.eventType, tt.expected)
			}
		})
	}
}

func TestNewToolEvents(t *testing.T) {
	input := map[string]interface{}{"sectionId": "desktop"}
	call := NewToolCallEvent("scroll_to_section", input)
	if call.Type != EventTypeToolCall {
		t.Errorf("Type = %v, want %v", call.Type, EventTypeToolCall)
	}
	if call.ToolName != "scroll_to_section" {
		t.Errorf("ToolName = %q", call.ToolName)
	}
	if call.ToolInput["sectionId"] != "desktop" {
		t.Errorf("ToolInput = %v", call.ToolInput)
	}

	result := NewToolResultEvent("scroll_to_section", `Scrolled to section "desktop".`)
	if result.Type != EventTypeToolResult {
		t.Errorf("Type = %v, want %v", result.Type, EventTypeToolResult)
	}
	if result.Content != `Scrolled to section "desktop".` {
		t.Errorf("Content = %q", result.Content)
	}
}

func TestNewAPIEvents(t *testing.T) {
	start := NewAPICallStartEvent(2, 5)
	if start.Round != 2 || start.Metadata["message_count"] != 5 {
		t.Errorf("unexpected start event: %+v", start)
	}

	end := NewAPICallEndEvent(2, 1)
	if end.Round != 2 || end.Metadata["tool_calls"] != 1 {
		t.Errorf("unexpected end event: %+v", end)
	}

	wait := NewRateLimitWaitEvent(250 * time.Millisecond)
	if wait.Wait != 250*time.Millisecond {
		t.Errorf("Wait = %v", wait.Wait)
	}
}

func TestNewOtherEvents(t *testing.T) {
	busy := NewUpdateBusyEvent(true)
	if !busy.IsBusy || busy.Type != EventTypeUpdateBusy {
		t.Errorf("unexpected busy event: %+v", busy)
	}

	state := NewStateChangeEvent(StateExecutingTools)
	if state.State != StateExecutingTools {
		t.Errorf("State = %v", state.State)
	}

	end := NewTurnEndEvent("Here are my projects!")
	if end.Content != "Here are my projects!" {
		t.Errorf("Content = %q", end.Content)
	}

	err := errors.New("upstream failed")
	errEvent := NewErrorEvent(err)
	if !errEvent.IsError() || !errors.Is(errEvent.Error, err) {
		t.Errorf("unexpected error event: %+v", errEvent)
	}
	if end.IsError() {
		t.Error("turn end event reported as error")
	}
}
