package headless

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cobrowse/pkg/types"
)

func TestPatternMatcher(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		denied  []string
		tool    string
		want    bool
	}{
		{name: "empty lists allow everything", tool: "navigate", want: true},
		{name: "allowed glob", allowed: []string{"scroll_*"}, tool: "scroll_window", want: true},
		{name: "not in allow list", allowed: []string{"scroll_*"}, tool: "click_element", want: false},
		{name: "deny wins", allowed: []string{"*"}, denied: []string{"navigate"}, tool: "navigate", want: false},
		{name: "deny only", denied: []string{"fill*"}, tool: "fillForm", want: false},
		{name: "exact name", allowed: []string{"read_page_content"}, tool: "read_page_content", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, err := NewPatternMatcher(tt.allowed, tt.denied)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pm.IsAllowed(tt.tool))
		})
	}
}

func TestValidateToolCallLimit(t *testing.T) {
	cm, err := NewConstraintManager(ConstraintConfig{MaxToolCalls: 2})
	require.NoError(t, err)

	require.NoError(t, cm.ValidateToolCall("scroll_window"))
	require.NoError(t, cm.ValidateToolCall("scroll_window"))

	err = cm.ValidateToolCall("scroll_window")
	var violation *ConstraintViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, ViolationToolCallLimit, violation.Type)
	assert.Equal(t, 2, cm.ToolCalls())
	assert.Len(t, cm.Violations(), 1)
}

func TestCheckTimeout(t *testing.T) {
	cm, err := NewConstraintManager(ConstraintConfig{Timeout: time.Millisecond})
	require.NoError(t, err)
	cm.startTime = time.Now().Add(-time.Second)

	err = cm.CheckTimeout()
	var violation *ConstraintViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, ViolationTimeout, violation.Type)

	unlimited, err := NewConstraintManager(ConstraintConfig{})
	require.NoError(t, err)
	assert.NoError(t, unlimited.CheckTimeout())
}

type recordingExecutor struct {
	calls []string
}

func (r *recordingExecutor) Specs() []types.ToolSpec { return []types.ToolSpec{{Name: "navigate"}} }

func (r *recordingExecutor) Execute(_ context.Context, call types.ToolCallIntent) types.ToolExecutionResult {
	r.calls = append(r.calls, call.Name)
	return types.ToolExecutionResult{CallID: call.ID, Name: call.Name, Result: "ok"}
}

func TestWrapRefusesDisallowedTools(t *testing.T) {
	cm, err := NewConstraintManager(ConstraintConfig{DeniedTools: []string{"navigate"}})
	require.NoError(t, err)

	next := &recordingExecutor{}
	guarded := cm.Wrap(next)
	assert.Equal(t, next.Specs(), guarded.Specs())

	refused := guarded.Execute(context.Background(), types.ToolCallIntent{ID: "c1", Name: "navigate"})
	assert.Equal(t, "c1", refused.CallID)
	assert.Contains(t, refused.Result, refusedPrefix)
	assert.Empty(t, next.calls)

	ok := guarded.Execute(context.Background(), types.ToolCallIntent{ID: "c2", Name: "scroll_window"})
	assert.Equal(t, "ok", ok.Result)
	assert.Equal(t, []string{"scroll_window"}, next.calls)
}
