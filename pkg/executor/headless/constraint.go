package headless

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/cobrowse/pkg/agent"
	"github.com/entrhq/cobrowse/pkg/types"
)

// ConstraintManager enforces safety limits during a scripted run
type ConstraintManager struct {
	config *ConstraintConfig

	// Runtime state tracking
	toolCalls  int
	violations []ConstraintViolation
	startTime  time.Time

	// Pattern matching
	patternMatcher *PatternMatcher

	mu sync.RWMutex
}

// ConstraintViolation represents a constraint violation error
type ConstraintViolation struct {
	Type    ViolationType          `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation (%s): %s", e.Type, e.Message)
}

// ViolationType identifies the type of constraint that was violated
type ViolationType string

const (
	ViolationToolRestriction ViolationType = "tool_restriction"
	ViolationToolCallLimit   ViolationType = "tool_call_limit"
	ViolationTimeout         ViolationType = "timeout"
)

// NewConstraintManager creates a new constraint manager
func NewConstraintManager(config ConstraintConfig) (*ConstraintManager, error) {
	patternMatcher, err := NewPatternMatcher(config.AllowedTools, config.DeniedTools)
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern matcher: %w", err)
	}

	return &ConstraintManager{
		config:         &config,
		startTime:      time.Now(),
		patternMatcher: patternMatcher,
	}, nil
}

// ValidateToolCall checks a tool call against the constraints and counts it
// when allowed
func (cm *ConstraintManager) ValidateToolCall(toolName string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.patternMatcher.IsAllowed(toolName) {
		return cm.record(ConstraintViolation{
			Type:    ViolationToolRestriction,
			Message: fmt.Sprintf("tool '%s' is not allowed in this run", toolName),
			Details: map[string]interface{}{
				"tool":          toolName,
				"allowed_tools": cm.config.AllowedTools,
				"denied_tools":  cm.config.DeniedTools,
			},
		})
	}

	if cm.config.MaxToolCalls > 0 && cm.toolCalls >= cm.config.MaxToolCalls {
		return cm.record(ConstraintViolation{
			Type:    ViolationToolCallLimit,
			Message: fmt.Sprintf("tool call limit of %d reached", cm.config.MaxToolCalls),
			Details: map[string]interface{}{
				"tool":  toolName,
				"limit": cm.config.MaxToolCalls,
			},
		})
	}

	cm.toolCalls++
	return nil
}

// CheckTimeout reports whether the run exceeded its timeout
func (cm *ConstraintManager) CheckTimeout() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.config.Timeout <= 0 {
		return nil
	}
	elapsed := time.Since(cm.startTime)
	if elapsed <= cm.config.Timeout {
		return nil
	}
	return cm.record(ConstraintViolation{
		Type:    ViolationTimeout,
		Message: fmt.Sprintf("run exceeded timeout of %s", cm.config.Timeout),
		Details: map[string]interface{}{
			"elapsed": elapsed.String(),
		},
	})
}

func (cm *ConstraintManager) record(v ConstraintViolation) error {
	cm.violations = append(cm.violations, v)
	return &v
}

// ToolCalls returns the number of tool calls let through
func (cm *ConstraintManager) ToolCalls() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.toolCalls
}

// Violations returns the recorded violations in order
func (cm *ConstraintManager) Violations() []ConstraintViolation {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return append([]ConstraintViolation(nil), cm.violations...)
}

// Wrap returns a tool executor that refuses calls violating the constraints.
// A refused call reaches the model as the tool's result and never runs.
func (cm *ConstraintManager) Wrap(next agent.ToolExecutor) agent.ToolExecutor {
	return &guardedExecutor{next: next, constraints: cm}
}

type guardedExecutor struct {
	next        agent.ToolExecutor
	constraints *ConstraintManager
}

func (g *guardedExecutor) Specs() []types.ToolSpec {
	return g.next.Specs()
}

func (g *guardedExecutor) Execute(ctx context.Context, call types.ToolCallIntent) types.ToolExecutionResult {
	if err := g.constraints.ValidateToolCall(call.Name); err != nil {
		return types.ToolExecutionResult{
			CallID: call.ID,
			Name:   call.Name,
			Result: refusedPrefix + err.Error(),
		}
	}
	return g.next.Execute(ctx, call)
}

// PatternMatcher matches tool names against allow and deny globs
type PatternMatcher struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// NewPatternMatcher compiles the glob patterns
func NewPatternMatcher(allowed, denied []string) (*PatternMatcher, error) {
	pm := &PatternMatcher{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		pm.allowed = append(pm.allowed, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		pm.denied = append(pm.denied, g)
	}

	return pm, nil
}

// IsAllowed reports whether name passes the globs. Deny wins over allow and
// an empty allow list allows everything not denied.
func (pm *PatternMatcher) IsAllowed(name string) bool {
	for _, g := range pm.denied {
		if g.Match(name) {
			return false
		}
	}

	if len(pm.allowed) == 0 {
		return true
	}
	for _, g := range pm.allowed {
		if g.Match(name) {
			return true
		}
	}
	return false
}
