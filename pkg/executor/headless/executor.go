package headless

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/cobrowse/pkg/logging"
	"github.com/entrhq/cobrowse/pkg/types"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// refusedPrefix starts the result of a tool call the constraints refused.
const refusedPrefix = "Refused: "

var headlessLog *logging.Logger

func init() {
	headlessLog = logging.MustNew("headless")
}

// Conversation is the session surface a scripted run drives.
// *session.Session implements it.
type Conversation interface {
	Submit(ctx context.Context, text string) (types.ConversationTurn, error)
}

// Executor replays a script through a conversation
type Executor struct {
	conv           Conversation
	config         *Config
	constraintMgr  *ConstraintManager
	artifactWriter *ArtifactWriter
	logger         *Logger

	mu         sync.Mutex
	stepTools  []string
	toolCalls  int
	modelCalls int

	summary *ExecutionSummary
}

// NewExecutor creates an executor for conv. constraintMgr must be the
// manager whose Wrap guards the conversation's tool executor.
func NewExecutor(conv Conversation, config *Config, constraintMgr *ConstraintManager) (*Executor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if constraintMgr == nil {
		var err error
		constraintMgr, err = NewConstraintManager(config.Constraints)
		if err != nil {
			return nil, err
		}
	}

	return &Executor{
		conv:           conv,
		config:         config,
		constraintMgr:  constraintMgr,
		artifactWriter: NewArtifactWriter(config.Artifacts.OutputDir),
		logger:         NewLogger(parseLogLevel(config.Logging.Verbosity)),
		summary: &ExecutionSummary{
			Name:   config.Name,
			Status: "running",
		},
	}, nil
}

// Logger returns the progress logger, e.g. to redirect its output.
func (e *Executor) Logger() *Logger {
	return e.logger
}

// Summary returns the run summary. It is complete once Run returns.
func (e *Executor) Summary() *ExecutionSummary {
	return e.summary
}

// HandleEvent records tool and model activity. Pass it to
// agent.WithEventSink.
func (e *Executor) HandleEvent(event *types.AgentEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch event.Type {
	case types.EventTypeToolCall:
		e.toolCalls++
		e.logger.ToolCall(event.ToolName, e.toolCalls)
		e.logger.Debugf("args: %v", event.ToolInput)
	case types.EventTypeToolResult:
		if strings.HasPrefix(event.Content, refusedPrefix) {
			e.logger.Warningf("%s", event.Content)
			return
		}
		e.stepTools = append(e.stepTools, event.ToolName)
		e.logger.Verbosef("%s", event.Content)
	case types.EventTypeAPICallStart:
		e.modelCalls++
	case types.EventTypeRateLimitWait:
		e.logger.Debugf("waiting %s for the rate limit", event.Wait)
	}
}

// Run sends every step in order and writes the artifacts. It returns an
// error when any step failed or a constraint was violated.
func (e *Executor) Run(ctx context.Context) error {
	start := time.Now()
	e.summary.StartTime = start
	e.logger.Header(fmt.Sprintf("Co-Browse scripted run: %s", e.config.Name))
	headlessLog.Infof("Starting scripted run %q with %d steps", e.config.Name, len(e.config.Steps))

	runCtx := ctx
	if e.config.Constraints.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.config.Constraints.Timeout)
		defer cancel()
	}

	var runErr error
	for _, step := range e.config.Steps {
		if err := e.constraintMgr.CheckTimeout(); err != nil {
			runErr = err
			break
		}

		result, err := e.runStep(runCtx, step)
		e.summary.Steps = append(e.summary.Steps, result)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			runErr = fmt.Errorf("run interrupted: %w", err)
			break
		}
		if result.Passed {
			e.summary.Metrics.StepsPassed++
		} else if e.config.StopOnFailure {
			break
		}
	}

	return e.finalize(start, runErr)
}

func (e *Executor) runStep(ctx context.Context, step Step) (StepResult, error) {
	e.logger.Step(step.Message)

	e.mu.Lock()
	e.stepTools = nil
	e.mu.Unlock()

	turn, err := e.conv.Submit(ctx, step.Message)

	e.mu.Lock()
	tools := append([]string(nil), e.stepTools...)
	e.mu.Unlock()

	result := StepResult{
		Message: step.Message,
		Reply:   turn.Text,
		Tools:   tools,
	}
	result.Failures = checkStep(step, turn.Text, tools, err)
	result.Passed = len(result.Failures) == 0

	e.logger.Verbosef("reply: %s", turn.Text)
	if result.Passed {
		e.logger.Successf("passed")
	} else {
		for _, failure := range result.Failures {
			e.logger.Errorf("%s", failure)
		}
	}
	return result, err
}

// checkStep compares a step's outcome with its expectations.
func checkStep(step Step, reply string, tools []string, err error) []string {
	var failures []string

	if err != nil && !step.ExpectError {
		failures = append(failures, fmt.Sprintf("unexpected error: %v", err))
	}
	if err == nil && step.ExpectError {
		failures = append(failures, "expected an error reply")
	}

	called := make(map[string]bool, len(tools))
	for _, name := range tools {
		called[name] = true
	}
	for _, want := range step.ExpectTools {
		if !called[want] {
			failures = append(failures, fmt.Sprintf("expected tool %s to be called (called: %s)", want, joinOrNone(tools)))
		}
	}

	if step.ExpectReply != "" && !strings.Contains(strings.ToLower(reply), strings.ToLower(step.ExpectReply)) {
		failures = append(failures, fmt.Sprintf("reply does not contain %q", step.ExpectReply))
	}
	return failures
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func (e *Executor) finalize(start time.Time, runErr error) error {
	e.summary.EndTime = time.Now()
	e.summary.Duration = e.summary.EndTime.Sub(start)
	e.summary.Violations = e.constraintMgr.Violations()

	e.mu.Lock()
	e.summary.Metrics.ToolCalls = e.constraintMgr.ToolCalls()
	e.summary.Metrics.ModelCalls = e.modelCalls
	e.mu.Unlock()

	failedSteps := len(e.summary.Steps) - e.summary.Metrics.StepsPassed
	switch {
	case runErr != nil:
		e.summary.Status = statusFailed
		e.summary.Error = runErr.Error()
	case failedSteps > 0 || len(e.summary.Steps) < len(e.config.Steps):
		e.summary.Status = statusFailed
		e.summary.Error = fmt.Sprintf("%d of %d steps failed", len(e.config.Steps)-e.summary.Metrics.StepsPassed, len(e.config.Steps))
	case len(e.summary.Violations) > 0:
		e.summary.Status = statusFailed
		e.summary.Error = fmt.Sprintf("%d constraint violations", len(e.summary.Violations))
	default:
		e.summary.Status = statusSuccess
	}

	if e.config.Artifacts.Enabled {
		if err := e.artifactWriter.WriteAll(e.summary); err != nil {
			e.logger.Warningf("Failed to write artifacts: %v", err)
			headlessLog.Warnf("Failed to write artifacts: %v", err)
		}
	}

	e.logger.Summary(e.summary)
	headlessLog.Infof("Scripted run %q finished: %s", e.config.Name, e.summary.Status)

	if e.summary.Status != statusSuccess {
		return errors.New(e.summary.Error)
	}
	return nil
}
