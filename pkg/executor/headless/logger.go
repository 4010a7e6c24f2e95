package headless

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogLevel represents the logging verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only errors, warnings and the final summary
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows step progress (default)
	LogLevelNormal
	// LogLevelVerbose also shows replies and tool results
	LogLevelVerbose
	// LogLevelDebug shows all internal details for debugging
	LogLevelDebug
)

var (
	boldWhite = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB"))
	cyan      = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	green     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	salmon    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB3BA"))
	yellow    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	red       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	gray      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Logger prints run progress for humans
type Logger struct {
	level  LogLevel
	writer io.Writer

	startTime time.Time
	stepCount int
}

// NewLogger creates a new logger with the specified level writing to stdout
func NewLogger(level LogLevel) *Logger {
	return &Logger{
		level:     level,
		writer:    os.Stdout,
		startTime: time.Now(),
	}
}

// SetWriter redirects output
func (l *Logger) SetWriter(w io.Writer) {
	l.writer = w
}

func (l *Logger) line(style lipgloss.Style, text string) {
	fmt.Fprintln(l.writer, style.Render(text))
}

// Header prints a prominent header message
func (l *Logger) Header(message string) {
	if l.level >= LogLevelNormal {
		rule := strings.Repeat("=", 70)
		fmt.Fprintln(l.writer)
		l.line(boldWhite, rule)
		l.line(boldWhite, "  "+message)
		l.line(boldWhite, rule)
	}
}

// Step prints a numbered step
func (l *Logger) Step(message string) {
	if l.level >= LogLevelNormal {
		l.stepCount++
		fmt.Fprintln(l.writer)
		l.line(cyan, fmt.Sprintf("[%d] %s", l.stepCount, message))
	}
}

// Successf prints a success message with checkmark
func (l *Logger) Successf(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.line(green, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Infof prints an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.line(salmon, fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.line(yellow, "⚠ Warning: "+fmt.Sprintf(format, args...))
}

// Errorf prints an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.line(red, "✗ Error: "+fmt.Sprintf(format, args...))
}

// Verbosef prints detailed information (only in verbose mode)
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l.level >= LogLevelVerbose {
		l.line(gray, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.line(gray, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// ToolCall logs a tool execution with formatting based on verbosity
func (l *Logger) ToolCall(toolName string, count int) {
	switch l.level {
	case LogLevelQuiet:
		// Don't log individual tool calls in quiet mode
	case LogLevelNormal:
		l.line(gray, fmt.Sprintf("  • %s (#%d)", toolName, count))
	case LogLevelVerbose, LogLevelDebug:
		l.line(cyan, fmt.Sprintf("  🔧 Tool: %s (call #%d)", toolName, count))
	}
}

// Summary prints the final run summary
func (l *Logger) Summary(summary *ExecutionSummary) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(l.writer)
	l.line(boldWhite, rule)
	l.line(boldWhite, "  RUN SUMMARY")
	l.line(boldWhite, rule)

	fmt.Fprint(l.writer, "  Status: ")
	switch summary.Status {
	case statusSuccess:
		l.line(green, "✓ SUCCESS")
	case statusFailed:
		l.line(red, "✗ FAILED")
	default:
		fmt.Fprintln(l.writer, summary.Status)
	}

	fmt.Fprintf(l.writer, "  Script: %s\n", summary.Name)
	fmt.Fprintf(l.writer, "  Duration: %s\n", summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(l.writer, "  Steps passed: %d/%d\n", summary.Metrics.StepsPassed, len(summary.Steps))
	fmt.Fprintf(l.writer, "  Tool calls: %d\n", summary.Metrics.ToolCalls)

	if l.level >= LogLevelVerbose {
		for i, step := range summary.Steps {
			for _, failure := range step.Failures {
				l.line(gray, fmt.Sprintf("    step %d: %s", i+1, failure))
			}
		}
	}

	if summary.Error != "" {
		fmt.Fprintln(l.writer)
		l.line(red, "  Error Details:")
		l.line(red, "    "+summary.Error)
	}

	l.line(boldWhite, rule)
	fmt.Fprintln(l.writer)
}

// parseLogLevel converts a string log level to LogLevel type
func parseLogLevel(level string) LogLevel {
	switch level {
	case "quiet":
		return LogLevelQuiet
	case "normal":
		return LogLevelNormal
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}
