package headless

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArtifactWriter handles writing run artifacts
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
	}
}

// WriteAll writes every artifact format
func (w *ArtifactWriter) WriteAll(summary *ExecutionSummary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteExecutionJSON(summary); err != nil {
		return fmt.Errorf("failed to write execution JSON: %w", err)
	}

	if err := w.WriteSummaryMarkdown(summary); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}

	return nil
}

// WriteExecutionJSON writes the full run summary as JSON
func (w *ArtifactWriter) WriteExecutionJSON(summary *ExecutionSummary) error {
	path := filepath.Join(w.outputDir, "execution.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write execution JSON: %w", writeErr)
	}

	return nil
}

// WriteSummaryMarkdown writes a human-readable markdown summary
func (w *ArtifactWriter) WriteSummaryMarkdown(summary *ExecutionSummary) error {
	path := filepath.Join(w.outputDir, "summary.md")

	var md strings.Builder

	md.WriteString("# Co-Browse Scripted Run\n\n")
	md.WriteString(fmt.Sprintf("**Script:** %s\n\n", summary.Name))
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", summary.Status))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration))

	if summary.Error != "" {
		md.WriteString(fmt.Sprintf("❌ **Error:** %s\n\n", summary.Error))
	}

	md.WriteString("## Steps\n\n")
	for i, step := range summary.Steps {
		status := "✅"
		if !step.Passed {
			status = "❌"
		}
		md.WriteString(fmt.Sprintf("%s **%d.** %s\n\n", status, i+1, step.Message))
		if len(step.Tools) > 0 {
			md.WriteString(fmt.Sprintf("   Tools: `%s`\n\n", strings.Join(step.Tools, "`, `")))
		}
		md.WriteString(fmt.Sprintf("   > %s\n\n", strings.ReplaceAll(step.Reply, "\n", "\n   > ")))
		for _, failure := range step.Failures {
			md.WriteString(fmt.Sprintf("   - %s\n", failure))
		}
		if len(step.Failures) > 0 {
			md.WriteString("\n")
		}
	}

	if len(summary.Violations) > 0 {
		md.WriteString("## Constraint Violations\n\n")
		for _, v := range summary.Violations {
			md.WriteString(fmt.Sprintf("- `%s`: %s\n", v.Type, v.Message))
		}
		md.WriteString("\n")
	}

	md.WriteString("## Metrics\n\n")
	md.WriteString(fmt.Sprintf("- **Steps Passed:** %d/%d\n", summary.Metrics.StepsPassed, len(summary.Steps)))
	md.WriteString(fmt.Sprintf("- **Tool Calls:** %d\n", summary.Metrics.ToolCalls))
	md.WriteString(fmt.Sprintf("- **Model Calls:** %d\n", summary.Metrics.ModelCalls))

	if writeErr := os.WriteFile(path, []byte(md.String()), 0600); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}

	return nil
}

// ExecutionSummary contains a complete summary of a scripted run
type ExecutionSummary struct {
	Name       string                `json:"name"`
	Status     string                `json:"status"`
	Error      string                `json:"error,omitempty"`
	StartTime  time.Time             `json:"start_time"`
	EndTime    time.Time             `json:"end_time"`
	Duration   time.Duration         `json:"duration"`
	Steps      []StepResult          `json:"steps"`
	Violations []ConstraintViolation `json:"violations,omitempty"`
	Metrics    ExecutionMetrics      `json:"metrics"`
}

// StepResult records the outcome of one scripted message
type StepResult struct {
	Message  string   `json:"message"`
	Reply    string   `json:"reply"`
	Tools    []string `json:"tools"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
}

// ExecutionMetrics contains run metrics
type ExecutionMetrics struct {
	StepsPassed int `json:"steps_passed"`
	ToolCalls   int `json:"tool_calls"`
	ModelCalls  int `json:"model_calls"`
}
