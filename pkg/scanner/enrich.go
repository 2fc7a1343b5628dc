package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// TypedComponent is one component as seen by a type-aware analyzer.
type TypedComponent struct {
	Name        string      `json:"displayName"`
	FilePath    string      `json:"filePath"`
	Description string      `json:"description"`
	Props       []TypedProp `json:"props"`
	// Tokens are token ids the analyzer attributes to the component.
	Tokens []string `json:"tokens,omitempty"`
}

// TypedProp is one prop from a type-aware analysis.
type TypedProp struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Required      bool     `json:"required"`
	DefaultValue  string   `json:"defaultValue"`
	Description   string   `json:"description"`
	Deprecated    bool     `json:"deprecated"`
	AllowedValues []string `json:"allowedValues"`
}

// TypeAnalyzer runs a type-aware analysis over a set of files. Results are
// keyed by component name.
type TypeAnalyzer interface {
	Analyze(ctx context.Context, root string, files []string) (map[string]*TypedComponent, error)
}

// analyzerInput is the JSON written to an analyzer command's stdin.
type analyzerInput struct {
	Root  string   `json:"root"`
	Files []string `json:"files"`
}

// CommandAnalyzer runs an external program that reads {"root","files"} as
// JSON on stdin and writes a JSON array of TypedComponent to stdout, the
// protocol react-docgen-typescript wrappers speak.
type CommandAnalyzer struct {
	// Command is the program and its arguments.
	Command []string
	// Timeout bounds one run. Zero means no limit beyond ctx.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewCommandAnalyzer splits a command line on whitespace.
func NewCommandAnalyzer(commandLine string, timeout time.Duration, logger *slog.Logger) *CommandAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandAnalyzer{
		Command: strings.Fields(commandLine),
		Timeout: timeout,
		Logger:  logger,
	}
}

// Analyze implements TypeAnalyzer.
func (a *CommandAnalyzer) Analyze(ctx context.Context, root string, files []string) (map[string]*TypedComponent, error) {
	if len(a.Command) == 0 {
		return nil, fmt.Errorf("type analyzer command is empty")
	}
	if len(files) == 0 {
		return map[string]*TypedComponent{}, nil
	}
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	input, err := json.Marshal(analyzerInput{Root: root, Files: files})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyzer input: %w", err)
	}

	cmd := exec.CommandContext(ctx, a.Command[0], a.Command[1:]...)
	cmd.Dir = root
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	a.Logger.Info("running type analyzer", "command", a.Command[0], "files", len(files))

	if err := cmd.Run(); err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			a.Logger.Warn("type analyzer stderr", "output", s)
			return nil, fmt.Errorf("type analyzer failed: %w (stderr: %s)", err, s)
		}
		return nil, fmt.Errorf("type analyzer failed: %w", err)
	}

	var results []TypedComponent
	if err := json.Unmarshal(stdout.Bytes(), &results); err != nil {
		return nil, fmt.Errorf("failed to parse type analyzer output: %w", err)
	}

	out := make(map[string]*TypedComponent, len(results))
	for i := range results {
		if results[i].Name == "" {
			continue
		}
		out[results[i].Name] = &results[i]
	}

	a.Logger.Info("type analysis complete",
		"components", len(out),
		"ms", time.Since(start).Milliseconds())
	return out, nil
}
