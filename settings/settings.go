// Package settings holds the per-workspace formatter configuration and the
// process-wide registry that formatting requests resolve against.
package settings

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/blackbridge/blackbridge/document"
)

// LogLevel is the per-workspace logging level the editor configures.
type LogLevel string

// Recognized log levels, in decreasing verbosity.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelOff   LogLevel = "off"
)

// WorkspaceSettings is the formatter configuration for one workspace root.
type WorkspaceSettings struct {
	// WorkspaceID is the workspace URI as the editor sent it.
	WorkspaceID string

	// Root is the canonical workspace directory and the registry key.
	Root string

	// Path is the explicit tool executable invocation. When set it takes
	// priority over every other execution mode.
	Path []string

	// Interpreter identifies the target runtime. Empty means the bridge's
	// own host interpreter.
	Interpreter []string

	// Args are extra arguments always passed to the tool.
	Args []string

	// LogLevel controls trace verbosity for this workspace.
	LogLevel LogLevel
}

// wireSettings mirrors the shape the editor sends in initialization options.
type wireSettings struct {
	Workspace   string   `json:"workspace"`
	Path        []string `json:"path"`
	Interpreter []string `json:"interpreter"`
	Args        []string `json:"args"`
	LogLevel    LogLevel `json:"logLevel"`
}

type initializationOptions struct {
	Settings []wireSettings `json:"settings"`
}

// FromInitializationOptions decodes the editor's initialization options into
// workspace settings, canonicalizing each workspace URI into a root path.
func FromInitializationOptions(raw json.RawMessage) ([]WorkspaceSettings, error) {
	var opts initializationOptions
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, fmt.Errorf("settings: decoding initialization options: %w", err)
	}

	out := make([]WorkspaceSettings, 0, len(opts.Settings))
	for _, w := range opts.Settings {
		out = append(out, WorkspaceSettings{
			WorkspaceID: w.Workspace,
			Root:        filepath.Clean(document.PathFromURI(w.Workspace)),
			Path:        w.Path,
			Interpreter: w.Interpreter,
			Args:        w.Args,
			LogLevel:    w.LogLevel,
		})
	}
	return out, nil
}
