package format

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blackbridge/blackbridge/document"
	"github.com/blackbridge/blackbridge/lsp"
	"github.com/blackbridge/blackbridge/pysrc"
	"github.com/blackbridge/blackbridge/runner"
	"github.com/blackbridge/blackbridge/settings"
)

// ErrFormatterConfig indicates an invalid formatter configuration.
var ErrFormatterConfig = errors.New("format: invalid formatter config")

// Config configures a Formatter.
type Config struct {
	// Registry resolves documents to workspace settings. Required.
	Registry *settings.Registry

	// Dispatcher routes invocations to an execution strategy. Required.
	Dispatcher *runner.Dispatcher

	// Logger receives pipeline diagnostics. Optional.
	Logger *slog.Logger

	// VersionCheck reports whether a probed tool version is supported.
	// Optional; defaults to comparing against MinVersion.
	VersionCheck VersionCheck
}

// VersionCheck decides whether a probed tool version is supported.
type VersionCheck func(version string) bool

// Formatter turns a document into the formatter's edits.
type Formatter struct {
	registry     *settings.Registry
	dispatcher   *runner.Dispatcher
	logger       *slog.Logger
	versionCheck VersionCheck
}

// New validates cfg and returns a Formatter.
func New(cfg Config) (*Formatter, error) {
	var errs []error
	if cfg.Registry == nil {
		errs = append(errs, fmt.Errorf("%w: Registry is required", ErrFormatterConfig))
	}
	if cfg.Dispatcher == nil {
		errs = append(errs, fmt.Errorf("%w: Dispatcher is required", ErrFormatterConfig))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	check := cfg.VersionCheck
	if check == nil {
		check = func(version string) bool { return !OlderThan(version, MinVersion) }
	}
	return &Formatter{
		registry:     cfg.Registry,
		dispatcher:   cfg.Dispatcher,
		logger:       logger,
		versionCheck: check,
	}, nil
}

// Format runs the formatter over doc and returns the edits to apply. A nil
// slice means the document needs no change; callers must preserve the
// distinction between nil ("no edits") and an empty slice.
func (f *Formatter) Format(ctx context.Context, doc document.Document) ([]lsp.TextEdit, error) {
	if pysrc.IsStdlibPath(doc.Path) {
		f.logger.Warn("skipping standard library file", "path", doc.Path)
		return nil, nil
	}
	if doc.Source == "" {
		return nil, nil
	}
	outcome, err := pysrc.Validate(doc.Source)
	if err != nil {
		// Keep formatting available when pre-validation itself is broken;
		// the tool does its own parse anyway.
		f.logger.Warn("syntax pre-validation unavailable", "path", doc.Path, "error", err)
	} else if outcome == pysrc.ParseSyntaxInvalid {
		f.logger.Warn("skipping file with syntax errors", "path", doc.Path)
		return nil, nil
	}

	ws, err := f.registry.Resolve(doc)
	if err != nil {
		return nil, err
	}

	extra := doc.ExtraArgs()
	extra = append(extra, "--stdin-filename", doc.StdinName())

	res, err := f.dispatcher.Dispatch(ctx, ws, extra, true, doc.Source)
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		f.logger.Info("formatter reported", "path", doc.Path, "stderr", res.Stderr)
	}
	if res.Stdout == "" {
		return nil, nil
	}

	formatted := document.MatchLineEndings(doc.Source, res.Stdout)
	if doc.IsCell() {
		// The formatter terminates its output with a newline, but notebook
		// cells are stored without one.
		formatted = document.TrimCellNewline(formatted)
	}
	if formatted == doc.Source {
		return nil, nil
	}

	if ws.LogLevel == settings.LevelDebug {
		f.traceDiff(doc, formatted)
	}

	return []lsp.TextEdit{{
		Range: lsp.Range{
			Start: lsp.Position{Line: 0, Character: 0},
			End:   lsp.Position{Line: uint32(len(doc.Lines())), Character: 0},
		},
		NewText: formatted,
	}}, nil
}
