// Package modrun executes the tool under the bridge's own host interpreter,
// the in-runtime strategy. The interpreter's module search path is the
// process-wide PYTHONPATH environment, so invocations scope their edits to
// it under a single mutual-exclusion section.
package modrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blackbridge/blackbridge/runner"
	"github.com/blackbridge/blackbridge/runner/shared"
	"github.com/blackbridge/blackbridge/settings"
)

// Errors for in-runtime execution.
var (
	// ErrInterpreterRequired is returned when no host interpreter is
	// configured.
	ErrInterpreterRequired = errors.New("modrun: host interpreter is required")

	// ErrInvocationFault marks an unexpected fault in the invocation
	// machinery itself, as opposed to a tool-reported failure.
	ErrInvocationFault = errors.New("modrun: invocation fault")
)

const searchPathKey = "PYTHONPATH"

// pathMu serializes every edit to the process-wide module search path.
// Exactly one such list exists per process, so concurrent in-runtime calls
// must never interleave their edits.
var pathMu sync.Mutex

// ConfigureSearchPath places the bundled libraries directory on the module
// search path once at startup: prepended under the useBundled strategy,
// appended under fromEnvironment. Missing directories and entries already
// present are left alone.
func ConfigureSearchPath(bundled string, strategy settings.ImportStrategy) {
	if bundled == "" {
		return
	}
	if info, err := os.Stat(bundled); err != nil || !info.IsDir() {
		return
	}

	pathMu.Lock()
	defer pathMu.Unlock()

	parts := filepath.SplitList(os.Getenv(searchPathKey))
	for _, p := range parts {
		if p == bundled {
			return
		}
	}
	if strategy == settings.ImportFromEnvironment {
		parts = append(parts, bundled)
	} else {
		parts = append([]string{bundled}, parts...)
	}
	os.Setenv(searchPathKey, strings.Join(parts, string(os.PathListSeparator)))
}

// executeFunc runs the prepared invocation; it exists so tests can observe
// the strategy without spawning an interpreter.
type executeFunc func(ctx context.Context, interpreter string, inv runner.Invocation) (stdout, stderr string, err error)

// Config configures the in-runtime strategy.
type Config struct {
	// Interpreter is the host interpreter executable. Required.
	Interpreter string

	// Logger is an optional logger for invocation faults and tool stderr.
	Logger *slog.Logger
}

// Runner is the in-runtime execution strategy.
type Runner struct {
	interpreter string
	logger      *slog.Logger
	execute     executeFunc
}

// New creates the in-runtime strategy. Returns ErrInterpreterRequired when
// no host interpreter is configured.
func New(cfg Config) (*Runner, error) {
	if cfg.Interpreter == "" {
		return nil, ErrInterpreterRequired
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		interpreter: cfg.Interpreter,
		logger:      cfg.Logger,
		execute:     runProcess,
	}, nil
}

// Kind returns the strategy identifier.
func (r *Runner) Kind() runner.Kind {
	return runner.KindModule
}

// Run executes the tool as a module of the host interpreter. For the
// duration of the call the module search path gets an empty entry prepended,
// matching a standalone invocation's resolution behavior; the edit is saved
// before, applied under the exclusive section, and unconditionally restored
// afterward. Tool-reported failures fold into the Result; faults in the
// machinery are logged with full detail and returned.
func (r *Runner) Run(ctx context.Context, inv runner.Invocation) (runner.Result, error) {
	if err := inv.Validate(); err != nil {
		return runner.Result{}, err
	}

	pathMu.Lock()
	defer pathMu.Unlock()

	restore := pushScopedEntry()
	defer restore()

	stdout, stderr, err := r.execute(ctx, r.interpreter, inv)
	if err != nil {
		r.logger.Error("in-runtime invocation failed",
			slog.String("interpreter", r.interpreter),
			slog.String("argv", strings.Join(inv.Argv, " ")),
			slog.String("cwd", inv.Cwd),
			slog.Any("error", err))
		return runner.Result{}, fmt.Errorf("%w: %v", ErrInvocationFault, err)
	}
	if stderr != "" {
		r.logger.Info(stderr)
	}
	return runner.Result{Stdout: stdout, Stderr: stderr}, nil
}

// pushScopedEntry prepends an empty entry to the module search path and
// returns the restore function. An empty entry resolves to the working
// directory, the same behavior a standalone tool invocation observes.
func pushScopedEntry() func() {
	prev, had := os.LookupEnv(searchPathKey)

	next := ""
	if prev != "" {
		next = string(os.PathListSeparator) + prev
	}
	os.Setenv(searchPathKey, next)

	return func() {
		if had {
			os.Setenv(searchPathKey, prev)
		} else {
			os.Unsetenv(searchPathKey)
		}
	}
}

// runProcess spawns `interpreter -m <argv>` in the invocation's working
// directory and captures its output.
func runProcess(ctx context.Context, interpreter string, inv runner.Invocation) (string, string, error) {
	args := append([]string{"-m"}, inv.Argv...)
	cmd := exec.CommandContext(ctx, interpreter, args...)
	cmd.Dir = inv.Cwd
	return shared.Capture(cmd, inv.Source, inv.UseStdin)
}

var _ runner.Runner = (*Runner)(nil)
