// Package pathrun executes the explicitly configured tool executable, the
// external-executable strategy.
package pathrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/blackbridge/blackbridge/runner"
	"github.com/blackbridge/blackbridge/runner/shared"
)

// ErrExecutableNotFound is returned when the configured tool path does not
// resolve to a runnable executable.
var ErrExecutableNotFound = errors.New("pathrun: executable not found")

// executeFunc runs the prepared invocation; tests swap it to avoid spawning
// real executables.
type executeFunc func(ctx context.Context, inv runner.Invocation, source string) (stdout, stderr string, err error)

// Config configures the external-executable strategy.
type Config struct {
	// Logger is an optional logger for tool stderr.
	Logger *slog.Logger
}

// Runner is the external-executable strategy.
type Runner struct {
	logger  *slog.Logger
	execute executeFunc
}

// New creates the external-executable strategy.
func New(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{logger: cfg.Logger, execute: runProcess}
}

// Kind returns the strategy identifier.
func (r *Runner) Kind() runner.Kind {
	return runner.KindPath
}

// Run spawns the configured executable with the assembled argument vector,
// working directory set to the workspace root. Document text written to
// stdin is first normalized to a single newline convention. Tool-reported
// failures never raise: non-zero exits fold into the Result's error text.
func (r *Runner) Run(ctx context.Context, inv runner.Invocation) (runner.Result, error) {
	if err := inv.Validate(); err != nil {
		return runner.Result{}, err
	}

	source := strings.ReplaceAll(inv.Source, "\r\n", "\n")
	stdout, stderr, err := r.execute(ctx, inv, source)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return runner.Result{}, fmt.Errorf("%w: %s", ErrExecutableNotFound, inv.Argv[0])
		}
		return runner.Result{}, fmt.Errorf("pathrun: %w", err)
	}
	if stderr != "" {
		r.logger.Info(stderr)
	}
	return runner.Result{Stdout: stdout, Stderr: stderr}, nil
}

// runProcess spawns the executable head of the argument vector.
func runProcess(ctx context.Context, inv runner.Invocation, source string) (string, string, error) {
	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Cwd
	return shared.Capture(cmd, source, inv.UseStdin)
}

var _ runner.Runner = (*Runner)(nil)
