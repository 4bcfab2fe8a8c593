// Package rpcrun executes the tool in a companion process under a different
// interpreter than the one hosting the bridge, the cross-runtime strategy.
// Connections are opened lazily per distinct interpreter and reused.
package rpcrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blackbridge/blackbridge/runner"
)

// Errors for cross-runtime execution.
var (
	// ErrInterpreterRequired is returned when an invocation names no
	// target interpreter.
	ErrInterpreterRequired = errors.New("rpcrun: target interpreter is required")

	// ErrRunnerScriptRequired is returned when no companion runner is
	// configured.
	ErrRunnerScriptRequired = errors.New("rpcrun: companion runner script is required")

	// ErrProtocol marks a transport fault on a companion connection.
	ErrProtocol = errors.New("rpcrun: protocol error")

	// ErrClosed is returned after the runner has been shut down.
	ErrClosed = errors.New("rpcrun: runner closed")
)

// dialFunc opens a connection to the companion runtime for an interpreter.
type dialFunc func(interpreter []string) (*conn, error)

// Config configures the cross-runtime strategy.
type Config struct {
	// RunnerScript is the companion runner started under the target
	// interpreter. Required.
	RunnerScript string

	// Logger is an optional logger for companion stderr and exceptions.
	Logger *slog.Logger
}

// Runner is the cross-runtime execution strategy.
type Runner struct {
	script string
	logger *slog.Logger

	mu     sync.Mutex
	conns  map[string]*conn
	closed bool
	dial   dialFunc
}

// New creates the cross-runtime strategy. Returns ErrRunnerScriptRequired
// when no companion runner is configured.
func New(cfg Config) (*Runner, error) {
	if cfg.RunnerScript == "" {
		return nil, ErrRunnerScriptRequired
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	r := &Runner{
		script: cfg.RunnerScript,
		logger: cfg.Logger,
		conns:  make(map[string]*conn),
	}
	r.dial = func(interpreter []string) (*conn, error) {
		return dial(interpreter, r.script)
	}
	return r, nil
}

// Kind returns the strategy identifier.
func (r *Runner) Kind() runner.Kind {
	return runner.KindRPC
}

// Run serializes the invocation to the companion process associated with
// the target interpreter. The companion's internal-exception text takes
// priority over tool stderr; whichever is non-empty becomes the Result's
// error text. Transport faults propagate and tear the connection down so
// the next call redials.
func (r *Runner) Run(ctx context.Context, inv runner.Invocation) (runner.Result, error) {
	if err := inv.Validate(); err != nil {
		return runner.Result{}, err
	}
	if len(inv.Interpreter) == 0 {
		return runner.Result{}, ErrInterpreterRequired
	}

	key := strings.Join(inv.Interpreter, "\x00")
	c, err := r.connFor(key, inv.Interpreter)
	if err != nil {
		return runner.Result{}, err
	}

	out, err := c.call(ctx, runParams{
		Workspace:   inv.Workspace,
		Interpreter: inv.Interpreter,
		Module:      inv.Argv[0],
		Argv:        inv.Argv,
		UseStdin:    inv.UseStdin,
		Cwd:         inv.Cwd,
		Source:      inv.Source,
	})
	if err != nil {
		r.drop(key, c)
		r.logger.Error("companion call failed",
			slog.String("interpreter", inv.Interpreter[0]),
			slog.Any("error", err))
		return runner.Result{}, err
	}

	errText := ""
	switch {
	case out.Exception != "":
		r.logger.Error(out.Exception)
		errText = out.Exception
	case out.Stderr != "":
		r.logger.Info(out.Stderr)
		errText = out.Stderr
	}
	return runner.Result{Stdout: out.Stdout, Stderr: errText}, nil
}

// connFor returns the pooled connection for an interpreter, opening it on
// first use.
func (r *Runner) connFor(key string, interpreter []string) (*conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if c, ok := r.conns[key]; ok {
		return c, nil
	}
	c, err := r.dial(interpreter)
	if err != nil {
		return nil, fmt.Errorf("rpcrun: connecting to %s: %w", interpreter[0], err)
	}
	r.conns[key] = c
	return c, nil
}

// drop discards a broken connection so the next call redials.
func (r *Runner) drop(key string, c *conn) {
	r.mu.Lock()
	if r.conns[key] == c {
		delete(r.conns, key)
	}
	r.mu.Unlock()
	_ = c.close()
}

// Close releases every open companion connection. Called at server shutdown.
func (r *Runner) Close() error {
	r.mu.Lock()
	conns := r.conns
	r.conns = map[string]*conn{}
	r.closed = true
	r.mu.Unlock()

	var errs []error
	for _, c := range conns {
		if err := c.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ runner.Runner = (*Runner)(nil)
