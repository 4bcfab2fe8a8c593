package runner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackbridge/blackbridge/settings"
)

// ErrDispatcherConfig is returned when the dispatcher is missing a runner.
var ErrDispatcherConfig = errors.New("runner: dispatcher configuration error")

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Module is the tool's module name, the argv head for module and RPC
	// strategies. Required.
	Module string

	// DefaultArgs are arguments always passed to the tool, before
	// workspace and per-file arguments.
	DefaultArgs []string

	// HostInterpreter is the executable of the runtime the bridge treats
	// as its own. An interpreter setting matching it dispatches in-runtime
	// rather than over RPC. Required.
	HostInterpreter string

	// ModuleRunner, PathRunner and RPCRunner are the three strategies.
	// All required.
	ModuleRunner Runner
	PathRunner   Runner
	RPCRunner    Runner

	// Logger is an optional logger for dispatch events.
	Logger *slog.Logger
}

// Dispatcher chooses exactly one execution strategy per request and
// assembles the final argument vector.
//
// Precedence, evaluated once per call:
//  1. explicit tool path -> PathRunner
//  2. interpreter set and not the host interpreter -> RPCRunner
//  3. otherwise -> ModuleRunner
type Dispatcher struct {
	cfg DispatcherConfig
}

// NewDispatcher creates a Dispatcher. Returns ErrDispatcherConfig when a
// required field is missing.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	var missing []string
	if cfg.Module == "" {
		missing = append(missing, "Module")
	}
	if cfg.HostInterpreter == "" {
		missing = append(missing, "HostInterpreter")
	}
	if cfg.ModuleRunner == nil {
		missing = append(missing, "ModuleRunner")
	}
	if cfg.PathRunner == nil {
		missing = append(missing, "PathRunner")
	}
	if cfg.RPCRunner == nil {
		missing = append(missing, "RPCRunner")
	}
	if len(missing) > 0 {
		return nil, errors.Join(ErrDispatcherConfig,
			errors.New("missing required fields: "+strings.Join(missing, ", ")))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{cfg: cfg}, nil
}

// Select picks the strategy for the given settings and returns it with the
// argument-vector head. The explicit tool path always wins, even when an
// interpreter is also configured.
func (d *Dispatcher) Select(ws settings.WorkspaceSettings) (Runner, []string) {
	if len(ws.Path) > 0 {
		return d.cfg.PathRunner, ws.Path
	}
	if len(ws.Interpreter) > 0 && !d.isHostInterpreter(ws.Interpreter[0]) {
		return d.cfg.RPCRunner, []string{d.cfg.Module}
	}
	return d.cfg.ModuleRunner, []string{d.cfg.Module}
}

// Dispatch assembles the argument vector, selects a strategy and runs it.
func (d *Dispatcher) Dispatch(ctx context.Context, ws settings.WorkspaceSettings, extra []string, useStdin bool, source string) (Result, error) {
	run, head := d.Select(ws)

	argv := make([]string, 0, len(head)+len(d.cfg.DefaultArgs)+len(ws.Args)+len(extra)+1)
	argv = append(argv, head...)
	argv = append(argv, d.cfg.DefaultArgs...)
	argv = append(argv, ws.Args...)
	argv = append(argv, extra...)
	if useStdin {
		argv = append(argv, "-")
	}

	d.cfg.Logger.Info(strings.Join(argv, " "),
		slog.String("strategy", string(run.Kind())),
		slog.String("cwd", ws.Root))

	return run.Run(ctx, Invocation{
		Argv:        argv,
		Cwd:         ws.Root,
		UseStdin:    useStdin,
		Source:      source,
		Workspace:   ws.WorkspaceID,
		Interpreter: ws.Interpreter,
	})
}

// isHostInterpreter reports whether path identifies the runtime the bridge
// itself fronts. Paths that stat to the same file compare equal even when
// spelled differently.
func (d *Dispatcher) isHostInterpreter(path string) bool {
	host := d.cfg.HostInterpreter
	if path == host {
		return true
	}
	pi, errP := os.Stat(path)
	hi, errH := os.Stat(host)
	if errP == nil && errH == nil {
		return os.SameFile(pi, hi)
	}
	return filepath.Clean(path) == filepath.Clean(host)
}
