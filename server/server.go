// Package server wires the formatting pipeline to an editor connection:
// it builds the execution strategies from environment configuration,
// registers the protocol handlers, and serves until the editor exits.
package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blackbridge/blackbridge/format"
	"github.com/blackbridge/blackbridge/lsp"
	"github.com/blackbridge/blackbridge/runner"
	"github.com/blackbridge/blackbridge/runner/modrun"
	"github.com/blackbridge/blackbridge/runner/pathrun"
	"github.com/blackbridge/blackbridge/runner/rpcrun"
	"github.com/blackbridge/blackbridge/settings"
)

// ErrServerConfig indicates an invalid server configuration.
var ErrServerConfig = errors.New("server: invalid config")

// Config configures a Server.
type Config struct {
	// In and Out are the editor transport, typically stdin and stdout.
	// Both required.
	In  io.Reader
	Out io.Writer

	// Env is the process-level configuration.
	Env settings.Env

	// Version is the bridge's own release string, for the startup banner.
	Version string
}

// Server is the editor-facing surface of the bridge.
type Server struct {
	env     settings.Env
	version string

	conn     *lsp.Conn
	srv      *lsp.Server
	logger   *slog.Logger
	logLevel *slog.LevelVar

	registry  *settings.Registry
	docs      *docStore
	formatter *format.Formatter
	rpc       *rpcrun.Runner
}

// New builds the full pipeline. The module search path for in-runtime
// invocations is configured once here, before any strategy can run.
func New(cfg Config) (*Server, error) {
	if cfg.In == nil || cfg.Out == nil {
		return nil, fmt.Errorf("%w: In and Out are required", ErrServerConfig)
	}

	conn := lsp.NewConn(cfg.In, cfg.Out)
	logLevel := new(slog.LevelVar)
	logger := slog.New(newNotifyHandler(conn, logLevel, cfg.Env.Notification))

	if cfg.Env.BundledLibs != "" {
		modrun.ConfigureSearchPath(cfg.Env.BundledLibs, cfg.Env.ImportStrategy)
	}

	mod, err := modrun.New(modrun.Config{Interpreter: cfg.Env.Interpreter, Logger: logger})
	if err != nil {
		return nil, err
	}
	path := pathrun.New(pathrun.Config{Logger: logger})
	rpc, err := rpcrun.New(rpcrun.Config{RunnerScript: runnerScript(cfg.Env), Logger: logger})
	if err != nil {
		return nil, err
	}

	registry := settings.NewRegistry()
	dispatcher, err := runner.NewDispatcher(runner.DispatcherConfig{
		Module:          format.ToolModule,
		HostInterpreter: cfg.Env.Interpreter,
		ModuleRunner:    mod,
		PathRunner:      path,
		RPCRunner:       rpc,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	formatter, err := format.New(format.Config{
		Registry:   registry,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	srv, err := lsp.NewServer(lsp.ServerConfig{Conn: conn, Logger: logger})
	if err != nil {
		return nil, err
	}

	s := &Server{
		env:       cfg.Env,
		version:   cfg.Version,
		conn:      conn,
		srv:       srv,
		logger:    logger,
		logLevel:  logLevel,
		registry:  registry,
		docs:      newDocStore(),
		formatter: formatter,
		rpc:       rpc,
	}
	s.register()
	return s, nil
}

// runnerScript resolves the companion runner for cross-runtime calls. It
// falls back to a runner.py beside the bridge executable.
func runnerScript(env settings.Env) string {
	if env.RunnerScript != "" {
		return env.RunnerScript
	}
	if env.BundledLibs != "" {
		return filepath.Join(env.BundledLibs, "tool", "runner.py")
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), "runner.py")
	}
	return "runner.py"
}
