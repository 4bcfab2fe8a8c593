// Command blackbridge bridges editors and agent hosts to the Black Python
// formatter. The default mode serves the Language Server Protocol over
// stdio; the mcp subcommand serves the same pipeline over the Model
// Context Protocol.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackbridge/blackbridge/format"
	"github.com/blackbridge/blackbridge/mcpserver"
	"github.com/blackbridge/blackbridge/runner"
	"github.com/blackbridge/blackbridge/runner/modrun"
	"github.com/blackbridge/blackbridge/runner/pathrun"
	"github.com/blackbridge/blackbridge/runner/rpcrun"
	"github.com/blackbridge/blackbridge/server"
	"github.com/blackbridge/blackbridge/settings"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "blackbridge",
		Short:        format.DisplayName() + " formatter bridge",
		Long:         "blackbridge connects editors to the " + format.DisplayName() + " Python formatter over the Language Server Protocol.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := server.New(server.Config{
				In:      os.Stdin,
				Out:     os.Stdout,
				Env:     settings.LoadEnv(),
				Version: version,
			})
			if err != nil {
				return err
			}
			return s.Run(cmd.Context())
		},
	}
	root.AddCommand(newMCPCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newMCPCmd() *cobra.Command {
	var (
		workspace   string
		toolPath    string
		interpreter string
		toolArgs    []string
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the formatter as an MCP tool over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := settings.LoadEnv()
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			root := workspace
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				root = wd
			}
			ws := settings.WorkspaceSettings{
				WorkspaceID: "file://" + filepath.ToSlash(root),
				Root:        filepath.Clean(root),
				Args:        toolArgs,
			}
			if toolPath != "" {
				ws.Path = []string{toolPath}
			}
			if interpreter != "" {
				ws.Interpreter = []string{interpreter}
			}

			formatter, err := buildFormatter(env, ws, logger)
			if err != nil {
				return err
			}
			s, err := mcpserver.New(mcpserver.Config{
				Formatter: formatter,
				Version:   version,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			return s.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace root directory (default: current directory)")
	cmd.Flags().StringVar(&toolPath, "tool-path", "", "explicit formatter executable, bypassing interpreter selection")
	cmd.Flags().StringVar(&interpreter, "interpreter", "", "Python interpreter to format with")
	cmd.Flags().StringArrayVar(&toolArgs, "tool-arg", nil, "extra argument passed to the formatter (repeatable)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bridge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blackbridge %s (%s >= %s)\n", version, format.ToolModule, format.MinVersion)
		},
	}
}

// buildFormatter assembles the single-workspace pipeline used by MCP mode.
func buildFormatter(env settings.Env, ws settings.WorkspaceSettings, logger *slog.Logger) (*format.Formatter, error) {
	if env.BundledLibs != "" {
		modrun.ConfigureSearchPath(env.BundledLibs, env.ImportStrategy)
	}
	mod, err := modrun.New(modrun.Config{Interpreter: env.Interpreter, Logger: logger})
	if err != nil {
		return nil, err
	}
	script := env.RunnerScript
	if script == "" {
		script = "runner.py"
	}
	rpc, err := rpcrun.New(rpcrun.Config{RunnerScript: script, Logger: logger})
	if err != nil {
		return nil, err
	}

	registry := settings.NewRegistry()
	registry.Replace([]settings.WorkspaceSettings{ws})

	dispatcher, err := runner.NewDispatcher(runner.DispatcherConfig{
		Module:          format.ToolModule,
		HostInterpreter: env.Interpreter,
		ModuleRunner:    mod,
		PathRunner:      pathrun.New(pathrun.Config{Logger: logger}),
		RPCRunner:       rpc,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return format.New(format.Config{
		Registry:   registry,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
}
