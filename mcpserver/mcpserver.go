// Package mcpserver exposes the formatting pipeline as an MCP tool, so
// agent hosts can format Python source through the same strategies the
// editor connection uses.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blackbridge/blackbridge/document"
	"github.com/blackbridge/blackbridge/format"
)

// ErrConfig indicates an invalid MCP server configuration.
var ErrConfig = errors.New("mcpserver: invalid config")

// Config configures a Server.
type Config struct {
	// Formatter runs the pipeline. Required.
	Formatter *format.Formatter

	// Version is the bridge's release string, reported to the host.
	Version string

	// Logger receives serve diagnostics. Optional.
	Logger *slog.Logger
}

// Server fronts the formatter over the Model Context Protocol.
type Server struct {
	formatter *format.Formatter
	logger    *slog.Logger
	srv       *mcp.Server
}

// formatArgs are the arguments of the format_source tool.
type formatArgs struct {
	// Path is the file's path, used for settings resolution and for the
	// file-kind arguments passed to the formatter.
	Path string `json:"path" jsonschema:"path of the Python file being formatted"`

	// Source is the file's current text.
	Source string `json:"source" jsonschema:"Python source code to format"`
}

// New builds the MCP surface with the format_python tool registered.
func New(cfg Config) (*Server, error) {
	if cfg.Formatter == nil {
		return nil, fmt.Errorf("%w: Formatter is required", ErrConfig)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		formatter: cfg.Formatter,
		logger:    logger,
	}
	s.srv = mcp.NewServer(&mcp.Implementation{
		Name:    "blackbridge",
		Title:   format.DisplayName() + " formatter bridge",
		Version: cfg.Version,
	}, nil)
	mcp.AddTool(s.srv, &mcp.Tool{
		Name:        "format_source",
		Description: "Format Python source code with " + format.DisplayName(),
	}, s.formatTool)
	return s, nil
}

// Run serves the host connection over stdio until ctx is canceled or the
// host disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.srv.Run(ctx, &mcp.StdioTransport{})
}

// formatTool formats the given source and returns the full formatted text.
// Source that needs no change is returned unchanged.
func (s *Server) formatTool(ctx context.Context, req *mcp.CallToolRequest, args formatArgs) (*mcp.CallToolResult, any, error) {
	doc := document.Document{
		URI:    "file://" + args.Path,
		Path:   args.Path,
		Source: args.Source,
	}
	edits, err := s.formatter.Format(ctx, doc)
	if err != nil {
		return nil, nil, err
	}
	text := args.Source
	if len(edits) > 0 {
		text = edits[len(edits)-1].NewText
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}
