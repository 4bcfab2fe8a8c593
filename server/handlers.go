package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/blackbridge/blackbridge/document"
	"github.com/blackbridge/blackbridge/format"
	"github.com/blackbridge/blackbridge/lsp"
	"github.com/blackbridge/blackbridge/settings"
)

func (s *Server) register() {
	s.srv.Handle(lsp.MethodInitialize, s.handleInitialize)
	s.srv.Handle(lsp.MethodInitialized, s.handleInitialized)
	s.srv.Handle(lsp.MethodShutdown, s.handleShutdown)
	s.srv.Handle(lsp.MethodExit, s.handleExit)
	s.srv.Handle(lsp.MethodDidOpen, s.handleDidOpen)
	s.srv.Handle(lsp.MethodDidChange, s.handleDidChange)
	s.srv.Handle(lsp.MethodDidClose, s.handleDidClose)
	s.srv.Handle(lsp.MethodFormatting, s.handleFormatting)
}

// Run serves the editor connection. Companion runtimes are released when the
// serve loop ends, however it ends.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if err := s.rpc.Close(); err != nil {
			s.logger.Warn("companion shutdown", "error", err)
		}
	}()
	return s.srv.Serve(ctx)
}

func (s *Server) handleInitialize(ctx context.Context, req lsp.Request) (any, error) {
	var params lsp.InitializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, err
	}

	var list []settings.WorkspaceSettings
	if len(params.InitializationOptions) > 0 {
		var err error
		list, err = settings.FromInitializationOptions(params.InitializationOptions)
		if err != nil {
			s.logger.Warn("malformed initialization options", "error", err)
		}
	}
	s.registry.Replace(list)
	s.logLevel.Set(traceLevel(list))

	s.logger.Info(fmt.Sprintf("%s formatter bridge %s", format.DisplayName(), s.version),
		"interpreter", s.env.Interpreter)
	s.formatter.CheckVersions(ctx)

	return lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync:           lsp.TextDocumentSyncFull,
			DocumentFormattingProvider: true,
		},
		ServerInfo: lsp.ServerInfo{Name: "blackbridge", Version: s.version},
	}, nil
}

func (s *Server) handleInitialized(context.Context, lsp.Request) (any, error) {
	return nil, nil
}

func (s *Server) handleShutdown(context.Context, lsp.Request) (any, error) {
	return nil, nil
}

func (s *Server) handleExit(context.Context, lsp.Request) (any, error) {
	return nil, lsp.ErrExit
}

func (s *Server) handleDidOpen(_ context.Context, req lsp.Request) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, err
	}
	s.docs.Open(document.FromItem(params.TextDocument.URI, params.TextDocument.Text))
	return nil, nil
}

func (s *Server) handleDidChange(_ context.Context, req lsp.Request) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, err
	}
	// Full sync: the last change carries the whole document.
	if n := len(params.ContentChanges); n > 0 {
		s.docs.Update(params.TextDocument.URI, params.ContentChanges[n-1].Text)
	}
	return nil, nil
}

func (s *Server) handleDidClose(_ context.Context, req lsp.Request) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, err
	}
	s.docs.Close(params.TextDocument.URI)
	return nil, nil
}

// handleFormatting returns the formatter's edits, or a null result when the
// document is unknown or needs no change. Null, never an empty list: an empty
// list would make the editor record a formatting pass that changed nothing.
func (s *Server) handleFormatting(ctx context.Context, req lsp.Request) (any, error) {
	var params lsp.DocumentFormattingParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, err
	}
	doc, ok := s.docs.Get(params.TextDocument.URI)
	if !ok {
		s.logger.Warn("formatting request for unopened document", "uri", params.TextDocument.URI)
		return nil, nil
	}
	edits, err := s.formatter.Format(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(edits) == 0 {
		return nil, nil
	}
	return edits, nil
}

// traceLevel returns the most verbose level any workspace asks for, so a
// single workspace can turn on tracing without touching the others.
func traceLevel(list []settings.WorkspaceSettings) slog.Level {
	level := slog.LevelInfo
	set := false
	for _, ws := range list {
		l, ok := slogLevel(ws.LogLevel)
		if !ok {
			continue
		}
		if !set || l < level {
			level = l
			set = true
		}
	}
	return level
}

func slogLevel(l settings.LogLevel) (slog.Level, bool) {
	switch l {
	case settings.LevelDebug:
		return slog.LevelDebug, true
	case settings.LevelInfo:
		return slog.LevelInfo, true
	case settings.LevelWarn:
		return slog.LevelWarn, true
	case settings.LevelError:
		return slog.LevelError, true
	case settings.LevelOff:
		return slog.LevelError + 4, true
	}
	return 0, false
}
