package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// MaxWorkers bounds the number of requests handled concurrently.
const MaxWorkers = 5

// ErrExit is returned by a handler to stop the serve loop cleanly.
var ErrExit = errors.New("lsp: exit")

// ErrServerConfig indicates an invalid server configuration.
var ErrServerConfig = errors.New("lsp: invalid server config")

// Handler processes one message. For requests the returned value becomes the
// response result; for notifications it is ignored.
//
// Contract: handlers must be safe for concurrent use. Notification handlers
// run on the read goroutine in arrival order; request handlers run on a
// bounded worker pool and may overlap each other and notifications.
type Handler func(ctx context.Context, req Request) (any, error)

// ServerConfig configures a Server.
type ServerConfig struct {
	// Conn is the transport. Required.
	Conn *Conn

	// Logger receives serve-loop diagnostics. Optional.
	Logger *slog.Logger
}

// Server reads messages from a connection and dispatches them to registered
// handlers.
type Server struct {
	conn   *Conn
	logger *slog.Logger

	handlers map[string]Handler

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewServer validates cfg and returns a Server with no handlers registered.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Conn == nil {
		return nil, fmt.Errorf("%w: Conn is required", ErrServerConfig)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		conn:     cfg.Conn,
		logger:   logger,
		handlers: make(map[string]Handler),
		sem:      make(chan struct{}, MaxWorkers),
	}, nil
}

// Handle registers h for method, replacing any previous registration.
// Handle must not be called after Serve starts.
func (s *Server) Handle(method string, h Handler) {
	s.handlers[method] = h
}

// Conn returns the underlying connection, for sending notifications.
func (s *Server) Conn() *Conn { return s.conn }

// Serve reads and dispatches messages until the connection closes, the
// context is canceled, or a handler returns ErrExit. In-flight request
// handlers are waited for before returning.
func (s *Server) Serve(ctx context.Context) error {
	defer s.wg.Wait()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := s.conn.Read()
		if err != nil {
			if errors.Is(err, ErrConnClosed) {
				return nil
			}
			return err
		}
		if req.IsNotification() {
			if err := s.dispatchNotification(ctx, req); err != nil {
				if errors.Is(err, ErrExit) {
					return nil
				}
				s.logger.Error("notification handler failed", "method", req.Method, "error", err)
			}
			continue
		}
		s.dispatchRequest(ctx, req)
	}
}

func (s *Server) dispatchNotification(ctx context.Context, req Request) error {
	h, ok := s.handlers[req.Method]
	if !ok {
		s.logger.Debug("unhandled notification", "method", req.Method)
		return nil
	}
	_, err := h(ctx, req)
	return err
}

func (s *Server) dispatchRequest(ctx context.Context, req Request) {
	h, ok := s.handlers[req.Method]
	if !ok {
		if err := s.conn.ReplyError(req.ID, CodeMethodNotFound, "method not found: "+req.Method); err != nil {
			s.logger.Error("reply failed", "method", req.Method, "error", err)
		}
		return
	}

	s.sem <- struct{}{}
	s.wg.Add(1)
	go func() {
		defer func() {
			<-s.sem
			s.wg.Done()
		}()
		result, err := h(ctx, req)
		if err != nil {
			s.logger.Error("request handler failed", "method", req.Method, "error", err)
			if err := s.conn.ReplyError(req.ID, CodeInternalError, err.Error()); err != nil {
				s.logger.Error("reply failed", "method", req.Method, "error", err)
			}
			return
		}
		if err := s.conn.Reply(req.ID, result); err != nil {
			s.logger.Error("reply failed", "method", req.Method, "error", err)
		}
	}()
}
