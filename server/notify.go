package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blackbridge/blackbridge/lsp"
	"github.com/blackbridge/blackbridge/settings"
)

// editorSink is the slice of the connection the log handler needs.
type editorSink interface {
	Notify(method string, params any) error
}

// notifyHandler is a slog.Handler that forwards records to the editor as
// window/logMessage entries and, depending on the configured notification
// level, as window/showMessage popups.
type notifyHandler struct {
	sink  editorSink
	level *slog.LevelVar
	show  settings.NotificationLevel
	attrs []slog.Attr
}

func newNotifyHandler(sink editorSink, level *slog.LevelVar, show settings.NotificationLevel) *notifyHandler {
	return &notifyHandler{sink: sink, level: level, show: show}
}

func (h *notifyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *notifyHandler) Handle(_ context.Context, rec slog.Record) error {
	var b strings.Builder
	b.WriteString(rec.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	rec.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	text := b.String()

	if err := h.sink.Notify(lsp.MethodLogMessage, lsp.LogMessageParams{
		Type:    messageType(rec.Level),
		Message: text,
	}); err != nil {
		return err
	}
	if h.show.Shows(rec.Level) {
		return h.sink.Notify(lsp.MethodShowMessage, lsp.ShowMessageParams{
			Type:    messageType(rec.Level),
			Message: text,
		})
	}
	return nil
}

func (h *notifyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup is accepted but flattened: editor log output is a plain text
// channel, so grouping adds nothing.
func (h *notifyHandler) WithGroup(string) slog.Handler {
	return h
}

func messageType(level slog.Level) lsp.MessageType {
	switch {
	case level >= slog.LevelError:
		return lsp.MessageError
	case level >= slog.LevelWarn:
		return lsp.MessageWarning
	case level >= slog.LevelInfo:
		return lsp.MessageInfo
	default:
		return lsp.MessageLog
	}
}

var _ slog.Handler = (*notifyHandler)(nil)
