package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/blackbridge/blackbridge/wire"
)

// ErrConnClosed indicates the peer closed the transport.
var ErrConnClosed = errors.New("lsp: connection closed")

// Conn frames JSON-RPC messages over a byte stream. Reads are single-threaded
// (the server loop owns them); writes are serialized by an internal mutex so
// handlers running on worker goroutines can reply concurrently.
type Conn struct {
	r *bufio.Reader

	mu sync.Mutex
	w  io.Writer
}

// NewConn wraps a transport, typically stdin/stdout.
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: bufio.NewReader(r), w: w}
}

// Read returns the next incoming message.
func (c *Conn) Read() (Request, error) {
	payload, err := wire.ReadFrame(c.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Request{}, ErrConnClosed
		}
		return Request{}, err
	}
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Reply sends a successful result for the given request id. A nil result is
// encoded as JSON null, which formatting relies on to signal "no edits".
func (c *Conn) Reply(id json.RawMessage, result any) error {
	return c.write(Response{JSONRPC: Version, ID: id, Result: result})
}

// ReplyError sends an error response for the given request id.
func (c *Conn) ReplyError(id json.RawMessage, code int, msg string) error {
	return c.write(Response{JSONRPC: Version, ID: id, Error: &ResponseError{Code: code, Message: msg}})
}

// Notify sends a server-initiated notification.
func (c *Conn) Notify(method string, params any) error {
	return c.write(Notification{JSONRPC: Version, Method: method, Params: params})
}

func (c *Conn) write(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return wire.WriteFrame(c.w, payload)
}
