package rpcrun

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"

	"github.com/blackbridge/blackbridge/wire"
)

// runMethod is the single method the companion runner serves.
const runMethod = "run_module"

// envelope is the request sent to the companion runtime.
type envelope struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  runParams `json:"params"`
}

// runParams carries one tool invocation across the runtime boundary.
type runParams struct {
	Workspace   string   `json:"workspace"`
	Interpreter []string `json:"interpreter"`
	Module      string   `json:"module"`
	Argv        []string `json:"argv"`
	UseStdin    bool     `json:"useStdin"`
	Cwd         string   `json:"cwd"`
	Source      string   `json:"source,omitempty"`
}

// reply is the companion's response envelope.
type reply struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Result  *runOutcome `json:"result,omitempty"`
	Error   *replyError `json:"error,omitempty"`
}

// runOutcome is the companion's execution result. Exception reports an
// internal fault in the companion, distinct from tool-reported stderr.
type runOutcome struct {
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	Exception string `json:"exception,omitempty"`
}

type replyError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// conn is one sequential request/response channel to a companion process.
// A single call may be outstanding at a time; the mutex enforces that
// discipline for concurrent requests targeting the same interpreter.
type conn struct {
	mu     sync.Mutex
	w      io.Writer
	r      *bufio.Reader
	closer io.Closer
	proc   *exec.Cmd
}

// call sends one invocation and blocks until the companion responds. No
// timeout applies; cancellation is the caller's to arrange via ctx before
// the write begins.
func (c *conn) call(ctx context.Context, p runParams) (runOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return runOutcome{}, err
	}

	id := uuid.NewString()
	payload, err := json.Marshal(envelope{JSONRPC: "2.0", ID: id, Method: runMethod, Params: p})
	if err != nil {
		return runOutcome{}, fmt.Errorf("%w: encoding request: %v", ErrProtocol, err)
	}
	if err := wire.WriteFrame(c.w, payload); err != nil {
		return runOutcome{}, fmt.Errorf("%w: writing request: %v", ErrProtocol, err)
	}

	raw, err := wire.ReadFrame(c.r)
	if err != nil {
		return runOutcome{}, fmt.Errorf("%w: reading response: %v", ErrProtocol, err)
	}
	var resp reply
	if err := json.Unmarshal(raw, &resp); err != nil {
		return runOutcome{}, fmt.Errorf("%w: decoding response: %v", ErrProtocol, err)
	}
	if resp.ID != id {
		return runOutcome{}, fmt.Errorf("%w: response id %q does not match request %q", ErrProtocol, resp.ID, id)
	}
	if resp.Error != nil {
		return runOutcome{}, fmt.Errorf("%w: %s", ErrProtocol, resp.Error.Message)
	}
	if resp.Result == nil {
		return runOutcome{}, fmt.Errorf("%w: missing result", ErrProtocol)
	}
	return *resp.Result, nil
}

// close releases the connection: closing the companion's input stream asks
// it to exit, and the process is reaped.
func (c *conn) close() error {
	err := c.closer.Close()
	if c.proc != nil {
		_ = c.proc.Wait()
	}
	return err
}

// dial starts the companion runner under the target interpreter and wires
// its stdio as the connection.
func dial(interpreter []string, runnerScript string) (*conn, error) {
	args := append(append([]string{}, interpreter[1:]...), runnerScript)
	cmd := exec.Command(interpreter[0], args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("rpcrun: opening companion stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("rpcrun: opening companion stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("rpcrun: starting companion: %w", err)
	}

	return &conn{w: stdin, r: bufio.NewReader(stdout), closer: stdin, proc: cmd}, nil
}
