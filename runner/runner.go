// Package runner defines the common contract for the three tool-execution
// strategies and the dispatcher that selects exactly one per request.
package runner

import (
	"context"
	"errors"
	"fmt"
)

// Errors for invocation validation.
var (
	// ErrInvalidInvocation is returned when an invocation is structurally
	// incomplete (no argument vector).
	ErrInvalidInvocation = errors.New("runner: invalid invocation")
)

// Kind identifies an execution strategy.
type Kind string

// The three interchangeable execution strategies.
const (
	// KindModule runs the tool under the bridge's own host interpreter.
	KindModule Kind = "module"

	// KindPath spawns the explicitly configured executable.
	KindPath Kind = "path"

	// KindRPC forwards the invocation to a companion process under a
	// different interpreter.
	KindRPC Kind = "rpc"
)

// Result captures the outcome of one tool invocation.
// There is no exit-code field: success or failure is inferred from whether
// the error text is non-empty.
type Result struct {
	// Stdout is the tool's standard-output text.
	Stdout string

	// Stderr is the tool's error text. Empty means success.
	Stderr string
}

// Failed reports whether the tool reported a failure.
func (r Result) Failed() bool {
	return r.Stderr != ""
}

// Invocation is one fully assembled tool call.
type Invocation struct {
	// Argv is the complete argument vector, head included. For module and
	// RPC strategies the head is the tool module name; for the path
	// strategy it is the executable invocation.
	Argv []string

	// Cwd is the working directory for the call, the workspace root.
	Cwd string

	// UseStdin indicates that Source is written to the tool's input stream.
	UseStdin bool

	// Source is the document text passed over stdin.
	Source string

	// Workspace is the workspace identifier, carried in RPC envelopes.
	Workspace string

	// Interpreter is the target runtime for cross-runtime calls.
	Interpreter []string
}

// Validate checks that the invocation is complete enough to run.
func (inv Invocation) Validate() error {
	if len(inv.Argv) == 0 {
		return fmt.Errorf("%w: empty argument vector", ErrInvalidInvocation)
	}
	return nil
}

// Runner executes one tool invocation.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: tool-reported failures fold into Result.Stderr and return a nil
//   error; a non-nil error means the invocation machinery itself faulted.
// - Ownership: the invocation is read-only; the Result is caller-owned.
type Runner interface {
	// Kind returns the strategy identifier.
	Kind() Kind

	// Run executes the invocation and captures its output.
	Run(ctx context.Context, inv Invocation) (Result, error)
}
