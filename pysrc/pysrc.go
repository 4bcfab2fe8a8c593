// Package pysrc provides the pre-flight checks the formatting pipeline runs
// before invoking the external tool: a Python syntax pre-validation (so the
// tool is never asked to format unparsable input, which would surface a
// misleading tool-level error) and standard-library path detection.
package pysrc

import (
	"errors"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// ErrParser is returned when the parser itself cannot be constructed.
var ErrParser = errors.New("pysrc: parser setup failed")

// ParseOutcome classifies a syntax pre-validation result.
type ParseOutcome int

const (
	// ParseValid means the source parsed without errors.
	ParseValid ParseOutcome = iota

	// ParseSyntaxInvalid means the source contains syntax errors and the
	// formatting request should be skipped.
	ParseSyntaxInvalid
)

// String returns a readable name for logging.
func (o ParseOutcome) String() string {
	if o == ParseValid {
		return "valid"
	}
	return "syntax-invalid"
}

var pythonLanguage = tree_sitter.NewLanguage(tree_sitter_python.Language())

// Validate parses source as Python and reports whether it is syntactically
// valid. Parsers are not safe for concurrent use, so one is created per call.
func Validate(source string) (ParseOutcome, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(pythonLanguage); err != nil {
		return ParseSyntaxInvalid, errors.Join(ErrParser, err)
	}

	tree := parser.Parse([]byte(source), nil)
	if tree == nil {
		return ParseSyntaxInvalid, ErrParser
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		return ParseSyntaxInvalid, nil
	}
	return ParseValid, nil
}

// posixStdlib matches /lib/python3.11/... style runtime layouts, and
// windowsStdlib matches Python311/Lib/... style layouts.
var (
	posixStdlib   = regexp.MustCompile(`(^|/)lib(64)?/python\d+(\.\d+)?(/|$)`)
	windowsStdlib = regexp.MustCompile(`(^|/)python\d+(\.\d+)?/lib(/|$)`)
)

// IsStdlibPath reports whether path points inside a Python runtime's own
// standard library. Third-party packages under site-packages or
// dist-packages are never considered standard library.
func IsStdlibPath(path string) bool {
	if path == "" {
		return false
	}
	p := strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
	if strings.Contains(p, "/site-packages/") || strings.Contains(p, "/dist-packages/") {
		return false
	}
	return posixStdlib.MatchString(p) || windowsStdlib.MatchString(p)
}
