// Package document models the in-memory text documents the bridge formats:
// regular files on disk and virtual notebook cells.
package document

import (
	"strings"
)

// CellScheme is the URI scheme prefix editors use for notebook cell documents.
const CellScheme = "vscode-notebook-cell"

// Document is one file or virtual cell being formatted.
//
// Contract:
// - Ownership: values are copied by the caller; Document carries no shared state.
// - Path may be empty for virtual documents that have no filesystem location.
type Document struct {
	// URI identifies the document to the editor. A vscode-notebook-cell
	// scheme marks a virtual notebook cell.
	URI string

	// Path is the filesystem path, empty when the document is unattached.
	Path string

	// Source is the full document text.
	Source string
}

// IsCell reports whether the document is a virtual notebook cell.
func (d Document) IsCell() bool {
	return strings.HasPrefix(d.URI, CellScheme)
}

// Lines returns the document's lines with their terminators kept, matching
// how editors count lines for whole-document ranges. A trailing terminator
// does not produce an empty final line.
func (d Document) Lines() []string {
	if d.Source == "" {
		return nil
	}
	parts := strings.SplitAfter(d.Source, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
