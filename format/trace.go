package format

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/blackbridge/blackbridge/document"
)

// traceDiff logs a unified diff of the pending change at debug level.
func (f *Formatter) traceDiff(doc document.Document, formatted string) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(doc.Source),
		B:        difflib.SplitLines(formatted),
		FromFile: doc.Path,
		ToFile:   doc.Path + " (formatted)",
		Context:  3,
	})
	if err != nil {
		f.logger.Debug("diff rendering failed", "path", doc.Path, "error", err)
		return
	}
	f.logger.Debug("pending edits", "path", doc.Path, "diff", text)
}
