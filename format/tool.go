// Package format drives the formatting pipeline: resolving workspace
// settings, invoking the formatter through the configured execution
// strategy, and converting its output into document edits.
package format

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToolModule is the Python module the bridge wraps.
const ToolModule = "black"

// MinVersion is the oldest formatter release the bridge supports.
const MinVersion = "22.3.0"

// DisplayName returns the human-facing name of the tool, for banners and
// user-visible messages.
func DisplayName() string {
	return cases.Title(language.English).String(ToolModule)
}
