package document

import "strings"

// LineEnding returns the line terminator convention used by text, detected
// from the first line. Empty means the convention is unknown (no terminator).
func LineEnding(text string) string {
	i := strings.IndexByte(text, '\n')
	if i < 0 {
		return ""
	}
	if i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// MatchLineEndings rewrites text to use the same line-ending convention as
// the document source. When either convention is unknown, or they already
// agree, text is returned unchanged; the operation is idempotent.
func MatchLineEndings(source, text string) string {
	expected := LineEnding(source)
	actual := LineEnding(text)
	if actual == expected || actual == "" || expected == "" {
		return text
	}
	if actual == "\r\n" {
		return strings.ReplaceAll(text, "\r\n", expected)
	}
	// Going LF -> CRLF: leave any CR already in place untouched by first
	// normalizing CRLF pairs down to LF.
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\n", expected)
}

// TrimCellNewline strips exactly one trailing line terminator. Notebook cells
// must not carry a final newline.
func TrimCellNewline(text string) string {
	if strings.HasSuffix(text, "\r\n") {
		return strings.TrimSuffix(text, "\r\n")
	}
	return strings.TrimSuffix(text, "\n")
}
