package document

import (
	"net/url"
)

// PathFromURI converts a file or notebook-cell URI into a filesystem path.
// Returns an empty string for URIs that carry no usable path.
func PathFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	p := u.Path
	if p == "" {
		return ""
	}
	// Windows URIs carry a leading slash before the drive letter.
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return p
}

// FromItem builds a Document from the fields editors send for a text
// document: its URI and full source text.
func FromItem(uri, source string) Document {
	return Document{
		URI:    uri,
		Path:   PathFromURI(uri),
		Source: source,
	}
}
