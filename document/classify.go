package document

import "strings"

// ExtraArgs returns the formatter arguments implied by the document's file
// classification. Notebook cells take no extra arguments: each cell is
// formatted as if it were a standalone source file.
func (d Document) ExtraArgs() []string {
	if d.IsCell() {
		return nil
	}

	p := strings.ToLower(d.Path)
	switch {
	case strings.HasSuffix(p, ".py"):
		return nil
	case strings.HasSuffix(p, ".pyi"):
		return []string{"--pyi"}
	case strings.HasSuffix(p, ".ipynb"):
		return []string{"--ipynb"}
	}
	return nil
}

// StdinName returns the filename to report to the formatter when the source
// is passed over stdin. For a notebook cell backed by an .ipynb file the
// notebook suffix is replaced with .py so the cell is treated as plain source.
func (d Document) StdinName() string {
	if d.IsCell() && strings.HasSuffix(d.Path, ".ipynb") {
		return strings.TrimSuffix(d.Path, ".ipynb") + ".py"
	}
	return d.Path
}
