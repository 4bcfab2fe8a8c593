package settings

import (
	"errors"
	"path/filepath"
	"sync/atomic"

	"github.com/blackbridge/blackbridge/document"
)

// ErrNoSettings is returned when a request arrives before any workspace
// settings have been registered. This is fatal to the request.
var ErrNoSettings = errors.New("settings: no workspace settings registered")

// table is one immutable snapshot of the settings registry. Readers always
// observe a complete table; Replace installs a new snapshot atomically.
type table struct {
	byRoot map[string]WorkspaceSettings
	order  []string
}

// Registry is the process-wide table of per-workspace settings.
//
// Contract:
// - Concurrency: Resolve and All may run concurrently with Replace; readers
//   see either the fully-old or the fully-new table, never a mix.
// - Replace swaps the whole table; stale entries for removed workspaces drop.
type Registry struct {
	snap atomic.Pointer[table]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.snap.Store(&table{byRoot: map[string]WorkspaceSettings{}})
	return r
}

// Replace swaps the entire table. Entries are keyed by canonical workspace
// root; the last entry wins for a duplicated root, and first-seen order is
// kept for deterministic resolution of unattached documents.
func (r *Registry) Replace(list []WorkspaceSettings) {
	t := &table{byRoot: make(map[string]WorkspaceSettings, len(list))}
	for _, ws := range list {
		root := filepath.Clean(ws.Root)
		ws.Root = root
		if _, seen := t.byRoot[root]; !seen {
			t.order = append(t.order, root)
		}
		t.byRoot[root] = ws
	}
	r.snap.Store(t)
}

// Resolve returns the settings governing doc. With a single registered
// workspace, or a document with no filesystem path, the first entry is
// returned. Otherwise the document's path is walked upward through ancestor
// directories until one matches a registered workspace root; a document
// outside every workspace falls back to the first entry.
func (r *Registry) Resolve(doc document.Document) (WorkspaceSettings, error) {
	t := r.snap.Load()
	if len(t.order) == 0 {
		return WorkspaceSettings{}, ErrNoSettings
	}
	if len(t.order) == 1 || doc.Path == "" {
		return t.byRoot[t.order[0]], nil
	}

	dir := filepath.Clean(doc.Path)
	for {
		if ws, ok := t.byRoot[dir]; ok {
			return ws, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return t.byRoot[t.order[0]], nil
}

// All returns every registered settings entry in registration order.
func (r *Registry) All() []WorkspaceSettings {
	t := r.snap.Load()
	out := make([]WorkspaceSettings, 0, len(t.order))
	for _, root := range t.order {
		out = append(out, t.byRoot[root])
	}
	return out
}
