package settings

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackbridge/blackbridge/document"
)

func ws(root string) WorkspaceSettings {
	return WorkspaceSettings{WorkspaceID: "file://" + root, Root: root, LogLevel: LevelInfo}
}

func TestResolveEmptyRegistry(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve(document.Document{Path: "/w/x.py"})
	assert.ErrorIs(t, err, ErrNoSettings)
}

func TestResolveSingleWorkspaceShortcut(t *testing.T) {
	r := NewRegistry()
	r.Replace([]WorkspaceSettings{ws("/w1")})

	// Every document resolves to the single workspace regardless of path.
	for _, path := range []string{"/w1/x.py", "/elsewhere/y.py", ""} {
		got, err := r.Resolve(document.Document{Path: path})
		require.NoError(t, err)
		assert.Equal(t, "/w1", got.Root)
	}
}

func TestResolveNearestAncestor(t *testing.T) {
	r := NewRegistry()
	r.Replace([]WorkspaceSettings{ws("/w1"), ws("/w1/sub")})

	got, err := r.Resolve(document.Document{Path: "/w1/sub/x.py"})
	require.NoError(t, err)
	assert.Equal(t, "/w1/sub", got.Root)

	got, err = r.Resolve(document.Document{Path: "/w1/y.py"})
	require.NoError(t, err)
	assert.Equal(t, "/w1", got.Root)
}

func TestResolveDeepDescendant(t *testing.T) {
	r := NewRegistry()
	r.Replace([]WorkspaceSettings{ws("/a"), ws("/a/b")})

	got, err := r.Resolve(document.Document{Path: "/a/b/c/file.py"})
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got.Root)
}

func TestResolveUnattachedDocumentIsDeterministic(t *testing.T) {
	r := NewRegistry()
	r.Replace([]WorkspaceSettings{ws("/a"), ws("/b")})

	got, err := r.Resolve(document.Document{Path: ""})
	require.NoError(t, err)
	assert.Equal(t, "/a", got.Root)

	// A document outside every workspace falls back the same way.
	got, err = r.Resolve(document.Document{Path: "/elsewhere/x.py"})
	require.NoError(t, err)
	assert.Equal(t, "/a", got.Root)
}

func TestReplaceDropsStaleEntries(t *testing.T) {
	r := NewRegistry()
	r.Replace([]WorkspaceSettings{ws("/old")})
	r.Replace([]WorkspaceSettings{ws("/new")})

	got, err := r.Resolve(document.Document{Path: "/old/x.py"})
	require.NoError(t, err)
	assert.Equal(t, "/new", got.Root)
	assert.Len(t, r.All(), 1)
}

func TestConcurrentReplaceAndResolve(t *testing.T) {
	r := NewRegistry()
	r.Replace([]WorkspaceSettings{ws("/w0"), ws("/w0/sub")})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				root := fmt.Sprintf("/w%d", n)
				r.Replace([]WorkspaceSettings{ws(root), ws(root + "/sub")})
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, err := r.Resolve(document.Document{Path: "/w0/sub/x.py"})
				require.NoError(t, err)
				// A snapshot is always complete: both entries come from
				// the same Replace call.
				assert.Len(t, r.All(), 2)
				assert.NotEmpty(t, got.Root)
			}
		}()
	}
	wg.Wait()
}

func TestFromInitializationOptions(t *testing.T) {
	raw := []byte(`{
		"settings": [
			{
				"workspace": "file:///w1",
				"path": [],
				"interpreter": ["/usr/bin/python3"],
				"args": ["--line-length", "100"],
				"logLevel": "debug"
			}
		]
	}`)

	got, err := FromInitializationOptions(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/w1", got[0].Root)
	assert.Equal(t, []string{"/usr/bin/python3"}, got[0].Interpreter)
	assert.Equal(t, []string{"--line-length", "100"}, got[0].Args)
	assert.Equal(t, LevelDebug, got[0].LogLevel)
}

func TestFromInitializationOptionsRejectsGarbage(t *testing.T) {
	_, err := FromInitializationOptions([]byte(`"not an object"`))
	assert.Error(t, err)
}
