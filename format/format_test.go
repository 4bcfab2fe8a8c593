package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackbridge/blackbridge/document"
	"github.com/blackbridge/blackbridge/runner"
	"github.com/blackbridge/blackbridge/settings"
)

type fakeRunner struct {
	kind  runner.Kind
	res   runner.Result
	err   error
	calls int
	got   runner.Invocation
}

func (f *fakeRunner) Kind() runner.Kind { return f.kind }

func (f *fakeRunner) Run(ctx context.Context, inv runner.Invocation) (runner.Result, error) {
	f.calls++
	f.got = inv
	return f.res, f.err
}

func newFormatter(t *testing.T, ws []settings.WorkspaceSettings, mod *fakeRunner) *Formatter {
	t.Helper()
	reg := settings.NewRegistry()
	reg.Replace(ws)
	d, err := runner.NewDispatcher(runner.DispatcherConfig{
		Module:          ToolModule,
		HostInterpreter: "/usr/bin/python3",
		ModuleRunner:    mod,
		PathRunner:      &fakeRunner{kind: runner.KindPath},
		RPCRunner:       &fakeRunner{kind: runner.KindRPC},
	})
	require.NoError(t, err)
	f, err := New(Config{Registry: reg, Dispatcher: d})
	require.NoError(t, err)
	return f
}

func oneWorkspace() []settings.WorkspaceSettings {
	return []settings.WorkspaceSettings{{WorkspaceID: "proj", Root: "/proj"}}
}

func pyDoc(path, source string) document.Document {
	return document.Document{URI: "file://" + path, Path: path, Source: source}
}

func TestFormatProducesWholeDocumentEdit(t *testing.T) {
	mod := &fakeRunner{kind: runner.KindModule, res: runner.Result{Stdout: "x = 1\ny = 2\n"}}
	f := newFormatter(t, oneWorkspace(), mod)

	edits, err := f.Format(context.Background(), pyDoc("/proj/app.py", "x=1\ny=2\n"))
	require.NoError(t, err)
	require.Len(t, edits, 1)

	edit := edits[0]
	assert.Equal(t, "x = 1\ny = 2\n", edit.NewText)
	assert.Equal(t, uint32(0), edit.Range.Start.Line)
	assert.Equal(t, uint32(2), edit.Range.End.Line)
	assert.Equal(t, uint32(0), edit.Range.End.Character)

	require.Equal(t, 1, mod.calls)
	assert.True(t, mod.got.UseStdin)
	assert.Equal(t, "x=1\ny=2\n", mod.got.Source)
	assert.Equal(t, "-", mod.got.Argv[len(mod.got.Argv)-1])
	assert.Contains(t, mod.got.Argv, "--stdin-filename")
	assert.Contains(t, mod.got.Argv, "/proj/app.py")
}

func TestFormatAlreadyFormattedReturnsNil(t *testing.T) {
	source := "x = 1\n"
	mod := &fakeRunner{kind: runner.KindModule, res: runner.Result{Stdout: source}}
	f := newFormatter(t, oneWorkspace(), mod)

	edits, err := f.Format(context.Background(), pyDoc("/proj/app.py", source))
	require.NoError(t, err)
	assert.Nil(t, edits)
	assert.Equal(t, 1, mod.calls)
}

func TestFormatPreservesSourceLineEndings(t *testing.T) {
	mod := &fakeRunner{kind: runner.KindModule, res: runner.Result{Stdout: "x = 1\n"}}
	f := newFormatter(t, oneWorkspace(), mod)

	edits, err := f.Format(context.Background(), pyDoc("/proj/app.py", "x=1\r\n"))
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "x = 1\r\n", edits[0].NewText)
}

func TestFormatNotebookCell(t *testing.T) {
	mod := &fakeRunner{kind: runner.KindModule, res: runner.Result{Stdout: "x = 1\n"}}
	f := newFormatter(t, oneWorkspace(), mod)

	doc := document.Document{
		URI:    "vscode-notebook-cell:/proj/nb.ipynb#X10",
		Path:   "/proj/nb.ipynb",
		Source: "x=1",
	}
	edits, err := f.Format(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "x = 1", edits[0].NewText)
	assert.Contains(t, mod.got.Argv, "/proj/nb.py")
	assert.NotContains(t, mod.got.Argv, "--ipynb")
}

func TestFormatSkipsStandardLibraryFile(t *testing.T) {
	mod := &fakeRunner{kind: runner.KindModule, res: runner.Result{Stdout: "never\n"}}
	f := newFormatter(t, oneWorkspace(), mod)

	edits, err := f.Format(context.Background(), pyDoc("/usr/lib/python3.11/os.py", "x=1\n"))
	require.NoError(t, err)
	assert.Nil(t, edits)
	assert.Zero(t, mod.calls)
}

func TestFormatSkipsInvalidSyntax(t *testing.T) {
	mod := &fakeRunner{kind: runner.KindModule, res: runner.Result{Stdout: "never\n"}}
	f := newFormatter(t, oneWorkspace(), mod)

	edits, err := f.Format(context.Background(), pyDoc("/proj/app.py", "def f(:\n"))
	require.NoError(t, err)
	assert.Nil(t, edits)
	assert.Zero(t, mod.calls)
}

func TestFormatSkipsEmptyDocument(t *testing.T) {
	mod := &fakeRunner{kind: runner.KindModule}
	f := newFormatter(t, oneWorkspace(), mod)

	edits, err := f.Format(context.Background(), pyDoc("/proj/app.py", ""))
	require.NoError(t, err)
	assert.Nil(t, edits)
	assert.Zero(t, mod.calls)
}

func TestFormatEmptyOutputReturnsNil(t *testing.T) {
	mod := &fakeRunner{kind: runner.KindModule, res: runner.Result{Stderr: "error: cannot format"}}
	f := newFormatter(t, oneWorkspace(), mod)

	edits, err := f.Format(context.Background(), pyDoc("/proj/app.py", "x=1\n"))
	require.NoError(t, err)
	assert.Nil(t, edits)
}

func TestFormatNoSettingsRegistered(t *testing.T) {
	mod := &fakeRunner{kind: runner.KindModule}
	f := newFormatter(t, nil, mod)

	_, err := f.Format(context.Background(), pyDoc("/proj/app.py", "x=1\n"))
	assert.ErrorIs(t, err, settings.ErrNoSettings)
}

func TestFormatPyiPassesFlag(t *testing.T) {
	mod := &fakeRunner{kind: runner.KindModule, res: runner.Result{Stdout: "x = 1\n"}}
	f := newFormatter(t, oneWorkspace(), mod)

	_, err := f.Format(context.Background(), pyDoc("/proj/stubs.pyi", "x=1\n"))
	require.NoError(t, err)
	assert.Contains(t, mod.got.Argv, "--pyi")
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrFormatterConfig)
}
