package pysrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   ParseOutcome
	}{
		{"simple function", "def f():\n    pass\n", ParseValid},
		{"loose spacing", "def f( ):\n  pass", ParseValid},
		{"empty source", "", ParseValid},
		{"unclosed paren", "def f(:\n    pass\n", ParseSyntaxInvalid},
		{"not python", "function f() { return 1; }", ParseSyntaxInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateConcurrent(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 20; j++ {
				_, _ = Validate("import os\n\nprint(os.getcwd())\n")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	close(done)
}

func TestIsStdlibPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/usr/lib/python3.11/os.py", true},
		{"/usr/lib64/python3.12/pathlib.py", true},
		{`C:\Python311\Lib\os.py`, true},
		{"/usr/lib/python3.11/site-packages/black/__init__.py", false},
		{"/usr/lib/python3/dist-packages/requests/api.py", false},
		{"/home/user/project/main.py", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsStdlibPath(tt.path), tt.path)
	}
}
