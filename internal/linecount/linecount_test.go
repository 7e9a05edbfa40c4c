package linecount

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		syntax  commentSyntax
		code    int
		comment int
		blank   int
	}{
		{"empty", "", cStyle, 0, 0, 0},
		{"go", "package a\n\n// doc\nfunc A() {} // trailing\n", cStyle, 2, 1, 1},
		{"block", "/* one\n two\n*/\nx := 1\n", cStyle, 1, 3, 0},
		{"single line block", "/* c */\ny\n", cStyle, 1, 1, 0},
		{"python docstring", "\"\"\"\nModule.\n\"\"\"\nimport os\n# note\n", syntaxByLanguage["Python"], 1, 4, 0},
		{"one line docstring", "\"\"\"Doc.\"\"\"\nx = 1\n", syntaxByLanguage["Python"], 1, 1, 0},
		{"unknown language", "# not a comment\n\nplain\n", commentSyntax{}, 2, 0, 1},
		{"no trailing newline", "a\nb", cStyle, 2, 0, 0},
		{"whitespace only", "  \n\t\n", cStyle, 0, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, comment, blank := classify([]byte(tt.src), tt.syntax)
			assert.Equal(t, tt.code, code, "code")
			assert.Equal(t, tt.comment, comment, "comment")
			assert.Equal(t, tt.blank, blank, "blank")
		})
	}
}

func TestCount(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\n// entry\nfunc main() {}\n")
	writeFile(t, root, "scripts/run.py", "# run\nprint('hi')\n")
	writeFile(t, root, "vendor/lib/lib.go", "package lib\n")
	writeFile(t, root, "blob.bin", "\x00\x01\x02\x03")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "adir"), 0o755))

	paths := []string{"main.go", "scripts/run.py", "vendor/lib/lib.go", "blob.bin", "gone.txt", "adir"}
	got, err := New(2).Count(context.Background(), root, paths)
	require.NoError(t, err)

	require.Contains(t, got, "main.go")
	main := got["main.go"]
	assert.Equal(t, "Go", main.Language)
	assert.Equal(t, 2, main.Code)
	assert.Equal(t, 1, main.Comment)
	assert.Equal(t, 1, main.Blank)
	assert.Equal(t, 4, main.Total)
	assert.Equal(t, int64(len("package main\n\n// entry\nfunc main() {}\n")), main.Bytes)

	assert.Equal(t, "Python", got["scripts/run.py"].Language)
	assert.Equal(t, 1, got["scripts/run.py"].Comment)

	assert.NotContains(t, got, "vendor/lib/lib.go", "vendored files are skipped")
	assert.NotContains(t, got, "gone.txt")
	assert.NotContains(t, got, "adir")

	require.Contains(t, got, "blob.bin")
	assert.Zero(t, got["blob.bin"].Total)
	assert.Equal(t, int64(4), got["blob.bin"].Bytes)
}

func TestCountCanceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(1).Count(ctx, root, []string{"a.go"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClampsWorkers(t *testing.T) {
	assert.Equal(t, 1, New(0).workers)
	assert.Equal(t, 4, New(4).workers)
}
