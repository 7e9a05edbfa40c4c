//go:build integration || database

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixtureCommit is one commit of the generated repository. Files are
// written with the given content before committing.
type fixtureCommit struct {
	author string
	email  string
	date   string
	files  map[string]string
}

// fixtureCommits gives main.go three commits and README.md two. Bob stops
// committing in early 2023.
var fixtureCommits = []fixtureCommit{
	{"Bob", "bob@example.com", "2023-01-10T12:00:00Z", map[string]string{
		"main.go": "package main\n\nfunc main() {\n}\n",
	}},
	{"Alice", "alice@example.com", "2024-05-01T12:00:00Z", map[string]string{
		"main.go":   "package main\n\n// main runs.\nfunc main() {\n\tprintln(1)\n}\n",
		"README.md": "# fixture\n\nA generated repository.\n",
	}},
	{"Alice", "alice@example.com", "2024-05-20T12:00:00Z", map[string]string{
		"main.go":   "package main\n\n// main runs.\nfunc main() {\n\tprintln(2)\n}\n",
		"README.md": "# fixture\n\nA generated repository.\n\nMore text.\n",
	}},
}

// newFixtureRepo creates a git repository with fixtureCommits in a temp dir.
func newFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	git(t, dir, nil, "init", "--quiet")
	for _, c := range fixtureCommits {
		for name, content := range c.files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
		}
		git(t, dir, nil, "add", "--all")
		env := []string{
			"GIT_AUTHOR_NAME=" + c.author,
			"GIT_AUTHOR_EMAIL=" + c.email,
			"GIT_AUTHOR_DATE=" + c.date,
			"GIT_COMMITTER_NAME=" + c.author,
			"GIT_COMMITTER_EMAIL=" + c.email,
			"GIT_COMMITTER_DATE=" + c.date,
		}
		git(t, dir, env, "commit", "--quiet", "-m", "change by "+strings.ToLower(c.author))
	}
	return dir
}

func git(t *testing.T, dir string, env []string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
}
