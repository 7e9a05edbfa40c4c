package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ActivityLogFormat is the pretty format the log parser understands: a
// bracketed short hash and day on the first line, author on the second.
const ActivityLogFormat = "[%h] %cd%n%an <%ae>"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	if err != nil {
		return nil, gitError(ctx, repoPath, err, nil)
	}
	return out, nil
}

// WriteActivityLog implements the GitClient interface.
func (c *LocalGitClient) WriteActivityLog(ctx context.Context, repoPath string, w io.Writer, startTime, endTime time.Time) error {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", repoPath}, ActivityLogArgs(startTime, endTime)...)...)
	var stderr bytes.Buffer
	cmd.Stdout = w
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return gitError(ctx, repoPath, err, stderr.Bytes())
	}
	return nil
}

// ActivityLogArgs builds the git log arguments for an activity log. The end
// bound is moved one day forward because --before is exclusive of its day.
func ActivityLogArgs(startTime, endTime time.Time) []string {
	args := []string{
		"log",
		"--pretty=format:" + ActivityLogFormat,
		"--date=short",
		"--numstat",
		"-M",
		"--reverse",
	}
	if !startTime.IsZero() {
		args = append(args, "--after="+startTime.Format(DateFormat))
	}
	if !endTime.IsZero() {
		args = append(args, "--before="+endTime.AddDate(0, 0, 1).Format(DateFormat))
	}
	return args
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListTrackedFiles implements the GitClient interface.
func (c *LocalGitClient) ListTrackedFiles(ctx context.Context, repoPath string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "ls-files")
	if err != nil {
		return nil, err
	}
	files := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(files) == 1 && files[0] == "" {
		return []string{}, nil
	}
	return files, nil
}

// gitError turns an exec failure into a message the user can act on.
func gitError(ctx context.Context, repoPath string, err error, stderr []byte) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("git command in %q did not finish: %w", repoPath, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if len(stderr) == 0 {
			stderr = exitErr.Stderr
		}
		return fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, strings.TrimSpace(string(stderr)))
	}
	return fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
}
