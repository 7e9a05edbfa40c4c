//go:build integration || database

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/hotspotter/schema"
	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a shared hotspotter binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the hotspotter binary, building it once if needed.
func getBinary() string {
	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "hotspotter-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "hotspotter")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/hotspotter")
		buildCmd.Dir = ".." // Build from project root
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build hotspotter: %v\n%s", err, out))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runHotspotter runs the binary in dir with env added to the process
// environment and returns stdout.
func runHotspotter(t *testing.T, dir string, env []string, args ...string) []byte {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	require.NoError(t, err, "Command failed: %s\nStderr: %s", cmd.String(), stderr.String())
	return stdout.Bytes()
}

// analyzeJSON runs analyze on repoDir and decodes the run summary.
func analyzeJSON(t *testing.T, repoDir string, env []string, args ...string) schema.AnalysisInfo {
	t.Helper()
	out := runHotspotter(t, repoDir, env, append([]string{"analyze", "--output", "json"}, args...)...)
	var info schema.AnalysisInfo
	require.NoError(t, json.Unmarshal(out, &info), "summary: %s", out)
	return info
}
