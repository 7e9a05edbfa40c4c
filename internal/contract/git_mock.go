package contract

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- MockGitClient Implementation ---

// MockGitClient is a testify mock for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// WriteActivityLog implements the GitClient interface. The first return
// value, when a string, is written to w before the error is returned.
func (m *MockGitClient) WriteActivityLog(ctx context.Context, repoPath string, w io.Writer, startTime, endTime time.Time) error {
	ret := m.Called(ctx, repoPath, startTime, endTime)
	if log, ok := ret.Get(0).(string); ok {
		if _, err := io.WriteString(w, log); err != nil {
			return err
		}
	}
	return ret.Error(1)
}

// ListTrackedFiles implements the GitClient interface.
func (m *MockGitClient) ListTrackedFiles(ctx context.Context, repoPath string) ([]string, error) {
	ret := m.Called(ctx, repoPath)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}
