package analyzer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/huangsam/hotspotter/schema"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// commit builds a commit with a derived email.
func commit(hash, author string, date time.Time, changes ...schema.FileChange) *schema.Commit {
	return &schema.Commit{Hash: hash, Date: date, AuthorName: author, AuthorEmail: author + "@example.com", Changes: changes}
}

func change(path string, added, deleted int) schema.FileChange {
	return schema.FileChange{Path: path, LinesAdded: added, LinesDeleted: deleted}
}

func renamed(oldPath, newPath string, added, deleted int) schema.FileChange {
	return schema.FileChange{Path: newPath, OldPath: oldPath, NewPath: newPath, LinesAdded: added, LinesDeleted: deleted}
}

// memStore is an in-memory RowStore keyed by run id plus a natural key.
type memStore[T any] struct {
	mu    sync.Mutex
	key   func(T) (string, string)
	rows  map[[2]string]T
	order [][2]string
	saves int
}

func newMemStore[T any](key func(T) (string, string)) *memStore[T] {
	return &memStore[T]{key: key, rows: make(map[[2]string]T)}
}

func (m *memStore[T]) SaveAll(_ context.Context, rows []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	for _, r := range rows {
		run, natural := m.key(r)
		k := [2]string{run, natural}
		if _, ok := m.rows[k]; !ok {
			m.order = append(m.order, k)
		}
		m.rows[k] = r
	}
	return nil
}

func (m *memStore[T]) FindAllByRunID(_ context.Context, runID string) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []T
	for _, k := range m.order {
		if k[0] == runID {
			out = append(out, m.rows[k])
		}
	}
	return out, nil
}

func newKnowledgeStore() *memStore[schema.FileKnowledge] {
	return newMemStore(func(r schema.FileKnowledge) (string, string) { return r.RunID, r.FilePath })
}

func newOwnershipStore() *memStore[schema.FileOwnership] {
	return newMemStore(func(r schema.FileOwnership) (string, string) { return r.RunID, r.FilePath })
}

func newAuthorStore() *memStore[schema.AuthorStatistics] {
	return newMemStore(func(r schema.AuthorStatistics) (string, string) { return r.RunID, r.Name })
}

func newTrendStore() *memStore[schema.DailyStats] {
	return newMemStore(func(r schema.DailyStats) (string, string) { return r.RunID, r.Day.Format(time.DateOnly) })
}

func newFileInfoStore() *memStore[schema.FileInfo] {
	return newMemStore(func(r schema.FileInfo) (string, string) { return r.RunID, r.FilePath })
}

// mockStore is a testify RowStore double for batching behavior.
type mockStore[T any] struct {
	mock.Mock
}

func (m *mockStore[T]) SaveAll(ctx context.Context, rows []T) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *mockStore[T]) FindAllByRunID(ctx context.Context, runID string) ([]T, error) {
	ret := m.Called(ctx, runID)
	rows, _ := ret.Get(0).([]T)
	return rows, ret.Error(1)
}

// fakeLister returns a fixed set of paths, or an error.
type fakeLister struct {
	files []string
	err   error
}

func (f fakeLister) ListFiles(context.Context, string) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	set := make(map[string]struct{}, len(f.files))
	for _, p := range f.files {
		set[p] = struct{}{}
	}
	return set, nil
}

// fakeCounter returns fixed line metadata, or an error.
type fakeCounter struct {
	lines map[string]schema.FileLines
	err   error
}

func (f fakeCounter) Count(context.Context, string, []string) (map[string]schema.FileLines, error) {
	return f.lines, f.err
}

var errListing = errors.New("index unreadable")

func params(runID string) RunParams {
	return RunParams{RunID: runID, RepoPath: "/repo", ReferenceDate: fixedNow}
}
