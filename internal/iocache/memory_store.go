package iocache

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// MemoryStore keeps results for the lifetime of the process. It backs the
// none backend, so a run still completes and can be queried until exit.
type MemoryStore struct {
	runs      *memoryRunStore
	knowledge *memoryRowStore[schema.FileKnowledge]
	ownership *memoryRowStore[schema.FileOwnership]
	authors   *memoryRowStore[schema.AuthorStatistics]
	trends    *memoryRowStore[schema.DailyStats]
	files     *memoryRowStore[schema.FileInfo]
}

var _ contract.ResultStores = &MemoryStore{} // Compile-time check

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: &memoryRunStore{rows: make(map[string]schema.AnalysisInfo)},
		knowledge: newMemoryRowStore(func(r schema.FileKnowledge) (string, string) {
			return r.RunID, r.FilePath
		}),
		ownership: newMemoryRowStore(func(r schema.FileOwnership) (string, string) {
			return r.RunID, r.FilePath
		}),
		authors: newMemoryRowStore(func(r schema.AuthorStatistics) (string, string) {
			return r.RunID, r.Name
		}),
		trends: newMemoryRowStore(func(r schema.DailyStats) (string, string) {
			return r.RunID, r.Day.Format(contract.DateFormat)
		}),
		files: newMemoryRowStore(func(r schema.FileInfo) (string, string) {
			return r.RunID, r.FilePath
		}),
	}
}

// Runs implements contract.ResultStores.
func (m *MemoryStore) Runs() contract.RunStore { return m.runs }

// Knowledge implements contract.ResultStores.
func (m *MemoryStore) Knowledge() contract.RowStore[schema.FileKnowledge] { return m.knowledge }

// Ownership implements contract.ResultStores.
func (m *MemoryStore) Ownership() contract.RowStore[schema.FileOwnership] { return m.ownership }

// Authors implements contract.ResultStores.
func (m *MemoryStore) Authors() contract.RowStore[schema.AuthorStatistics] { return m.authors }

// Trends implements contract.ResultStores.
func (m *MemoryStore) Trends() contract.RowStore[schema.DailyStats] { return m.trends }

// Files implements contract.ResultStores.
func (m *MemoryStore) Files() contract.RowStore[schema.FileInfo] { return m.files }

// GetStatus implements contract.ResultStores.
func (m *MemoryStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(schema.NoneBackend),
		Connected: true,
		TableSizes: map[string]int64{
			analysesTable:  m.runs.size(),
			knowledgeTable: m.knowledge.size(),
			ownershipTable: m.ownership.size(),
			authorsTable:   m.authors.size(),
			trendsTable:    m.trends.size(),
			fileInfoTable:  m.files.size(),
		},
	}
	runs, _ := m.runs.ListRuns(ctx)
	status.TotalRuns = len(runs)
	if len(runs) > 0 {
		status.LastRunID = runs[0].ID
		status.LastRunTime = runs[0].AnalyzedAt
		status.OldestRunTime = runs[len(runs)-1].AnalyzedAt
	}
	return status, nil
}

// Close implements contract.ResultStores.
func (m *MemoryStore) Close() error { return nil }

// memoryRowStore keeps rows in insertion order, replacing on key.
type memoryRowStore[T any] struct {
	mu    sync.RWMutex
	key   func(T) (string, string)
	index map[[2]string]int
	rows  []T
}

func newMemoryRowStore[T any](key func(T) (string, string)) *memoryRowStore[T] {
	return &memoryRowStore[T]{key: key, index: make(map[[2]string]int)}
}

func (s *memoryRowStore[T]) SaveAll(_ context.Context, rows []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		run, natural := s.key(row)
		k := [2]string{run, natural}
		if i, ok := s.index[k]; ok {
			s.rows[i] = row
			continue
		}
		s.index[k] = len(s.rows)
		s.rows = append(s.rows, row)
	}
	return nil
}

func (s *memoryRowStore[T]) FindAllByRunID(_ context.Context, runID string) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, row := range s.rows {
		if run, _ := s.key(row); run == runID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *memoryRowStore[T]) size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows))
}

type memoryRunStore struct {
	mu   sync.RWMutex
	rows map[string]schema.AnalysisInfo
}

func (s *memoryRunStore) SaveRun(_ context.Context, info schema.AnalysisInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[info.ID] = info
	return nil
}

func (s *memoryRunStore) GetRun(_ context.Context, id string) (schema.AnalysisInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.rows[id]
	if !ok {
		return schema.AnalysisInfo{}, fmt.Errorf("%w: %s", contract.ErrRunNotFound, id)
	}
	return info, nil
}

func (s *memoryRunStore) ListRuns(_ context.Context) ([]schema.AnalysisInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schema.AnalysisInfo, 0, len(s.rows))
	for _, info := range s.rows {
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b schema.AnalysisInfo) int {
		if c := b.AnalyzedAt.Compare(a.AnalyzedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *memoryRunStore) size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows))
}
