package iocache

import (
	"context"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetResultStores implements the StoreManager interface.
func (m *MockStoreManager) GetResultStores() contract.ResultStores {
	ret := m.Called()
	stores, _ := ret.Get(0).(contract.ResultStores)
	return stores
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// SaveRun implements the RunStore interface.
func (m *MockRunStore) SaveRun(ctx context.Context, info schema.AnalysisInfo) error {
	args := m.Called(ctx, info)
	return args.Error(0)
}

// GetRun implements the RunStore interface.
func (m *MockRunStore) GetRun(ctx context.Context, id string) (schema.AnalysisInfo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(schema.AnalysisInfo), args.Error(1)
}

// ListRuns implements the RunStore interface.
func (m *MockRunStore) ListRuns(ctx context.Context) ([]schema.AnalysisInfo, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]schema.AnalysisInfo)
	return runs, args.Error(1)
}
