// Package iocache persists analysis results.
package iocache

import (
	"sync"

	"github.com/huangsam/hotspotter/internal/contract"
)

// StoreManager holds the result stores of the configured backend.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	results      contract.ResultStores
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetResultStores returns the active ResultStores.
func (mgr *StoreManager) GetResultStores() contract.ResultStores {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}

// NewStoreManager wraps already opened stores.
func NewStoreManager(results contract.ResultStores) *StoreManager {
	return &StoreManager{results: results}
}
