// Package manager keeps a bounded set of open graph stores, one per keyspace
// directory, closing the least recently used store when the bound is hit.
// Insert operations against one store must be serialized by the caller; the
// manager only serializes opening.
package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tesseradb/tessera/pkg/store"
)

// MemoryProfile defines the memory optimization strategy.
type MemoryProfile string

const (
	MemoryProfileDefault MemoryProfile = "default"
	MemoryProfileLow     MemoryProfile = "low"
	MaxOpenStores                      = 10
)

// StoreManager manages multiple GraphStore instances rooted under one base
// directory.
type StoreManager struct {
	baseDir  string
	stores   *lru.Cache[string, *store.GraphStore]
	mu       sync.Mutex
	profile  MemoryProfile
	readOnly bool
}

// NewStoreManager creates a new StoreManager.
func NewStoreManager(baseDir string, profile MemoryProfile, readOnly bool) *StoreManager {
	// Eviction closes the store so the badger lock is released.
	cache, _ := lru.NewWithEvict[string, *store.GraphStore](MaxOpenStores, func(key string, value *store.GraphStore) {
		_ = value.Close()
	})

	return &StoreManager{
		baseDir:  baseDir,
		stores:   cache,
		profile:  profile,
		readOnly: readOnly,
	}
}

// GetStore retrieves the store for a keyspace, opening it if necessary. The
// keyspace must already exist as a directory unless create is set.
func (sm *StoreManager) GetStore(keyspace string, create bool) (*store.GraphStore, error) {
	if s, ok := sm.stores.Get(keyspace); ok {
		return s, nil
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Double-check under lock.
	if s, ok := sm.stores.Get(keyspace); ok {
		return s, nil
	}

	dir := filepath.Join(sm.baseDir, keyspace)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if !create {
			return nil, fmt.Errorf("keyspace not found: %s", keyspace)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create keyspace %s: %w", keyspace, err)
		}
	}

	cfg := store.DefaultConfig(dir)
	cfg.ReadOnly = sm.readOnly
	if sm.profile == MemoryProfileLow {
		cfg.BlockCacheSize = 64 << 20
		cfg.IndexCacheSize = 64 << 20
		cfg.Profile = "Safe-Serving"
	}

	s, err := store.Open(dir, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store for keyspace %s: %w", keyspace, err)
	}

	sm.stores.Add(keyspace, s)
	return s, nil
}

// ListKeyspaces returns the keyspace directories under the base directory.
func (sm *StoreManager) ListKeyspaces() ([]string, error) {
	entries, err := os.ReadDir(sm.baseDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			out = append(out, entry.Name())
		}
	}
	return out, nil
}

// CloseAll closes all open stores.
func (sm *StoreManager) CloseAll() {
	sm.stores.Purge()
}
