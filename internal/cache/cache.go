// Package cache provides caching for rendered snapshots and fetched color
// variants.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Config contains cache configuration.
type Config struct {
	SnapshotSizeMB int
	SnapshotTTL    time.Duration
	VariantEntries int
}

// Manager manages the snapshot and variant caches.
type Manager struct {
	snapshots *bigcache.BigCache
	variants  *lru.Cache[string, []uint8]
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	snapshotConfig := bigcache.Config{
		Shards:             64,
		LifeWindow:         cfg.SnapshotTTL,
		CleanWindow:        cfg.SnapshotTTL / 2,
		MaxEntriesInWindow: 1000,
		MaxEntrySize:       4 * 1024 * 1024, // 4MB per rendered PNG
		HardMaxCacheSize:   cfg.SnapshotSizeMB,
		Verbose:            false,
	}

	snapshots, err := bigcache.New(context.Background(), snapshotConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}

	variants, err := lru.New[string, []uint8](cfg.VariantEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create variant cache: %w", err)
	}

	return &Manager{
		snapshots: snapshots,
		variants:  variants,
	}, nil
}

// GetSnapshot retrieves an encoded snapshot from cache.
func (m *Manager) GetSnapshot(key string) ([]byte, bool) {
	data, err := m.snapshots.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetSnapshot stores an encoded snapshot in cache.
func (m *Manager) SetSnapshot(key string, data []byte) error {
	return m.snapshots.Set(key, data)
}

// GetVariant retrieves an attribute's color variant from cache.
func (m *Manager) GetVariant(name string) ([]uint8, bool) {
	return m.variants.Get(name)
}

// SetVariant stores an attribute's color variant in cache.
func (m *Manager) SetVariant(name string, colors []uint8) {
	m.variants.Add(name, colors)
}

// SnapshotKey generates a cache key for a rendered snapshot. The buffer
// version makes keys self-invalidating: stale entries simply age out.
func SnapshotKey(width, height int, version uint64) string {
	return fmt.Sprintf("snap:%dx%d:v%d", width, height, version)
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"snapshot_cache_len": m.snapshots.Len(),
		"snapshot_cache_cap": m.snapshots.Capacity(),
		"variant_cache_len":  m.variants.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.snapshots.Close()
}
