// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup keeps the persisted set of files that already produced a
// note, so restarts and rescans do not send them to the AI backend again.
package dedup

import (
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Snapshot is the persisted form of the cache.
type Snapshot struct {
	ProcessedFiles []string  `json:"processed_files"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Store loads and saves the whole cache at once. Load on a store that has
// never been written returns an empty Snapshot and no error.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
	Close() error
}

// Key normalizes a path into the cache identity: absolute and cleaned.
func Key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Cache is the in-memory processed set backed by an optional Store. Entries
// are only ever added; every Add persists the full set. A nil store keeps
// the cache in memory only.
type Cache struct {
	mu          sync.Mutex
	store       Store
	ids         map[string]struct{}
	lastUpdated time.Time
}

// New returns an empty cache persisted through store.
func New(store Store) *Cache {
	return &Cache{store: store, ids: make(map[string]struct{})}
}

// Load replaces the in-memory set with the stored one. On error the cache
// is left empty and keeps working in memory.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ids = make(map[string]struct{})
	c.lastUpdated = time.Time{}
	if c.store == nil {
		return nil
	}
	snap, err := c.store.Load()
	if err != nil {
		return err
	}
	for _, id := range snap.ProcessedFiles {
		c.ids[id] = struct{}{}
	}
	c.lastUpdated = snap.LastUpdated
	return nil
}

// Contains reports whether path has already been processed.
func (c *Cache) Contains(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[Key(path)]
	return ok
}

// Add records path as processed and persists the set. The entry stays in
// memory even when persisting fails.
func (c *Cache) Add(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[Key(path)] = struct{}{}
	c.lastUpdated = time.Now()
	return c.saveLocked()
}

// Flush persists the current set.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Cache) saveLocked() error {
	if c.store == nil {
		return nil
	}
	return c.store.Save(c.snapshotLocked())
}

func (c *Cache) snapshotLocked() Snapshot {
	ids := make([]string, 0, len(c.ids))
	for id := range c.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return Snapshot{ProcessedFiles: ids, LastUpdated: c.lastUpdated}
}

// Snapshot returns a copy of the current set.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Len returns the number of processed entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

// LastUpdated returns the time of the most recent Add, or the stored value
// after Load.
func (c *Cache) LastUpdated() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdated
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
