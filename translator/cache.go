package translator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ============================================================================
// CACHES
// ============================================================================

// MemoryCache keeps translations in memory.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get returns the cached translation for key.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores a translation.
func (c *MemoryCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// FileCache is a MemoryCache persisted as a JSON object. Every Set rewrites
// the file, so a crash loses at most the entry being written.
type FileCache struct {
	path string
	mem  *MemoryCache
	wmu  sync.Mutex
}

// OpenFileCache loads the cache at path. A missing file is an empty cache.
func OpenFileCache(path string) (*FileCache, error) {
	c := &FileCache{path: path, mem: NewMemoryCache()}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading translation cache: %w", err)
	}
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c.mem.entries); err != nil {
		return nil, fmt.Errorf("parsing translation cache: %w", err)
	}
	if c.mem.entries == nil {
		c.mem.entries = make(map[string]string)
	}
	return c, nil
}

// Path returns the file backing the cache.
func (c *FileCache) Path() string { return c.path }

// Get returns the cached translation for key.
func (c *FileCache) Get(key string) (string, bool) {
	return c.mem.Get(key)
}

// Set stores a translation and writes the cache file.
func (c *FileCache) Set(key, value string) error {
	if err := c.mem.Set(key, value); err != nil {
		return err
	}
	return c.flush()
}

func (c *FileCache) flush() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	c.mem.mu.RLock()
	data, err := json.MarshalIndent(c.mem.entries, "", "  ")
	c.mem.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling translation cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing translation cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing translation cache: %w", err)
	}
	return nil
}
