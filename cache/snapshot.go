package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/johnnyasantoss/mediadc-massdedupe/config"
	"github.com/johnnyasantoss/mediadc-massdedupe/model"
)

var _ StatusCache = (*SnapshotCache)(nil)

// SnapshotCache keeps the whole status map in memory and persists it as one
// flat JSON document. An absent or corrupt snapshot file is treated as an
// empty cache, never as a fatal condition: the cache is an optimization.
type SnapshotCache struct {
	mu      sync.Mutex
	path    string
	entries map[string]model.RemoteStatus
	dirty   bool
}

// snapshotEntry controls the on-disk shape: an absent object is written as
// the literal `false`, a live object as its metadata.
type snapshotEntry struct {
	model.RemoteStatus
}

func (e snapshotEntry) MarshalJSON() ([]byte, error) {
	if e.State == model.StatusAbsent {
		return []byte("false"), nil
	}
	return json.Marshal(struct {
		Size    int64  `json:"size"`
		ModTime int64  `json:"mtime"`
		Etag    string `json:"etag,omitempty"`
	}{Size: e.Size, ModTime: e.ModTime, Etag: e.Etag})
}

func (e *snapshotEntry) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("false")) {
		e.RemoteStatus = model.RemoteStatus{State: model.StatusAbsent}
		return nil
	}
	var meta struct {
		Size    int64  `json:"size"`
		ModTime int64  `json:"mtime"`
		Etag    string `json:"etag,omitempty"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return err
	}
	e.RemoteStatus = model.RemoteStatus{
		State:   model.StatusLive,
		Size:    meta.Size,
		ModTime: meta.ModTime,
		Etag:    meta.Etag,
	}
	return nil
}

// NewSnapshotCache creates a snapshot cache backed by the given file. Any
// existing snapshot is loaded wholesale; load failures start an empty cache.
func NewSnapshotCache(cfg *config.SnapshotConfig) (*SnapshotCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot config: %w", err)
	}

	c := &SnapshotCache{
		path:    cfg.Path,
		entries: make(map[string]model.RemoteStatus),
	}

	blob, err := os.ReadFile(cfg.Path)
	if err != nil {
		// Missing file is the normal first-run case; unreadable files are
		// treated the same way.
		return c, nil
	}

	var raw map[string]snapshotEntry
	if err := json.Unmarshal(blob, &raw); err != nil {
		// Corrupt snapshot: start over with an empty cache.
		return c, nil
	}
	for k, v := range raw {
		c.entries[k] = v.RemoteStatus
	}

	return c, nil
}

func (c *SnapshotCache) Set(key string, status model.RemoteStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = status
	c.dirty = true
	return nil
}

func (c *SnapshotCache) Get(key string) (*model.RemoteStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return &status, nil
}

// Flush writes the snapshot atomically: to a temp file first, then rename.
func (c *SnapshotCache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	raw := make(map[string]snapshotEntry, len(c.entries))
	for k, v := range c.entries {
		raw[k] = snapshotEntry{v}
	}

	blob, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".statuscache-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	c.dirty = false
	return nil
}

func (c *SnapshotCache) DumpAll() (map[string]model.RemoteStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make(map[string]model.RemoteStatus, len(c.entries))
	for k, v := range c.entries {
		results[k] = v
	}
	return results, nil
}

func (c *SnapshotCache) Count() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.entries)), nil
}

func (c *SnapshotCache) Close() error {
	return nil
}

// Destroy removes the snapshot file. Called after a successful real run,
// when the cached statuses are stale by definition.
func (c *SnapshotCache) Destroy() error {
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
