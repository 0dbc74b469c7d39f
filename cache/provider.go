package cache

import (
	"errors"
	"fmt"

	"github.com/johnnyasantoss/mediadc-massdedupe/config"
	"github.com/johnnyasantoss/mediadc-massdedupe/model"
)

// StatusCache persists remote status lookups between runs. Keys are
// normalized logical paths (see model.NormalizeKey).
type StatusCache interface {
	Set(key string, status model.RemoteStatus) error
	Get(key string) (*model.RemoteStatus, error)
	// Flush writes the current state to durable storage. Best-effort: a
	// failed flush costs re-queries on the next run, nothing else.
	Flush() error
	DumpAll() (map[string]model.RemoteStatus, error)
	Count() (int64, error)
	Close() error
	// Destroy closes the cache and removes its backing file.
	Destroy() error
}

var (
	ErrKeyNotFound    error = errors.New("key not found")
	ErrBucketNotFound error = errors.New("bucket not found")
)

// CreateCache creates a status cache based on configuration
func CreateCache(cfg *config.CacheConfig) (StatusCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}

	switch cfg.CacheType {
	case config.CacheTypeSnapshot:
		return NewSnapshotCache(cfg.Snapshot)
	case config.CacheTypeBbolt:
		return NewBboltCache(cfg.Bbolt)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
