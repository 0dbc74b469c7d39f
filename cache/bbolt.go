package cache

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/johnnyasantoss/mediadc-massdedupe/config"
	"github.com/johnnyasantoss/mediadc-massdedupe/model"
	"go.etcd.io/bbolt"
)

var _ StatusCache = (*BboltCache)(nil)

// BboltCache stores one status entry per key in a bbolt database. Every Set
// is durable on its own, so Flush only has to fsync.
type BboltCache struct {
	db     *bbolt.DB
	path   string
	bucket string
}

// NewBboltCache creates a new BboltCache based on configuration
func NewBboltCache(cfg *config.BboltConfig) (*BboltCache, error) {
	// Apply defaults to ensure required values are set
	cfg.ApplyDefaults()

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bbolt config: %w", err)
	}

	// Open bbolt database
	db, err := bbolt.Open(cfg.Path, cfg.Mode, &bbolt.Options{NoSync: cfg.NoSync})
	if err != nil {
		return nil, err
	}

	// Create bucket if not exists
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cfg.Bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BboltCache{
		db:     db,
		path:   cfg.Path,
		bucket: cfg.Bucket,
	}, nil
}

func (c *BboltCache) Set(key string, status model.RemoteStatus) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		val, err := json.Marshal(status)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), val)
	})
}

func (c *BboltCache) Get(key string) (*model.RemoteStatus, error) {
	var status model.RemoteStatus
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		val := b.Get([]byte(key))
		if val == nil {
			return ErrKeyNotFound
		}
		return json.Unmarshal(val, &status)
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Flush forces the database to disk. Entries are already written by Set, so
// this only matters when NoSync is enabled.
func (c *BboltCache) Flush() error {
	return c.db.Sync()
}

func (c *BboltCache) DumpAll() (map[string]model.RemoteStatus, error) {
	results := make(map[string]model.RemoteStatus)

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.bucket))
		if b == nil {
			return ErrBucketNotFound
		}

		return b.ForEach(func(k, v []byte) error {
			var status model.RemoteStatus
			if err := json.Unmarshal(v, &status); err != nil {
				return fmt.Errorf("unmarshal error for key %s: %w", k, err)
			}
			results[string(k)] = status
			return nil
		})
	})

	return results, err
}

func (c *BboltCache) Count() (int64, error) {
	var count int64 = 0
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		return b.ForEach(func(k, v []byte) error {
			count++
			return nil
		})
	})
	return count, err
}

func (c *BboltCache) Close() error {
	return c.db.Close()
}

// Destroy closes the database and removes its file.
func (c *BboltCache) Destroy() error {
	if err := c.db.Close(); err != nil {
		return err
	}
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
