package config

import (
	"fmt"
	"os"
)

// CacheType represents the type of status cache backend
type CacheType string

const (
	// CacheTypeSnapshot persists the cache as a flat JSON file next to the
	// report. The whole snapshot is loaded at startup and rewritten on flush.
	CacheTypeSnapshot CacheType = "snapshot"
	// CacheTypeBbolt persists one entry per path in a bbolt database. Meant
	// for very large reports where rewriting a flat snapshot gets expensive.
	CacheTypeBbolt CacheType = "bbolt"
)

// CacheConfig holds the configuration for the remote status cache
type CacheConfig struct {
	CacheType CacheType `json:"type"`

	// Enabled controls whether lookups are persisted between runs. When
	// false the cache still memoizes within the run but nothing is written
	// to disk.
	Enabled bool `json:"enabled"`

	// FlushEvery is the number of uncached lookups between persistence
	// flushes. Bounds data loss on interruption to FlushEvery-1 lookups.
	FlushEvery int `json:"flush_every,omitempty"`

	// Type-specific configs
	Snapshot *SnapshotConfig `json:"snapshot,omitempty"`
	Bbolt    *BboltConfig    `json:"bbolt,omitempty"`
}

// SnapshotConfig holds snapshot-file-specific configuration
type SnapshotConfig struct {
	Path string `json:"path"` // Path to the JSON snapshot file
}

// BboltConfig holds bbolt-specific configuration
type BboltConfig struct {
	Path   string      `json:"path"`              // Path to bbolt DB file
	Bucket string      `json:"bucket"`            // Name of the bucket
	Mode   os.FileMode `json:"mode,omitempty"`    // File open mode: "0600", "0644"
	NoSync bool        `json:"no_sync,omitempty"` // Disable fsync for better performance
}

// Validate validates the cache configuration
func (cc *CacheConfig) Validate() error {
	if cc.FlushEvery < 0 {
		return fmt.Errorf("flush_every cannot be negative")
	}

	switch cc.CacheType {
	case CacheTypeSnapshot:
		if cc.Snapshot == nil {
			return fmt.Errorf("snapshot configuration is required when type is 'snapshot'")
		}
		return cc.Snapshot.Validate()
	case CacheTypeBbolt:
		if cc.Bbolt == nil {
			return fmt.Errorf("bbolt configuration is required when type is 'bbolt'")
		}
		return cc.Bbolt.Validate()
	default:
		return fmt.Errorf("unsupported cache type: %s", cc.CacheType)
	}
}

// GetActiveConfig returns the active configuration based on the cache type
func (cc *CacheConfig) GetActiveConfig() interface{} {
	switch cc.CacheType {
	case CacheTypeSnapshot:
		return cc.Snapshot
	case CacheTypeBbolt:
		return cc.Bbolt
	default:
		return nil
	}
}

// ApplyDefaults sets default values for the cache configuration
func (cc *CacheConfig) ApplyDefaults() {
	if cc.CacheType == "" {
		cc.CacheType = CacheTypeSnapshot
	}
	if cc.FlushEvery == 0 {
		cc.FlushEvery = 500
	}
	if cc.Bbolt != nil {
		cc.Bbolt.ApplyDefaults()
	}
}

// Validate validates snapshot configuration
func (sc *SnapshotConfig) Validate() error {
	if sc.Path == "" {
		return fmt.Errorf("snapshot path is required")
	}
	return nil
}

// Validate validates bbolt configuration
func (bc *BboltConfig) Validate() error {
	if bc.Path == "" {
		return fmt.Errorf("bbolt path is required")
	}
	if bc.Bucket == "" {
		return fmt.Errorf("bbolt bucket is required")
	}
	return nil
}

// ApplyDefaults sets default values if not provided for bbolt
func (bc *BboltConfig) ApplyDefaults() {
	if bc.Path == "" {
		bc.Path = "./statuscache.db" // Default path in the current directory
	}
	if bc.Bucket == "" {
		bc.Bucket = "statuses" // Default bucket name
	}
	if bc.Mode == 0 {
		bc.Mode = 0600 // Default file permission
	}
	// NoSync remains false by default for data safety
}
