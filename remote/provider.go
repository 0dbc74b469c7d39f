package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/johnnyasantoss/mediadc-massdedupe/config"
)

// ObjectMeta describes a remote object returned by Stat.
type ObjectMeta struct {
	Size    int64
	ModTime int64
	Etag    string
}

// ErrNotFound reports that the remote object does not exist. Callers treat
// this as a status, not a failure.
var ErrNotFound = errors.New("object not found")

// RemoteProvider is the remote store objects are checked against and
// deleted from. Keys are normalized paths (see model.NormalizeKey).
type RemoteProvider interface {
	// Stat returns metadata for the object at key, or ErrNotFound.
	Stat(ctx context.Context, key string) (*ObjectMeta, error)
	// Delete removes the object at key. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, key string) error
	// GetCurrentRPS returns the current requests per second rate for monitoring
	GetCurrentRPS() int64
	Close() error
}

// CreateRemote creates a remote provider based on configuration
func CreateRemote(cfg *config.RemoteConfig) (RemoteProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid remote configuration: %w", err)
	}

	switch cfg.RemoteType {
	case config.RemoteTypeS3:
		return NewS3Remote(cfg.S3, &cfg.Common)
	case config.RemoteTypeFTP:
		return NewFTPRemote(cfg.FTP, &cfg.Common)
	default:
		return nil, fmt.Errorf("unsupported remote type: %s", cfg.RemoteType)
	}
}
