package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/johnnyasantoss/mediadc-massdedupe/config"
)

var _ RemoteProvider = (*FTPRemote)(nil)

// FTPRemote implements RemoteProvider for FTP servers
type FTPRemote struct {
	config     *config.FTPConfig
	common     *config.CommonRemoteConfig
	connPool   chan *ftp.ServerConn
	dialConfig *ftp.DialOption
}

// NewFTPRemote creates a new FTP remote
func NewFTPRemote(cfg *config.FTPConfig, common *config.CommonRemoteConfig) (*FTPRemote, error) {
	// Apply defaults
	cfg.ApplyDefaults()
	common.ApplyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ftp config: %w", err)
	}
	if err := common.Validate(); err != nil {
		return nil, fmt.Errorf("invalid common config: %w", err)
	}

	// Small pool: the run is sequential, spares only cover dead connections
	connPool := make(chan *ftp.ServerConn, 2)

	// Setup dial options
	var dialConfig *ftp.DialOption
	if cfg.UseTLS {
		opt := ftp.DialWithExplicitTLS(&tls.Config{
			InsecureSkipVerify: false,
		})
		dialConfig = &opt
	}

	r := &FTPRemote{
		config:     cfg,
		common:     common,
		connPool:   connPool,
		dialConfig: dialConfig,
	}

	// Pre-populate connection pool with one connection to verify connectivity
	conn, err := r.createConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to FTP server: %w", err)
	}

	// Return connection to pool
	select {
	case connPool <- conn:
	default:
		conn.Quit()
	}

	return r, nil
}

// createConnection creates a new FTP connection
func (f *FTPRemote) createConnection() (*ftp.ServerConn, error) {
	addr := fmt.Sprintf("%s:%d", f.config.Host, f.config.Port)

	var conn *ftp.ServerConn
	var err error

	if f.dialConfig != nil {
		conn, err = ftp.Dial(addr, *f.dialConfig, ftp.DialWithTimeout(time.Duration(f.common.TimeoutSeconds)*time.Second))
	} else {
		conn, err = ftp.Dial(addr, ftp.DialWithTimeout(time.Duration(f.common.TimeoutSeconds)*time.Second))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	// Login
	if err := conn.Login(f.config.Username, f.config.Password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	return conn, nil
}

// getConnection retrieves a connection from the pool or creates a new one
func (f *FTPRemote) getConnection(ctx context.Context) (*ftp.ServerConn, error) {
	select {
	case conn := <-f.connPool:
		// A nil receive means the pool channel was closed by Close
		if conn == nil {
			return nil, fmt.Errorf("ftp connection pool is closed")
		}
		// Test if connection is still alive
		if err := conn.NoOp(); err != nil {
			// Connection is dead, create a new one
			conn.Quit()
			return f.createConnection()
		}
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// No connection available, create a new one
		return f.createConnection()
	}
}

// returnConnection returns a connection to the pool
func (f *FTPRemote) returnConnection(conn *ftp.ServerConn) {
	if conn == nil {
		return
	}

	select {
	case f.connPool <- conn:
		// Connection returned to pool
	default:
		// Pool is full, close the connection
		conn.Quit()
	}
}

// isFTPNotFound classifies replies that mean the file does not exist.
func isFTPNotFound(err error) bool {
	return strings.Contains(err.Error(), "550") || strings.Contains(err.Error(), "not found")
}

// Stat checks the object at key and returns its size. FTP exposes no more
// metadata cheaply, so ModTime and Etag stay zero.
func (f *FTPRemote) Stat(ctx context.Context, key string) (*ObjectMeta, error) {
	fullPath := path.Join(f.config.BasePath, key)

	conn, err := f.getConnection(ctx)
	if err != nil {
		return nil, err
	}
	defer f.returnConnection(conn)

	size, err := conn.FileSize(fullPath)
	if err != nil {
		if isFTPNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat %s: %w", fullPath, err)
	}

	return &ObjectMeta{Size: size}, nil
}

// Delete deletes a file from the FTP server
func (f *FTPRemote) Delete(ctx context.Context, key string) error {
	// Construct full path
	fullPath := path.Join(f.config.BasePath, key)

	// Retry logic with exponential backoff
	var lastErr error
	for attempt := 0; attempt < f.common.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := time.Duration(math.Pow(2, float64(attempt))) * 200 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		// Get connection from pool
		conn, err := f.getConnection(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		// Delete file
		err = conn.Delete(fullPath)
		f.returnConnection(conn)

		if err == nil {
			return nil
		}

		// Check if file doesn't exist (not an error in this case)
		if isFTPNotFound(err) {
			return nil // File already doesn't exist
		}

		lastErr = fmt.Errorf("failed to delete %s: %w", fullPath, err)
	}

	return fmt.Errorf("delete failed after %d attempts: %w", f.common.MaxRetries, lastErr)
}

// GetCurrentRPS always returns 0; the FTP backend does not track request rate.
func (f *FTPRemote) GetCurrentRPS() int64 {
	return 0
}

// Close closes all connections in the pool
func (f *FTPRemote) Close() error {
	close(f.connPool)

	for conn := range f.connPool {
		conn.Quit()
	}

	return nil
}
