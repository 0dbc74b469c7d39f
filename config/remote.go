// The remote configuration is designed to allow adding other remote store backends in the future. To do this, you need to add a new RemoteType, update RemoteConfig, and define the validation for the new backend.
package config

import "fmt"

// RemoteType represents the type of remote store backend
type RemoteType string

const (
	RemoteTypeS3  RemoteType = "s3"
	RemoteTypeFTP RemoteType = "ftp"
)

// RemoteConfig holds the configuration for the remote object store
type RemoteConfig struct {
	RemoteType RemoteType `json:"type"`

	// Common options for all backends
	Common CommonRemoteConfig `json:"common,omitempty"`

	// Type-specific configurations
	S3  *S3Config  `json:"s3,omitempty"`
	FTP *FTPConfig `json:"ftp,omitempty"`
}

// CommonRemoteConfig contains general settings applicable to all backends
type CommonRemoteConfig struct {
	TimeoutSeconds int `json:"timeout_seconds,omitempty"` // optional: request timeout in seconds
	MaxRetries     int `json:"max_retries,omitempty"`     // optional: maximum number of retries for API calls
	MaxRPS         int `json:"max_rps,omitempty"`         // optional: maximum requests per second to the backend
}

// S3Config holds S3-specific configuration
type S3Config struct {
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"` // For S3-compatible services
}

// FTPConfig holds FTP-specific configuration
type FTPConfig struct {
	Host     string `json:"host"`                // FTP server host
	Port     int    `json:"port"`                // FTP server port (default: 21)
	Username string `json:"username"`            // FTP username
	Password string `json:"password,omitempty"`  // FTP password
	BasePath string `json:"base_path,omitempty"` // Base path on FTP server (optional)
	UseTLS   bool   `json:"use_tls,omitempty"`   // Use FTPS (FTP over TLS)
}

// Validate ensures the configuration is valid for the specified remote type
func (rc *RemoteConfig) Validate() error {
	if err := rc.Common.Validate(); err != nil {
		return err
	}

	switch rc.RemoteType {
	case RemoteTypeS3:
		if rc.S3 == nil {
			return fmt.Errorf("s3 configuration is required when type is 's3'")
		}
		return rc.S3.Validate()
	case RemoteTypeFTP:
		if rc.FTP == nil {
			return fmt.Errorf("ftp configuration is required when type is 'ftp'")
		}
		return rc.FTP.Validate()
	default:
		return fmt.Errorf("unsupported remote type: %s", rc.RemoteType)
	}
}

// GetActiveConfig returns the active configuration based on the remote type
func (rc *RemoteConfig) GetActiveConfig() interface{} {
	switch rc.RemoteType {
	case RemoteTypeS3:
		return rc.S3
	case RemoteTypeFTP:
		return rc.FTP
	default:
		return nil
	}
}

// Validate validates S3 configuration
func (s3c *S3Config) Validate() error {
	if s3c.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if s3c.AccessKeyID == "" {
		return fmt.Errorf("s3 access key is required")
	}
	if s3c.SecretAccessKey == "" {
		return fmt.Errorf("s3 secret key is required")
	}
	if s3c.Endpoint == "" {
		return fmt.Errorf("s3 endpoint is required")
	}
	return nil
}

// Validate validates FTP configuration
func (fc *FTPConfig) Validate() error {
	if fc.Host == "" {
		return fmt.Errorf("ftp host is required")
	}
	if fc.Port <= 0 || fc.Port > 65535 {
		return fmt.Errorf("ftp port must be between 1 and 65535")
	}
	if fc.Username == "" {
		return fmt.Errorf("ftp username is required")
	}
	// Password can be empty for anonymous FTP
	return nil
}

// ApplyDefaults sets default values if they are not provided
func (c *CommonRemoteConfig) ApplyDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	// MaxRPS leave 0 (means no limit)
}

// Validate validates common remote configuration
func (c *CommonRemoteConfig) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}
	if c.MaxRPS < 0 {
		return fmt.Errorf("max_rps cannot be negative")
	}
	return nil
}

// ApplyDefaults sets default values for FTP configuration
func (fc *FTPConfig) ApplyDefaults() {
	if fc.Port == 0 {
		fc.Port = 21 // Default FTP port
	}
	if fc.BasePath == "" {
		fc.BasePath = "/" // Default to root
	}
}
