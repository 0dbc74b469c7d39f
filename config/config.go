package config

import (
	"fmt"
	"os"
	"strconv"
)

// AppConfig represents the complete application configuration
type AppConfig struct {
	Report ReportConfig `json:"report"`
	Remote RemoteConfig `json:"remote"`
	Cache  CacheConfig  `json:"cache"`
	Rules  RulesConfig  `json:"rules"`
	Logger LoggerConfig `json:"logger"`
	DryRun bool         `json:"dry_run"` // If true, no files will be deleted from the remote store
}

// ReportConfig points at the duplicate report produced by the upstream scanner
type ReportConfig struct {
	Path string `json:"path"` // Path to the report JSON document
}

// Validate validates the report configuration
func (rc *ReportConfig) Validate() error {
	if rc.Path == "" {
		return fmt.Errorf("report path is required")
	}
	return nil
}

// Validate validates the entire configuration
func (ac *AppConfig) Validate() error {
	if err := ac.Report.Validate(); err != nil {
		return fmt.Errorf("report config error: %w", err)
	}
	if err := ac.Remote.Validate(); err != nil {
		return fmt.Errorf("remote config error: %w", err)
	}
	if err := ac.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config error: %w", err)
	}
	if err := ac.Rules.Validate(); err != nil {
		return fmt.Errorf("rules config error: %w", err)
	}
	if err := ac.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config error: %w", err)
	}
	return nil
}

// ApplyDefaults applies default values to all components
func (ac *AppConfig) ApplyDefaults() {
	ac.Remote.Common.ApplyDefaults()
	ac.Cache.ApplyDefaults()
	ac.Logger.ApplyDefaults()

	// Apply defaults for specific configs
	if ac.Remote.FTP != nil {
		ac.Remote.FTP.ApplyDefaults()
	}
	// The default snapshot path is derived from the report path, which only
	// the caller knows; see DeriveSnapshotPath.
}

// DeriveSnapshotPath returns the default status cache location for a report:
// a sibling file next to the report document.
func DeriveSnapshotPath(reportPath string) string {
	return reportPath + ".statuscache.json"
}

// LoadFromEnv loads configuration from environment variables
// This is a helper to populate config from env vars
func LoadFromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	// General configuration
	cfg.DryRun = getEnvBool("DRY_RUN", false)

	// Report configuration
	cfg.Report.Path = getEnv("REPORT_PATH", "")

	// Logger configuration
	cfg.Logger.Level = LogLevel(getEnv("LOG_LEVEL", string(LogLevelInfo)))

	// Rules configuration
	cfg.Rules.Exclude = ParsePatternList(getEnv("EXCLUDE_PATTERNS", ""))
	cfg.Rules.Include = ParsePatternList(getEnv("INCLUDE_PATTERNS", ""))

	// Cache configuration
	cfg.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
	cfg.Cache.CacheType = CacheType(getEnv("CACHE_TYPE", string(CacheTypeSnapshot)))
	cfg.Cache.FlushEvery = getEnvInt("CACHE_FLUSH_EVERY", 0)
	cfg.Cache.Snapshot = &SnapshotConfig{
		Path: getEnv("CACHE_SNAPSHOT_PATH", ""),
	}
	cfg.Cache.Bbolt = &BboltConfig{
		Path:   getEnv("CACHE_BBOLT_PATH", "./statuscache.db"),
		Bucket: getEnv("CACHE_BBOLT_BUCKET", "statuses"),
		Mode:   0600,
		NoSync: getEnvBool("CACHE_BBOLT_NO_SYNC", false),
	}

	// Remote configuration
	cfg.Remote.RemoteType = RemoteType(getEnv("REMOTE_TYPE", string(RemoteTypeS3)))
	cfg.Remote.Common.TimeoutSeconds = getEnvInt("REMOTE_TIMEOUT_SECONDS", 30)
	cfg.Remote.Common.MaxRetries = getEnvInt("REMOTE_MAX_RETRIES", 3)
	cfg.Remote.Common.MaxRPS = getEnvInt("REMOTE_MAX_RPS", 0)

	cfg.Remote.S3 = &S3Config{
		Region:          getEnv("S3_REGION", ""),
		Bucket:          getEnv("S3_BUCKET", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
	}

	cfg.Remote.FTP = &FTPConfig{
		Host:     getEnv("FTP_HOST", ""),
		Port:     getEnvInt("FTP_PORT", 21),
		Username: getEnv("FTP_USERNAME", ""),
		Password: getEnv("FTP_PASSWORD", ""),
		BasePath: getEnv("FTP_BASE_PATH", "/"),
		UseTLS:   getEnvBool("FTP_USE_TLS", false),
	}

	// Apply defaults
	cfg.ApplyDefaults()

	return cfg, nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
