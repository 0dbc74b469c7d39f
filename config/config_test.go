package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePatternList(t *testing.T) {
	require.Nil(t, ParsePatternList(""))
	require.Nil(t, ParsePatternList("  "))
	require.Equal(t, []string{"a"}, ParsePatternList("a"))
	require.Equal(t, []string{"a", "b"}, ParsePatternList("a,b"))
	require.Equal(t, []string{"a", "b"}, ParsePatternList(" a , b , "))
}

func TestDeriveSnapshotPath(t *testing.T) {
	require.Equal(t, "/data/report.json.statuscache.json", DeriveSnapshotPath("/data/report.json"))
}

func TestRulesConfig_Validate(t *testing.T) {
	require.NoError(t, (&RulesConfig{}).Validate())
	require.NoError(t, (&RulesConfig{Exclude: []string{"/archive/"}}).Validate())
	require.Error(t, (&RulesConfig{Exclude: []string{" "}}).Validate())
	require.Error(t, (&RulesConfig{Include: []string{""}}).Validate())
}

func TestLoggerConfig_Validate(t *testing.T) {
	require.NoError(t, (&LoggerConfig{}).Validate())
	require.NoError(t, (&LoggerConfig{Level: LogLevelVerbose}).Validate())
	require.Error(t, (&LoggerConfig{Level: "loud"}).Validate())
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	require.False(t, cfg.DryRun)
	require.Equal(t, CacheTypeSnapshot, cfg.Cache.CacheType)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, 500, cfg.Cache.FlushEvery)
	require.Equal(t, RemoteTypeS3, cfg.Remote.RemoteType)
	require.Equal(t, 30, cfg.Remote.Common.TimeoutSeconds)
	require.Equal(t, 3, cfg.Remote.Common.MaxRetries)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("REPORT_PATH", "/data/report.json")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("EXCLUDE_PATTERNS", "/archive/,/originals/")
	t.Setenv("REMOTE_TYPE", "ftp")
	t.Setenv("CACHE_ENABLED", "false")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	require.Equal(t, "/data/report.json", cfg.Report.Path)
	require.True(t, cfg.DryRun)
	require.Equal(t, []string{"/archive/", "/originals/"}, cfg.Rules.Exclude)
	require.Equal(t, RemoteTypeFTP, cfg.Remote.RemoteType)
	require.False(t, cfg.Cache.Enabled)
}

func TestAppConfig_Validate(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	// Missing report path
	require.Error(t, cfg.Validate())

	cfg.Report.Path = "/data/report.json"
	cfg.Cache.Snapshot.Path = "/data/report.json.statuscache.json"
	cfg.Remote.S3.Bucket = "bucket"
	cfg.Remote.S3.AccessKeyID = "key"
	cfg.Remote.S3.SecretAccessKey = "secret"
	cfg.Remote.S3.Endpoint = "https://s3.example.com"
	require.NoError(t, cfg.Validate())
}
