package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/johnnyasantoss/mediadc-massdedupe/cache"
	"github.com/johnnyasantoss/mediadc-massdedupe/config"
	"github.com/johnnyasantoss/mediadc-massdedupe/executor"
	"github.com/johnnyasantoss/mediadc-massdedupe/logger"
	"github.com/johnnyasantoss/mediadc-massdedupe/processor"
	"github.com/johnnyasantoss/mediadc-massdedupe/remote"
	"github.com/johnnyasantoss/mediadc-massdedupe/report"
	"github.com/johnnyasantoss/mediadc-massdedupe/resolver"
	"github.com/johnnyasantoss/mediadc-massdedupe/selector"
)

func main() {
	// Define CLI flags
	var (
		// General flags
		reportPath = flag.String("report", "", "Path to the duplicate report JSON document (env: REPORT_PATH)")
		dryRun     = flag.Bool("dry-run", false, "Run in dry-run mode (no files will be deleted) (env: DRY_RUN)")

		// Logger flags
		logLevel = flag.String("log-level", "", "Log level: silent, error, info, debug, verbose (env: LOG_LEVEL)")

		// Rule flags
		excludePatterns = flag.String("exclude", "", "Comma-separated path patterns preferred for retention (env: EXCLUDE_PATTERNS)")
		includePatterns = flag.String("include", "", "Comma-separated path patterns preferred for deletion (env: INCLUDE_PATTERNS)")

		// Cache flags
		noCache        = flag.Bool("no-cache", false, "Disable the persistent status cache (env: CACHE_ENABLED=false)")
		cacheType      = flag.String("cache-type", "", "Cache type: snapshot, bbolt (env: CACHE_TYPE)")
		cachePath      = flag.String("cache-path", "", "Path to the cache file (env: CACHE_SNAPSHOT_PATH / CACHE_BBOLT_PATH)")
		cacheBucket    = flag.String("cache-bucket", "", "Cache bucket name for bbolt (env: CACHE_BBOLT_BUCKET)")
		cacheFlushEach = flag.Int("cache-flush-every", 0, "Lookups between cache flushes (env: CACHE_FLUSH_EVERY)")

		// Remote flags
		remoteType    = flag.String("remote-type", "", "Remote store type: s3, ftp (env: REMOTE_TYPE)")
		remoteTimeout = flag.Int("remote-timeout", 0, "Remote operation timeout in seconds (env: REMOTE_TIMEOUT_SECONDS)")
		remoteRetries = flag.Int("remote-max-retries", 0, "Max retries for remote operations (env: REMOTE_MAX_RETRIES)")
		remoteMaxRPS  = flag.Int("remote-max-rps", 0, "Max requests per second to remote (0 = no limit) (env: REMOTE_MAX_RPS)")

		// S3 flags
		s3Region    = flag.String("s3-region", "", "S3 region (env: S3_REGION)")
		s3Bucket    = flag.String("s3-bucket", "", "S3 bucket name (env: S3_BUCKET)")
		s3AccessKey = flag.String("s3-access-key", "", "S3 access key ID (env: S3_ACCESS_KEY_ID)")
		s3SecretKey = flag.String("s3-secret-key", "", "S3 secret access key (env: S3_SECRET_ACCESS_KEY)")
		s3Endpoint  = flag.String("s3-endpoint", "", "S3 endpoint URL (env: S3_ENDPOINT)")

		// FTP flags
		ftpHost     = flag.String("ftp-host", "", "FTP server host (env: FTP_HOST)")
		ftpPort     = flag.Int("ftp-port", 0, "FTP server port (env: FTP_PORT)")
		ftpUsername = flag.String("ftp-username", "", "FTP username (env: FTP_USERNAME)")
		ftpPassword = flag.String("ftp-password", "", "FTP password (env: FTP_PASSWORD)")
		ftpBasePath = flag.String("ftp-base-path", "", "FTP base path (env: FTP_BASE_PATH)")
		ftpUseTLS   = flag.Bool("ftp-use-tls", false, "Use FTPS (env: FTP_USE_TLS)")

		showHelp = flag.Bool("help", false, "Show usage information")
	)

	flag.Usage = usage
	flag.Parse()

	if *showHelp {
		usage()
		os.Exit(0)
	}

	// Load configuration from environment
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from environment: %v\n", err)
		os.Exit(1)
	}

	// Override with CLI flags if provided
	applyFlags(cfg, flagValues{
		reportPath:     *reportPath,
		dryRun:         *dryRun,
		logLevel:       *logLevel,
		exclude:        *excludePatterns,
		include:        *includePatterns,
		noCache:        *noCache,
		cacheType:      *cacheType,
		cachePath:      *cachePath,
		cacheBucket:    *cacheBucket,
		cacheFlushEach: *cacheFlushEach,
		remoteType:     *remoteType,
		remoteTimeout:  *remoteTimeout,
		remoteRetries:  *remoteRetries,
		remoteMaxRPS:   *remoteMaxRPS,
		s3Region:       *s3Region,
		s3Bucket:       *s3Bucket,
		s3AccessKey:    *s3AccessKey,
		s3SecretKey:    *s3SecretKey,
		s3Endpoint:     *s3Endpoint,
		ftpHost:        *ftpHost,
		ftpPort:        *ftpPort,
		ftpUsername:    *ftpUsername,
		ftpPassword:    *ftpPassword,
		ftpBasePath:    *ftpBasePath,
		ftpUseTLS:      *ftpUseTLS,
	})

	// The default cache location sits next to the report
	if cfg.Cache.Snapshot != nil && cfg.Cache.Snapshot.Path == "" {
		cfg.Cache.Snapshot.Path = config.DeriveSnapshotPath(cfg.Report.Path)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(&cfg.Logger)
	log.Info("Starting duplicate cleanup")
	log.Debug("Configuration loaded and validated")

	// Load the report before touching anything remote: malformed input is
	// fatal and must abort before any processing begins.
	rep, err := report.Load(cfg.Report.Path)
	if err != nil {
		log.Error("Failed to load report: %v", err)
		os.Exit(1)
	}
	log.Info("Report loaded: %d duplicate groups", len(rep.Results))

	// Initialize cache
	log.Debug("Initializing status cache...")
	cacheProvider, err := cache.CreateCache(&cfg.Cache)
	if err != nil {
		log.Error("Failed to create cache: %v", err)
		os.Exit(1)
	}
	log.Info("Cache initialized: type=%s, enabled=%t", cfg.Cache.CacheType, cfg.Cache.Enabled)

	// Initialize remote store
	log.Debug("Initializing remote store...")
	remoteProvider, err := remote.CreateRemote(&cfg.Remote)
	if err != nil {
		cacheProvider.Close()
		log.Error("Failed to create remote: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("Closing remote store...")
		if err := remoteProvider.Close(); err != nil {
			log.Error("Error closing remote store: %v", err)
		}
	}()
	log.Info("Remote store initialized: type=%s", cfg.Remote.RemoteType)

	// Create pipeline
	if cfg.DryRun {
		log.Info("Running in DRY-RUN mode - no files will be deleted")
	}
	res := resolver.NewResolver(cacheProvider, remoteProvider, log, resolver.Options{
		CacheEnabled: cfg.Cache.Enabled,
		FlushEvery:   cfg.Cache.FlushEvery,
	})
	exec := executor.NewExecutor(remoteProvider, log, cfg.DryRun)
	rules := selector.NewRuleSet(cfg.Rules.Exclude, cfg.Rules.Include)
	runner := processor.NewRunner(rep, res, exec, rules, log)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Run processor in a goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting cleanup process...")
		_, err := runner.Run(ctx)
		errChan <- err
	}()

	// Wait for completion or interruption
	select {
	case err := <-errChan:
		if err != nil {
			cacheProvider.Close()
			log.Error("Cleanup failed: %v", err)
			os.Exit(1)
		}
		finishCache(cacheProvider, cfg, log)
		log.Info("Cleanup completed successfully")
	case sig := <-sigChan:
		log.Info("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for the processor to finish
		err := <-errChan
		cacheProvider.Close()
		if err != nil && err != context.Canceled {
			log.Error("Error during shutdown: %v", err)
			os.Exit(1)
		}
		log.Info("Shutdown completed")
	}
}

// finishCache disposes of the status cache after a successful run. The
// snapshot is only discarded after a real run: a dry run keeps it so the
// subsequent real run can reuse the lookups.
func finishCache(c cache.StatusCache, cfg *config.AppConfig, log logger.Logger) {
	if cfg.Cache.Enabled && !cfg.DryRun {
		log.Debug("Removing status cache after successful run...")
		if err := c.Destroy(); err != nil {
			log.Warn("Failed to remove status cache: %v", err)
		}
		return
	}
	if err := c.Close(); err != nil {
		log.Error("Error closing cache: %v", err)
	}
}

// flagValues carries parsed CLI flags into applyFlags
type flagValues struct {
	reportPath     string
	dryRun         bool
	logLevel       string
	exclude        string
	include        string
	noCache        bool
	cacheType      string
	cachePath      string
	cacheBucket    string
	cacheFlushEach int
	remoteType     string
	remoteTimeout  int
	remoteRetries  int
	remoteMaxRPS   int
	s3Region       string
	s3Bucket       string
	s3AccessKey    string
	s3SecretKey    string
	s3Endpoint     string
	ftpHost        string
	ftpPort        int
	ftpUsername    string
	ftpPassword    string
	ftpBasePath    string
	ftpUseTLS      bool
}

// applyFlags overrides environment-derived configuration with CLI flags
func applyFlags(cfg *config.AppConfig, fv flagValues) {
	if fv.reportPath != "" {
		cfg.Report.Path = fv.reportPath
	}
	if fv.dryRun {
		cfg.DryRun = true
	}
	if fv.logLevel != "" {
		cfg.Logger.Level = config.LogLevel(fv.logLevel)
	}
	if fv.exclude != "" {
		cfg.Rules.Exclude = config.ParsePatternList(fv.exclude)
	}
	if fv.include != "" {
		cfg.Rules.Include = config.ParsePatternList(fv.include)
	}
	if fv.noCache {
		cfg.Cache.Enabled = false
	}
	if fv.cacheType != "" {
		cfg.Cache.CacheType = config.CacheType(fv.cacheType)
	}
	if fv.cachePath != "" {
		switch cfg.Cache.CacheType {
		case config.CacheTypeBbolt:
			cfg.Cache.Bbolt.Path = fv.cachePath
		default:
			cfg.Cache.Snapshot.Path = fv.cachePath
		}
	}
	if fv.cacheBucket != "" {
		cfg.Cache.Bbolt.Bucket = fv.cacheBucket
	}
	if fv.cacheFlushEach > 0 {
		cfg.Cache.FlushEvery = fv.cacheFlushEach
	}
	if fv.remoteType != "" {
		cfg.Remote.RemoteType = config.RemoteType(fv.remoteType)
	}
	if fv.remoteTimeout > 0 {
		cfg.Remote.Common.TimeoutSeconds = fv.remoteTimeout
	}
	if fv.remoteRetries > 0 {
		cfg.Remote.Common.MaxRetries = fv.remoteRetries
	}
	if fv.remoteMaxRPS > 0 {
		cfg.Remote.Common.MaxRPS = fv.remoteMaxRPS
	}
	if fv.s3Region != "" {
		cfg.Remote.S3.Region = fv.s3Region
	}
	if fv.s3Bucket != "" {
		cfg.Remote.S3.Bucket = fv.s3Bucket
	}
	if fv.s3AccessKey != "" {
		cfg.Remote.S3.AccessKeyID = fv.s3AccessKey
	}
	if fv.s3SecretKey != "" {
		cfg.Remote.S3.SecretAccessKey = fv.s3SecretKey
	}
	if fv.s3Endpoint != "" {
		cfg.Remote.S3.Endpoint = fv.s3Endpoint
	}
	if fv.ftpHost != "" {
		cfg.Remote.FTP.Host = fv.ftpHost
	}
	if fv.ftpPort > 0 {
		cfg.Remote.FTP.Port = fv.ftpPort
	}
	if fv.ftpUsername != "" {
		cfg.Remote.FTP.Username = fv.ftpUsername
	}
	if fv.ftpPassword != "" {
		cfg.Remote.FTP.Password = fv.ftpPassword
	}
	if fv.ftpBasePath != "" {
		cfg.Remote.FTP.BasePath = fv.ftpBasePath
	}
	if fv.ftpUseTLS {
		cfg.Remote.FTP.UseTLS = true
	}
}

func usage() {
	fmt.Println("mediadc-massdedupe - resolve duplicate-file reports and delete redundant copies from a remote store")
	fmt.Println()
	fmt.Println("Usage: mediadc-massdedupe [options]")
	fmt.Println()
	fmt.Println("Configuration can be provided via environment variables or command-line flags.")
	fmt.Println("Command-line flags take precedence over environment variables.")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Example:")
	fmt.Println("  mediadc-massdedupe --report=results.json --s3-bucket=my-bucket --s3-endpoint=https://s3.example.com --dry-run")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  REPORT_PATH              - Path to the duplicate report document")
	fmt.Println("  DRY_RUN                  - Run in dry-run mode (true/false)")
	fmt.Println("  LOG_LEVEL                - Log level (silent, error, info, debug, verbose)")
	fmt.Println("  EXCLUDE_PATTERNS         - Comma-separated patterns preferred for retention")
	fmt.Println("  INCLUDE_PATTERNS         - Comma-separated patterns preferred for deletion")
	fmt.Println("  CACHE_ENABLED            - Persist status lookups between runs (true/false)")
	fmt.Println("  CACHE_TYPE               - Cache type (snapshot, bbolt)")
	fmt.Println("  CACHE_SNAPSHOT_PATH      - Path to the JSON snapshot cache")
	fmt.Println("  CACHE_BBOLT_PATH         - Path to the bbolt cache database")
	fmt.Println("  CACHE_BBOLT_BUCKET       - Cache bucket name")
	fmt.Println("  CACHE_FLUSH_EVERY        - Lookups between cache flushes")
	fmt.Println("  REMOTE_TYPE              - Remote store type (s3, ftp)")
	fmt.Println("  REMOTE_TIMEOUT_SECONDS   - Remote operation timeout in seconds")
	fmt.Println("  REMOTE_MAX_RETRIES       - Max retries for remote operations")
	fmt.Println("  REMOTE_MAX_RPS           - Max requests per second to remote (0 = no limit)")
	fmt.Println("  S3_REGION                - S3 region")
	fmt.Println("  S3_BUCKET                - S3 bucket name")
	fmt.Println("  S3_ACCESS_KEY_ID         - S3 access key ID")
	fmt.Println("  S3_SECRET_ACCESS_KEY     - S3 secret access key")
	fmt.Println("  S3_ENDPOINT              - S3 endpoint URL")
	fmt.Println("  FTP_HOST                 - FTP server host")
	fmt.Println("  FTP_PORT                 - FTP server port")
	fmt.Println("  FTP_USERNAME             - FTP username")
	fmt.Println("  FTP_PASSWORD             - FTP password")
	fmt.Println("  FTP_BASE_PATH            - FTP base path")
	fmt.Println("  FTP_USE_TLS              - Use FTPS (true/false)")
}
