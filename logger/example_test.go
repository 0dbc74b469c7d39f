package logger_test

import (
	"github.com/johnnyasantoss/mediadc-massdedupe/config"
	"github.com/johnnyasantoss/mediadc-massdedupe/logger"
)

// Example demonstrates basic logger usage
func Example_basic() {
	cfg := &config.LoggerConfig{
		Level:      config.LogLevelInfo,
		TimeFormat: "", // Disable timestamp for example
	}

	log := logger.NewLogger(cfg)

	log.Info("Cleanup started")
	log.Debug("This won't be shown (level is Info)")
	log.Error("An error occurred: %s", "connection failed")
	log.Warn("Warning: remote responses slow")

	// Output will show Info, Warn, and Error messages
}

// Example_withContext demonstrates using logger with context fields
func Example_withContext() {
	cfg := &config.LoggerConfig{
		Level:      config.LogLevelInfo,
		TimeFormat: "",
	}

	log := logger.NewLogger(cfg)

	// Create a logger with context for a specific component
	resolverLog := log.With("component", "resolver")
	resolverLog.Info("Resolution started")

	// Add more context
	groupLog := resolverLog.With("group_id", 5)
	groupLog.Info("Resolving group paths")

	// Use WithFields for multiple context values at once
	cacheLog := log.WithFields(map[string]interface{}{
		"component": "cache",
		"operation": "flush",
		"count":     1000,
	})
	cacheLog.Info("Cache flush completed")
}

// Example_injection shows how to inject logger into a struct
func Example_injection() {
	cfg := &config.LoggerConfig{
		Level:      config.LogLevelDebug,
		TimeFormat: "15:04:05",
	}

	log := logger.NewLogger(cfg)

	// Example service that uses the logger
	type Service struct {
		logger logger.Logger
	}

	svc := &Service{
		logger: log.With("service", "example"),
	}

	svc.logger.Info("Service initialized")
	svc.logger.Debug("Configuration loaded")
}
