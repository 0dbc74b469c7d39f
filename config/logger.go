package config

import "fmt"

// LogLevel selects how chatty a run is. Levels are cumulative: each one
// includes everything the previous ones print.
type LogLevel string

const (
	LogLevelSilent  LogLevel = "silent"  // nothing at all
	LogLevelError   LogLevel = "error"   // failures only
	LogLevelInfo    LogLevel = "info"    // run progress, warnings and failures
	LogLevelDebug   LogLevel = "debug"   // per-step detail
	LogLevelVerbose LogLevel = "verbose" // per-path detail
)

// LoggerConfig holds the logging configuration
type LoggerConfig struct {
	Level      LogLevel `json:"level"`
	AddSource  bool     `json:"add_source,omitempty"`  // include caller file:line in every line
	TimeFormat string   `json:"time_format,omitempty"` // timestamp layout; empty disables timestamps
}

// Validate checks that the configured level is one of the known names.
func (lc *LoggerConfig) Validate() error {
	switch lc.Level {
	case LogLevelSilent, LogLevelError, LogLevelInfo, LogLevelDebug, LogLevelVerbose:
		return nil
	case "":
		// Empty is fine, ApplyDefaults fills it in
		return nil
	default:
		return fmt.Errorf("invalid log level: %s (must be one of: silent, error, info, debug, verbose)", lc.Level)
	}
}

// ApplyDefaults sets default values for logger configuration
func (lc *LoggerConfig) ApplyDefaults() {
	if lc.Level == "" {
		lc.Level = LogLevelInfo
	}
	if lc.TimeFormat == "" {
		lc.TimeFormat = "2006-01-02 15:04:05"
	}
}
