package config

import (
	"fmt"
	"strings"
)

// RulesConfig holds the user-supplied retention rule patterns. Both lists
// are case-insensitive substrings matched against logical file paths.
type RulesConfig struct {
	// Exclude patterns mark paths that should be preferred for retention.
	Exclude []string `json:"exclude,omitempty"`
	// Include patterns mark paths that should be preferred for deletion.
	Include []string `json:"include,omitempty"`
}

// Validate validates the rules configuration
func (rc *RulesConfig) Validate() error {
	for _, p := range rc.Exclude {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("exclude patterns must not be empty")
		}
	}
	for _, p := range rc.Include {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("include patterns must not be empty")
		}
	}
	return nil
}

// ParsePatternList splits a comma-separated pattern list as provided via
// flags or environment variables. Empty items are dropped.
func ParsePatternList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
