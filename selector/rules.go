package selector

import "strings"

// RuleSet holds the user's retention rules. Patterns are case-insensitive
// substrings matched against the full logical path. Exclude wins over
// Include when a path matches both.
type RuleSet struct {
	exclude []string
	include []string
}

// NewRuleSet builds a RuleSet from raw pattern lists.
func NewRuleSet(exclude, include []string) RuleSet {
	return RuleSet{
		exclude: lowerAll(exclude),
		include: lowerAll(include),
	}
}

// MatchesExclude reports whether the path matches any exclude pattern.
func (r RuleSet) MatchesExclude(path string) bool {
	return matchAny(path, r.exclude)
}

// MatchesInclude reports whether the path matches any include pattern.
func (r RuleSet) MatchesInclude(path string) bool {
	return matchAny(path, r.include)
}

func matchAny(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	lowered := strings.ToLower(path)
	for _, p := range patterns {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

func lowerAll(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return out
}
