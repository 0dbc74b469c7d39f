package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/johnnyasantoss/mediadc-massdedupe/model"
)

// Load reads and validates a duplicate report document. Shape problems are
// fatal input errors: nothing may be processed from a malformed report.
func Load(path string) (*model.DuplicateReport, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}

	var rep model.DuplicateReport
	if err := json.Unmarshal(blob, &rep); err != nil {
		return nil, fmt.Errorf("malformed report document: %w", err)
	}

	if err := Validate(&rep); err != nil {
		return nil, err
	}

	return &rep, nil
}

// Validate checks the structural invariants of a report document.
func Validate(rep *model.DuplicateReport) error {
	if rep.Task == nil {
		return fmt.Errorf("malformed report: missing Task")
	}
	if rep.Results == nil {
		return fmt.Errorf("malformed report: missing Results")
	}

	for _, group := range rep.Results {
		for _, f := range group.Files {
			if f.Path == "" {
				return fmt.Errorf("malformed report: group %d contains a file without a path", group.ID)
			}
			if f.Size < 0 {
				return fmt.Errorf("malformed report: file %s has negative size", f.Path)
			}
		}
	}

	return nil
}

// CollectPaths returns the distinct logical paths referenced by the report.
func CollectPaths(rep *model.DuplicateReport) []string {
	seen := make(map[string]struct{})
	paths := make([]string, 0)
	for _, group := range rep.Results {
		for _, f := range group.Files {
			if _, ok := seen[f.Path]; ok {
				continue
			}
			seen[f.Path] = struct{}{}
			paths = append(paths, f.Path)
		}
	}
	return paths
}
