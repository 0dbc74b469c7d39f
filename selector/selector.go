package selector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/johnnyasantoss/mediadc-massdedupe/model"
)

// ErrVerdictInvariant reports a defect in the selection algorithm itself:
// a processed group must end up with exactly one keeper. Callers treat this
// as fatal, not as a recoverable condition.
var ErrVerdictInvariant = errors.New("verdict count invariant violated")

// Selection is the outcome of selecting one keeper inside a duplicate group.
type Selection struct {
	// Files are the live members of the group in evaluation order:
	// largest first, longer paths first among equal sizes.
	Files []model.FileRecord
	// Verdicts maps file ID to its keep/delete decision. Empty for inert
	// groups (fewer than 2 live files).
	Verdicts map[int64]model.Verdict
}

// DeleteCount returns the number of delete verdicts in the selection.
func (s *Selection) DeleteCount() int {
	n := 0
	for _, v := range s.Verdicts {
		if v.IsDelete() {
			n++
		}
	}
	return n
}

// Select decides which single file of a duplicate group survives. It is a
// pure function over the group, a liveness predicate and the rule set:
// no I/O, no shared state.
//
// Precedence: exclude-matched paths are preferred for retention, include-
// matched paths for deletion, everything else ranks by size. Two correction
// passes guarantee exactly one keeper whatever the rules matched.
func Select(group model.DuplicateGroup, isLive func(path string) bool, rules RuleSet) (*Selection, error) {
	live := make([]model.FileRecord, 0, len(group.Files))
	for _, f := range group.Files {
		if isLive == nil || isLive(f.Path) {
			live = append(live, f)
		}
	}

	// Groups with fewer than 2 live files are inert: nothing to delete.
	if len(live) < 2 {
		return &Selection{Files: live, Verdicts: map[int64]model.Verdict{}}, nil
	}

	// Largest files first. Among equal sizes the longer path goes first so
	// it is evaluated (and discarded) before its shorter-path siblings.
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].Size != live[j].Size {
			return live[i].Size > live[j].Size
		}
		return len(live[i].Path) > len(live[j].Path)
	})

	verdicts := make(map[int64]model.Verdict, len(live))
	deleted := 0

	// firstNonIncluded tracks the position whose file is protected by the
	// plain size rule. It starts at the front and shifts forward past
	// include-deleted files of the same size, so an equal-size neighbour of
	// an included file is still kept.
	firstNonIncluded := 0
	keptOne := false

	for i, f := range live {
		switch {
		case rules.MatchesExclude(f.Path):
			if keptOne {
				verdicts[f.ID] = deleteVerdict(model.ReasonExcludedDuplicate)
				deleted++
			} else {
				keptOne = true
			}
		case rules.MatchesInclude(f.Path):
			if i == firstNonIncluded && i+1 < len(live) && live[i+1].Size == f.Size {
				firstNonIncluded++
			}
			verdicts[f.ID] = deleteVerdict(model.ReasonIncluded)
			deleted++
		case i > firstNonIncluded:
			verdicts[f.ID] = deleteVerdict(model.ReasonSmaller)
			deleted++
		default:
			keptOne = true
		}
	}

	// Correction pass: every file got marked. Bring back, in order of
	// preference, the first file matching no include pattern, else the file
	// at the protected position, else the front of the sequence.
	if deleted == len(live) {
		fallback := -1
		for i, f := range live {
			if !rules.MatchesInclude(f.Path) {
				fallback = i
				break
			}
		}
		if fallback < 0 {
			if firstNonIncluded < len(live) {
				fallback = firstNonIncluded
			} else {
				fallback = 0
			}
		}
		delete(verdicts, live[fallback].ID)
		deleted--
	}

	// Correction pass: nothing got marked. Keep the front of the sequence,
	// drop everything behind it.
	if deleted == 0 {
		for _, f := range live[1:] {
			verdicts[f.ID] = deleteVerdict(model.ReasonExcludedLastResort)
			deleted++
		}
	}

	// Everything left unmarked is kept.
	for _, f := range live {
		if _, ok := verdicts[f.ID]; !ok {
			verdicts[f.ID] = model.Verdict{Action: model.ActionKeep}
		}
	}

	if deleted != len(live)-1 {
		return nil, fmt.Errorf("%w: group %d has %d live files but %d delete verdicts",
			ErrVerdictInvariant, group.ID, len(live), deleted)
	}

	return &Selection{Files: live, Verdicts: verdicts}, nil
}

func deleteVerdict(reason model.DeleteReason) model.Verdict {
	return model.Verdict{Action: model.ActionDelete, Reason: reason}
}
