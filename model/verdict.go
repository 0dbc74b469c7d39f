package model

// VerdictAction is the keep/delete decision for one file.
type VerdictAction int

const (
	ActionKeep VerdictAction = iota
	ActionDelete
)

// DeleteReason explains why a file was marked for deletion.
type DeleteReason string

const (
	// ReasonExcludedDuplicate marks an exclude-matched file for which an
	// earlier file was already chosen as the keeper.
	ReasonExcludedDuplicate DeleteReason = "excluded-duplicate"
	// ReasonIncluded marks a file whose path matched an include pattern.
	ReasonIncluded DeleteReason = "included"
	// ReasonSmaller marks a file outranked by a larger (or equal-size,
	// earlier-sorted) sibling.
	ReasonSmaller DeleteReason = "smaller"
	// ReasonExcludedLastResort marks files dropped by the fallback pass
	// when no file was marked for deletion at all.
	ReasonExcludedLastResort DeleteReason = "excluded-last-resort"
)

// Verdict is the per-file decision produced by the selector. Verdicts are
// computed fresh on every run and never persisted.
type Verdict struct {
	Action VerdictAction
	Reason DeleteReason // set only when Action is ActionDelete
}

// IsDelete reports whether the file is marked for deletion.
func (v Verdict) IsDelete() bool {
	return v.Action == ActionDelete
}
