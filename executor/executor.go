package executor

import (
	"context"
	"fmt"

	"github.com/johnnyasantoss/mediadc-massdedupe/logger"
	"github.com/johnnyasantoss/mediadc-massdedupe/model"
	"github.com/johnnyasantoss/mediadc-massdedupe/remote"
	"github.com/johnnyasantoss/mediadc-massdedupe/selector"
)

// Executor applies delete verdicts against the remote store. Deletions are
// strictly sequential within a group; a single failed delete is logged and
// skipped, never aborts the batch.
type Executor struct {
	remote remote.RemoteProvider
	logger logger.Logger
	dryRun bool
}

// NewExecutor creates a new Executor with the provided dependencies
func NewExecutor(r remote.RemoteProvider, log logger.Logger, dryRun bool) *Executor {
	// Use NoOpLogger if none provided
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Executor{
		remote: r,
		logger: log,
		dryRun: dryRun,
	}
}

// ApplyStats contains statistics from applying one group's verdicts
type ApplyStats struct {
	Deleted      int64 // Files successfully deleted (actual mode)
	DeletedBytes int64 // Bytes reclaimed by successful deletions
	Failed       int64 // Files that failed to delete (actual mode)
	WouldDelete  int64 // Files that would be deleted (dry-run mode)
	WouldBytes   int64 // Bytes that would be reclaimed (dry-run mode)
}

// Add accumulates another group's stats into this one.
func (s *ApplyStats) Add(other *ApplyStats) {
	s.Deleted += other.Deleted
	s.DeletedBytes += other.DeletedBytes
	s.Failed += other.Failed
	s.WouldDelete += other.WouldDelete
	s.WouldBytes += other.WouldBytes
}

func (s *ApplyStats) String() string {
	if s.WouldDelete > 0 && s.Deleted == 0 && s.Failed == 0 {
		sizeMB := float64(s.WouldBytes) / (1024 * 1024)
		return fmt.Sprintf("Apply (dry-run): would_delete=%d, total_size=%d bytes (%.2f MB)",
			s.WouldDelete, s.WouldBytes, sizeMB)
	}
	sizeMB := float64(s.DeletedBytes) / (1024 * 1024)
	return fmt.Sprintf("Apply: deleted=%d, failed=%d, total_size=%d bytes (%.2f MB)",
		s.Deleted, s.Failed, s.DeletedBytes, sizeMB)
}

// Apply walks the selection in evaluation order and deletes every file with
// a delete verdict. Under dry-run the intended action is logged and the
// remote call skipped.
func (e *Executor) Apply(ctx context.Context, group model.DuplicateGroup, sel *selector.Selection) (*ApplyStats, error) {
	stats := &ApplyStats{}

	for _, f := range sel.Files {
		verdict, ok := sel.Verdicts[f.ID]
		if !ok || !verdict.IsDelete() {
			continue
		}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		key := model.NormalizeKey(f.Path)

		if e.dryRun {
			e.logger.Info("Dry-run: would delete %s (%d bytes, reason: %s)", f.Path, f.Size, verdict.Reason)
			stats.WouldDelete++
			stats.WouldBytes += f.Size
			continue
		}

		e.logger.Verbose("Deleting %s (reason: %s)...", f.Path, verdict.Reason)
		if err := e.remote.Delete(ctx, key); err != nil {
			// One failed delete must not stop the rest of the group.
			e.logger.Error("Failed to delete %s: %v", f.Path, err)
			stats.Failed++
			continue
		}

		e.logger.Debug("Deleted %s (group %d)", f.Path, group.ID)
		stats.Deleted++
		stats.DeletedBytes += f.Size
	}

	return stats, nil
}
