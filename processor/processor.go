package processor

import (
	"context"
	"fmt"

	"github.com/johnnyasantoss/mediadc-massdedupe/executor"
	"github.com/johnnyasantoss/mediadc-massdedupe/logger"
	"github.com/johnnyasantoss/mediadc-massdedupe/model"
	"github.com/johnnyasantoss/mediadc-massdedupe/report"
	"github.com/johnnyasantoss/mediadc-massdedupe/resolver"
	"github.com/johnnyasantoss/mediadc-massdedupe/selector"
)

// Runner wires resolver, selector and executor into one pass over a
// duplicate report. Groups are processed strictly sequentially.
type Runner struct {
	report   *model.DuplicateReport
	resolver *resolver.Resolver
	executor *executor.Executor
	rules    selector.RuleSet
	logger   logger.Logger
}

// NewRunner creates a new Runner with the provided dependencies
func NewRunner(rep *model.DuplicateReport, res *resolver.Resolver, exec *executor.Executor, rules selector.RuleSet, log logger.Logger) *Runner {
	// Use NoOpLogger if none provided
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Runner{
		report:   rep,
		resolver: res,
		executor: exec,
		rules:    rules,
		logger:   log,
	}
}

// RunStats contains statistics from a full run
type RunStats struct {
	GroupsTotal     int64 // Groups present in the report
	GroupsInert     int64 // Groups with fewer than 2 live files (no action)
	GroupsProcessed int64 // Groups that produced verdicts
	Apply           executor.ApplyStats
}

func (s *RunStats) String() string {
	return fmt.Sprintf("Run: groups=%d, processed=%d, inert=%d; %s",
		s.GroupsTotal, s.GroupsProcessed, s.GroupsInert, s.Apply.String())
}

// Run executes the whole pipeline: resolve every referenced path, then
// select and apply verdicts group by group. Per-path and per-file failures
// are absorbed downstream; only input problems, context cancellation and
// selector consistency defects surface as errors.
func (r *Runner) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	task := "unnamed"
	if r.report.Task != nil && r.report.Task.Name != "" {
		task = r.report.Task.Name
	}
	r.logger.Info("Starting deduplication run for task %q (%d groups)", task, len(r.report.Results))

	// 1. Resolve the status of every referenced path
	r.logger.Debug("Step 1: Resolving remote status for referenced paths")
	paths := report.CollectPaths(r.report)
	statuses, resolveStats, err := r.resolver.Resolve(ctx, paths)
	if err != nil {
		r.logger.Error("Failed to resolve remote statuses: %v", err)
		return stats, err
	}
	r.logger.Info(resolveStats.String())

	isLive := func(p string) bool {
		status, ok := statuses[p]
		return ok && status.IsLive()
	}

	// 2. Select and apply, one group at a time
	r.logger.Debug("Step 2: Selecting keepers and applying verdicts")
	summary := report.NewTree()

	for _, group := range r.report.Results {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		stats.GroupsTotal++

		sel, err := selector.Select(group, isLive, r.rules)
		if err != nil {
			// Selector consistency errors are defects, not run conditions.
			r.logger.Error("Selection failed for group %d: %v", group.ID, err)
			return stats, err
		}

		if len(sel.Verdicts) == 0 {
			stats.GroupsInert++
			r.logger.Verbose("Group %d is inert (%d live files)", group.ID, len(sel.Files))
			continue
		}
		stats.GroupsProcessed++

		applyStats, err := r.executor.Apply(ctx, group, sel)
		if err != nil {
			return stats, err
		}
		stats.Apply.Add(applyStats)

		for _, f := range sel.Files {
			if v, ok := sel.Verdicts[f.ID]; ok && v.IsDelete() {
				summary.Add(f.Path, f.Size)
			}
		}
	}

	// 3. Summary
	r.logger.Info(stats.String())
	if summary.TotalFiles() > 0 {
		r.logger.Info("Deletion summary by directory:")
		for _, line := range summary.Lines() {
			r.logger.Info("  %s", line)
		}
	}

	r.logger.Info("Deduplication run completed")
	return stats, nil
}
