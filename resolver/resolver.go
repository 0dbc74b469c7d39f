package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/johnnyasantoss/mediadc-massdedupe/cache"
	"github.com/johnnyasantoss/mediadc-massdedupe/logger"
	"github.com/johnnyasantoss/mediadc-massdedupe/model"
	"github.com/johnnyasantoss/mediadc-massdedupe/remote"
)

// Options tunes the resolver's persistence behaviour.
type Options struct {
	// CacheEnabled controls whether lookups touch durable storage at all.
	// When false the persistent cache is neither read nor written; lookups
	// are memoized in memory for the current run only.
	CacheEnabled bool
	// FlushEvery is the number of uncached lookups between flushes.
	FlushEvery int
}

// Resolver answers "does this path still exist remotely" by combining the
// persisted status cache with live remote queries. Trash paths are
// classified without a remote call.
type Resolver struct {
	cache   cache.StatusCache
	remote  remote.RemoteProvider
	logger  logger.Logger
	opts    Options
	unknown map[string]model.RemoteStatus // run-local, never persisted
	memo    map[string]model.RemoteStatus // run-local store used when caching is disabled
}

// NewResolver creates a new Resolver with the provided dependencies
func NewResolver(c cache.StatusCache, r remote.RemoteProvider, log logger.Logger, opts Options) *Resolver {
	// Use NoOpLogger if none provided
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = 500
	}
	return &Resolver{
		cache:   c,
		remote:  r,
		logger:  log,
		opts:    opts,
		unknown: make(map[string]model.RemoteStatus),
		memo:    make(map[string]model.RemoteStatus),
	}
}

// ResolveStats contains statistics from a Resolve pass
type ResolveStats struct {
	TotalPaths   int64 // Distinct logical paths requested
	CacheHits    int64 // Paths answered from the persisted cache
	TrashSkipped int64 // Trash-namespace paths classified without a remote call
	Queried      int64 // Remote status queries issued
	Live         int64 // Paths confirmed to exist
	Absent       int64 // Paths confirmed gone (including trash)
	Unknown      int64 // Paths whose query failed transiently
	Flushes      int64 // Cache flushes performed
}

func (s *ResolveStats) String() string {
	return fmt.Sprintf("Resolve: paths=%d, cache_hits=%d, trash=%d, queried=%d, live=%d, absent=%d, unknown=%d, flushes=%d",
		s.TotalPaths, s.CacheHits, s.TrashSkipped, s.Queried, s.Live, s.Absent, s.Unknown, s.Flushes)
}

// Resolve returns the remote status for every requested logical path. The
// result is keyed by the original path; the cache and the remote store are
// keyed by the normalized form. Per-path query failures are absorbed here:
// they become StatusUnknown entries, never errors.
func (r *Resolver) Resolve(ctx context.Context, paths []string) (map[string]model.RemoteStatus, *ResolveStats, error) {
	stats := &ResolveStats{}
	result := make(map[string]model.RemoteStatus, len(paths))

	// Deterministic query and log order
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	// Start periodic RPS logging for the query phase
	rpsTicker := time.NewTicker(1 * time.Second)
	defer rpsTicker.Stop()

	rpsCtx, rpsCancel := context.WithCancel(ctx)
	rpsDone := make(chan struct{})
	go func() {
		defer close(rpsDone)
		for {
			select {
			case <-rpsCtx.Done():
				return
			case <-rpsTicker.C:
				if rps := r.remote.GetCurrentRPS(); rps > 0 {
					r.logger.Info("Status queries: current RPS = %d req/s", rps)
				}
			}
		}
	}()
	defer func() {
		rpsCancel()
		<-rpsDone
	}()

	lookups := 0
	for _, p := range sorted {
		select {
		case <-ctx.Done():
			return result, stats, ctx.Err()
		default:
		}

		if _, ok := result[p]; ok {
			continue // duplicate input path
		}
		stats.TotalPaths++

		key := model.NormalizeKey(p)

		// Transient failures from earlier in this run are not re-queried.
		if status, ok := r.unknown[key]; ok {
			result[p] = status
			stats.Unknown++
			continue
		}

		if r.opts.CacheEnabled {
			if status, err := r.cache.Get(key); err == nil {
				result[p] = *status
				stats.CacheHits++
				r.count(stats, *status)
				continue
			} else if !errors.Is(err, cache.ErrKeyNotFound) {
				r.logger.Warn("Cache read failed for %s: %v", key, err)
			}
		} else if status, ok := r.memo[key]; ok {
			result[p] = status
			stats.CacheHits++
			r.count(stats, status)
			continue
		}

		status := r.lookup(ctx, p, key, stats)
		result[p] = status
		r.count(stats, status)

		if status.State == model.StatusUnknown {
			// Unknown is valid for this run only; keep it out of the
			// persistent key space so the path is re-queried next time.
			r.unknown[key] = status
			continue
		}

		// With caching disabled the persistent store must stay untouched:
		// some backends make every Set durable on its own.
		if !r.opts.CacheEnabled {
			r.memo[key] = status
			continue
		}

		if err := r.cache.Set(key, status); err != nil {
			r.logger.Warn("Cache write failed for %s: %v", key, err)
		}

		lookups++
		if lookups%r.opts.FlushEvery == 0 {
			r.flush(stats)
		}
	}

	r.flush(stats)
	return result, stats, nil
}

// lookup classifies a single uncached path.
func (r *Resolver) lookup(ctx context.Context, path, key string, stats *ResolveStats) model.RemoteStatus {
	if model.InTrash(path) {
		stats.TrashSkipped++
		r.logger.Verbose("Trash path %s treated as absent", path)
		return model.RemoteStatus{State: model.StatusAbsent}
	}

	stats.Queried++
	meta, err := r.remote.Stat(ctx, key)
	if err == nil {
		return model.RemoteStatus{
			State:   model.StatusLive,
			Size:    meta.Size,
			ModTime: meta.ModTime,
			Etag:    meta.Etag,
		}
	}

	if errors.Is(err, remote.ErrNotFound) {
		// A vanished file is a legitimate input, not a crash condition.
		r.logger.Warn("Remote object %s is gone, treating as absent", path)
		return model.RemoteStatus{State: model.StatusAbsent}
	}

	r.logger.Warn("Status query failed for %s, treating as unknown for this run: %v", path, err)
	return model.RemoteStatus{State: model.StatusUnknown}
}

// flush persists the cache if caching is enabled. Best-effort.
func (r *Resolver) flush(stats *ResolveStats) {
	if !r.opts.CacheEnabled {
		return
	}
	if err := r.cache.Flush(); err != nil {
		r.logger.Warn("Cache flush failed: %v", err)
		return
	}
	stats.Flushes++
}

func (r *Resolver) count(stats *ResolveStats, status model.RemoteStatus) {
	switch status.State {
	case model.StatusLive:
		stats.Live++
	case model.StatusAbsent:
		stats.Absent++
	case model.StatusUnknown:
		stats.Unknown++
	}
}
