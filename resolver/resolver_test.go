package resolver

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/johnnyasantoss/mediadc-massdedupe/cache"
	"github.com/johnnyasantoss/mediadc-massdedupe/config"
	"github.com/johnnyasantoss/mediadc-massdedupe/logger"
	"github.com/johnnyasantoss/mediadc-massdedupe/model"
	"github.com/johnnyasantoss/mediadc-massdedupe/remote"
	"github.com/stretchr/testify/require"
)

// fakeRemote serves Stat from a fixed object map and records every call.
type fakeRemote struct {
	objects   map[string]remote.ObjectMeta
	failures  map[string]error
	statCalls map[string]int
	statDelay time.Duration
	rps       int64
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		objects:   make(map[string]remote.ObjectMeta),
		failures:  make(map[string]error),
		statCalls: make(map[string]int),
	}
}

func (f *fakeRemote) Stat(_ context.Context, key string) (*remote.ObjectMeta, error) {
	f.statCalls[key]++
	if f.statDelay > 0 {
		time.Sleep(f.statDelay)
	}
	if err, ok := f.failures[key]; ok {
		return nil, err
	}
	meta, ok := f.objects[key]
	if !ok {
		return nil, remote.ErrNotFound
	}
	return &meta, nil
}

func (f *fakeRemote) Delete(_ context.Context, key string) error { return nil }
func (f *fakeRemote) GetCurrentRPS() int64                       { return f.rps }
func (f *fakeRemote) Close() error                               { return nil }

func (f *fakeRemote) totalStatCalls() int {
	total := 0
	for _, n := range f.statCalls {
		total += n
	}
	return total
}

// countingCache is an in-memory StatusCache that records flushes.
type countingCache struct {
	entries map[string]model.RemoteStatus
	flushes int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[string]model.RemoteStatus)}
}

func (c *countingCache) Set(key string, status model.RemoteStatus) error {
	c.entries[key] = status
	return nil
}

func (c *countingCache) Get(key string) (*model.RemoteStatus, error) {
	status, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	return &status, nil
}

func (c *countingCache) Flush() error { c.flushes++; return nil }

func (c *countingCache) DumpAll() (map[string]model.RemoteStatus, error) { return c.entries, nil }
func (c *countingCache) Count() (int64, error)                           { return int64(len(c.entries)), nil }
func (c *countingCache) Close() error                                    { return nil }
func (c *countingCache) Destroy() error                                  { return nil }

func newTestSnapshotCache(t *testing.T) cache.StatusCache {
	t.Helper()
	c, err := cache.NewSnapshotCache(&config.SnapshotConfig{
		Path: filepath.Join(t.TempDir(), "statuscache.json"),
	})
	require.NoError(t, err)
	return c
}

func TestResolve_ClassifiesLiveAndAbsent(t *testing.T) {
	rem := newFakeRemote()
	rem.objects["photos/a.jpg"] = remote.ObjectMeta{Size: 100, ModTime: 1700000000, Etag: "abc"}

	c := newTestSnapshotCache(t)
	r := NewResolver(c, rem, nil, Options{CacheEnabled: true})

	statuses, stats, err := r.Resolve(context.Background(), []string{
		"/alice/files/photos/a.jpg",
		"/alice/files/photos/gone.jpg",
	})
	require.NoError(t, err)

	live := statuses["/alice/files/photos/a.jpg"]
	require.Equal(t, model.StatusLive, live.State)
	require.Equal(t, int64(100), live.Size)
	require.Equal(t, "abc", live.Etag)

	require.Equal(t, model.StatusAbsent, statuses["/alice/files/photos/gone.jpg"].State)

	require.Equal(t, int64(2), stats.TotalPaths)
	require.Equal(t, int64(2), stats.Queried)
	require.Equal(t, int64(1), stats.Live)
	require.Equal(t, int64(1), stats.Absent)

	// Both outcomes are persisted under the normalized key.
	cached, err := c.Get("photos/gone.jpg")
	require.NoError(t, err)
	require.Equal(t, model.StatusAbsent, cached.State)
}

func TestResolve_TrashNeverHitsRemote(t *testing.T) {
	rem := newFakeRemote()
	c := newTestSnapshotCache(t)
	r := NewResolver(c, rem, nil, Options{CacheEnabled: true})

	statuses, stats, err := r.Resolve(context.Background(), []string{
		"/alice/files_trashbin/files/a.jpg.d1600000000",
	})
	require.NoError(t, err)

	require.Equal(t, model.StatusAbsent, statuses["/alice/files_trashbin/files/a.jpg.d1600000000"].State)
	require.Equal(t, int64(1), stats.TrashSkipped)
	require.Equal(t, int64(0), stats.Queried)
	require.Zero(t, rem.totalStatCalls())
}

func TestResolve_CachedPathsSkipRemote(t *testing.T) {
	rem := newFakeRemote()
	rem.objects["photos/a.jpg"] = remote.ObjectMeta{Size: 100}

	c := newTestSnapshotCache(t)
	paths := []string{"/alice/files/photos/a.jpg", "/alice/files/photos/gone.jpg"}

	r := NewResolver(c, rem, nil, Options{CacheEnabled: true})
	_, _, err := r.Resolve(context.Background(), paths)
	require.NoError(t, err)
	require.Equal(t, 2, rem.totalStatCalls())

	// A second resolver over the same cache answers everything without
	// touching the remote store.
	r2 := NewResolver(c, rem, nil, Options{CacheEnabled: true})
	statuses, stats, err := r2.Resolve(context.Background(), paths)
	require.NoError(t, err)
	require.Equal(t, 2, rem.totalStatCalls())
	require.Equal(t, int64(2), stats.CacheHits)
	require.Equal(t, model.StatusLive, statuses["/alice/files/photos/a.jpg"].State)
}

func TestResolve_TransientFailureIsUnknownAndNotPersisted(t *testing.T) {
	rem := newFakeRemote()
	rem.failures["photos/a.jpg"] = errors.New("connection reset")

	c := newTestSnapshotCache(t)
	r := NewResolver(c, rem, nil, Options{CacheEnabled: true})

	statuses, stats, err := r.Resolve(context.Background(), []string{"/alice/files/photos/a.jpg"})
	require.NoError(t, err)
	require.Equal(t, model.StatusUnknown, statuses["/alice/files/photos/a.jpg"].State)
	require.Equal(t, int64(1), stats.Unknown)

	// Unknown stays out of the persistent cache so the next run re-queries.
	_, err = c.Get("photos/a.jpg")
	require.ErrorIs(t, err, cache.ErrKeyNotFound)

	// Within the same run the failed path is not re-queried.
	_, stats, err = r.Resolve(context.Background(), []string{"/alice/files/photos/a.jpg"})
	require.NoError(t, err)
	require.Equal(t, 1, rem.statCalls["photos/a.jpg"])
	require.Equal(t, int64(1), stats.Unknown)
}

func TestResolve_DuplicateInputCountedOnce(t *testing.T) {
	rem := newFakeRemote()
	rem.objects["photos/a.jpg"] = remote.ObjectMeta{Size: 100}

	c := newTestSnapshotCache(t)
	r := NewResolver(c, rem, nil, Options{CacheEnabled: true})

	_, stats, err := r.Resolve(context.Background(), []string{
		"/alice/files/photos/a.jpg",
		"/alice/files/photos/a.jpg",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalPaths)
	require.Equal(t, 1, rem.totalStatCalls())
}

func TestResolve_FlushBatching(t *testing.T) {
	rem := newFakeRemote()
	paths := []string{
		"/alice/files/a.jpg",
		"/alice/files/b.jpg",
		"/alice/files/c.jpg",
		"/alice/files/d.jpg",
		"/alice/files/e.jpg",
	}
	for _, p := range paths {
		rem.objects[model.NormalizeKey(p)] = remote.ObjectMeta{Size: 1}
	}

	c := newCountingCache()
	r := NewResolver(c, rem, nil, Options{CacheEnabled: true, FlushEvery: 2})

	_, stats, err := r.Resolve(context.Background(), paths)
	require.NoError(t, err)

	// Two batch flushes (after lookups 2 and 4) plus the final one.
	require.Equal(t, 3, c.flushes)
	require.Equal(t, int64(3), stats.Flushes)
}

func TestResolve_CacheDisabledSkipsFlush(t *testing.T) {
	rem := newFakeRemote()
	rem.objects["a.jpg"] = remote.ObjectMeta{Size: 1}

	c := newCountingCache()
	r := NewResolver(c, rem, nil, Options{CacheEnabled: false})

	_, stats, err := r.Resolve(context.Background(), []string{"/alice/files/a.jpg"})
	require.NoError(t, err)
	require.Zero(t, c.flushes)
	require.Zero(t, stats.Flushes)
	require.Empty(t, c.entries)
}

func TestResolve_CacheDisabledPersistsNothing(t *testing.T) {
	// Bbolt makes every Set durable on its own, so a leaked write would
	// survive without any flush.
	rem := newFakeRemote()
	rem.objects["a.jpg"] = remote.ObjectMeta{Size: 1}

	c, err := cache.NewBboltCache(&config.BboltConfig{
		Path: filepath.Join(t.TempDir(), "statuscache.db"),
	})
	require.NoError(t, err)
	defer c.Close()

	r := NewResolver(c, rem, nil, Options{CacheEnabled: false})
	statuses, _, err := r.Resolve(context.Background(), []string{"/alice/files/a.jpg"})
	require.NoError(t, err)
	require.Equal(t, model.StatusLive, statuses["/alice/files/a.jpg"].State)

	_, err = c.Get("a.jpg")
	require.ErrorIs(t, err, cache.ErrKeyNotFound)
	count, err := c.Count()
	require.NoError(t, err)
	require.Zero(t, count)

	// The run still memoizes: a second pass issues no new queries.
	_, stats, err := r.Resolve(context.Background(), []string{"/alice/files/a.jpg"})
	require.NoError(t, err)
	require.Equal(t, 1, rem.totalStatCalls())
	require.Equal(t, int64(1), stats.CacheHits)
}

func TestResolve_LogsQueryRate(t *testing.T) {
	rem := newFakeRemote()
	rem.objects["a.jpg"] = remote.ObjectMeta{Size: 1}
	rem.objects["b.jpg"] = remote.ObjectMeta{Size: 2}
	rem.statDelay = 700 * time.Millisecond
	rem.rps = 4

	var buf bytes.Buffer
	log := logger.NewLoggerWithWriter(&config.LoggerConfig{
		Level:      config.LogLevelInfo,
		TimeFormat: "",
	}, &buf)

	r := NewResolver(newCountingCache(), rem, log, Options{CacheEnabled: true})
	_, _, err := r.Resolve(context.Background(), []string{
		"/alice/files/a.jpg",
		"/alice/files/b.jpg",
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "current RPS = 4")
}

func TestResolve_ContextCancelled(t *testing.T) {
	rem := newFakeRemote()
	c := newCountingCache()
	r := NewResolver(c, rem, nil, Options{CacheEnabled: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Resolve(ctx, []string{"/alice/files/a.jpg"})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, rem.totalStatCalls())
}
