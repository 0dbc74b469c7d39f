package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/johnnyasantoss/mediadc-massdedupe/config"
	"github.com/johnnyasantoss/mediadc-massdedupe/model"
	"github.com/stretchr/testify/require"
)

func newTestSnapshotCache(t *testing.T) (*SnapshotCache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.json.statuscache.json")
	c, err := NewSnapshotCache(&config.SnapshotConfig{Path: path})
	require.NoError(t, err)
	return c, path
}

func TestNewSnapshotCache_EmptyPath(t *testing.T) {
	_, err := NewSnapshotCache(&config.SnapshotConfig{})
	require.Error(t, err)
}

func TestSnapshotCache_SetGet(t *testing.T) {
	c, _ := newTestSnapshotCache(t)

	live := model.RemoteStatus{State: model.StatusLive, Size: 100, ModTime: 1700000000, Etag: "abc"}
	require.NoError(t, c.Set("photos/a.jpg", live))

	got, err := c.Get("photos/a.jpg")
	require.NoError(t, err)
	require.Equal(t, live, *got)

	_, err = c.Get("photos/missing.jpg")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSnapshotCache_FlushAndReload(t *testing.T) {
	c, path := newTestSnapshotCache(t)

	require.NoError(t, c.Set("photos/a.jpg", model.RemoteStatus{State: model.StatusLive, Size: 100}))
	require.NoError(t, c.Set("photos/gone.jpg", model.RemoteStatus{State: model.StatusAbsent}))
	require.NoError(t, c.Flush())

	// A fresh cache over the same file sees the persisted entries.
	reloaded, err := NewSnapshotCache(&config.SnapshotConfig{Path: path})
	require.NoError(t, err)

	live, err := reloaded.Get("photos/a.jpg")
	require.NoError(t, err)
	require.Equal(t, model.StatusLive, live.State)
	require.Equal(t, int64(100), live.Size)

	absent, err := reloaded.Get("photos/gone.jpg")
	require.NoError(t, err)
	require.Equal(t, model.StatusAbsent, absent.State)

	count, err := reloaded.Count()
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestSnapshotCache_AbsentWrittenAsFalse(t *testing.T) {
	c, path := newTestSnapshotCache(t)

	require.NoError(t, c.Set("photos/gone.jpg", model.RemoteStatus{State: model.StatusAbsent}))
	require.NoError(t, c.Flush())

	blob, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(blob, &raw))
	require.Equal(t, "false", string(raw["photos/gone.jpg"]))
}

func TestSnapshotCache_FlushSkippedWhenClean(t *testing.T) {
	c, path := newTestSnapshotCache(t)

	require.NoError(t, c.Flush())
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "clean cache must not touch the snapshot file")
}

func TestSnapshotCache_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statuscache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c, err := NewSnapshotCache(&config.SnapshotConfig{Path: path})
	require.NoError(t, err)

	count, err := c.Count()
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func TestSnapshotCache_DumpAll(t *testing.T) {
	c, _ := newTestSnapshotCache(t)

	require.NoError(t, c.Set("a", model.RemoteStatus{State: model.StatusLive, Size: 1}))
	require.NoError(t, c.Set("b", model.RemoteStatus{State: model.StatusAbsent}))

	all, err := c.DumpAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, model.StatusLive, all["a"].State)
	require.Equal(t, model.StatusAbsent, all["b"].State)
}

func TestSnapshotCache_Destroy(t *testing.T) {
	c, path := newTestSnapshotCache(t)

	require.NoError(t, c.Set("a", model.RemoteStatus{State: model.StatusLive}))
	require.NoError(t, c.Flush())
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, c.Destroy())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Destroying an already-removed snapshot is not an error
	require.NoError(t, c.Destroy())
}

func TestCreateCache_Snapshot(t *testing.T) {
	cfg := &config.CacheConfig{
		CacheType: config.CacheTypeSnapshot,
		Enabled:   true,
		Snapshot:  &config.SnapshotConfig{Path: filepath.Join(t.TempDir(), "cache.json")},
	}

	c, err := CreateCache(cfg)
	require.NoError(t, err)
	require.IsType(t, &SnapshotCache{}, c)
	require.NoError(t, c.Close())
}

func TestCreateCache_UnsupportedType(t *testing.T) {
	cfg := &config.CacheConfig{CacheType: "redis"}

	_, err := CreateCache(cfg)
	require.Error(t, err)
}
