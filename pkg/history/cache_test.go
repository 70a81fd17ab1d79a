package history

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFetchBoom = errors.New("boom")

// fakeProvider serves canned histories keyed by table path and counts fetches
// so tests can assert the cache never refetches a loaded identity.
type fakeProvider struct {
	tables     map[string][]VersionRecord
	fetchCalls map[string]int
	failPaths  map[string]bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		tables:     map[string][]VersionRecord{},
		fetchCalls: map[string]int{},
		failPaths:  map[string]bool{},
	}
}

func (f *fakeProvider) addTable(path string, versions int) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for v := 0; v < versions; v++ {
		f.tables[path] = append(f.tables[path], VersionRecord{
			TablePath:  path,
			Version:    uint64(v),
			Timestamp:  base.Add(time.Duration(v) * time.Hour),
			Operation:  "WRITE",
			TotalRows:  int64((v + 1) * 10),
			TotalBytes: int64((v + 1) * 1024),
		})
	}
}

func (f *fakeProvider) List(_ context.Context, _ string, _ bool, _ int) ([]string, error) {
	paths := make([]string, 0, len(f.tables))
	for path := range f.tables {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func (f *fakeProvider) Fetch(_ context.Context, root string, _ bool, _ int) ([]TableHistory, error) {
	f.fetchCalls[root]++
	if f.failPaths[root] {
		return nil, errFetchBoom
	}
	records, ok := f.tables[root]
	if !ok {
		return nil, nil
	}
	return []TableHistory{{Path: root, Records: records}}, nil
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel) // Quiet for tests
	return log
}

func TestDelta(t *testing.T) {
	requested := []Identity{
		{Path: "lake/a", Name: "a"},
		{Path: "lake/b", Name: "b"},
		{Path: "lake/c", Name: "c"},
	}

	tests := []struct {
		name     string
		loaded   map[string]bool
		expected []string
	}{
		{name: "nothing loaded", loaded: map[string]bool{}, expected: []string{"lake/a", "lake/b", "lake/c"}},
		{name: "partially loaded", loaded: map[string]bool{"lake/b": true}, expected: []string{"lake/a", "lake/c"}},
		{name: "all loaded", loaded: map[string]bool{"lake/a": true, "lake/b": true, "lake/c": true}, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := Delta(requested, tt.loaded)
			var paths []string
			for _, id := range missing {
				paths = append(paths, id.Path)
			}
			assert.Equal(t, tt.expected, paths)
		})
	}
}

func TestCache_LoadIdempotent(t *testing.T) {
	provider := newFakeProvider()
	provider.addTable("lake/a", 3)
	cache := NewCache(testLogger(), provider, 0)

	ids := []Identity{{Path: "lake/a", Name: "a"}}
	require.NoError(t, cache.Load(context.Background(), ids))
	assert.Equal(t, 3, cache.Snapshot().Len())

	// A second load of the same identity issues no provider call and leaves
	// the dataset unchanged.
	before := cache.Snapshot()
	require.NoError(t, cache.Load(context.Background(), ids))
	assert.Equal(t, 1, provider.fetchCalls["lake/a"])
	assert.Same(t, before, cache.Snapshot())
}

func TestCache_LoadOnlyDelta(t *testing.T) {
	provider := newFakeProvider()
	provider.addTable("lake/a", 2)
	provider.addTable("lake/b", 4)
	cache := NewCache(testLogger(), provider, 0)

	require.NoError(t, cache.Load(context.Background(), []Identity{{Path: "lake/a", Name: "a"}}))
	require.NoError(t, cache.Load(context.Background(), []Identity{
		{Path: "lake/a", Name: "a"},
		{Path: "lake/b", Name: "b"},
	}))

	assert.Equal(t, 1, provider.fetchCalls["lake/a"])
	assert.Equal(t, 1, provider.fetchCalls["lake/b"])
	assert.Equal(t, 6, cache.Snapshot().Len())
	assert.Equal(t, []string{"lake/a", "lake/b"}, cache.LoadedPaths())
}

func TestCache_EmptyTableMarkedLoaded(t *testing.T) {
	provider := newFakeProvider()
	cache := NewCache(testLogger(), provider, 0)

	ids := []Identity{{Path: "lake/empty", Name: "empty"}}
	require.NoError(t, cache.Load(context.Background(), ids))
	assert.True(t, cache.IsLoaded("lake/empty"))
	assert.Equal(t, 0, cache.Snapshot().Len())

	// Loaded-but-empty is terminal: no automatic retry.
	require.NoError(t, cache.Load(context.Background(), ids))
	assert.Equal(t, 1, provider.fetchCalls["lake/empty"])
}

func TestCache_FetchFailureLeavesIdentityLoadable(t *testing.T) {
	provider := newFakeProvider()
	provider.addTable("lake/a", 2)
	provider.failPaths["lake/a"] = true
	cache := NewCache(testLogger(), provider, 0)

	ids := []Identity{{Path: "lake/a", Name: "a"}}
	err := cache.Load(context.Background(), ids)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.False(t, cache.IsLoaded("lake/a"))
	assert.Equal(t, 0, cache.Snapshot().Len())

	// The next user-driven request retries.
	provider.failPaths["lake/a"] = false
	require.NoError(t, cache.Load(context.Background(), ids))
	assert.Equal(t, 2, cache.Snapshot().Len())
}

func TestCache_NoPartialMergeOnFailure(t *testing.T) {
	provider := newFakeProvider()
	provider.addTable("lake/a", 2)
	provider.failPaths["lake/b"] = true
	cache := NewCache(testLogger(), provider, 0)

	err := cache.Load(context.Background(), []Identity{
		{Path: "lake/a", Name: "a"},
		{Path: "lake/b", Name: "b"},
	})
	require.Error(t, err)

	// All-or-nothing: the successfully fetched table was not merged either.
	assert.Equal(t, 0, cache.Snapshot().Len())
	assert.False(t, cache.IsLoaded("lake/a"))
}
