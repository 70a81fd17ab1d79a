package session

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/lakewatch/lakeview/pkg/deltalog"
	"github.com/lakewatch/lakeview/pkg/history"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves canned histories and counts fetches per table path.
type fakeProvider struct {
	tables     map[string][]history.VersionRecord
	fetchCalls map[string]int
}

func newFakeProvider(paths ...string) *fakeProvider {
	f := &fakeProvider{
		tables:     map[string][]history.VersionRecord{},
		fetchCalls: map[string]int{},
	}
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, path := range paths {
		for v := 0; v <= i; v++ {
			f.tables[path] = append(f.tables[path], history.VersionRecord{
				TablePath:  path,
				Version:    uint64(v),
				Timestamp:  base.Add(time.Duration(v) * time.Hour),
				Operation:  "WRITE",
				TotalRows:  int64((v + 1) * 100),
				TotalBytes: int64((v + 1) * 2048),
			})
		}
	}
	return f
}

func (f *fakeProvider) List(_ context.Context, _ string, _ bool, max int) ([]string, error) {
	paths := make([]string, 0, len(f.tables))
	for path := range f.tables {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	if max > 0 && len(paths) > max {
		paths = paths[:max]
	}
	return paths, nil
}

func (f *fakeProvider) Fetch(_ context.Context, root string, _ bool, _ int) ([]history.TableHistory, error) {
	f.fetchCalls[root]++
	records, ok := f.tables[root]
	if !ok {
		return nil, nil
	}
	return []history.TableHistory{{Path: root, Records: records}}, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel) // Quiet for tests
	return log
}

func testConfig() *deltalog.Config {
	return &deltalog.Config{Root: ".", Recursive: true}
}

func newTestSession(t *testing.T, provider history.Provider) *Session {
	t.Helper()
	sess, err := New(context.Background(), testLogger(), testConfig(), provider)
	require.NoError(t, err)
	return sess
}

func TestSession_BootstrapLoadsAndSelectsAll(t *testing.T) {
	provider := newFakeProvider("lake/events", "lake/orders")
	sess := newTestSession(t, provider)

	state := sess.State()
	assert.Equal(t, []string{"events", "orders"}, state.All)
	assert.Equal(t, []string{"events", "orders"}, state.Selected)
	assert.Equal(t, []string{"events", "orders"}, state.Loaded)
	assert.Equal(t, 1, provider.fetchCalls["lake/events"])
	assert.Equal(t, 1, provider.fetchCalls["lake/orders"])
}

func TestSession_FilterPreservesSelection(t *testing.T) {
	provider := newFakeProvider("lake/events", "lake/orders")
	sess := newTestSession(t, provider)

	sess.SetFilter("ord")
	state := sess.State()
	assert.Equal(t, []string{"orders"}, state.Visible)
	assert.Equal(t, []string{"events", "orders"}, state.Selected)
}

func TestSession_ToggleLoadsOnlyDelta(t *testing.T) {
	provider := newFakeProvider("lake/events", "lake/orders")
	sess := newTestSession(t, provider)

	// Deselect then reselect: everything is already cached, so no refetch.
	require.NoError(t, sess.Toggle(context.Background(), "events", false))
	require.NoError(t, sess.Toggle(context.Background(), "events", true))

	assert.Equal(t, 1, provider.fetchCalls["lake/events"])
	assert.Equal(t, 1, provider.fetchCalls["lake/orders"])
}

func TestSession_EmptySelectionFallsBackToLoaded(t *testing.T) {
	provider := newFakeProvider("lake/events", "lake/orders")
	sess := newTestSession(t, provider)

	require.NoError(t, sess.Toggle(context.Background(), "events", false))
	require.NoError(t, sess.Toggle(context.Background(), "orders", false))

	// Toggling off the last table falls back to the loaded set.
	assert.Equal(t, []string{"events", "orders"}, sess.State().Selected)
}

func TestSession_ViewsFollowSelection(t *testing.T) {
	provider := newFakeProvider("lake/events", "lake/orders")
	sess := newTestSession(t, provider)

	require.NoError(t, sess.Toggle(context.Background(), "events", false))
	summary := sess.Summary()
	require.Len(t, summary, 1)
	assert.Equal(t, "orders", summary[0].Table)
	assert.Equal(t, uint64(1), summary[0].Version)
	assert.Equal(t, int64(200), summary[0].Records)

	series := sess.RecordSeries()
	require.Len(t, series, 1)
	assert.Equal(t, "orders", series[0].Table)
	assert.Len(t, series[0].Points, 2)
}

func TestSession_Tables(t *testing.T) {
	provider := newFakeProvider("lake/events", "lake/orders")
	sess := newTestSession(t, provider)

	require.NoError(t, sess.Toggle(context.Background(), "events", false))

	tables := sess.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, TableInfo{Name: "events", Path: "lake/events", Selected: false, Loaded: true}, tables[0])
	assert.Equal(t, TableInfo{Name: "orders", Path: "lake/orders", Selected: true, Loaded: true}, tables[1])
}

func TestSession_RefreshUpdatesDiscoverableSet(t *testing.T) {
	provider := newFakeProvider("lake/events")
	sess := newTestSession(t, provider)

	// A new table appears on disk between refreshes.
	provider.tables["lake/orders"] = []history.VersionRecord{{
		TablePath: "lake/orders",
		Version:   0,
		Timestamp: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Operation: "WRITE",
	}}

	require.NoError(t, sess.Refresh(context.Background()))

	state := sess.State()
	assert.Equal(t, []string{"events", "orders"}, state.All)
	// Refresh discovers; it does not load.
	assert.Equal(t, 0, provider.fetchCalls["lake/orders"])
	assert.Equal(t, []string{"events"}, state.Loaded)

	// The new table loads on the next selection change.
	require.NoError(t, sess.Toggle(context.Background(), "orders", true))
	assert.Equal(t, 1, provider.fetchCalls["lake/orders"])
	assert.Equal(t, []string{"events", "orders"}, sess.State().Loaded)
}

func TestSession_NameCollisionFailsBootstrap(t *testing.T) {
	provider := newFakeProvider("./lake/events", "lake/events")

	_, err := New(context.Background(), testLogger(), testConfig(), provider)
	require.Error(t, err)
	assert.ErrorIs(t, err, history.ErrNameCollision)
}
