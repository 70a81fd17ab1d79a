package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(path string, version uint64, ts time.Time, operation string) VersionRecord {
	return VersionRecord{
		TablePath: path,
		Version:   version,
		Timestamp: ts,
		Operation: operation,
	}
}

func TestDataset_MergeDedupes(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	existing, err := FromRecords([]VersionRecord{
		record("lake/a", 0, base, "WRITE"),
		record("lake/a", 1, base.Add(time.Hour), "WRITE"),
	})
	require.NoError(t, err)

	fragment, err := FromRecords([]VersionRecord{
		record("lake/b", 0, base, "WRITE"),
	})
	require.NoError(t, err)

	merged, err := existing.Merge(fragment)
	require.NoError(t, err)

	assert.Equal(t, 3, merged.Len())
	assert.Equal(t, []string{"lake/a", "lake/b"}, merged.TablePaths())
	// The receiver is an untouched snapshot.
	assert.Equal(t, 2, existing.Len())
}

func TestDataset_MergeCollision(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	existing, err := FromRecords([]VersionRecord{record("lake/a", 1, base, "WRITE")})
	require.NoError(t, err)
	fragment, err := FromRecords([]VersionRecord{record("lake/a", 1, base, "DELETE")})
	require.NoError(t, err)

	_, err = existing.Merge(fragment)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionCollision)
}

func TestDataset_MergeSortsAcrossFragments(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	later, err := FromRecords([]VersionRecord{record("lake/a", 2, base.Add(2*time.Hour), "WRITE")})
	require.NoError(t, err)
	earlier, err := FromRecords([]VersionRecord{
		record("lake/a", 0, base, "WRITE"),
		record("lake/a", 1, base.Add(time.Hour), "WRITE"),
	})
	require.NoError(t, err)

	merged, err := later.Merge(earlier)
	require.NoError(t, err)

	records := merged.Records("lake/a")
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, uint64(i), rec.Version)
	}
}

func TestDataset_RoundTrip(t *testing.T) {
	// Millisecond-precision instants must survive the flat-record form.
	ts := time.Date(2024, 3, 1, 10, 30, 0, 123*int(time.Millisecond), time.UTC)
	files := uint64(3)

	original, err := FromRecords([]VersionRecord{
		{
			TablePath:  "lake/a",
			Version:    0,
			Timestamp:  ts,
			Operation:  "WRITE",
			TotalRows:  10,
			TotalBytes: 2048,
			FilesAdded: &files,
		},
		record("lake/b", 0, ts.Add(90*time.Minute), "DELETE"),
	})
	require.NoError(t, err)

	restored, err := FromFlat(original.Flatten())
	require.NoError(t, err)

	require.Equal(t, original.Len(), restored.Len())
	for _, path := range original.TablePaths() {
		assert.Equal(t, original.Records(path), restored.Records(path))
	}

	rec := restored.Records("lake/a")[0]
	assert.True(t, rec.Timestamp.Equal(ts))
	require.NotNil(t, rec.FilesAdded)
	assert.Equal(t, uint64(3), *rec.FilesAdded)
	// Absence survives the round trip too.
	assert.Nil(t, restored.Records("lake/b")[0].FilesAdded)
}

func TestDataset_Filter(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	ds, err := FromRecords([]VersionRecord{
		record("lake/a", 0, base, "WRITE"),
		record("lake/b", 0, base, "WRITE"),
		record("lake/c", 0, base, "WRITE"),
	})
	require.NoError(t, err)

	filtered := ds.Filter("lake/a", "lake/c", "lake/missing")
	assert.Equal(t, []string{"lake/a", "lake/c"}, filtered.TablePaths())
	assert.Equal(t, 3, ds.Len())
}
