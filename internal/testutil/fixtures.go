package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

// Epoch is the base timestamp all generated commits count from.
//
//nolint:gochecknoglobals // Fixed fixture epoch
var Epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// UniformCommits generates a steadily appended table: one WRITE per version,
// a fixed number of rows and bytes each, one commit per day.
func UniformCommits(versions int, rowsPerWrite, bytesPerWrite uint64) []Commit {
	commits := make([]Commit, 0, versions)
	for v := 0; v < versions; v++ {
		commits = append(commits, Commit{
			Version:   uint64(v),
			Timestamp: Epoch.Add(time.Duration(v) * 24 * time.Hour),
			Operation: "WRITE",
			Metrics: map[string]any{
				"num_added_rows":    rowsPerWrite,
				"num_added_files":   1,
				"num_removed_files": 0,
			},
			Adds: []FileSpec{{
				Path: fmt.Sprintf("part-%05d.parquet", v),
				Size: bytesPerWrite,
			}},
		})
	}
	return commits
}

// CompactedCommits generates a table that is appended to and then optimized:
// the final version is an OPTIMIZE rewriting all earlier files into one.
func CompactedCommits(writes int, rowsPerWrite, bytesPerWrite uint64) []Commit {
	commits := UniformCommits(writes, rowsPerWrite, bytesPerWrite)

	removes := make([]FileSpec, 0, writes)
	for _, c := range commits {
		removes = append(removes, c.Adds...)
	}
	commits = append(commits, Commit{
		Version:   uint64(writes),
		Timestamp: Epoch.Add(time.Duration(writes) * 24 * time.Hour),
		Operation: "OPTIMIZE",
		Metrics: map[string]any{
			"numFilesAdded":   1,
			"numFilesRemoved": writes,
		},
		Adds:    []FileSpec{{Path: "part-compacted.parquet", Size: bytesPerWrite * uint64(writes)}},
		Removes: removes,
	})
	return commits
}

// TableTree writes a set of named tables under root and returns their paths
// sorted the way discovery enumerates them.
func TableTree(t *testing.T, root string, tables map[string][]Commit) []string {
	t.Helper()

	paths := make([]string, 0, len(tables))
	for name, commits := range tables {
		dir := filepath.Join(root, name)
		WriteTable(t, dir, commits...)
		paths = append(paths, dir)
	}
	return paths
}
