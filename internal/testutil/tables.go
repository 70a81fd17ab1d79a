// Package testutil provides test utilities for lakeview, chiefly writers that
// materialize synthetic Delta Lake transaction logs on disk so provider and
// end-to-end tests can run against real directory trees.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// FileSpec describes one data file referenced by a commit.
type FileSpec struct {
	Path string
	Size uint64
}

// Commit describes one version of a synthetic table.
type Commit struct {
	Version   uint64
	Timestamp time.Time
	Operation string
	Metrics   map[string]any
	Adds      []FileSpec
	Removes   []FileSpec
	// OmitCommitInfo writes a commit file without the commitInfo action,
	// which the provider must treat as malformed.
	OmitCommitInfo bool
}

// WriteTable materializes a table's _delta_log under dir, one JSON commit
// file per entry.
func WriteTable(t *testing.T, dir string, commits ...Commit) {
	t.Helper()

	logDir := filepath.Join(dir, "_delta_log")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("create %s: %v", logDir, err)
	}

	for _, commit := range commits {
		lines := commitLines(t, commit)
		name := filepath.Join(logDir, fmt.Sprintf("%020d.json", commit.Version))
		if err := os.WriteFile(name, lines, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func commitLines(t *testing.T, commit Commit) []byte {
	t.Helper()

	var out []byte
	appendLine := func(v any) {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal commit line: %v", err)
		}
		out = append(out, data...)
		out = append(out, '\n')
	}

	if commit.Version == 0 {
		appendLine(map[string]any{"protocol": map[string]any{
			"minReaderVersion": 1,
			"minWriterVersion": 2,
		}})
		appendLine(map[string]any{"metaData": map[string]any{
			"id":               "00000000-0000-0000-0000-000000000000",
			"format":           map[string]any{"provider": "parquet", "options": map[string]string{}},
			"partitionColumns": []string{},
		}})
	}

	for _, add := range commit.Adds {
		appendLine(map[string]any{"add": map[string]any{
			"path":             add.Path,
			"size":             add.Size,
			"modificationTime": commit.Timestamp.UnixMilli(),
			"dataChange":       true,
		}})
	}
	for _, rm := range commit.Removes {
		appendLine(map[string]any{"remove": map[string]any{
			"path":              rm.Path,
			"size":              rm.Size,
			"deletionTimestamp": commit.Timestamp.UnixMilli(),
			"dataChange":        true,
		}})
	}

	if !commit.OmitCommitInfo {
		appendLine(map[string]any{"commitInfo": map[string]any{
			"timestamp":        commit.Timestamp.UnixMilli(),
			"operation":        commit.Operation,
			"operationMetrics": commit.Metrics,
			"clientVersion":    "lakeview-testutil",
		}})
	}

	return out
}
