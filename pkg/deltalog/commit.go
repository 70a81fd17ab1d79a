package deltalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// action is one newline-delimited entry of a commit file. Exactly one field
// is set per line.
type action struct {
	Protocol   *json.RawMessage `json:"protocol"`
	MetaData   *json.RawMessage `json:"metaData"`
	Add        *fileAdd         `json:"add"`
	Remove     *fileRemove      `json:"remove"`
	CommitInfo *commitInfo      `json:"commitInfo"`
}

type fileAdd struct {
	Path             string `json:"path"`
	Size             uint64 `json:"size"`
	ModificationTime int64  `json:"modificationTime"`
	DataChange       bool   `json:"dataChange"`
	Stats            string `json:"stats"`
}

type fileRemove struct {
	Path              string `json:"path"`
	Size              uint64 `json:"size"`
	DeletionTimestamp int64  `json:"deletionTimestamp"`
	DataChange        bool   `json:"dataChange"`
}

type commitInfo struct {
	Timestamp        int64                      `json:"timestamp"`
	Operation        string                     `json:"operation"`
	OperationMetrics map[string]json.RawMessage `json:"operationMetrics"`
	ClientVersion    string                     `json:"clientVersion"`
}

// commit is one parsed transaction-log file.
type commit struct {
	adds    []fileAdd
	removes []fileRemove
	info    *commitInfo
}

func (c *commit) bytesAdded() uint64 {
	var total uint64
	for _, add := range c.adds {
		total += add.Size
	}
	return total
}

func (c *commit) bytesRemoved() uint64 {
	var total uint64
	for _, rm := range c.removes {
		total += rm.Size
	}
	return total
}

// parseCommit reads one newline-delimited JSON commit file.
func parseCommit(path string) (*commit, error) {
	f, err := os.Open(path) //nolint:gosec // Path comes from directory discovery
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // Read-only file

	result := &commit{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var act action
		if err := json.Unmarshal(scanner.Bytes(), &act); err != nil {
			return nil, fmt.Errorf("parse line %d of %s: %w", line, path, err)
		}

		switch {
		case act.Add != nil:
			result.adds = append(result.adds, *act.Add)
		case act.Remove != nil:
			result.removes = append(result.removes, *act.Remove)
		case act.CommitInfo != nil:
			result.info = act.CommitInfo
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return result, nil
}

// metric extracts one named operation metric. Writers disagree on key casing
// (Spark emits strings, delta-rs numbers; OPTIMIZE and VACUUM use camelCase),
// so each caller passes every spelling it has seen. A missing key returns
// nil, preserving "field was absent" for the churn view.
func (ci *commitInfo) metric(keys ...string) *uint64 {
	for _, key := range keys {
		raw, ok := ci.OperationMetrics[key]
		if !ok {
			continue
		}

		var n uint64
		if err := json.Unmarshal(raw, &n); err == nil {
			return &n
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if parsed, err := strconv.ParseUint(s, 10, 64); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

func (ci *commitInfo) rowsAdded() *uint64 {
	return ci.metric("num_added_rows", "numAddedRows", "numOutputRows")
}

func (ci *commitInfo) rowsDeleted() *uint64 {
	return ci.metric("num_deleted_rows", "numDeletedRows")
}

func (ci *commitInfo) rowsCopied() *uint64 {
	return ci.metric("num_copied_rows", "numCopiedRows")
}

func (ci *commitInfo) filesAdded() *uint64 {
	return ci.metric("num_added_files", "numFilesAdded", "numAddedFiles")
}

func (ci *commitInfo) filesRemoved() *uint64 {
	return ci.metric("num_removed_files", "numFilesRemoved", "numRemovedFiles", "numDeletedFiles")
}
