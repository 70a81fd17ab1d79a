package deltalog

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lakewatch/lakeview/pkg/history"
	"github.com/lakewatch/lakeview/pkg/observability"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const deltaLogDir = "_delta_log"

// Provider implements history.Provider over Delta Lake transaction logs on a
// local filesystem.
type Provider struct {
	log logrus.FieldLogger
}

// NewProvider creates a transaction-log provider.
func NewProvider(log logrus.FieldLogger) *Provider {
	return &Provider{log: log.WithField("component", "deltalog")}
}

var _ history.Provider = (*Provider)(nil)

// List enumerates Delta table paths under root, sorted for a stable
// enumeration order across repeated calls. max caps the result; 0 means
// unlimited.
func (p *Provider) List(_ context.Context, root string, recursive bool, max int) ([]string, error) {
	logs, err := findDeltaLogs(root, recursive, max)
	if err != nil {
		return nil, err
	}

	tables := make([]string, 0, len(logs))
	for _, log := range logs {
		tables = append(tables, filepath.Dir(log))
	}
	sort.Strings(tables)
	return tables, nil
}

// Fetch reads the version history of every table under root. Tables are
// parsed in parallel but returned sorted by path, each record sequence
// ordered by version ascending. limit keeps only the most recent records per
// table; 0 means unlimited.
func (p *Provider) Fetch(ctx context.Context, root string, recursive bool, limit int) ([]history.TableHistory, error) {
	started := time.Now()

	tables, err := p.List(ctx, root, recursive, 0)
	if err != nil {
		return nil, err
	}

	histories := make([]history.TableHistory, len(tables))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, table := range tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := p.readTable(table, limit)
			if err != nil {
				return err
			}
			histories[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	observability.ProviderFetchDuration.Observe(time.Since(started).Seconds())
	return histories, nil
}

// readTable derives version records from one table's commit files, carrying
// running row and byte totals across versions.
func (p *Provider) readTable(table string, limit int) (history.TableHistory, error) {
	commits, err := listCommitFiles(filepath.Join(table, deltaLogDir))
	if err != nil {
		return history.TableHistory{}, err
	}

	records := make([]history.VersionRecord, 0, len(commits))
	var runningRows, runningBytes int64

	for _, cf := range commits {
		parsed, err := parseCommit(cf.path)
		if err != nil {
			return history.TableHistory{}, err
		}

		if parsed.info == nil || parsed.info.Timestamp == 0 {
			// Required commit metadata is missing: drop the record with a
			// diagnostic rather than failing the whole table.
			p.log.WithFields(logrus.Fields{
				"table":   table,
				"version": cf.version,
			}).Warn("Dropping commit without timestamp")
			observability.MalformedRecordsTotal.Inc()
			continue
		}

		info := parsed.info
		rowsAdded := info.rowsAdded()
		rowsDeleted := info.rowsDeleted()
		bytesAdded := parsed.bytesAdded()
		bytesRemoved := parsed.bytesRemoved()

		if rowsAdded != nil {
			runningRows += int64(*rowsAdded)
		}
		if rowsDeleted != nil {
			runningRows -= int64(*rowsDeleted)
		}
		runningBytes += int64(bytesAdded)
		runningBytes -= int64(bytesRemoved)

		records = append(records, history.VersionRecord{
			TablePath:    table,
			Version:      cf.version,
			Timestamp:    history.ParseTimestamp(info.Timestamp),
			Operation:    info.Operation,
			TotalRows:    runningRows,
			TotalBytes:   runningBytes,
			RowsAdded:    rowsAdded,
			RowsDeleted:  rowsDeleted,
			RowsCopied:   info.rowsCopied(),
			FilesAdded:   info.filesAdded(),
			FilesRemoved: info.filesRemoved(),
			BytesAdded:   bytesAdded,
			BytesRemoved: bytesRemoved,
		})
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	return history.TableHistory{Path: table, Records: records}, nil
}

type commitFile struct {
	path    string
	version uint64
}

// listCommitFiles returns the numeric-stemmed JSON files of a _delta_log
// directory, sorted by version ascending.
func listCommitFiles(dir string) ([]commitFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []commitFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), ".json")
		version, err := strconv.ParseUint(stem, 10, 64)
		if err != nil {
			// Not a commit file (e.g. a checkpoint sidecar).
			continue
		}
		files = append(files, commitFile{path: filepath.Join(dir, entry.Name()), version: version})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// findDeltaLogs locates _delta_log directories under root. A root that is
// itself a _delta_log resolves to that single table.
func findDeltaLogs(root string, recursive bool, max int) ([]string, error) {
	if filepath.Base(root) == deltaLogDir {
		return []string{root}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var logs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		child := filepath.Join(root, entry.Name())
		if entry.Name() == deltaLogDir {
			logs = append(logs, child)
		} else if recursive {
			remaining := 0
			if max > 0 {
				remaining = max - len(logs)
				if remaining <= 0 {
					break
				}
			}
			nested, err := findDeltaLogs(child, recursive, remaining)
			if err != nil {
				continue
			}
			logs = append(logs, nested...)
		}

		if max > 0 && len(logs) >= max {
			return logs[:max], nil
		}
	}
	return logs, nil
}
