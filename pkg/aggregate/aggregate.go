// Package aggregate derives the presentation views from a history dataset:
// per-table summaries, record and size time series, operation breakdowns,
// file churn, and the daily activity timeline. Every function is pure and
// operates on a dataset already filtered to the active selection, so views
// can be computed concurrently over one immutable snapshot.
package aggregate

import (
	"sort"
	"time"

	"github.com/lakewatch/lakeview/pkg/history"
)

// SummaryRow is one table's headline statistics: the latest version, the row
// and byte totals at that version, and the most recent commit timestamp.
type SummaryRow struct {
	Table       string    `json:"table"`
	Path        string    `json:"path"`
	Version     uint64    `json:"version"`
	Records     int64     `json:"records"`
	Bytes       int64     `json:"bytes"`
	Size        string    `json:"size"`
	LastUpdated time.Time `json:"last_updated"`
}

// Summary reduces each table to its latest state. "Latest" means the record
// with the highest version, not the highest timestamp; the two agree for any
// table with a monotonic history. Rows are sorted by display name.
func Summary(ds *history.Dataset, names map[string]string) []SummaryRow {
	rows := make([]SummaryRow, 0, len(ds.TablePaths()))
	for _, path := range ds.TablePaths() {
		records := ds.Records(path)
		if len(records) == 0 {
			continue
		}

		// Records are version-ascending, so the last one is the latest.
		latest := records[len(records)-1]
		lastUpdated := records[0].Timestamp
		for _, rec := range records {
			if rec.Timestamp.After(lastUpdated) {
				lastUpdated = rec.Timestamp
			}
		}

		rows = append(rows, SummaryRow{
			Table:       displayName(names, path),
			Path:        path,
			Version:     latest.Version,
			Records:     latest.TotalRows,
			Bytes:       latest.TotalBytes,
			Size:        FormatBytes(latest.TotalBytes),
			LastUpdated: lastUpdated,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Table < rows[j].Table })
	return rows
}

// SeriesPoint is one (version, value) sample of a per-table series.
type SeriesPoint struct {
	Version uint64 `json:"version"`
	Value   int64  `json:"value"`
}

// Series is one table's time series, ordered by version ascending. One chart
// panel is rendered per series.
type Series struct {
	Table  string        `json:"table"`
	Points []SeriesPoint `json:"points"`
}

// RecordSeries returns one series per table with total row counts by version.
func RecordSeries(ds *history.Dataset, names map[string]string) []Series {
	return series(ds, names, func(rec history.VersionRecord) int64 { return rec.TotalRows })
}

// SizeSeries returns one series per table with total byte counts by version.
func SizeSeries(ds *history.Dataset, names map[string]string) []Series {
	return series(ds, names, func(rec history.VersionRecord) int64 { return rec.TotalBytes })
}

func series(ds *history.Dataset, names map[string]string, value func(history.VersionRecord) int64) []Series {
	all := make([]Series, 0, len(ds.TablePaths()))
	for _, path := range ds.TablePaths() {
		records := ds.Records(path)
		points := make([]SeriesPoint, 0, len(records))
		for _, rec := range records {
			points = append(points, SeriesPoint{Version: rec.Version, Value: value(rec)})
		}
		all = append(all, Series{Table: displayName(names, path), Points: points})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Table < all[j].Table })
	return all
}

// OperationCount is the number of records for one (table, operation) pair.
type OperationCount struct {
	Table     string `json:"table"`
	Operation string `json:"operation"`
	Count     int    `json:"count"`
}

// OperationBreakdown counts records grouped by table and operation kind,
// ordered by table name then operation for reproducible chart stacking.
func OperationBreakdown(ds *history.Dataset, names map[string]string) []OperationCount {
	counts := map[string]map[string]int{}
	for _, path := range ds.TablePaths() {
		name := displayName(names, path)
		for _, rec := range ds.Records(path) {
			if counts[name] == nil {
				counts[name] = map[string]int{}
			}
			counts[name][rec.Operation]++
		}
	}

	var rows []OperationCount
	for table, byOp := range counts {
		for op, n := range byOp {
			rows = append(rows, OperationCount{Table: table, Operation: op, Count: n})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Table != rows[j].Table {
			return rows[i].Table < rows[j].Table
		}
		return rows[i].Operation < rows[j].Operation
	})
	return rows
}

// ChurnRow is the file turnover of one table version. Counts absent from the
// transaction log contribute zero, never a missing value.
type ChurnRow struct {
	Table        string `json:"table"`
	Version      uint64 `json:"version"`
	FilesAdded   uint64 `json:"files_added"`
	FilesRemoved uint64 `json:"files_removed"`
}

// FileChurn returns files added and removed per (table, version), ordered by
// table name then version.
func FileChurn(ds *history.Dataset, names map[string]string) []ChurnRow {
	var rows []ChurnRow
	for _, path := range ds.TablePaths() {
		name := displayName(names, path)
		for _, rec := range ds.Records(path) {
			rows = append(rows, ChurnRow{
				Table:        name,
				Version:      rec.Version,
				FilesAdded:   orZero(rec.FilesAdded),
				FilesRemoved: orZero(rec.FilesRemoved),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Table != rows[j].Table {
			return rows[i].Table < rows[j].Table
		}
		return rows[i].Version < rows[j].Version
	})
	return rows
}

// ActivityRow is the number of operations one table saw on one calendar day.
type ActivityRow struct {
	Date       string `json:"date"`
	Table      string `json:"table"`
	Operations int    `json:"operations"`
}

// ActivityTimeline counts records grouped by calendar date and table. Dates
// are bucketed in UTC, discarding time of day, so the grouping is independent
// of the host timezone. Rows are ordered by date then table name.
func ActivityTimeline(ds *history.Dataset, names map[string]string) []ActivityRow {
	type bucket struct {
		date  string
		table string
	}
	counts := map[bucket]int{}
	for _, path := range ds.TablePaths() {
		name := displayName(names, path)
		for _, rec := range ds.Records(path) {
			day := rec.Timestamp.UTC().Format("2006-01-02")
			counts[bucket{date: day, table: name}]++
		}
	}

	rows := make([]ActivityRow, 0, len(counts))
	for b, n := range counts {
		rows = append(rows, ActivityRow{Date: b.date, Table: b.table, Operations: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Table < rows[j].Table
	})
	return rows
}

func displayName(names map[string]string, path string) string {
	if name, ok := names[path]; ok {
		return name
	}
	return path
}

func orZero(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}
