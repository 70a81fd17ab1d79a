// Package history implements the incremental table-history cache: a growing,
// deduplicated in-memory dataset of version records, the selection state that
// drives loading, and the display-name normalization that keys both.
package history

import (
	"fmt"
	"sort"
	"time"
)

// VersionRecord is one immutable historical fact about a table at a specific
// version number. Pointer fields are optional: nil means the field was absent
// from the transaction log, which is distinct from zero and only collapses to
// zero at the aggregation boundary.
type VersionRecord struct {
	TablePath    string    `json:"table_path"`
	Version      uint64    `json:"version"`
	Timestamp    time.Time `json:"-"`
	Operation    string    `json:"operation"`
	TotalRows    int64     `json:"total_rows"`
	TotalBytes   int64     `json:"total_bytes"`
	RowsAdded    *uint64   `json:"rows_added,omitempty"`
	RowsDeleted  *uint64   `json:"rows_deleted,omitempty"`
	RowsCopied   *uint64   `json:"rows_copied,omitempty"`
	FilesAdded   *uint64   `json:"files_added,omitempty"`
	FilesRemoved *uint64   `json:"files_removed,omitempty"`
	BytesAdded   uint64    `json:"bytes_added"`
	BytesRemoved uint64    `json:"bytes_removed"`
}

// TableHistory is the per-table record sequence a provider returns, ordered
// by version ascending.
type TableHistory struct {
	Path    string          `json:"path"`
	Records []VersionRecord `json:"records"`
}

// FlatRecord is the serialized form of a VersionRecord. Timestamps travel as
// epoch milliseconds and are re-parsed into the same instant on reload.
type FlatRecord struct {
	TablePath    string  `json:"table_path"`
	Version      uint64  `json:"version"`
	TimestampMs  int64   `json:"timestamp"`
	Operation    string  `json:"operation"`
	TotalRows    int64   `json:"total_rows"`
	TotalBytes   int64   `json:"total_bytes"`
	RowsAdded    *uint64 `json:"rows_added,omitempty"`
	RowsDeleted  *uint64 `json:"rows_deleted,omitempty"`
	RowsCopied   *uint64 `json:"rows_copied,omitempty"`
	FilesAdded   *uint64 `json:"files_added,omitempty"`
	FilesRemoved *uint64 `json:"files_removed,omitempty"`
	BytesAdded   uint64  `json:"bytes_added"`
	BytesRemoved uint64  `json:"bytes_removed"`
}

// ParseTimestamp converts epoch milliseconds into the fixed UTC instant used
// throughout the dataset.
func ParseTimestamp(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Flatten converts a record to its serialized form.
func (r VersionRecord) Flatten() FlatRecord {
	return FlatRecord{
		TablePath:    r.TablePath,
		Version:      r.Version,
		TimestampMs:  r.Timestamp.UnixMilli(),
		Operation:    r.Operation,
		TotalRows:    r.TotalRows,
		TotalBytes:   r.TotalBytes,
		RowsAdded:    r.RowsAdded,
		RowsDeleted:  r.RowsDeleted,
		RowsCopied:   r.RowsCopied,
		FilesAdded:   r.FilesAdded,
		FilesRemoved: r.FilesRemoved,
		BytesAdded:   r.BytesAdded,
		BytesRemoved: r.BytesRemoved,
	}
}

// Record converts a serialized record back, re-parsing the timestamp to the
// same millisecond-precision instant.
func (f FlatRecord) Record() VersionRecord {
	return VersionRecord{
		TablePath:    f.TablePath,
		Version:      f.Version,
		Timestamp:    ParseTimestamp(f.TimestampMs),
		Operation:    f.Operation,
		TotalRows:    f.TotalRows,
		TotalBytes:   f.TotalBytes,
		RowsAdded:    f.RowsAdded,
		RowsDeleted:  f.RowsDeleted,
		RowsCopied:   f.RowsCopied,
		FilesAdded:   f.FilesAdded,
		FilesRemoved: f.FilesRemoved,
		BytesAdded:   f.BytesAdded,
		BytesRemoved: f.BytesRemoved,
	}
}

// Dataset is the set of all version records currently held, indexed by table
// path. Datasets are treated as immutable snapshots: Merge and Filter return
// new datasets and never mutate the receiver, so readers can aggregate over a
// snapshot while a new one is being built.
type Dataset struct {
	tables map[string][]VersionRecord
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{tables: map[string][]VersionRecord{}}
}

// FromRecords builds a dataset from a flat record slice.
func FromRecords(records []VersionRecord) (*Dataset, error) {
	d := NewDataset()
	for _, rec := range records {
		if err := d.insert(rec); err != nil {
			return nil, err
		}
	}
	d.sortAll()
	return d, nil
}

// FromFlat reconstructs a dataset from its serialized form.
func FromFlat(flat []FlatRecord) (*Dataset, error) {
	records := make([]VersionRecord, 0, len(flat))
	for _, f := range flat {
		records = append(records, f.Record())
	}
	return FromRecords(records)
}

func (d *Dataset) insert(rec VersionRecord) error {
	for _, existing := range d.tables[rec.TablePath] {
		if existing.Version == rec.Version {
			return fmt.Errorf("%w: %s version %d", ErrVersionCollision, rec.TablePath, rec.Version)
		}
	}
	d.tables[rec.TablePath] = append(d.tables[rec.TablePath], rec)
	return nil
}

func (d *Dataset) sortAll() {
	for _, records := range d.tables {
		sort.Slice(records, func(i, j int) bool {
			return records[i].Version < records[j].Version
		})
	}
}

// Len returns the total number of records across all tables.
func (d *Dataset) Len() int {
	n := 0
	for _, records := range d.tables {
		n += len(records)
	}
	return n
}

// TablePaths returns the paths of all tables present, sorted.
func (d *Dataset) TablePaths() []string {
	paths := make([]string, 0, len(d.tables))
	for path := range d.tables {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Records returns the version-ascending record sequence for one table.
func (d *Dataset) Records(path string) []VersionRecord {
	return d.tables[path]
}

// Merge unions the fragment into the dataset, keyed by (table path, version).
// It returns a new dataset; the receiver is unchanged. Merging disjoint
// fragments is commutative and associative because records are re-sorted by
// version per table. A (path, version) collision aborts the merge with
// ErrVersionCollision and nothing is carried over.
func (d *Dataset) Merge(fragment *Dataset) (*Dataset, error) {
	merged := NewDataset()
	for path, records := range d.tables {
		merged.tables[path] = append([]VersionRecord(nil), records...)
	}
	for _, path := range fragment.TablePaths() {
		for _, rec := range fragment.tables[path] {
			if err := merged.insert(rec); err != nil {
				return nil, err
			}
		}
	}
	merged.sortAll()
	return merged, nil
}

// Filter returns a new dataset restricted to the given table paths. Record
// slices are shared with the receiver, which is safe because datasets are
// never mutated in place.
func (d *Dataset) Filter(paths ...string) *Dataset {
	filtered := NewDataset()
	for _, path := range paths {
		if records, ok := d.tables[path]; ok {
			filtered.tables[path] = records
		}
	}
	return filtered
}

// Flatten serializes the dataset to a flat record list, ordered by table path
// then version.
func (d *Dataset) Flatten() []FlatRecord {
	flat := make([]FlatRecord, 0, d.Len())
	for _, path := range d.TablePaths() {
		for _, rec := range d.tables[path] {
			flat = append(flat, rec.Flatten())
		}
	}
	return flat
}
