// Package session owns one user's view of table history: the incremental
// cache, the selection state, and the name index tying them together. All
// state transitions are serialized through the session, so every transition
// observes the completed result of the previous one.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lakewatch/lakeview/pkg/aggregate"
	"github.com/lakewatch/lakeview/pkg/deltalog"
	"github.com/lakewatch/lakeview/pkg/history"
	"github.com/sirupsen/logrus"
)

// Session is created at startup, mutated only through its transition methods,
// and torn down with the process. Nothing is persisted.
type Session struct {
	id       uuid.UUID
	log      logrus.FieldLogger
	config   *deltalog.Config
	provider history.Provider
	cache    *history.Cache

	// mu serializes transitions; views read a dataset snapshot and never hold it.
	mu        sync.Mutex
	selection *history.Selection
	names     map[string]string // table path -> display name
	paths     map[string]string // display name -> table path
}

// New discovers the tables under the configured root, builds the name index,
// and loads the initial selection. Every discovered table starts selected and
// loaded, capped by MaxTables.
func New(ctx context.Context, log logrus.FieldLogger, config *deltalog.Config, provider history.Provider) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:       uuid.New(),
		log:      log.WithField("component", "session"),
		config:   config,
		provider: provider,
		cache:    history.NewCache(log, provider, config.VersionLimit),
	}

	identities, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	s.selection = history.NewSelection(selectionNames(identities))
	if err := s.loadLocked(ctx, identities); err != nil {
		return nil, err
	}
	s.selection.Select(selectionNames(identities)...)

	s.log.WithFields(logrus.Fields{
		"session": s.id,
		"tables":  len(identities),
	}).Info("Session started")

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// discover lists table paths and normalizes them into identities. A display
// name collision is a configuration error and fails the whole discovery.
func (s *Session) discover(ctx context.Context) ([]history.Identity, error) {
	paths, err := s.provider.List(ctx, s.config.Root, s.config.Recursive, s.config.MaxTables)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", history.ErrProviderUnavailable, s.config.Root, err)
	}

	identities, err := history.Normalize(paths)
	if err != nil {
		return nil, err
	}

	s.names = history.DisplayNames(identities)
	s.paths = make(map[string]string, len(identities))
	for _, id := range identities {
		s.paths[id.Name] = id.Path
	}
	return identities, nil
}

// loadLocked loads identities through the cache and marks the loaded names.
// Callers either hold mu or run before the session is shared.
func (s *Session) loadLocked(ctx context.Context, identities []history.Identity) error {
	if err := s.cache.Load(ctx, identities); err != nil {
		return err
	}
	for _, id := range identities {
		s.selection.MarkLoaded(id.Name)
	}
	return nil
}

// SetFilter applies a search filter to the table list. Selection membership
// is untouched.
func (s *Session) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SetFilter(text)
}

// Toggle selects or deselects one visible table, then loads whatever the new
// selection requires that is not yet cached. Hidden selected tables are
// preserved; emptying the selection falls back to the loaded tables.
func (s *Session) Toggle(ctx context.Context, name string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.Toggle(name, checked)

	var requested []history.Identity
	for _, selected := range s.selection.Selected() {
		if path, ok := s.paths[selected]; ok {
			requested = append(requested, history.Identity{Path: path, Name: selected})
		}
	}
	return s.loadLocked(ctx, requested)
}

// Refresh re-discovers the tables under the root and updates the
// discoverable set. It never loads or merges: the dataset is only mutated by
// selection-driven loads.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.discover(ctx)
	if err != nil {
		return err
	}
	s.selection.SetAll(selectionNames(identities))
	for _, path := range s.cache.LoadedPaths() {
		if name, ok := s.names[path]; ok {
			s.selection.MarkLoaded(name)
		}
	}
	return nil
}

// State describes the selection for presentation.
type State struct {
	Session  string   `json:"session"`
	Filter   string   `json:"filter"`
	All      []string `json:"all"`
	Visible  []string `json:"visible"`
	Selected []string `json:"selected"`
	Loaded   []string `json:"loaded"`
}

// State returns the current selection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Session:  s.id.String(),
		Filter:   s.selection.Filter(),
		All:      s.selection.All(),
		Visible:  s.selection.Visible(),
		Selected: s.selection.Selected(),
		Loaded:   s.selection.Loaded(),
	}
}

// TableInfo describes one discoverable table.
type TableInfo struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Selected bool   `json:"selected"`
	Loaded   bool   `json:"loaded"`
}

// Tables returns every discoverable table with its selection and load status,
// sorted by display name.
func (s *Session) Tables() []TableInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := map[string]bool{}
	for _, name := range s.selection.Selected() {
		selected[name] = true
	}
	loaded := map[string]bool{}
	for _, name := range s.selection.Loaded() {
		loaded[name] = true
	}

	tables := make([]TableInfo, 0, len(s.paths))
	for _, name := range s.selection.All() {
		tables = append(tables, TableInfo{
			Name:     name,
			Path:     s.paths[name],
			Selected: selected[name],
			Loaded:   loaded[name],
		})
	}
	return tables
}

// view returns the dataset snapshot filtered to the selection, plus the name
// index for display.
func (s *Session) view() (*history.Dataset, map[string]string) {
	s.mu.Lock()
	selected := s.selection.Selected()
	paths := make([]string, 0, len(selected))
	for _, name := range selected {
		if path, ok := s.paths[name]; ok {
			paths = append(paths, path)
		}
	}
	names := s.names
	s.mu.Unlock()

	return s.cache.Snapshot().Filter(paths...), names
}

// Summary returns the per-table summary view over the active selection.
func (s *Session) Summary() []aggregate.SummaryRow {
	return aggregate.Summary(s.view())
}

// RecordSeries returns the row-count series view over the active selection.
func (s *Session) RecordSeries() []aggregate.Series {
	return aggregate.RecordSeries(s.view())
}

// SizeSeries returns the byte-count series view over the active selection.
func (s *Session) SizeSeries() []aggregate.Series {
	return aggregate.SizeSeries(s.view())
}

// OperationBreakdown returns operation counts over the active selection.
func (s *Session) OperationBreakdown() []aggregate.OperationCount {
	return aggregate.OperationBreakdown(s.view())
}

// FileChurn returns the file churn view over the active selection.
func (s *Session) FileChurn() []aggregate.ChurnRow {
	return aggregate.FileChurn(s.view())
}

// ActivityTimeline returns the daily activity view over the active selection.
func (s *Session) ActivityTimeline() []aggregate.ActivityRow {
	return aggregate.ActivityTimeline(s.view())
}

func selectionNames(identities []history.Identity) []string {
	names := make([]string, 0, len(identities))
	for _, id := range identities {
		names = append(names, id.Name)
	}
	return names
}
