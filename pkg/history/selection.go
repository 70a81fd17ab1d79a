package history

import (
	"sort"
	"strings"
)

// Selection tracks which table display names are discoverable, visible under
// the current search filter, and selected for display. Filtering never
// mutates the selected set: names selected and then filtered out of view stay
// selected until explicitly toggled off.
type Selection struct {
	all      map[string]struct{}
	loaded   map[string]struct{}
	selected map[string]struct{}
	filter   string
}

// NewSelection creates a selection over the given discoverable names with
// nothing selected and no filter.
func NewSelection(all []string) *Selection {
	s := &Selection{
		all:      map[string]struct{}{},
		loaded:   map[string]struct{}{},
		selected: map[string]struct{}{},
	}
	for _, name := range all {
		s.all[name] = struct{}{}
	}
	return s
}

// SetAll replaces the discoverable name set, used when re-discovery finds new
// tables. Selected and loaded names outside the new set are dropped to keep
// selected ⊆ all.
func (s *Selection) SetAll(all []string) {
	s.all = make(map[string]struct{}, len(all))
	for _, name := range all {
		s.all[name] = struct{}{}
	}
	for name := range s.selected {
		if _, ok := s.all[name]; !ok {
			delete(s.selected, name)
		}
	}
	for name := range s.loaded {
		if _, ok := s.all[name]; !ok {
			delete(s.loaded, name)
		}
	}
}

// SetFilter recomputes the visible set by case-insensitive substring match.
// The selected set is untouched.
func (s *Selection) SetFilter(text string) {
	s.filter = text
}

// Filter returns the current search filter.
func (s *Selection) Filter() string {
	return s.filter
}

func (s *Selection) isVisible(name string) bool {
	if _, ok := s.all[name]; !ok {
		return false
	}
	if s.filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(s.filter))
}

// Toggle adds or removes a name from the selected set. Only currently visible
// names can be toggled; hidden names already selected are preserved verbatim.
// Toggling the selection down to empty falls back to the loaded name set so
// the view never dead-ends, provided anything is loaded.
func (s *Selection) Toggle(name string, checked bool) {
	if !s.isVisible(name) {
		return
	}
	if checked {
		s.selected[name] = struct{}{}
		return
	}
	delete(s.selected, name)
	if len(s.selected) == 0 {
		for loaded := range s.loaded {
			s.selected[loaded] = struct{}{}
		}
	}
}

// Select adds names to the selected set directly, bypassing visibility. Used
// at session bootstrap for the auto-loaded tables.
func (s *Selection) Select(names ...string) {
	for _, name := range names {
		if _, ok := s.all[name]; ok {
			s.selected[name] = struct{}{}
		}
	}
}

// MarkLoaded records that the named tables have completed a load.
func (s *Selection) MarkLoaded(names ...string) {
	for _, name := range names {
		if _, ok := s.all[name]; ok {
			s.loaded[name] = struct{}{}
		}
	}
}

// All returns every discoverable name, sorted.
func (s *Selection) All() []string {
	return sortedKeys(s.all)
}

// Visible returns the names matching the current filter, sorted.
func (s *Selection) Visible() []string {
	visible := make([]string, 0, len(s.all))
	for name := range s.all {
		if s.isVisible(name) {
			visible = append(visible, name)
		}
	}
	sort.Strings(visible)
	return visible
}

// Selected returns the selected names, sorted.
func (s *Selection) Selected() []string {
	return sortedKeys(s.selected)
}

// Loaded returns the loaded names, sorted.
func (s *Selection) Loaded() []string {
	return sortedKeys(s.loaded)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
