package history

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Identity pairs a table's canonical path with its normalized display name.
// The path is the unit of loading; the name is the unit of selection.
type Identity struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Normalize derives one display name per table path. A single path names the
// table after its final segment; multiple paths are stripped of their longest
// common path prefix. The output is a pure function of the input set: the
// same paths always yield the same names regardless of order. Two paths
// normalizing to the same name fail with ErrNameCollision.
func Normalize(paths []string) ([]Identity, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	cleaned := make([]string, len(paths))
	for i, p := range paths {
		cleaned[i] = path.Clean(filepath.ToSlash(p))
	}

	identities := make([]Identity, len(paths))
	if len(paths) == 1 {
		identities[0] = Identity{Path: paths[0], Name: path.Base(cleaned[0])}
		return identities, nil
	}

	prefix := commonPrefix(cleaned)
	seen := make(map[string]string, len(paths))
	for i, p := range cleaned {
		name := p
		if prefix != "" {
			name = strings.TrimPrefix(p, prefix+"/")
		}
		if other, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %q and %q both normalize to %q", ErrNameCollision, other, paths[i], name)
		}
		seen[name] = paths[i]
		identities[i] = Identity{Path: paths[i], Name: name}
	}
	return identities, nil
}

// commonPrefix returns the longest common segment-wise prefix of the cleaned
// paths, without a trailing separator. Stable under input order.
func commonPrefix(cleaned []string) string {
	sorted := append([]string(nil), cleaned...)
	sort.Strings(sorted)

	// The common prefix of a sorted set is the common prefix of its extremes.
	first := strings.Split(sorted[0], "/")
	last := strings.Split(sorted[len(sorted)-1], "/")

	n := 0
	for n < len(first) && n < len(last) && first[n] == last[n] {
		n++
	}
	// Never consume an entire path: the shortest path must keep at least its
	// final segment as a name.
	if n == len(first) {
		n--
	}
	if n <= 0 {
		return ""
	}
	return strings.Join(first[:n], "/")
}

// DisplayNames returns a path-to-name lookup for a set of identities.
func DisplayNames(identities []Identity) map[string]string {
	names := make(map[string]string, len(identities))
	for _, id := range identities {
		names[id.Path] = id.Name
	}
	return names
}
