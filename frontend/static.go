// Package frontend provides the embedded dashboard page
package frontend

import _ "embed"

// IndexHTML is the single-page dashboard served at the root route.
//
//go:embed index.html
var IndexHTML []byte
