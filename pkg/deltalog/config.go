// Package deltalog reads Delta Lake transaction logs from disk and derives
// per-table version histories from them. It is the concrete history provider
// behind the cache.
package deltalog

import "errors"

var (
	// ErrRootRequired is returned when no scan root is configured
	ErrRootRequired = errors.New("scan root is required")
	// ErrNegativeLimit is returned for negative table or version limits
	ErrNegativeLimit = errors.New("limits must not be negative")
)

// Config represents the table scan configuration
type Config struct {
	// Root is the directory scanned for Delta tables
	Root string `yaml:"root" default:"."`
	// Recursive controls whether nested directories are scanned
	Recursive bool `yaml:"recursive" default:"true"`
	// MaxTables caps how many tables discovery returns (0 = unlimited)
	MaxTables int `yaml:"maxTables" default:"0"`
	// VersionLimit caps version records fetched per table (0 = unlimited)
	VersionLimit int `yaml:"versionLimit" default:"0"`
}

// Validate validates the scan configuration
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrRootRequired
	}
	if c.MaxTables < 0 || c.VersionLimit < 0 {
		return ErrNegativeLimit
	}
	return nil
}
