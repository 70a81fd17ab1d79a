// Package server exposes the aggregation views and selection transitions over
// a REST API, with the embedded dashboard page as fallback.
package server

import (
	"errors"

	"github.com/robfig/cron/v3"
)

var (
	// ErrAddrRequired is returned when the server is enabled without an address
	ErrAddrRequired = errors.New("server address is required when enabled")
	// ErrInvalidSchedule is returned for an unparseable refresh schedule
	ErrInvalidSchedule = errors.New("invalid refresh schedule")
)

// Config represents the dashboard server configuration
type Config struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Addr    string `yaml:"addr" default:":8050"`
	// RefreshSchedule is an optional cron expression for periodic table
	// re-discovery. Empty disables it.
	RefreshSchedule string `yaml:"refreshSchedule"`
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Enabled && c.Addr == "" {
		return ErrAddrRequired
	}
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			return ErrInvalidSchedule
		}
	}
	return nil
}
