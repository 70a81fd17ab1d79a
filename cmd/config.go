package cmd

import (
	"errors"
	"os"

	"github.com/creasty/defaults"
	"github.com/lakewatch/lakeview/pkg/deltalog"
	"github.com/lakewatch/lakeview/pkg/server"
	"gopkg.in/yaml.v3"
)

// ErrInvalidLogLevel is returned for an unrecognized logging level
var ErrInvalidLogLevel = errors.New("invalid logging level")

// Config represents the serve command configuration
type Config struct {
	// Logging level
	Logging string `yaml:"logging" default:"info"`
	// MetricsAddr is the Prometheus metrics listen address
	MetricsAddr string `yaml:"metricsAddr" default:":9090"`

	// Scan configuration
	Scan deltalog.Config `yaml:"scan"`
	// Server configuration
	Server server.Config `yaml:"server"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Scan.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "lakeview.yaml"
	}

	config := &Config{}
	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, nil
}
