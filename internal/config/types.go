// Package config loads leapdb configuration from defaults, a leapdb.yaml
// file, a .env file, LEAPDB_* environment variables and command-line flags.
package config

import (
	"errors"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// File names searched for in the project root, in order.
const (
	FileName    = "leapdb.yaml"
	FileNameAlt = "leapdb.yml"
	DotEnvFile  = ".env"
)

// EnvPrefix marks environment variables read as configuration.
// A double underscore separates nested keys:
// LEAPDB_CONNECTION__HOST sets connection.host.
const EnvPrefix = "LEAPDB_"

// Default configuration values.
const (
	DefaultLogLevel = "warn"
	DefaultOutput   = OutputTable
)

// Output formats for row results.
const (
	OutputTable    = "table"
	OutputJSON     = "json"
	OutputMarkdown = "markdown"
)

// Config holds all leapdb configuration.
type Config struct {
	Connection   core.ConnectionConfig `koanf:"connection"`
	Environment  string                `koanf:"environment"`
	Environments map[string]EnvConfig  `koanf:"environments"`
	LogLevel     string                `koanf:"log_level"`
	Output       string                `koanf:"output"`

	// ProjectRoot is the directory the config file was found in, or the
	// working directory when there is none.
	ProjectRoot string `koanf:"-"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// EnvConfig holds per-environment overrides, selected by Environment.
type EnvConfig struct {
	Connection map[string]any `koanf:"connection"`
}

// ErrDriverRequired is returned by Validate when no driver is configured.
var ErrDriverRequired = errors.New("connection.driver is required\nHint: set it in leapdb.yaml, LEAPDB_CONNECTION__DRIVER or --driver")

// Validate checks the settings every database command needs.
func (c *Config) Validate() error {
	if c.Connection.Driver == "" {
		return ErrDriverRequired
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputMarkdown:
	default:
		return errors.New("output must be one of table, json, markdown")
	}
	return nil
}
