// Package config loads Rowbench configuration from file, environment
// variables, and CLI flags.
package config

import (
	"fmt"
	"strings"

	"github.com/rowbench/rowbench/internal/warehouse"
)

// Config file names, checked in order.
const (
	FileName    = "rowbench.yaml"
	FileNameAlt = "rowbench.yml"
)

// ServerConfig holds web UI server settings.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
}

// HistoryConfig holds the local write-log settings.
type HistoryConfig struct {
	Path string `koanf:"path"`
}

// Config is the full Rowbench configuration.
type Config struct {
	// Target identifies the warehouse holding the table.
	Target warehouse.Config `koanf:"target"`

	// Table is the one table this instance fronts.
	Table string `koanf:"table"`

	// IDColumn is the surrogate key column name.
	IDColumn string `koanf:"id_column"`

	Server  ServerConfig  `koanf:"server"`
	History HistoryConfig `koanf:"history"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"` // auto|table|plain
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("table is required (set table in %s or --table)", FileName)
	}
	if c.IDColumn == "" {
		return fmt.Errorf("id_column is required")
	}
	if c.Target.Type == "" {
		return fmt.Errorf("target.type is required")
	}
	if !warehouse.IsRegistered(strings.ToLower(c.Target.Type)) {
		return &warehouse.UnknownAdapterError{
			Type:      c.Target.Type,
			Available: warehouse.List(),
		}
	}
	return nil
}
