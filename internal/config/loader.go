package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix is the prefix for environment variable overrides,
// e.g. ROWBENCH_TARGET_TYPE=duckdb.
const envPrefix = "ROWBENCH_"

// defaults is the base configuration layer.
var defaults = map[string]any{
	"target.type":  "duckdb",
	"target.path":  "",
	"id_column":    "id",
	"server.port":  4400,
	"history.path": ".rowbench/history.db",
	"output":       "auto",
	"verbose":      false,
}

// Load builds the configuration by layering, lowest to highest precedence:
// defaults, config file, environment, CLI flags.
//
// cfgFile may be empty, in which case rowbench.yaml / rowbench.yml in the
// working directory are tried; a missing config file is not an error.
// flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if cfgFile != "" {
		return nil, fmt.Errorf("config file not found: %s", cfgFile)
	}

	// ROWBENCH_SERVER_PORT -> server.port
	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithValue(flags, ".", k, flagToKey), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

// envToKey maps environment variable names onto config keys. Leaf keys
// that themselves contain underscores need explicit handling.
func envToKey(s string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	switch key {
	case "id.column":
		return "id_column"
	case "server.session.secret":
		return "server.session_secret"
	}
	return key
}

// flagToKey maps CLI flag names onto config keys.
func flagToKey(key, value string) (string, any) {
	switch key {
	case "db-type":
		return "target.type", value
	case "db-path":
		return "target.path", value
	case "db-host":
		return "target.host", value
	case "db-port":
		return "target.port", value
	case "db-name":
		return "target.database", value
	case "db-schema":
		return "target.schema", value
	case "port":
		return "server.port", value
	case "history":
		return "history.path", value
	default:
		return strings.ReplaceAll(key, "-", "_"), value
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > rowbench.yaml > rowbench.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	if _, err := os.Stat(FileNameAlt); err == nil {
		return FileNameAlt
	}
	return ""
}
