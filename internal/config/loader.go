package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// envPrefix scopes environment overrides to matchd.
	envPrefix = "MATCHD_"
)

// Load loads configuration from a YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (MATCHD_STORE_PATH, MATCHD_VSS_BATCH_SIZE, ...)
//  2. YAML config file
//  3. Defaults from NewDefault
//
// The configPath parameter names the YAML file to load; if empty, only
// defaults and environment variables apply.
//
// Environment variables use underscore separators and map onto config keys
// by splitting on the first underscore after the prefix:
//
//	MATCHD_STORE_PATH              -> store.path
//	MATCHD_VSS_BATCH_SIZE          -> vss.batch_size
//	MATCHD_MATCH_EXTRACT_OUTPUT    -> match.extract_output
//	MATCHD_LOGGING_REDACT_ENABLED  -> logging.redact.enabled
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := NewDefault()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// nestedEnvSections maps the sub-sections that nest two levels deep. A plain
// first-underscore split would flatten these onto a single field name.
var nestedEnvSections = map[string]string{
	"logging_redact_": "logging.redact.",
	"source_mapping_": "source.mapping.",
	"target_mapping_": "target.mapping.",
}

// envKey maps an environment variable name onto a config key. The section is
// split off at the first underscore; the field keeps its underscores. Known
// nested sub-sections are mapped explicitly.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for prefix, section := range nestedEnvSections {
		if strings.HasPrefix(lower, prefix) {
			return section + strings.TrimPrefix(lower, prefix)
		}
	}
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// readConfigFile reads the config file with a size cap, using the open
// file's descriptor for validation to avoid a stat/open race.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
