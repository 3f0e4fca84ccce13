// Package logging provides structured logging for matchd built on Zap,
// with redaction of the PII the datasets under analysis are full of.
package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level  string          `koanf:"level"`
	Format string          `koanf:"format"`
	Redact RedactionConfig `koanf:"redact"`
}

// RedactionConfig controls PII redaction in log output.
type RedactionConfig struct {
	Enabled bool `koanf:"enabled"`
	// Fields lists additional field names to redact beyond the PII defaults.
	Fields []string `koanf:"fields"`
}

// NewDefaultConfig returns config with production-ready defaults.
// Redaction is on by default: the analysis runs over consumer PII and raw
// values must not leak into logs.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "console",
		Redact: RedactionConfig{Enabled: true},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format %q (must be json or console)", c.Format)
	}
	return nil
}

// ParseLevel parses a string into a zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}
