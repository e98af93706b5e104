package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	if len(c.Output.Formats) == 0 {
		return errors.New("output.formats must list at least one format")
	}
	for _, format := range c.Output.Formats {
		if err := ValidateFormat(format); err != nil {
			return fmt.Errorf("output.formats: %w", err)
		}
	}
	return nil
}

// ValidateFormat reports whether format is a supported output format name.
func ValidateFormat(format string) error {
	switch format {
	case FormatLRC, FormatSRT:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected %s or %s)", format, FormatLRC, FormatSRT)
	}
}

func (c *Config) validateAlignment() error {
	if c.Alignment.MinCoverage < 0 || c.Alignment.MinCoverage > 1 {
		return errors.New("alignment.min_coverage must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.Paths.HistoryDB == "" {
		return errors.New("paths.history_db must be set when history is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if filepath.Base(c.Logging.FileName) != c.Logging.FileName {
		return fmt.Errorf("logging.file_name must be a bare file name, got %q", c.Logging.FileName)
	}
	return nil
}
