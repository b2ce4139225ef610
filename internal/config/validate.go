package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMux(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateLanguages(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMux() error {
	if strings.ContainsAny(c.Mux.OutputDirName, `/\`) || c.Mux.OutputDirName == "." || c.Mux.OutputDirName == ".." {
		return fmt.Errorf("mux.output_dir_name must be a single directory name, got %q", c.Mux.OutputDirName)
	}
	if filepath.Base(c.Mux.OutputDirName) != c.Mux.OutputDirName {
		return fmt.Errorf("mux.output_dir_name must be a single directory name, got %q", c.Mux.OutputDirName)
	}
	if c.Mux.MaxCommandLength < 64 {
		return fmt.Errorf("mux.max_command_length must be at least 64, got %d", c.Mux.MaxCommandLength)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func (c *Config) validateLanguages() error {
	for code, name := range c.Languages {
		if len(code) != 3 {
			return fmt.Errorf("languages.%s: expected a three-letter ISO 639-2 code", code)
		}
		if name == "" {
			return errors.New("languages." + code + ": display name must not be empty")
		}
	}
	return nil
}
