package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeMux()
	c.normalizeSync()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLanguages()
	return nil
}

func (c *Config) normalizeMux() {
	c.Mux.Tool = strings.TrimSpace(c.Mux.Tool)
	if c.Mux.Tool == "" {
		c.Mux.Tool = defaultMuxTool
	}
	c.Mux.OutputDirName = strings.TrimSpace(c.Mux.OutputDirName)
	if c.Mux.OutputDirName == "" {
		c.Mux.OutputDirName = defaultOutputDirName
	}
	if c.Mux.MaxCommandLength == 0 {
		c.Mux.MaxCommandLength = defaultMaxCommandLength
	}
	if c.Mux.Concurrency < 0 {
		c.Mux.Concurrency = 0
	}
}

func (c *Config) normalizeSync() {
	c.Sync.Tool = strings.TrimSpace(c.Sync.Tool)
	if c.Sync.Tool == "" {
		c.Sync.Tool = defaultSyncTool
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLanguages() {
	if len(c.Languages) == 0 {
		c.Languages = nil
		return
	}
	normalized := make(map[string]string, len(c.Languages))
	for code, name := range c.Languages {
		code = strings.ToLower(strings.TrimSpace(code))
		name = strings.TrimSpace(name)
		if code == "" {
			continue
		}
		normalized[code] = name
	}
	c.Languages = normalized
}
