package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"addsubs/internal/config"
	"addsubs/internal/language"
	"addsubs/internal/logging"
	"addsubs/internal/services"
)

type batchFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	jobs       int
	yes        bool
	sync       bool
	tool       string
	noHistory  bool
}

type commandContext struct {
	flags *batchFlags
	stdin io.Reader

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *batchFlags, stdin io.Reader) *commandContext {
	return &commandContext{flags: flags, stdin: stdin}
}

// ensureConfig loads the config once and applies flag overrides on top.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		c.applyOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "flags", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) {
	f := c.flags
	if v := strings.TrimSpace(f.logLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(f.logFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if f.jobs > 0 {
		cfg.Mux.Concurrency = f.jobs
	}
	if v := strings.TrimSpace(f.tool); v != "" {
		cfg.Mux.Tool = v
	}
	if f.sync {
		cfg.Sync.Enabled = true
	}
	if f.noHistory {
		cfg.History.Enabled = false
	}
}

// logger builds the configured logger. The log file, when configured, is
// only created once the caller opens it.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, *logging.DeferredFile, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, file, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "config", "logging", "", err)
	}
	return logger, file, nil
}

func (c *commandContext) languageTable() (*language.Table, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return c.languageTableFor(cfg)
}

func (c *commandContext) languageTableFor(cfg *config.Config) (*language.Table, error) {
	table, err := language.NewTable(cfg.Languages)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "languages", "", err)
	}
	return table, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
