package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"addsubs/internal/config"
)

// LogFileName is the file written inside the configured log directory.
const LogFileName = "addsubs.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives terminal output. Defaults to stderr.
	Writer io.Writer
	// File, when set, receives a JSON copy of every record.
	File io.Writer
	// Development adds source locations at every level.
	Development bool
}

// New constructs a slog logger from opts. Source locations are attached at
// debug level or in development mode.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	addSource := opts.Development || level <= slog.LevelDebug

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var terminal slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		terminal = newConsoleHandler(w, level, addSource)
	case "json":
		terminal = newJSONHandler(w, level, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if opts.File == nil {
		return slog.New(terminal), nil
	}
	return slog.New(tee(terminal, newJSONHandler(opts.File, level, addSource))), nil
}

// NewFromConfig builds the logger described by cfg.Logging, writing terminal
// output to w. When logging.dir is set the JSON copy goes to a DeferredFile
// for <logging.dir>/addsubs.log, which the caller opens once the run commits
// to work and closes on exit. The file is nil otherwise.
func NewFromConfig(cfg *config.Config, w io.Writer) (*slog.Logger, *DeferredFile, error) {
	if cfg == nil {
		logger, err := New(Options{Writer: w})
		return logger, nil, err
	}
	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
	}
	var file *DeferredFile
	if cfg.Logging.Dir != "" {
		file = NewDeferredFile(filepath.Join(cfg.Logging.Dir, LogFileName))
		opts.File = file
	}
	logger, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	return logger, file, nil
}

// parseLevel falls back to info for anything slog does not recognise.
func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
