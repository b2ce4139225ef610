package mux

import (
	"fmt"
	"path/filepath"
	"strings"

	"addsubs/internal/pairing"
	"addsubs/internal/services"
)

// DefaultMaxCommandLength bounds the rendered command line of one job.
const DefaultMaxCommandLength = 4096

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// Line renders the command as a single space-joined line without quoting.
// Its length is what the command length limit applies to.
func (c Command) Line() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// Len returns len(c.Line()).
func (c Command) Len() int {
	return len(c.Line())
}

// String renders the command with shell quoting for display.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, shellQuote(c.Name))
	for _, arg := range c.Args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Builder renders the commands for one batch.
type Builder struct {
	Tool      string
	SyncTool  string
	Sync      bool
	MaxLength int
}

// Target is what every job in a batch shares.
type Target struct {
	// Dir is the scanned directory and the working directory of every job.
	Dir string
	// OutputDir is rendered into the -o argument as given; relative paths
	// resolve against Dir.
	OutputDir    string
	LanguageCode string
	LanguageName string
}

// OutputPath resolves OutputDir against Dir.
func (t Target) OutputPath() string {
	if filepath.IsAbs(t.OutputDir) || t.Dir == "" {
		return t.OutputDir
	}
	return filepath.Join(t.Dir, t.OutputDir)
}

// Job is one pair bound to its rendered commands.
type Job struct {
	Index int
	Pair  pairing.Pair
	// Sync runs before Mux when subtitle sync is enabled.
	Sync *Command
	Mux  Command
}

// Build renders every job up front. Nothing is executed or created.
func (b Builder) Build(target Target, pairs []pairing.Pair) ([]Job, error) {
	tool := strings.TrimSpace(b.Tool)
	if tool == "" {
		return nil, services.Wrap(services.ErrCommandBuild, "build", "resolve tool", "mux tool is empty", nil)
	}
	limit := b.MaxLength
	if limit <= 0 {
		limit = DefaultMaxCommandLength
	}

	jobs := make([]Job, len(pairs))
	for i, pair := range pairs {
		mux := Command{
			Name: tool,
			Args: []string{
				"-o", filepath.Join(target.OutputDir, pair.Primary),
				pair.Primary,
				"--language", "0:" + target.LanguageCode,
				"--track-name", "0:" + target.LanguageName,
				pair.Secondary,
			},
			Dir: target.Dir,
		}
		if n := mux.Len(); n > limit {
			return nil, services.Wrap(
				services.ErrCommandBuild,
				"build",
				"render command",
				fmt.Sprintf("command for %s is %d bytes, limit %d", pair.Primary, n, limit),
				nil,
			)
		}
		job := Job{Index: i, Pair: pair, Mux: mux}
		if b.Sync {
			syncTool := strings.TrimSpace(b.SyncTool)
			if syncTool == "" {
				return nil, services.Wrap(services.ErrCommandBuild, "build", "resolve sync tool", "sync tool is empty", nil)
			}
			sync := Command{
				Name: syncTool,
				Args: []string{pair.Primary, "-i", pair.Secondary, "-o", pair.Secondary},
				Dir:  target.Dir,
			}
			if n := sync.Len(); n > limit {
				return nil, services.Wrap(
					services.ErrCommandBuild,
					"build",
					"render sync command",
					fmt.Sprintf("sync command for %s is %d bytes, limit %d", pair.Primary, n, limit),
					nil,
				)
			}
			job.Sync = &sync
		}
		jobs[i] = job
	}
	return jobs, nil
}
