package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"addsubs/internal/config"
	"addsubs/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for cfg. When dir is not empty the
// media directory and its output directory are checked too.
func RunAll(cfg *config.Config, dir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if dir != "" {
		results = append(results, CheckDirectoryAccess("Media directory", dir))
		results = append(results, CheckOutputDirectory(filepath.Join(dir, cfg.Mux.OutputDirName)))
	}
	if cfg.Logging.Dir != "" {
		results = append(results, CheckCreatableDirectory("Log directory", cfg.Logging.Dir))
	}
	if cfg.History.Enabled && cfg.History.Path != "" {
		results = append(results, CheckCreatableDirectory("History directory", filepath.Dir(cfg.History.Path)))
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirectory passes when path is a writable directory or does not
// exist yet; a batch creates it on demand.
func CheckOutputDirectory(path string) Result {
	const name = "Output directory"
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	result := CheckDirectoryAccess(name, path)
	result.Name = name
	return result
}

// CheckCreatableDirectory passes when path exists and is writable, or when
// its nearest existing ancestor is writable.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := path
	for {
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckSystemDeps evaluates the external tools for cfg. The sync tool is
// required only when sync is enabled.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Mux tool",
			Command:     cfg.Mux.Tool,
			Description: "Required to embed subtitles",
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "Sync tool",
			Command:     cfg.Sync.Tool,
			Description: "Aligns subtitle timing before muxing (--sync)",
			Optional:    !cfg.Sync.Enabled,
			VersionArgs: []string{"--version"},
		},
	}
	return deps.CheckBinaries(ctx, requirements)
}
