package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"addsubs/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config whose history and log locations live in a
// unique temp directory per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Mux.Concurrency = 2

	builder := &configBuilder{cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithoutHistory disables the history store.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// StubBinary writes a shell script named name under base/bin, makes sure that
// directory leads PATH for the rest of the test, and returns the script path.
func StubBinary(t testing.TB, base, name, body string) string {
	t.Helper()

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	path := os.Getenv("PATH")
	if !hasPathPrefix(path, binDir) {
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+path)
	}
	return target
}

func hasPathPrefix(path, dir string) bool {
	list := filepath.SplitList(path)
	return len(list) > 0 && list[0] == dir
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.History.Path))
}
