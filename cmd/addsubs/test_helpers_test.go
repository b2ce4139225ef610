package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"addsubs/internal/config"
	"addsubs/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	baseDir    string
	configPath string
	mediaDir   string
}

// setupCLITestEnv isolates HOME and the working directory, writes a config
// pointing history and logs into a temp tree, and stubs mkvmerge with a
// script that copies the media file to the -o path.
func setupCLITestEnv(t *testing.T, muxScript string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Chdir(base)

	if muxScript == "" {
		muxScript = `cp "$3" "$2"`
	}
	testsupport.StubBinary(t, base, "mkvmerge", muxScript)
	testsupport.StubBinary(t, base, "ffs", "exit 0")

	configPath := filepath.Join(base, "addsubs-test.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		baseDir:    base,
		configPath: configPath,
		mediaDir:   filepath.Join(base, "media"),
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[mux]
concurrency = 2

[logging]
dir = %q

[history]
enabled = %t
path = %q

[languages]
tha = "thai"
`, cfg.Logging.Dir, cfg.History.Enabled, cfg.History.Path)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", e.configPath}, args...)
	code := run(full, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, stat err = %v", path, err)
	}
}

// requireNoStateWritten asserts that neither the history database nor the
// log directory was created.
func (e *cliTestEnv) requireNoStateWritten(t *testing.T) {
	t.Helper()
	requireMissing(t, e.cfg.History.Path)
	requireMissing(t, filepath.Dir(e.cfg.History.Path))
	requireMissing(t, e.cfg.Logging.Dir)
}
