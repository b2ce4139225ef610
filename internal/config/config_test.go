package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"addsubs/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "addsubs", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantHistory := filepath.Join(tempHome, ".local", "share", "addsubs", "history.db")
	if cfg.History.Path != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, wantHistory)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Mux.Tool != "mkvmerge" {
		t.Fatalf("unexpected mux tool %q", cfg.Mux.Tool)
	}
	if cfg.Mux.OutputDirName != "output" {
		t.Fatalf("unexpected output dir name %q", cfg.Mux.OutputDirName)
	}
	if cfg.Mux.MaxCommandLength != 4096 {
		t.Fatalf("unexpected max command length %d", cfg.Mux.MaxCommandLength)
	}
	if cfg.Sync.Enabled {
		t.Fatal("expected sync disabled by default")
	}
	if cfg.Sync.Tool != "ffs" {
		t.Fatalf("unexpected sync tool %q", cfg.Sync.Tool)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Logging.Dir != "" {
		t.Fatalf("expected no log dir by default, got %q", cfg.Logging.Dir)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[mux]
tool = "  /opt/mkvtoolnix/mkvmerge "
output_dir_name = "muxed"
concurrency = 3

[sync]
enabled = true

[logging]
format = "JSON"
level = "DEBUG"
dir = "~/logs"

[history]
path = "~/state/history.db"

[languages]
THA = "Thai"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Mux.Tool != "/opt/mkvtoolnix/mkvmerge" {
		t.Fatalf("expected trimmed tool, got %q", cfg.Mux.Tool)
	}
	if cfg.Mux.OutputDirName != "muxed" {
		t.Fatalf("unexpected output dir name %q", cfg.Mux.OutputDirName)
	}
	if cfg.Workers() != 3 {
		t.Fatalf("expected 3 workers, got %d", cfg.Workers())
	}
	if !cfg.Sync.Enabled || cfg.Sync.Tool != "ffs" {
		t.Fatalf("unexpected sync config %+v", cfg.Sync)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Logging.Dir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Logging.Dir)
	}
	if cfg.History.Path != filepath.Join(tempHome, "state", "history.db") {
		t.Fatalf("unexpected history path %q", cfg.History.Path)
	}
	if cfg.Languages["tha"] != "Thai" {
		t.Fatalf("expected lowercased language code, got %v", cfg.Languages)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"nested output dir", "[mux]\noutput_dir_name = \"a/b\"\n", "output_dir_name"},
		{"parent output dir", "[mux]\noutput_dir_name = \"..\"\n", "output_dir_name"},
		{"tiny command limit", "[mux]\nmax_command_length = 10\n", "max_command_length"},
		{"bad level", "[logging]\nlevel = \"verbose\"\n", "logging.level"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad language code", "[languages]\nthai = \"Thai\"\n", "languages.thai"},
		{"empty language name", "[languages]\ntha = \" \"\n", "languages.tha"},
		{"unknown key", "[mux]\nbinary = \"x\"\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestWorkersFallsBackToCPUCount(t *testing.T) {
	cfg := config.Default()
	if got := cfg.Workers(); got != runtime.NumCPU() {
		t.Fatalf("Workers() = %d, want %d", got, runtime.NumCPU())
	}
	var nilCfg *config.Config
	if got := nilCfg.Workers(); got < 1 {
		t.Fatalf("nil config Workers() = %d", got)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded map[string]any
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Mux.Tool != "mkvmerge" {
		t.Fatalf("unexpected tool from sample %q", cfg.Mux.Tool)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Mux.Concurrency = 2
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(encoded, "concurrency = 2") {
		t.Fatalf("expected concurrency in encoded config:\n%s", encoded)
	}
}
