package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"addsubs/internal/services"
)

func TestLanguagesCommand(t *testing.T) {
	env := setupCLITestEnv(t, "")
	code, stdout, stderr := env.run(t, "", "languages")
	if code != services.ExitOK {
		t.Fatalf("exit code = %d: %s", code, stderr)
	}
	requireContains(t, stdout, "jpn")
	requireContains(t, stdout, "Japanese")
	requireContains(t, stdout, "Undetermined")
	requireContains(t, stdout, "Thai")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, "")

	code, stdout, stderr := env.run(t, "", "config", "validate", "--show")
	if code != services.ExitOK {
		t.Fatalf("config validate: %d %s", code, stderr)
	}
	requireContains(t, stdout, "Configuration valid")
	requireContains(t, stdout, "max_command_length")

	target := filepath.Join(t.TempDir(), "config.toml")
	code, stdout, _ = env.run(t, "", "config", "init", "--path", target)
	if code != services.ExitOK {
		t.Fatalf("config init exit code = %d", code)
	}
	requireContains(t, stdout, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if code, _, _ := env.run(t, "", "config", "init", "--path", target); code == services.ExitOK {
		t.Fatal("expected refusal to overwrite without --overwrite")
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t, "")
	code, stdout, stderr := env.run(t, "", "check", env.baseDir)
	if code != services.ExitOK {
		t.Fatalf("check exit code = %d\n%s\n%s", code, stdout, stderr)
	}
	requireContains(t, stdout, "== Tools ==")
	requireContains(t, stdout, "[OK]")
	requireContains(t, stdout, "Media directory")

	content := "[mux]\ntool = \"clearly-not-present-mkvmerge\"\n\n[history]\nenabled = false\n"
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	code, stdout, _ = env.run(t, "", "check")
	if code == services.ExitOK {
		t.Fatal("check should fail when the mux tool is missing")
	}
	if !strings.Contains(stdout, "[ERROR]") {
		t.Fatalf("expected an error line, got:\n%s", stdout)
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t, "")
	code, stdout, stderr := env.run(t, "", "history")
	if code != services.ExitOK {
		t.Fatalf("history exit code = %d: %s", code, stderr)
	}
	requireContains(t, stdout, "No batches recorded yet.")
}
