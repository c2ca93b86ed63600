package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[paths]
archive_root = "/tmp/mailcrate-test/archives"

[imap]
server = "imap.example.com"
username = "user@example.com"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config, got exists=%v path=%q", exists, resolved)
	}
	if cfg.IMAP.Port != defaultIMAPPort {
		t.Errorf("port = %d, want default %d", cfg.IMAP.Port, defaultIMAPPort)
	}
	if cfg.Audio.OutputFormat != "original" {
		t.Errorf("output format = %q, want original", cfg.Audio.OutputFormat)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("level = %q, want info", cfg.Logging.Level)
	}
	if !filepath.IsAbs(cfg.Paths.WorkflowsFile) {
		t.Errorf("workflows file not expanded: %q", cfg.Paths.WorkflowsFile)
	}
}

func TestLoadRequiresIMAPServer(t *testing.T) {
	path := writeConfig(t, `
[paths]
archive_root = "/tmp/mailcrate-test/archives"
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "imap.server") {
		t.Fatalf("expected imap.server error, got %v", err)
	}
}

func TestLoadRejectsPositiveLUFS(t *testing.T) {
	path := writeConfig(t, `
[paths]
archive_root = "/tmp/mailcrate-test/archives"

[imap]
server = "imap.example.com"

[audio]
target_lufs = 5.0
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "target_lufs") {
		t.Fatalf("expected target_lufs error, got %v", err)
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	path := writeConfig(t, `
[paths]
archive_root = "/tmp/mailcrate-test/archives"

[imap]
server = "imap.example.com"

[logging]
format = "xml"
`)
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/archives")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "archives") {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[imap]") {
		t.Fatal("sample config missing [imap] section")
	}
}

func TestRequireLLM(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireLLM(); err == nil {
		t.Fatal("expected error without api key")
	}
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.Model = "some/model"
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLockPath(t *testing.T) {
	cfg := Default()
	cfg.Paths.LogDir = "/var/log/mailcrate"
	got := cfg.LockPath("sonic_twist")
	if got != filepath.Join("/var/log/mailcrate", "sonic_twist.lock") {
		t.Fatalf("LockPath = %q", got)
	}
}
