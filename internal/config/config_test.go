package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"mirror", ModeMirror},
		{"pair", ModePair},
		{"invalid", ModeMirror}, // Default
		{"", ModeMirror},        // Default
	}

	for _, tt := range tests {
		if got := ParseMode(tt.input); got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestModeBidirectional(t *testing.T) {
	if ModeMirror.Bidirectional() {
		t.Error("mirror should be one-way")
	}
	if !ModePair.Bidirectional() {
		t.Error("pair should be bidirectional")
	}
	if Mode("ring").Valid() {
		t.Error("unknown mode should not be valid")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Replication.Mode != ModeMirror {
		t.Errorf("Replication.Mode = %s, want mirror", cfg.Replication.Mode)
	}
	if cfg.Journal.Enabled {
		t.Error("journal should be disabled by default")
	}
	if cfg.Journal.Path != "./modelsync.db" {
		t.Errorf("Journal.Path = %s, want ./modelsync.db", cfg.Journal.Path)
	}
	if cfg.Journal.Stream != "source" {
		t.Errorf("Journal.Stream = %s, want source", cfg.Journal.Stream)
	}
	if cfg.Journal.BusyTimeout == nil || cfg.Journal.BusyTimeout.Duration() != DefaultBusyTimeout {
		t.Errorf("Journal.BusyTimeout = %v, want %s", cfg.Journal.BusyTimeout, DefaultBusyTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"pair", func(c *Config) { c.Replication.Mode = ModePair }, ""},
		{"unknown mode", func(c *Config) { c.Replication.Mode = "ring" }, "replication.mode"},
		{"negative verbosity", func(c *Config) { c.Logging.Verbosity = -1 }, "logging.verbosity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Replication.Mode = ModePair
	cfg.Replication.Label = "replica-1"
	cfg.Replication.Compose = true
	cfg.Journal.Enabled = true
	cfg.Logging.Verbosity = 2

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Replication != cfg.Replication {
		t.Errorf("Replication = %+v, want %+v", loaded.Replication, cfg.Replication)
	}
	if !loaded.Journal.Enabled || loaded.Logging.Verbosity != 2 {
		t.Errorf("Journal/Logging not preserved: %+v %+v", loaded.Journal, loaded.Logging)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	body := "replication:\n  compose: true\njournal:\n  busy_timeout: 250ms\n"
	if err := os.WriteFile(configPath, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Replication.Mode != ModeMirror || !cfg.Replication.Compose {
		t.Errorf("Replication = %+v", cfg.Replication)
	}
	if got := cfg.Journal.BusyTimeout.Duration(); got != 250*time.Millisecond {
		t.Errorf("BusyTimeout = %s, want 250ms", got)
	}
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("replication:\n  mode: ring\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFromPath(configPath); err == nil {
		t.Fatal("LoadFromPath() should reject an unknown mode")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestSearchPathsOrder(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/explicit.yaml")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/u")

	want := []string{
		"/tmp/explicit.yaml",
		ConfigFileName,
		"/xdg/modelsync/config.yaml",
		"/home/u/.config/modelsync/config.yaml",
		"/etc/modelsync/config.yaml",
	}
	got := SearchPaths()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("SearchPaths() = %v, want %v", got, want)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
