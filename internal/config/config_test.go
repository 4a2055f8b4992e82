package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Practice.Lang != nil || cfg.Sync.Enabled() {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[practice]
lang = "en"
duration = 30
caps = 0.2
focus-weak = true

[profile]
name = "Ada"
user-id = "u1"

[sync]
url = "http://localhost:8043"
token = "u1.secret"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Lang == nil || *cfg.Practice.Lang != "en" {
		t.Fatalf("unexpected lang: %v", cfg.Practice.Lang)
	}
	if cfg.Practice.Duration == nil || *cfg.Practice.Duration != 30 {
		t.Fatalf("unexpected duration: %v", cfg.Practice.Duration)
	}
	if cfg.Practice.Words != nil {
		t.Fatalf("expected words unset")
	}
	if cfg.Profile.Name != "Ada" || cfg.Profile.UserID != "u1" {
		t.Fatalf("unexpected profile: %+v", cfg.Profile)
	}
	if !cfg.Sync.Enabled() || cfg.Sync.Token != "u1.secret" {
		t.Fatalf("unexpected sync: %+v", cfg.Sync)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	words := 40
	cfg := FileConfig{
		Practice: PracticeConfig{Words: &words},
		Profile:  ProfileConfig{Name: "Grace", UserID: "u2"},
		Sync:     SyncConfig{URL: "http://example.test", Token: "u2.tok"},
	}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loaded.Practice.Words == nil || *loaded.Practice.Words != 40 || loaded.Profile.UserID != "u2" || loaded.Sync.Token != "u2.tok" {
		t.Fatalf("unexpected round trip: %+v", loaded)
	}
}

func TestLoadServerEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("WPMHERO_ADDR", "")
	t.Setenv("WPMHERO_DB", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("WPMHERO_QUEUE", "")

	cfg, err := LoadServerEnv(filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.DBPath != filepath.Join(dir, "wpmhero", "wpmhero.db") || cfg.UseQueue() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("REDIS_URL=redis://localhost:6379\nWPMHERO_QUEUE=results\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	// godotenv does not override set variables, so clear them first.
	os.Unsetenv("REDIS_URL")
	os.Unsetenv("WPMHERO_QUEUE")
	cfg, err = LoadServerEnv(envFile)
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if cfg.RedisURL != "redis://localhost:6379" || cfg.Queue != "results" || !cfg.UseQueue() {
		t.Fatalf("unexpected env config: %+v", cfg)
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "wpmhero", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultWordListPath("en"); got != filepath.Join("/cfg", "wpmhero", "wordlists", "en.txt") {
		t.Fatalf("unexpected word list path %q", got)
	}
	t.Setenv("XDG_CACHE_HOME", "/cache")
	if got := DefaultWordfreqCacheDir(); got != filepath.Join("/cache", "wpmhero", "wordfreq") {
		t.Fatalf("unexpected wordfreq cache dir %q", got)
	}
}
