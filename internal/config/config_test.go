package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"voxmemo/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VOXMEMO_NTFY_TOPIC", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "voxmemo")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.RecordingsDir != filepath.Join(wantData, "recordings") {
		t.Fatalf("unexpected recordings dir: %q", cfg.Paths.RecordingsDir)
	}
	if cfg.Catalog.Backend != "file" {
		t.Fatalf("expected file backend by default, got %q", cfg.Catalog.Backend)
	}
	if cfg.Catalog.Key != "recordings" {
		t.Fatalf("unexpected catalog key: %q", cfg.Catalog.Key)
	}
	if cfg.Catalog.DefaultCaption != "My Recording" {
		t.Fatalf("unexpected default caption: %q", cfg.Catalog.DefaultCaption)
	}
	if cfg.PollInterval() != time.Second {
		t.Fatalf("expected 1s poll interval, got %s", cfg.PollInterval())
	}
	if cfg.CatalogFilePath() != filepath.Join(wantData, "recordings.json") {
		t.Fatalf("unexpected catalog file path: %q", cfg.CatalogFilePath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.RecordingsDir, cfg.Paths.LogDir, cfg.Paths.ExportDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "voxmemo.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Catalog struct {
			Backend string `toml:"backend"`
			Key     string `toml:"key"`
		} `toml:"catalog"`
		Capture struct {
			Format string `toml:"format"`
		} `toml:"capture"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Catalog.Backend = " SQLite "
	custom.Catalog.Key = "memos"
	custom.Capture.Format = ".WAV"
	custom.Logging.Format = "yaml"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
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
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Catalog.Backend != "sqlite" {
		t.Fatalf("expected normalized backend sqlite, got %q", cfg.Catalog.Backend)
	}
	if cfg.Capture.Format != "wav" {
		t.Fatalf("expected normalized capture format wav, got %q", cfg.Capture.Format)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected unknown log format to fall back to console, got %q", cfg.Logging.Format)
	}
	if cfg.CatalogDBPath() != filepath.Join(tempDir, "data", "voxmemo.db") {
		t.Fatalf("unexpected db path: %q", cfg.CatalogDBPath())
	}
}

func TestLoadUsesEnvNtfyTopic(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VOXMEMO_NTFY_TOPIC", " https://ntfy.example/memos ")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/memos" {
		t.Fatalf("expected topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"unknown backend", func(c *config.Config) { c.Catalog.Backend = "redis" }, "catalog.backend"},
		{"key with separator", func(c *config.Config) { c.Catalog.Key = "a/b" }, "catalog.key"},
		{"bad format", func(c *config.Config) { c.Capture.Format = "m 4a" }, "capture.format"},
		{"too many channels", func(c *config.Config) { c.Capture.Channels = 6 }, "capture.channels"},
		{"zero poll", func(c *config.Config) { c.Browse.PollIntervalMS = 0 }, "browse.poll_interval_ms"},
		{"status slower than poll", func(c *config.Config) { c.Playback.StatusIntervalMS = 5000 }, "playback.status_interval_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Browse.PollIntervalMS != config.Default().Browse.PollIntervalMS {
		t.Fatalf("unexpected poll interval from sample: %d", cfg.Browse.PollIntervalMS)
	}
}
