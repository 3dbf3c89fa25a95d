package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir       string `toml:"data_dir"`
	RecordingsDir string `toml:"recordings_dir"`
	ExportDir     string `toml:"export_dir"`
	LogDir        string `toml:"log_dir"`
}

// Catalog contains configuration for the persisted recording catalog.
type Catalog struct {
	// Backend selects the blob store: "file" (JSON file) or "sqlite".
	Backend        string `toml:"backend"`
	Key            string `toml:"key"`
	DefaultCaption string `toml:"default_caption"`
}

// Capture contains configuration for the audio capture device.
type Capture struct {
	Binary      string `toml:"binary"`
	InputFormat string `toml:"input_format"`
	InputDevice string `toml:"input_device"`
	// Format is the container extension written for every recording. It is
	// fixed per installation; voxmemo never transcodes.
	Format     string `toml:"format"`
	SampleRate int    `toml:"sample_rate"`
	Channels   int    `toml:"channels"`
	MinFreeMB  int    `toml:"min_free_mb"`
}

// Playback contains configuration for the audio player.
type Playback struct {
	PlayerBinary     string `toml:"player_binary"`
	ProbeBinary      string `toml:"probe_binary"`
	StatusIntervalMS int    `toml:"status_interval_ms"`
	ProbeCacheSize   int    `toml:"probe_cache_size"`
}

// Browse contains configuration for the browsing surface.
type Browse struct {
	PollIntervalMS int `toml:"poll_interval_ms"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RecordingSaved bool   `toml:"recording_saved"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	MaxSizeMB     int    `toml:"max_size_mb"`
	MaxBackups    int    `toml:"max_backups"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for voxmemo.
//
// Configuration sections by subsystem:
//   - Paths: data, recordings, export, and log directories
//   - Catalog: blob store backend, catalog key, default caption
//   - Capture: recorder binary and fixed capture format
//   - Playback: player/probe binaries and status tick interval
//   - Browse: catalog refresh interval
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and rotation
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	Capture       Capture       `toml:"capture"`
	Playback      Playback      `toml:"playback"`
	Browse        Browse        `toml:"browse"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voxmemo/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voxmemo.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories voxmemo writes into. The export
// directory is created on a best-effort basis so a missing removable drive
// does not block recording.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.RecordingsDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.ExportDir) != "" {
		_ = os.MkdirAll(c.Paths.ExportDir, 0o755)
	}
	return nil
}

// CatalogFilePath returns the JSON file backing the catalog when the file backend is used.
func (c *Config) CatalogFilePath() string {
	return filepath.Join(c.Paths.DataDir, c.Catalog.Key+".json")
}

// CatalogDBPath returns the SQLite database backing the catalog when the sqlite backend is used.
func (c *Config) CatalogDBPath() string {
	return filepath.Join(c.Paths.DataDir, "voxmemo.db")
}

// PlaybackLockPath returns the advisory lock guarding the single audible session.
func (c *Config) PlaybackLockPath() string {
	return filepath.Join(c.Paths.DataDir, "playback.lock")
}

// PollInterval returns the browse refresh interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Browse.PollIntervalMS) * time.Millisecond
}

// StatusInterval returns the playback status tick interval.
func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.Playback.StatusIntervalMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
