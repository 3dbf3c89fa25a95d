package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeCapture()
	c.normalizePlayback()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RecordingsDir) == "" {
		c.Paths.RecordingsDir = defaultRecordingsDir
	}
	if c.Paths.RecordingsDir, err = expandPath(c.Paths.RecordingsDir); err != nil {
		return fmt.Errorf("paths.recordings_dir: %w", err)
	}
	if c.Paths.ExportDir, err = expandPath(strings.TrimSpace(c.Paths.ExportDir)); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.Backend = strings.ToLower(strings.TrimSpace(c.Catalog.Backend))
	if c.Catalog.Backend == "" {
		c.Catalog.Backend = defaultCatalogBackend
	}
	c.Catalog.Key = strings.TrimSpace(c.Catalog.Key)
	if c.Catalog.Key == "" {
		c.Catalog.Key = defaultCatalogKey
	}
	c.Catalog.DefaultCaption = strings.TrimSpace(c.Catalog.DefaultCaption)
	if c.Catalog.DefaultCaption == "" {
		c.Catalog.DefaultCaption = defaultCaption
	}
}

func (c *Config) normalizeCapture() {
	c.Capture.Binary = strings.TrimSpace(c.Capture.Binary)
	if c.Capture.Binary == "" {
		c.Capture.Binary = defaultCaptureBinary
	}
	c.Capture.InputFormat = strings.TrimSpace(c.Capture.InputFormat)
	if c.Capture.InputFormat == "" {
		c.Capture.InputFormat = defaultCaptureInputFormat
	}
	c.Capture.InputDevice = strings.TrimSpace(c.Capture.InputDevice)
	if c.Capture.InputDevice == "" {
		c.Capture.InputDevice = defaultCaptureInputDevice
	}
	c.Capture.Format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Capture.Format)), ".")
	if c.Capture.Format == "" {
		c.Capture.Format = defaultCaptureFormat
	}
	if c.Capture.SampleRate <= 0 {
		c.Capture.SampleRate = defaultCaptureSampleRate
	}
	if c.Capture.Channels <= 0 {
		c.Capture.Channels = defaultCaptureChannels
	}
	if c.Capture.MinFreeMB < 0 {
		c.Capture.MinFreeMB = 0
	}
}

func (c *Config) normalizePlayback() {
	c.Playback.PlayerBinary = strings.TrimSpace(c.Playback.PlayerBinary)
	if c.Playback.PlayerBinary == "" {
		c.Playback.PlayerBinary = defaultPlayerBinary
	}
	c.Playback.ProbeBinary = strings.TrimSpace(c.Playback.ProbeBinary)
	if c.Playback.ProbeBinary == "" {
		c.Playback.ProbeBinary = defaultProbeBinary
	}
	if c.Playback.ProbeCacheSize <= 0 {
		c.Playback.ProbeCacheSize = defaultProbeCacheSize
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("VOXMEMO_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
