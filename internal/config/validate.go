package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateTimings(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("catalog.backend must be \"file\" or \"sqlite\", got %q", c.Catalog.Backend)
	}
	if strings.ContainsAny(c.Catalog.Key, `/\`) {
		return errors.New("catalog.key must not contain path separators")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if strings.ContainsAny(c.Capture.Format, `/\ `) {
		return fmt.Errorf("capture.format %q is not a valid file extension", c.Capture.Format)
	}
	if c.Capture.Channels > 2 {
		return errors.New("capture.channels must be 1 or 2")
	}
	return nil
}

func (c *Config) validateTimings() error {
	if err := ensurePositiveMap(map[string]int{
		"browse.poll_interval_ms":       c.Browse.PollIntervalMS,
		"playback.status_interval_ms":   c.Playback.StatusIntervalMS,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Playback.StatusIntervalMS > c.Browse.PollIntervalMS {
		return errors.New("playback.status_interval_ms must not exceed browse.poll_interval_ms")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
