package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"voxmemo/internal/blobstore"
	"voxmemo/internal/browse"
	"voxmemo/internal/capture"
	"voxmemo/internal/catalog"
	"voxmemo/internal/config"
	"voxmemo/internal/deps"
	"voxmemo/internal/logging"
	"voxmemo/internal/notifications"
	"voxmemo/internal/playback"
	"voxmemo/internal/preflight"
	"voxmemo/internal/share"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// withApp opens the catalog and playback stack for the duration of fn.
func (c *commandContext) withApp(fn func(*app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// app holds the collaborators one CLI invocation works with.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	blobs       blobstore.Store
	catalog     *catalog.Store
	coordinator *playback.Coordinator
	exporter    *share.DirExporter
	notifier    notifications.Service
}

func openApp(cfg *config.Config) (*app, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	blobs, err := blobstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open catalog storage: %w", err)
	}
	player, err := playback.NewProcessPlayer(playback.ProcessPlayerOptions{
		PlayerBinary:   cfg.Playback.PlayerBinary,
		ProbeBinary:    deps.ResolveSibling(cfg.Playback.PlayerBinary, cfg.Playback.ProbeBinary),
		ProbeCacheSize: cfg.Playback.ProbeCacheSize,
		Logger:         logger,
	})
	if err != nil {
		_ = blobs.Close()
		return nil, fmt.Errorf("init player: %w", err)
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		blobs:  blobs,
		catalog: catalog.New(blobs,
			catalog.WithKey(cfg.Catalog.Key),
			catalog.WithDefaultCaption(cfg.Catalog.DefaultCaption),
			catalog.WithLogger(logger),
		),
		coordinator: playback.NewCoordinator(player,
			playback.WithLockPath(cfg.PlaybackLockPath()),
			playback.WithStatusInterval(cfg.StatusInterval()),
			playback.WithLogger(logger),
		),
		exporter: share.NewDirExporter(cfg.Paths.ExportDir, logger),
		notifier: notifications.NewService(cfg),
	}, nil
}

func (a *app) Close() error {
	err := a.coordinator.Close()
	a.catalog.Close()
	return errors.Join(err, a.blobs.Close())
}

func (a *app) newCaptureSession() *capture.Session {
	return capture.NewSession(capture.SessionOptions{
		Device:         capture.NewProcessDevice(a.cfg, a.logger),
		Catalog:        a.catalog,
		Notifier:       a.notifier,
		Preflight:      func() error { return preflight.CheckRecording(a.cfg) },
		DefaultCaption: a.cfg.Catalog.DefaultCaption,
		Logger:         a.logger,
	})
}

func (a *app) newBrowser(render func(browse.Snapshot)) *browse.Browser {
	return browse.New(browse.Options{
		Catalog:      a.catalog,
		Playback:     a.coordinator,
		Exporter:     a.exporter,
		Notifier:     a.notifier,
		PollInterval: a.cfg.PollInterval(),
		Render:       render,
		Logger:       a.logger,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
