package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"voxmemo/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.RecordingsDir = filepath.Join(base, "data", "recordings")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Notifications.NtfyTopic = ""
	cfgVal.Capture.MinFreeMB = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithBackend selects the catalog blob backend ("file" or "sqlite").
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Backend = backend
	}
}

// WithNtfyTopic points notifications at the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg, ffplay and ffprobe are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffplay", "ffprobe"}
		}
		binDir := stubDir(b)
		for _, name := range names {
			writeStub(b.t, filepath.Join(binDir, name), "#!/bin/sh\nexit 0\n")
		}
	}
}

// WithStubScript writes a stub executable with the given shell body, prepends
// its directory to PATH and points the matching config field at it.
func WithStubScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(stubDir(b), name)
		writeStub(b.t, target, "#!/bin/sh\n"+body+"\n")
		switch name {
		case "ffmpeg":
			b.cfg.Capture.Binary = target
		case "ffplay":
			b.cfg.Playback.PlayerBinary = target
		case "ffprobe":
			b.cfg.Playback.ProbeBinary = target
		}
	}
}

func stubDir(b *configBuilder) string {
	binDir := filepath.Join(b.baseDir, "bin")
	if _, err := os.Stat(binDir); err == nil {
		return binDir
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	return binDir
}

func writeStub(t testing.TB, target, script string) {
	t.Helper()
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", filepath.Base(target), err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
