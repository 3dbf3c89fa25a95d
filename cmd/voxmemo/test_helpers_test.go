package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voxmemo/internal/blobstore"
	"voxmemo/internal/catalog"
	"voxmemo/internal/config"
	"voxmemo/internal/testsupport"
)

const (
	probeStub = `cat <<'JSON'
{"streams":[{"index":0,"codec_type":"audio","codec_name":"aac","sample_rate":"44100","channels":1}],"format":{"duration":"0.300000"}}
JSON`
	playerStub   = "exec sleep 5"
	recorderStub = `trap 'exit 0' INT TERM
for a; do out="$a"; done
printf 'audio' > "$out"
while :; do sleep 0.05; done`
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	opts = append([]testsupport.ConfigOption{
		testsupport.WithStubScript("ffmpeg", recorderStub),
		testsupport.WithStubScript("ffplay", playerStub),
		testsupport.WithStubScript("ffprobe", probeStub),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("VOXMEMO_NTFY_TOPIC", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
recordings_dir = %q
export_dir = %q
log_dir = %q

[catalog]
backend = %q

[capture]
binary = %q
input_format = "lavfi"
input_device = "anullsrc"
min_free_mb = 0

[playback]
player_binary = %q
probe_binary = %q
status_interval_ms = 20

[browse]
poll_interval_ms = 50

[logging]
level = "error"
`,
		cfg.Paths.DataDir,
		cfg.Paths.RecordingsDir,
		cfg.Paths.ExportDir,
		cfg.Paths.LogDir,
		cfg.Catalog.Backend,
		cfg.Capture.Binary,
		cfg.Playback.PlayerBinary,
		cfg.Playback.ProbeBinary,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// seedEntries appends recordings with real audio files, oldest first.
func seedEntries(t *testing.T, env *cliTestEnv, captions ...string) []catalog.Entry {
	t.Helper()
	blobs, err := blobstore.Open(env.cfg)
	if err != nil {
		t.Fatalf("blobstore.Open: %v", err)
	}
	defer blobs.Close()
	store := catalog.New(blobs)
	defer store.Close()

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	entries := make([]catalog.Entry, 0, len(captions))
	for i, caption := range captions {
		id := fmt.Sprintf("%08d-seed", i+1)
		path := testsupport.WriteRecording(t, env.cfg.Paths.RecordingsDir, id+".m4a")
		entry := catalog.Entry{ID: id, FileURI: "file://" + path, Caption: caption, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Append(context.Background(), entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func loadEntries(t *testing.T, env *cliTestEnv) []catalog.Entry {
	t.Helper()
	blobs, err := blobstore.Open(env.cfg)
	if err != nil {
		t.Fatalf("blobstore.Open: %v", err)
	}
	defer blobs.Close()
	entries, err := catalog.New(blobs).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return entries
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
