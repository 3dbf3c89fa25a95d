package playback

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const probeJSON = `{"streams":[{"index":0,"codec_type":"audio","codec_name":"aac","sample_rate":"44100","channels":1}],"format":{"duration":"4.000000"}}`

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newTestProcessPlayer(t *testing.T, playerBody string) (*ProcessPlayer, string, string) {
	t.Helper()
	dir := t.TempDir()
	counter := filepath.Join(dir, "probe-count")
	probe := filepath.Join(dir, "ffprobe")
	writeScript(t, probe, "echo x >> "+counter+"\ncat <<'JSON'\n"+probeJSON+"\nJSON")
	player := filepath.Join(dir, "ffplay")
	writeScript(t, player, playerBody)

	media := filepath.Join(dir, "memo.m4a")
	if err := os.WriteFile(media, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	p, err := NewProcessPlayer(ProcessPlayerOptions{PlayerBinary: player, ProbeBinary: probe, ProbeCacheSize: 4})
	if err != nil {
		t.Fatalf("NewProcessPlayer: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p, media, counter
}

func TestProcessPlayerLoadCachesProbe(t *testing.T) {
	p, media, counter := newTestProcessPlayer(t, "exec sleep 5")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		duration, err := p.Load(ctx, "file://"+media)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if duration != 4000 {
			t.Fatalf("duration = %d, want 4000", duration)
		}
	}

	data, err := os.ReadFile(counter)
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if runs := strings.Count(string(data), "x"); runs != 1 {
		t.Fatalf("ffprobe ran %d times, want 1", runs)
	}
}

func TestProcessPlayerLoadMissingFile(t *testing.T) {
	p, media, _ := newTestProcessPlayer(t, "exit 0")
	if _, err := p.Load(context.Background(), media+".missing"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestProcessPlayerPauseHoldsPosition(t *testing.T) {
	p, media, _ := newTestProcessPlayer(t, "exec sleep 5")
	ctx := context.Background()
	if _, err := p.Load(ctx, media); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := p.Seek(ctx, 1000); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if got := p.Position(); got != 1000 {
		t.Fatalf("position before play = %d, want 1000", got)
	}
	if err := p.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if err := p.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	paused := p.Position()
	if paused < 1030 || paused > 4000 {
		t.Fatalf("paused position = %d, want within (1030, 4000]", paused)
	}
	time.Sleep(20 * time.Millisecond)
	if got := p.Position(); got != paused {
		t.Fatalf("position moved while paused: %d -> %d", paused, got)
	}
}

func TestProcessPlayerReportsDurationAfterNaturalEnd(t *testing.T) {
	p, media, _ := newTestProcessPlayer(t, "exit 0")
	ctx := context.Background()
	if _, err := p.Load(ctx, media); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := p.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for p.Position() != 4000 {
		if time.Now().After(deadline) {
			t.Fatalf("position = %d, want 4000 after process exit", p.Position())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
