package share

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"voxmemo/internal/fileutil"
	"voxmemo/internal/services"
	"voxmemo/internal/testsupport"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestShareCopiesIntoExportDir(t *testing.T) {
	base := t.TempDir()
	src := writeSource(t, base, "8c1f.m4a", "audio-bytes")
	exportDir := filepath.Join(base, "exports")
	exporter := NewDirExporter(exportDir, nil)

	dst, err := exporter.Share(context.Background(), "file://"+src)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if want := filepath.Join(exportDir, "8c1f.m4a"); dst != want {
		t.Fatalf("destination = %q, want %q", dst, want)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("export content = %q", data)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source should be untouched: %v", err)
	}
}

func TestShareNamedUsesCaptionAndAvoidsOverwrite(t *testing.T) {
	base := t.TempDir()
	src := writeSource(t, base, "8c1f.m4a", "one")
	exporter := NewDirExporter(filepath.Join(base, "exports"), nil)

	first, err := exporter.ShareNamed(context.Background(), src, "Meeting: Q3/Q4")
	if err != nil {
		t.Fatalf("ShareNamed: %v", err)
	}
	if filepath.Base(first) != "Meeting_ Q3_Q4.m4a" {
		t.Fatalf("unexpected name %q", filepath.Base(first))
	}
	second, err := exporter.ShareNamed(context.Background(), src, "Meeting: Q3/Q4")
	if err != nil {
		t.Fatalf("second ShareNamed: %v", err)
	}
	if filepath.Base(second) != "Meeting_ Q3_Q4 (2).m4a" {
		t.Fatalf("unexpected second name %q", filepath.Base(second))
	}
}

func TestShareMissingSource(t *testing.T) {
	base := t.TempDir()
	exporter := NewDirExporter(filepath.Join(base, "exports"), nil)
	_, err := exporter.Share(context.Background(), filepath.Join(base, "gone.m4a"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestShareRequiresExportDir(t *testing.T) {
	src := writeSource(t, t.TempDir(), "a.m4a", "x")
	_, err := NewDirExporter("", nil).Share(context.Background(), src)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"My Recording":   "My Recording",
		"  a/b\\c  ":     "a_b_c",
		"...hidden":      "hidden",
		"tab\tseparated": "tabseparated",
		"":               "",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShareLargeRecording(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "recordings", "long.m4a")
	testsupport.WriteFile(t, src, 3<<20)
	exporter := NewDirExporter(filepath.Join(base, "exports"), nil)

	dst, err := exporter.ShareNamed(context.Background(), src, "Lecture")
	if err != nil {
		t.Fatalf("ShareNamed: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if info.Size() != 3<<20 {
		t.Fatalf("export size = %d", info.Size())
	}
	if !fileutil.FileExists(src) {
		t.Fatal("source should be untouched")
	}
}
