package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// fakeAudioHeader makes fake recordings start like an MP4/M4A container.
var fakeAudioHeader = []byte("\x00\x00\x00\x20ftypM4A \x00\x00\x00\x00M4A isom")

// WriteFile creates path (and its parent directories) holding size bytes.
// A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteRecording creates a small fake audio file named name in dir and
// returns its path.
func WriteRecording(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	body := append(append([]byte{}, fakeAudioHeader...), bytes.Repeat([]byte{0}, 2048)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write recording %s: %v", path, err)
	}
	return path
}
