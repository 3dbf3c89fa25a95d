package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ResolveSibling returns the path of tool when it sits next to the resolved
// anchor binary (for example ffprobe shipped beside a static ffmpeg build),
// falling back to tool itself so PATH lookup applies.
func ResolveSibling(anchor, tool string) string {
	tool = strings.TrimSpace(tool)
	if tool == "" || strings.ContainsRune(tool, os.PathSeparator) {
		return tool
	}
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return tool
	}
	resolved, err := exec.LookPath(anchor)
	if err != nil {
		return tool
	}
	candidate := filepath.Join(filepath.Dir(resolved), tool)
	if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
		return candidate
	}
	return tool
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
