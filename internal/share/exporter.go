// Package share exports recordings out of voxmemo's private storage.
package share

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"voxmemo/internal/fileutil"
	"voxmemo/internal/logging"
	"voxmemo/internal/services"
)

// Exporter hands a recording's audio to the outside world.
type Exporter interface {
	Share(ctx context.Context, fileURI string) (string, error)
}

// DirExporter copies recordings into a directory, verifying size and SHA-256.
// Existing files are never overwritten; a numbered sibling is chosen instead.
type DirExporter struct {
	dir    string
	logger *slog.Logger
}

// NewDirExporter returns an exporter writing into dir.
func NewDirExporter(dir string, logger *slog.Logger) *DirExporter {
	return &DirExporter{dir: dir, logger: logging.NewComponentLogger(logger, "share")}
}

// Share copies fileURI into the export directory under its own base name and
// returns the destination path.
func (e *DirExporter) Share(ctx context.Context, fileURI string) (string, error) {
	return e.ShareNamed(ctx, fileURI, "")
}

// ShareNamed is Share with the exported file named after caption. A caption
// that sanitizes to nothing falls back to the source base name.
func (e *DirExporter) ShareNamed(ctx context.Context, fileURI, caption string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(e.dir) == "" {
		return "", services.Wrap(services.ErrValidation, "share", "export", "export directory not configured", nil)
	}
	src, err := fileutil.LocalPath(fileURI)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "share", "export", fileURI, err)
	}
	if !fileutil.FileExists(src) {
		return "", services.Wrap(services.ErrNotFound, "share", "export", src, os.ErrNotExist)
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrStorageWrite, "share", "export", "create export directory", err)
	}

	name := filepath.Base(src)
	if stem := SanitizeFilename(caption); stem != "" {
		name = stem + filepath.Ext(src)
	}
	dst, err := fileutil.UniquePath(filepath.Join(e.dir, name))
	if err != nil {
		return "", services.Wrap(services.ErrStorageWrite, "share", "export", "choose destination", err)
	}
	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		return "", services.Wrap(services.ErrStorageWrite, "share", "export", dst, err)
	}
	e.logger.Info("recording exported",
		logging.String("source", src),
		logging.String("destination", dst),
	)
	return dst, nil
}

const maxStemRunes = 120

// SanitizeFilename turns a caption into a portable file stem.
func SanitizeFilename(caption string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(caption) {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(strings.TrimSpace(b.String()), ".")
	if runes := []rune(out); len(runes) > maxStemRunes {
		out = strings.TrimSpace(string(runes[:maxStemRunes]))
	}
	return out
}

var _ Exporter = (*DirExporter)(nil)
