package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"voxmemo/internal/catalog"
	"voxmemo/internal/fileutil"
	"voxmemo/internal/services"
)

const shortIDLength = 8

// matchEntry resolves ref against entries as an exact id, a 1-based row
// number as printed by list, or a unique id prefix.
func matchEntry(entries []catalog.Entry, ref string) (catalog.Entry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return catalog.Entry{}, services.Wrap(services.ErrValidation, "cli", "resolve entry", "entry reference is required", nil)
	}
	for _, entry := range entries {
		if entry.ID == ref {
			return entry, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(entries) {
			return catalog.Entry{}, services.Wrap(services.ErrNotFound, "cli", "resolve entry",
				fmt.Sprintf("row %d out of range (%d recordings)", n, len(entries)), nil)
		}
		return entries[n-1], nil
	}
	var found []catalog.Entry
	for _, entry := range entries {
		if strings.HasPrefix(entry.ID, ref) {
			found = append(found, entry)
		}
	}
	switch len(found) {
	case 0:
		return catalog.Entry{}, services.Wrap(services.ErrNotFound, "cli", "resolve entry", fmt.Sprintf("no recording matches %q", ref), nil)
	case 1:
		return found[0], nil
	default:
		return catalog.Entry{}, services.Wrap(services.ErrValidation, "cli", "resolve entry",
			fmt.Sprintf("%q matches %d recordings; use more characters", ref, len(found)), nil)
	}
}

func resolveEntry(ctx context.Context, store *catalog.Store, ref string) (catalog.Entry, error) {
	entries, err := store.Load(ctx)
	if err != nil {
		return catalog.Entry{}, err
	}
	return matchEntry(entries, ref)
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func entryRows(entries []catalog.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			shortID(entry.ID),
			entry.Caption,
			formatCreated(entry.CreatedAt),
			displayFile(entry.FileURI),
		})
	}
	return rows
}

var entryColumns = []column{
	{header: "#", right: true},
	{header: "ID"},
	{header: "Caption", maxWidth: 48},
	{header: "Created"},
	{header: "File", maxWidth: 60},
}

func formatCreated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func displayFile(uri string) string {
	if path, err := fileutil.LocalPath(uri); err == nil {
		return path
	}
	return uri
}

// formatClock renders milliseconds as M:SS, or H:MM:SS past an hour.
func formatClock(millis int64) string {
	if millis < 0 {
		millis = 0
	}
	total := millis / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func purgeAudio(uri string) error {
	path, err := fileutil.LocalPath(uri)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete audio: %w", err)
	}
	return nil
}
