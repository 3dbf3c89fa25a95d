package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultCaption labels entries that have not been renamed yet.
const DefaultCaption = "My Recording"

// createdAtLayout is RFC 3339 in UTC with millisecond precision.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Entry is one recording in the catalog. Only Caption is mutable.
type Entry struct {
	ID        string
	FileURI   string
	Caption   string
	CreatedAt time.Time
}

type entryJSON struct {
	ID        string `json:"id"`
	FileURI   string `json:"fileUri"`
	Caption   string `json:"caption"`
	CreatedAt string `json:"createdAt"`
}

// MarshalJSON writes the persisted representation of e.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		ID:        e.ID,
		FileURI:   e.FileURI,
		Caption:   e.Caption,
		CreatedAt: e.CreatedAt.UTC().Format(createdAtLayout),
	})
}

// UnmarshalJSON accepts any RFC 3339 timestamp for createdAt.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	created, err := time.Parse(time.RFC3339Nano, raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("entry %q createdAt: %w", raw.ID, err)
	}
	*e = Entry{
		ID:        raw.ID,
		FileURI:   raw.FileURI,
		Caption:   raw.Caption,
		CreatedAt: created.UTC(),
	}
	return nil
}

// NormalizeCaption trims surrounding whitespace and applies Unicode NFC so
// visually identical captions compare equal.
func NormalizeCaption(caption string) string {
	return norm.NFC.String(strings.TrimSpace(caption))
}

// SortEntries orders entries most-recent-first, breaking createdAt ties by
// id ascending.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func indexOf(entries []Entry, id string) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}
