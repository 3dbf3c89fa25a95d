package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"voxmemo/internal/blobstore"
	"voxmemo/internal/logging"
	"voxmemo/internal/services"
)

// DefaultKey is the blob key holding the catalog array.
const DefaultKey = "recordings"

var (
	// ErrDuplicateID is returned by Append when the id is already present.
	ErrDuplicateID = errors.New("entry id already exists")
	// ErrDuplicateFile is returned by Append when another entry already
	// references the same file.
	ErrDuplicateFile = errors.New("file already referenced by another entry")

	errNotArray = errors.New("catalog blob is not an array")
)

// Store is the catalog's read-modify-write layer over a blob store.
type Store struct {
	blobs          blobstore.Store
	key            string
	defaultCaption string
	now            func() time.Time
	logger         *slog.Logger
	events         *broker

	mu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithKey overrides the blob key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key = strings.TrimSpace(key); key != "" {
			s.key = key
		}
	}
}

// WithDefaultCaption overrides the caption applied to entries appended without one.
func WithDefaultCaption(caption string) Option {
	return func(s *Store) {
		if caption = NormalizeCaption(caption); caption != "" {
			s.defaultCaption = caption
		}
	}
}

// WithClock overrides the time source used for entries appended without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns a Store persisting through blobs.
func New(blobs blobstore.Store, opts ...Option) *Store {
	s := &Store{
		blobs:          blobs,
		key:            DefaultKey,
		defaultCaption: DefaultCaption,
		now:            time.Now,
		events:         newBroker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "catalog")
	return s
}

// Key returns the blob key the catalog is stored under.
func (s *Store) Key() string {
	return s.key
}

// Subscribe returns a channel of persisted mutations and a function that
// unsubscribes and closes it.
func (s *Store) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

// Close closes every subscription channel.
func (s *Store) Close() {
	s.events.close()
}

// Load returns every entry, most-recent-first. A missing blob is an empty
// catalog; an undecodable blob is reset to "[]".
func (s *Store) Load(ctx context.Context) ([]Entry, error) {
	return s.loadShared(ctx)
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	entries, err := s.loadShared(ctx)
	if err != nil {
		return Entry{}, err
	}
	if idx := indexOf(entries, id); idx >= 0 {
		return entries[idx], nil
	}
	return Entry{}, services.Wrap(services.ErrNotFound, "catalog", "get", fmt.Sprintf("no entry with id %q", id), nil)
}

// Append adds entry and persists the catalog. An empty caption is replaced
// with the default caption and a zero CreatedAt with the current time.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	entry.ID = strings.TrimSpace(entry.ID)
	entry.FileURI = strings.TrimSpace(entry.FileURI)
	if entry.ID == "" {
		return services.Wrap(services.ErrValidation, "catalog", "append", "entry id is empty", nil)
	}
	if entry.FileURI == "" {
		return services.Wrap(services.ErrValidation, "catalog", "append", "file uri is empty", nil)
	}
	entry.Caption = NormalizeCaption(entry.Caption)
	if entry.Caption == "" {
		entry.Caption = s.defaultCaption
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range entries {
		if existing.ID == entry.ID {
			return services.Wrap(services.ErrValidation, "catalog", "append", entry.ID, ErrDuplicateID)
		}
		if existing.FileURI == entry.FileURI {
			return services.Wrap(services.ErrValidation, "catalog", "append", entry.FileURI, ErrDuplicateFile)
		}
	}

	entries = append(entries, entry)
	if err := s.persist(ctx, entries, "append"); err != nil {
		return err
	}
	s.logger.Info("appended entry",
		logging.String(logging.FieldEntryID, entry.ID),
		logging.String("file_uri", entry.FileURI),
		logging.Int("entries", len(entries)),
	)
	s.events.publish(Event{Type: EventAppended, EntryID: entry.ID, Entry: entry})
	return nil
}

// Rename replaces the caption of the entry with the given id. An absent id
// is a no-op. Blank captions are rejected.
func (s *Store) Rename(ctx context.Context, id, caption string) error {
	caption = NormalizeCaption(caption)
	if caption == "" {
		return services.Wrap(services.ErrValidation, "catalog", "rename", "caption is empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(entries, id)
	if idx < 0 {
		s.logger.Debug("rename skipped; entry not present", logging.String(logging.FieldEntryID, id))
		return nil
	}
	if entries[idx].Caption == caption {
		return nil
	}
	entries[idx].Caption = caption
	if err := s.persist(ctx, entries, "rename"); err != nil {
		return err
	}
	s.logger.Info("renamed entry",
		logging.String(logging.FieldEntryID, id),
		logging.String("caption", caption),
	)
	s.events.publish(Event{Type: EventRenamed, EntryID: id, Entry: entries[idx]})
	return nil
}

// Remove deletes the entry with the given id. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(entries, id)
	if idx < 0 {
		s.logger.Debug("remove skipped; entry not present", logging.String(logging.FieldEntryID, id))
		return nil
	}
	removed := entries[idx]
	entries = append(entries[:idx], entries[idx+1:]...)
	if err := s.persist(ctx, entries, "remove"); err != nil {
		return err
	}
	s.logger.Info("removed entry",
		logging.String(logging.FieldEntryID, id),
		logging.Int("entries", len(entries)),
	)
	s.events.publish(Event{Type: EventRemoved, EntryID: id, Entry: removed})
	return nil
}

// read fetches and decodes the blob. bad is set when the blob holds
// something other than a JSON array of entries.
func (s *Store) read(ctx context.Context) (entries []Entry, bad error, err error) {
	data, ok, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "catalog load failed", "catalog_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the data directory is readable"),
			logging.String(logging.FieldImpact, "recordings list unavailable"),
		)
		return nil, nil, services.Wrap(services.ErrStorageRead, "catalog", "load", "read blob "+s.key, err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return []Entry{}, nil, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return []Entry{}, err, nil
	}
	if entries == nil {
		return []Entry{}, errNotArray, nil
	}
	SortEntries(entries)
	return entries, nil, nil
}

// load reads the catalog, resetting a bad blob. The caller holds s.mu.
func (s *Store) load(ctx context.Context) ([]Entry, error) {
	entries, bad, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if bad != nil {
		s.reset(ctx, bad)
	}
	return entries, nil
}

// loadShared reads without s.mu and only takes it to reset, re-reading first
// so a write that landed in between is not clobbered.
func (s *Store) loadShared(ctx context.Context) ([]Entry, error) {
	entries, bad, err := s.read(ctx)
	if err != nil || bad == nil {
		return entries, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// reset overwrites an undecodable blob with an empty array. A failed reset is
// logged; the caller still sees an empty catalog.
func (s *Store) reset(ctx context.Context, cause error) {
	logger := logging.WithContext(ctx, s.logger)
	logging.WarnWithContext(logger, "catalog blob corrupt; resetting to empty", "catalog_reset",
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "previous entries could not be decoded"),
		logging.String(logging.FieldImpact, "recordings list starts empty"),
	)
	if err := s.blobs.Set(ctx, s.key, []byte("[]")); err != nil {
		logging.ErrorWithContext(logger, "catalog reset failed", "catalog_reset_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the data directory is writable"),
		)
		return
	}
	s.events.publish(Event{Type: EventReset})
}

func (s *Store) persist(ctx context.Context, entries []Entry, operation string) error {
	SortEntries(entries)
	data, err := json.Marshal(entries)
	if err != nil {
		return services.Wrap(services.ErrStorageWrite, "catalog", operation, "encode entries", err)
	}
	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "catalog write failed", "catalog_write_failed",
			logging.String("operation", operation),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the data directory is writable"),
			logging.String(logging.FieldImpact, "change was not saved"),
		)
		return services.Wrap(services.ErrStorageWrite, "catalog", operation, "write blob "+s.key, err)
	}
	return nil
}
