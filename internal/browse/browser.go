// Package browse is the list-and-audition surface over the catalog.
//
// A Browser keeps a renderer supplied with Snapshots: the full ordered
// catalog plus the current playback status. The catalog is reloaded on every
// poll tick and whenever the catalog publishes a mutation; playback status
// changes are forwarded as they arrive without reloading. Actions (play,
// delete, rename, share) never stop the loop: failures are logged and
// reported through the notifier.
package browse

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"voxmemo/internal/catalog"
	"voxmemo/internal/logging"
	"voxmemo/internal/notifications"
	"voxmemo/internal/playback"
	"voxmemo/internal/services"
	"voxmemo/internal/share"
)

const defaultPollInterval = time.Second

// Snapshot is what the renderer draws.
type Snapshot struct {
	Entries     []catalog.Entry
	Playback    playback.Status
	Err         error
	RefreshedAt time.Time
}

// Catalog is the subset of the catalog store the browser uses.
type Catalog interface {
	Load(ctx context.Context) ([]catalog.Entry, error)
	Get(ctx context.Context, id string) (catalog.Entry, error)
	Rename(ctx context.Context, id, caption string) error
	Remove(ctx context.Context, id string) error
	Subscribe() (<-chan catalog.Event, func())
}

// Coordinator is the subset of the playback coordinator the browser uses.
type Coordinator interface {
	Play(ctx context.Context, entry catalog.Entry) error
	Stop(ctx context.Context) error
	HandleRemoved(id string)
	Status() playback.Status
	Subscribe() (<-chan playback.Status, func())
}

type namedExporter interface {
	ShareNamed(ctx context.Context, fileURI, caption string) (string, error)
}

// Options wires a Browser.
type Options struct {
	Catalog      Catalog
	Playback     Coordinator
	Exporter     share.Exporter
	Notifier     notifications.Service
	PollInterval time.Duration
	Render       func(Snapshot)
	Logger       *slog.Logger
}

// Browser drives the browse surface.
type Browser struct {
	catalog  Catalog
	playback Coordinator
	exporter share.Exporter
	notifier notifications.Service
	interval time.Duration
	render   func(Snapshot)
	logger   *slog.Logger

	mu      sync.Mutex
	entries []catalog.Entry
	loadErr error
}

// New returns a Browser.
func New(opts Options) *Browser {
	b := &Browser{
		catalog:  opts.Catalog,
		playback: opts.Playback,
		exporter: opts.Exporter,
		notifier: opts.Notifier,
		interval: opts.PollInterval,
		render:   opts.Render,
		logger:   logging.NewComponentLogger(opts.Logger, "browse"),
	}
	if b.interval <= 0 {
		b.interval = defaultPollInterval
	}
	if b.notifier == nil {
		b.notifier = notifications.NewNoop()
	}
	if b.render == nil {
		b.render = func(Snapshot) {}
	}
	return b
}

// Run refreshes and renders until ctx is cancelled.
func (b *Browser) Run(ctx context.Context) error {
	events, stopEvents := b.catalog.Subscribe()
	defer stopEvents()
	statuses, stopStatuses := b.playback.Subscribe()
	defer stopStatuses()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.Refresh(ctx)
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			b.logger.Debug("catalog changed", logging.String(logging.FieldEventType, string(evt.Type)), logging.String(logging.FieldEntryID, evt.EntryID))
			b.Refresh(ctx)
		case st, ok := <-statuses:
			if !ok {
				statuses = nil
				continue
			}
			b.emit(st)
		}
	}
}

// Refresh reloads the catalog and renders. A load failure keeps the last
// good entries on screen and reports the error in the snapshot.
func (b *Browser) Refresh(ctx context.Context) {
	entries, err := b.catalog.Load(ctx)
	b.mu.Lock()
	firstFailure := err != nil && b.loadErr == nil
	if err != nil {
		b.loadErr = err
	} else {
		b.entries = entries
		b.loadErr = nil
	}
	b.mu.Unlock()
	if firstFailure {
		_ = b.report(ctx, err, "refresh")
	}
	if err == nil {
		b.dropVanished(ctx, entries)
	}
	b.emit(b.playback.Status())
}

// dropVanished tears down playback of an entry that is no longer in the
// catalog, such as one removed by another voxmemo process.
func (b *Browser) dropVanished(ctx context.Context, entries []catalog.Entry) {
	active := b.playback.Status().ActiveID()
	if active == "" {
		return
	}
	for _, e := range entries {
		if e.ID == active {
			return
		}
	}
	// entries may predate an append that happened while they loaded.
	if _, err := b.catalog.Get(ctx, active); !errors.Is(err, services.ErrNotFound) {
		return
	}
	logging.WithContext(ctx, b.logger).Info("active entry left the catalog",
		logging.String(logging.FieldEntryID, active),
	)
	b.playback.HandleRemoved(active)
}

// Snapshot returns the most recently loaded state.
func (b *Browser) Snapshot() Snapshot {
	return b.snapshot(b.playback.Status())
}

func (b *Browser) snapshot(st playback.Status) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := make([]catalog.Entry, len(b.entries))
	copy(entries, b.entries)
	return Snapshot{Entries: entries, Playback: st, Err: b.loadErr, RefreshedAt: time.Now()}
}

func (b *Browser) emit(st playback.Status) {
	b.render(b.snapshot(st))
}

// Play auditions id. Pressing play on the entry that is already playing
// pauses it.
func (b *Browser) Play(ctx context.Context, id string) error {
	ctx = b.actionContext(ctx, id)
	if st := b.playback.Status(); st.ActiveID() == id && st.IsPlaying {
		if err := b.playback.Stop(ctx); err != nil {
			return b.report(ctx, err, "pause")
		}
		return nil
	}
	entry, err := b.catalog.Get(ctx, id)
	if err != nil {
		return b.report(ctx, err, "play")
	}
	if err := b.playback.Play(ctx, entry); err != nil {
		return b.report(ctx, err, "play")
	}
	return nil
}

// Delete removes id from the catalog and tears down its playback session.
func (b *Browser) Delete(ctx context.Context, id string) error {
	ctx = b.actionContext(ctx, id)
	if err := b.catalog.Remove(ctx, id); err != nil {
		return b.report(ctx, err, "delete")
	}
	b.playback.HandleRemoved(id)
	logging.WithContext(ctx, b.logger).Info("entry deleted")
	return nil
}

// Rename sets the caption of id.
func (b *Browser) Rename(ctx context.Context, id, caption string) error {
	ctx = b.actionContext(ctx, id)
	if err := b.catalog.Rename(ctx, id, caption); err != nil {
		return b.report(ctx, err, "rename")
	}
	return nil
}

// Share exports id's audio and returns the destination.
func (b *Browser) Share(ctx context.Context, id string) (string, error) {
	ctx = b.actionContext(ctx, id)
	if b.exporter == nil {
		return "", b.report(ctx, services.Wrap(services.ErrValidation, "browse", "share", "sharing is not configured", nil), "share")
	}
	entry, err := b.catalog.Get(ctx, id)
	if err != nil {
		return "", b.report(ctx, err, "share")
	}
	var dest string
	if named, ok := b.exporter.(namedExporter); ok {
		dest, err = named.ShareNamed(ctx, entry.FileURI, entry.Caption)
	} else {
		dest, err = b.exporter.Share(ctx, entry.FileURI)
	}
	if err != nil {
		return "", b.report(ctx, err, "share")
	}
	if notifyErr := b.notifier.NotifyRecordingExported(ctx, entry.Caption, dest); notifyErr != nil {
		b.logger.Debug("export notification failed", logging.Error(notifyErr))
	}
	return dest, nil
}

func (b *Browser) actionContext(ctx context.Context, id string) context.Context {
	ctx = services.WithSurface(ctx, "browse")
	ctx = services.WithEntryID(ctx, id)
	return services.WithRequestID(ctx, uuid.NewString())
}

func (b *Browser) report(ctx context.Context, err error, action string) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	logging.ErrorWithContext(logging.WithContext(ctx, b.logger), "browse action failed", "browse_"+services.Kind(err),
		logging.String("action", action),
		logging.Error(err),
		logging.String(logging.FieldImpact, services.UserMessage(err)),
	)
	if notifyErr := b.notifier.NotifyError(ctx, err, action); notifyErr != nil {
		b.logger.Debug("error notification failed", logging.Error(notifyErr))
	}
	return err
}
