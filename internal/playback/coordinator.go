package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"voxmemo/internal/catalog"
	"voxmemo/internal/logging"
	"voxmemo/internal/services"
)

var (
	// ErrNotLoaded is returned by Seek while no entry is loaded.
	ErrNotLoaded = errors.New("no recording loaded")
	// ErrPlaybackBusy is returned when another process holds the playback lock.
	ErrPlaybackBusy = errors.New("another recording is already playing")
	// ErrClosed is returned by operations on a closed coordinator.
	ErrClosed = errors.New("playback coordinator closed")
	// ErrSuperseded is returned by Play when the entry was unloaded or removed
	// while its media was still loading.
	ErrSuperseded = errors.New("playback request superseded")
)

const (
	defaultStatusInterval = 250 * time.Millisecond
	statusBuffer          = 32
)

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithLockPath enables the cross-process single-session lock at path.
func WithLockPath(path string) Option {
	return func(c *Coordinator) {
		c.lockPath = path
	}
}

// WithStatusInterval sets how often position ticks are sampled while playing.
func WithStatusInterval(interval time.Duration) Option {
	return func(c *Coordinator) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// Coordinator owns the single active playback session.
type Coordinator struct {
	player   Player
	lockPath string
	interval time.Duration
	logger   *slog.Logger

	// loadMu serializes Play calls; mu is never held across player.Load.
	loadMu sync.Mutex

	mu         sync.Mutex
	status     Status
	pending    string
	loadSeq    uint64
	lock       *flock.Flock
	generation uint64
	stopTicks  context.CancelFunc
	subs       map[chan Status]struct{}
	closed     bool
}

// NewCoordinator returns an idle coordinator driving player.
func NewCoordinator(player Player, opts ...Option) *Coordinator {
	c := &Coordinator{
		player:   player,
		interval: defaultStatusInterval,
		status:   idleStatus(),
		subs:     make(map[chan Status]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "playback")
	return c
}

// Status returns the current session snapshot.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Subscribe returns a channel that immediately receives the current status
// and then every subsequent transition and tick. The returned function
// unsubscribes and closes the channel.
func (c *Coordinator) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, statusBuffer)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		ch <- c.status
		close(ch)
		return ch, func() {}
	}
	ch <- c.status
	c.subs[ch] = struct{}{}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
			}
		})
	}
}

// Play starts entry. A different loaded entry is unloaded first and entry
// starts from 0; the already loaded entry resumes from its position, or from
// 0 when it had reached the end. The media load runs without holding the
// status lock, so Status and Subscribe stay responsive while it probes.
func (c *Coordinator) Play(ctx context.Context, entry catalog.Entry) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	logger := logging.WithContext(ctx, c.logger).With(logging.String(logging.FieldEntryID, entry.ID))

	if c.status.ActiveID() == entry.ID && entry.ID != "" {
		defer c.mu.Unlock()
		return c.resumeLocked(ctx, logger)
	}

	if c.status.Loaded() {
		// The lock stays held across the switch to the new entry.
		c.endSessionLocked("replaced")
		c.publishLocked()
	}

	if err := c.acquireLockLocked(); err != nil {
		logging.WarnWithContext(logger, "playback refused", "playback_busy",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "stop the other voxmemo playback first"),
			logging.String(logging.FieldImpact, "recording not played"),
		)
		c.publishLocked()
		c.mu.Unlock()
		return err
	}
	c.loadSeq++
	seq := c.loadSeq
	c.pending = entry.ID
	c.mu.Unlock()

	duration, err := c.player.Load(ctx, entry.FileURI)
	if err == nil {
		err = c.player.Play(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = ""
	if seq != c.loadSeq {
		// Unload, Close or removal of entry ran while the media loaded.
		_ = c.player.Close()
		if !c.closed {
			c.releaseLockLocked()
		}
		logger.Info("playback request superseded during load")
		if c.closed {
			return ErrClosed
		}
		return ErrSuperseded
	}
	if err != nil {
		_ = c.player.Close()
		c.releaseLockLocked()
		c.status = idleStatus()
		logging.ErrorWithContext(logger, "playback load failed", "playback_load_failed",
			logging.String("file_uri", entry.FileURI),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the audio file exists and is readable"),
			logging.String(logging.FieldImpact, "recording not played"),
		)
		c.publishLocked()
		return services.Wrap(services.ErrPlaybackLoad, "playback", "play", entry.FileURI, err)
	}

	active := entry
	c.status = Status{
		State:          StatePlaying,
		ActiveEntry:    &active,
		PositionMillis: 0,
		DurationMillis: duration,
		IsPlaying:      true,
	}
	c.startTicksLocked()
	logger.Info("playback started", logging.Int64("duration_ms", duration))
	c.publishLocked()
	return nil
}

// cancelPendingLocked invalidates an in-flight load so Play discards it.
func (c *Coordinator) cancelPendingLocked() {
	if c.pending != "" {
		c.loadSeq++
		c.pending = ""
	}
}

func (c *Coordinator) resumeLocked(ctx context.Context, logger *slog.Logger) error {
	if c.status.IsPlaying {
		return nil
	}
	if c.status.PositionMillis >= c.status.DurationMillis {
		if err := c.player.Seek(ctx, 0); err != nil {
			return services.Wrap(services.ErrPlaybackLoad, "playback", "restart", "", err)
		}
		c.status.PositionMillis = 0
	}
	if err := c.player.Play(ctx); err != nil {
		logging.ErrorWithContext(logger, "playback resume failed", "playback_resume_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "recording stays paused"),
		)
		return services.Wrap(services.ErrPlaybackLoad, "playback", "resume", "", err)
	}
	c.status.State = StatePlaying
	c.status.IsPlaying = true
	c.startTicksLocked()
	logger.Debug("playback resumed", logging.Int64("position_ms", c.status.PositionMillis))
	c.publishLocked()
	return nil
}

// Stop pauses playback. The entry stays loaded so Play resumes it. Stop
// while idle or paused is a no-op.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.status.IsPlaying {
		return nil
	}
	if err := c.player.Pause(ctx); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	c.stopTicksLocked()
	c.status.PositionMillis = clamp(c.player.Position(), 0, c.status.DurationMillis)
	c.status.State = StatePaused
	c.status.IsPlaying = false
	c.logger.Debug("playback paused",
		logging.String(logging.FieldEntryID, c.status.ActiveID()),
		logging.Int64("position_ms", c.status.PositionMillis),
	)
	c.publishLocked()
	return nil
}

// Unload stops playback, releases the audio session and returns to idle.
func (c *Coordinator) Unload(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	if !c.status.Loaded() {
		return nil
	}
	c.teardownLocked("unloaded")
	c.publishLocked()
	return nil
}

// Seek moves the loaded session to positionMillis, clamped to [0, duration].
func (c *Coordinator) Seek(ctx context.Context, positionMillis int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.status.Loaded() {
		return ErrNotLoaded
	}
	target := clamp(positionMillis, 0, c.status.DurationMillis)
	if err := c.player.Seek(ctx, target); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	c.status.PositionMillis = target
	c.publishLocked()
	return nil
}

// HandleRemoved tears down the session when id is the active entry.
func (c *Coordinator) HandleRemoved(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != "" && c.pending == id {
		c.cancelPendingLocked()
	}
	if id == "" || c.status.ActiveID() != id {
		return
	}
	c.teardownLocked("entry removed")
	c.publishLocked()
}

// WatchCatalog applies catalog removals to the session until events closes
// or ctx is cancelled.
func (c *Coordinator) WatchCatalog(ctx context.Context, events <-chan catalog.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			switch evt.Type {
			case catalog.EventRemoved:
				c.HandleRemoved(evt.EntryID)
			case catalog.EventReset:
				c.HandleRemoved(c.Status().ActiveID())
			}
		}
	}
}

// Close unloads any session, releases the lock and closes subscriptions.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.cancelPendingLocked()
	if c.status.Loaded() {
		c.teardownLocked("closed")
		c.publishLocked()
	}
	c.releaseLockLocked()
	c.closed = true
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
	}
	return c.player.Close()
}

func (c *Coordinator) teardownLocked(reason string) {
	c.endSessionLocked(reason)
	c.releaseLockLocked()
}

func (c *Coordinator) endSessionLocked(reason string) {
	c.stopTicksLocked()
	if err := c.player.Close(); err != nil {
		c.logger.Debug("player close failed", logging.Error(err))
	}
	c.logger.Info("playback session ended",
		logging.String(logging.FieldEntryID, c.status.ActiveID()),
		logging.String("reason", reason),
	)
	c.status = idleStatus()
}

func (c *Coordinator) acquireLockLocked() error {
	if c.lockPath == "" || c.lock != nil {
		return nil
	}
	lock := flock.New(c.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrPlaybackLoad, "playback", "lock", c.lockPath, err)
	}
	if !ok {
		return services.Wrap(services.ErrPlaybackLoad, "playback", "lock", "", ErrPlaybackBusy)
	}
	c.lock = lock
	return nil
}

func (c *Coordinator) releaseLockLocked() {
	if c.lock == nil {
		return
	}
	if err := c.lock.Unlock(); err != nil {
		c.logger.Warn("release playback lock failed", logging.Error(err))
	}
	c.lock = nil
}

func (c *Coordinator) startTicksLocked() {
	c.stopTicksLocked()
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(context.Background())
	c.stopTicks = cancel
	go c.runTicks(ctx, gen)
}

func (c *Coordinator) stopTicksLocked() {
	if c.stopTicks != nil {
		c.stopTicks()
		c.stopTicks = nil
	}
	c.generation++
}

func (c *Coordinator) runTicks(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.tick(gen) {
				return
			}
		}
	}
}

// tick samples the player; it returns false once the session it belongs to
// is gone.
func (c *Coordinator) tick(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || !c.status.IsPlaying {
		return false
	}
	position := clamp(c.player.Position(), 0, c.status.DurationMillis)
	if position >= c.status.DurationMillis {
		c.status.PositionMillis = c.status.DurationMillis
		c.teardownLocked("finished")
		c.publishLocked()
		return false
	}
	if position == c.status.PositionMillis {
		return true
	}
	c.status.PositionMillis = position
	c.publishLocked()
	return true
}

// publishLocked fans the current status out without blocking; a full
// subscriber loses its oldest pending status.
func (c *Coordinator) publishLocked() {
	snapshot := c.status
	for ch := range c.subs {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func clamp(value, lo, hi int64) int64 {
	if hi < lo {
		hi = lo
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
