package playback

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"voxmemo/internal/blobstore"
	"voxmemo/internal/catalog"
	"voxmemo/internal/services"
)

type fakePlayer struct {
	mu        sync.Mutex
	durations map[string]int64
	loadErr   error
	loaded    string
	loads     []string
	position  int64
	playing   bool
	closes    int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{durations: map[string]int64{}}
}

func (f *fakePlayer) Load(_ context.Context, uri string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return 0, f.loadErr
	}
	f.loaded = uri
	f.loads = append(f.loads, uri)
	f.position = 0
	duration, ok := f.durations[uri]
	if !ok {
		duration = 10_000
	}
	return duration, nil
}

func (f *fakePlayer) Play(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
	return nil
}

func (f *fakePlayer) Pause(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	return nil
}

func (f *fakePlayer) Seek(_ context.Context, positionMillis int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = positionMillis
	return nil
}

func (f *fakePlayer) Position() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakePlayer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = ""
	f.playing = false
	f.closes++
	return nil
}

func (f *fakePlayer) setPosition(pos int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = pos
}

func (f *fakePlayer) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

func entry(id string) catalog.Entry {
	return catalog.Entry{ID: id, FileURI: id + ".m4a", Caption: "My Recording", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func waitForStatus(t *testing.T, c *Coordinator, cond func(Status) bool) Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := c.Status(); cond(st) {
			return st
		}
		time.Sleep(2 * time.Millisecond)
	}
	st := c.Status()
	t.Fatalf("condition not met; last status %+v", st)
	return st
}

func TestPlayDifferentEntryReplacesSession(t *testing.T) {
	player := newFakePlayer()
	c := NewCoordinator(player, WithStatusInterval(5*time.Millisecond))
	defer c.Close()
	ctx := context.Background()

	if err := c.Play(ctx, entry("A")); err != nil {
		t.Fatalf("Play A: %v", err)
	}
	player.setPosition(4000)
	waitForStatus(t, c, func(s Status) bool { return s.PositionMillis == 4000 })

	if err := c.Play(ctx, entry("B")); err != nil {
		t.Fatalf("Play B: %v", err)
	}
	st := c.Status()
	if st.ActiveID() != "B" {
		t.Fatalf("active = %q, want B", st.ActiveID())
	}
	if st.PositionMillis != 0 {
		t.Fatalf("position = %d, want 0", st.PositionMillis)
	}
	if !st.IsPlaying || st.State != StatePlaying {
		t.Fatalf("expected playing, got %+v", st)
	}
	if player.loadCount() != 2 {
		t.Fatalf("loads = %d, want 2", player.loadCount())
	}
}

func TestPlayReachingEndReturnsToIdle(t *testing.T) {
	player := newFakePlayer()
	player.durations["A.m4a"] = 3000
	c := NewCoordinator(player, WithStatusInterval(5*time.Millisecond))
	defer c.Close()

	if err := c.Play(context.Background(), entry("A")); err != nil {
		t.Fatalf("Play: %v", err)
	}
	player.setPosition(3000)

	st := waitForStatus(t, c, func(s Status) bool { return s.State == StateIdle })
	if st.Loaded() || st.IsPlaying {
		t.Fatalf("expected idle without active entry, got %+v", st)
	}
}

func TestStopKeepsEntryAndPlayResumes(t *testing.T) {
	player := newFakePlayer()
	c := NewCoordinator(player, WithStatusInterval(5*time.Millisecond))
	defer c.Close()
	ctx := context.Background()

	if err := c.Play(ctx, entry("A")); err != nil {
		t.Fatalf("Play: %v", err)
	}
	player.setPosition(1500)
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	st := c.Status()
	if st.State != StatePaused || st.IsPlaying || st.ActiveID() != "A" || st.PositionMillis != 1500 {
		t.Fatalf("unexpected paused status %+v", st)
	}

	if err := c.Play(ctx, entry("A")); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if player.loadCount() != 1 {
		t.Fatalf("resume reloaded media: loads = %d", player.loadCount())
	}
	if st := c.Status(); !st.IsPlaying || st.PositionMillis != 1500 {
		t.Fatalf("unexpected resumed status %+v", st)
	}
}

func TestPlayAfterSeekToEndRestartsFromZero(t *testing.T) {
	player := newFakePlayer()
	c := NewCoordinator(player, WithStatusInterval(time.Hour))
	defer c.Close()
	ctx := context.Background()

	if err := c.Play(ctx, entry("A")); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := c.Seek(ctx, 10_000); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := c.Play(ctx, entry("A")); err != nil {
		t.Fatalf("Play again: %v", err)
	}
	if st := c.Status(); st.PositionMillis != 0 || player.Position() != 0 {
		t.Fatalf("expected restart from 0, got status %+v player %d", st, player.Position())
	}
}

func TestSeekClampsAndRequiresLoadedEntry(t *testing.T) {
	player := newFakePlayer()
	c := NewCoordinator(player, WithStatusInterval(time.Hour))
	defer c.Close()
	ctx := context.Background()

	if err := c.Seek(ctx, 100); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Seek idle error = %v, want ErrNotLoaded", err)
	}

	if err := c.Play(ctx, entry("A")); err != nil {
		t.Fatalf("Play: %v", err)
	}
	tests := []struct {
		target int64
		want   int64
	}{
		{target: -50, want: 0},
		{target: 2500, want: 2500},
		{target: 99_999, want: 10_000},
	}
	for _, tt := range tests {
		if err := c.Seek(ctx, tt.target); err != nil {
			t.Fatalf("Seek(%d): %v", tt.target, err)
		}
		if got := c.Status().PositionMillis; got != tt.want {
			t.Fatalf("Seek(%d) position = %d, want %d", tt.target, got, tt.want)
		}
	}
}

func TestLoadFailureLeavesCoordinatorIdle(t *testing.T) {
	player := newFakePlayer()
	player.loadErr = errors.New("no such file")
	c := NewCoordinator(player, WithStatusInterval(5*time.Millisecond))
	defer c.Close()
	updates, cancel := c.Subscribe()
	defer cancel()
	<-updates

	err := c.Play(context.Background(), entry("A"))
	if !errors.Is(err, services.ErrPlaybackLoad) {
		t.Fatalf("error = %v, want playback load error", err)
	}
	if st := c.Status(); st.State != StateIdle || st.Loaded() {
		t.Fatalf("expected idle, got %+v", st)
	}

	player.mu.Lock()
	player.loadErr = nil
	player.mu.Unlock()
	if err := c.Play(context.Background(), entry("B")); err != nil {
		t.Fatalf("Play after failure: %v", err)
	}
	deadline := time.After(time.Second)
	for {
		select {
		case st := <-updates:
			if st.ActiveID() == "B" {
				return
			}
		case <-deadline:
			t.Fatal("subscription stopped delivering after load failure")
		}
	}
}

func TestRemovingActiveEntryIdlesCoordinator(t *testing.T) {
	ctx := context.Background()
	store := catalog.New(blobstore.NewMemoryStore())
	a := entry("A")
	if err := store.Append(ctx, a); err != nil {
		t.Fatalf("Append: %v", err)
	}

	player := newFakePlayer()
	c := NewCoordinator(player, WithStatusInterval(5*time.Millisecond))
	defer c.Close()
	events, unsubscribe := store.Subscribe()
	defer unsubscribe()
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go c.WatchCatalog(watchCtx, events)

	if err := c.Play(ctx, a); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := store.Remove(ctx, "A"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	st := waitForStatus(t, c, func(s Status) bool { return s.State == StateIdle })
	if st.Loaded() {
		t.Fatalf("expected no active entry, got %+v", st)
	}
}

func TestHandleRemovedIgnoresOtherEntries(t *testing.T) {
	player := newFakePlayer()
	c := NewCoordinator(player, WithStatusInterval(time.Hour))
	defer c.Close()

	if err := c.Play(context.Background(), entry("A")); err != nil {
		t.Fatalf("Play: %v", err)
	}
	c.HandleRemoved("B")
	if c.Status().ActiveID() != "A" {
		t.Fatal("removing another entry tore down the session")
	}
	c.HandleRemoved("A")
	if c.Status().Loaded() {
		t.Fatal("removing the active entry left it loaded")
	}
}

func TestPlaybackLockIsExclusive(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "playback.lock")
	first := NewCoordinator(newFakePlayer(), WithLockPath(lockPath), WithStatusInterval(time.Hour))
	defer first.Close()
	second := NewCoordinator(newFakePlayer(), WithLockPath(lockPath), WithStatusInterval(time.Hour))
	defer second.Close()
	ctx := context.Background()

	if err := first.Play(ctx, entry("A")); err != nil {
		t.Fatalf("first Play: %v", err)
	}
	if err := second.Play(ctx, entry("B")); !errors.Is(err, ErrPlaybackBusy) {
		t.Fatalf("second Play error = %v, want ErrPlaybackBusy", err)
	}
	if second.Status().Loaded() {
		t.Fatal("busy coordinator should stay idle")
	}

	if err := first.Unload(ctx); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if err := second.Play(ctx, entry("B")); err != nil {
		t.Fatalf("second Play after unload: %v", err)
	}
}

func TestCloseReleasesSessionAndSubscriptions(t *testing.T) {
	player := newFakePlayer()
	c := NewCoordinator(player, WithStatusInterval(time.Hour))
	updates, _ := c.Subscribe()

	if err := c.Play(context.Background(), entry("A")); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Play(context.Background(), entry("A")); !errors.Is(err, ErrClosed) {
		t.Fatalf("Play after close error = %v, want ErrClosed", err)
	}

	var last Status
	for st := range updates {
		last = st
	}
	if last.State != StateIdle {
		t.Fatalf("last status = %+v, want idle", last)
	}
}

type gatedPlayer struct {
	*fakePlayer
	started chan struct{}
	release chan struct{}
}

func (g *gatedPlayer) Load(ctx context.Context, uri string) (int64, error) {
	close(g.started)
	<-g.release
	return g.fakePlayer.Load(ctx, uri)
}

func TestStatusDoesNotWaitForMediaLoad(t *testing.T) {
	player := &gatedPlayer{fakePlayer: newFakePlayer(), started: make(chan struct{}), release: make(chan struct{})}
	c := NewCoordinator(player, WithStatusInterval(time.Hour))
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Play(context.Background(), entry("A")) }()
	<-player.started

	statusDone := make(chan Status, 1)
	go func() { statusDone <- c.Status() }()
	select {
	case st := <-statusDone:
		if st.Loaded() {
			t.Fatalf("entry reported loaded before its media finished loading: %+v", st)
		}
	case <-time.After(time.Second):
		t.Fatal("Status blocked behind a media load")
	}

	close(player.release)
	if err := <-done; err != nil {
		t.Fatalf("Play: %v", err)
	}
	if c.Status().ActiveID() != "A" {
		t.Fatalf("active = %q, want A", c.Status().ActiveID())
	}
}

func TestRemovingEntryWhileLoadingDiscardsIt(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "playback.lock")
	player := &gatedPlayer{fakePlayer: newFakePlayer(), started: make(chan struct{}), release: make(chan struct{})}
	c := NewCoordinator(player, WithLockPath(lockPath), WithStatusInterval(time.Hour))
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Play(context.Background(), entry("A")) }()
	<-player.started
	c.HandleRemoved("A")
	close(player.release)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Play error = %v, want ErrSuperseded", err)
	}
	if st := c.Status(); st.Loaded() || st.State != StateIdle {
		t.Fatalf("expected idle, got %+v", st)
	}

	other := NewCoordinator(newFakePlayer(), WithLockPath(lockPath), WithStatusInterval(time.Hour))
	defer other.Close()
	if err := other.Play(context.Background(), entry("B")); err != nil {
		t.Fatalf("playback lock not released after discarded load: %v", err)
	}
}
