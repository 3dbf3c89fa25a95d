package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"voxmemo/internal/fileutil"
	"voxmemo/internal/logging"
	"voxmemo/internal/media/ffprobe"
)

const defaultProbeCacheSize = 128

// ProcessPlayerOptions configures a ProcessPlayer.
type ProcessPlayerOptions struct {
	PlayerBinary   string
	ProbeBinary    string
	ProbeCacheSize int
	Logger         *slog.Logger
}

// ProcessPlayer plays files through an ffplay subprocess. Pause and Seek
// stop the process and restart it at the target offset; durations come from
// ffprobe and are cached per file revision.
type ProcessPlayer struct {
	binary      string
	probeBinary string
	probes      *lru.Cache[string, int64]
	logger      *slog.Logger
	now         func() time.Time

	mu        sync.Mutex
	path      string
	duration  int64
	offset    int64
	startedAt time.Time
	cmd       *exec.Cmd
	done      chan struct{}
}

// NewProcessPlayer returns a player using the configured binaries.
func NewProcessPlayer(opts ProcessPlayerOptions) (*ProcessPlayer, error) {
	size := opts.ProbeCacheSize
	if size <= 0 {
		size = defaultProbeCacheSize
	}
	cache, err := lru.New[string, int64](size)
	if err != nil {
		return nil, fmt.Errorf("probe cache: %w", err)
	}
	binary := strings.TrimSpace(opts.PlayerBinary)
	if binary == "" {
		binary = "ffplay"
	}
	return &ProcessPlayer{
		binary:      binary,
		probeBinary: strings.TrimSpace(opts.ProbeBinary),
		probes:      cache,
		logger:      logging.NewComponentLogger(opts.Logger, "player"),
		now:         time.Now,
	}, nil
}

// Load probes uri and makes it the current file.
func (p *ProcessPlayer) Load(ctx context.Context, uri string) (int64, error) {
	path, err := fileutil.LocalPath(uri)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}

	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	duration, ok := p.probes.Get(key)
	if !ok {
		result, err := ffprobe.Inspect(ctx, p.probeBinary, path)
		if err != nil {
			return 0, err
		}
		if err := result.Validate(); err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		duration = result.DurationMillis()
		p.probes.Add(key, duration)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.path = path
	p.duration = duration
	p.offset = 0
	p.logger.Debug("media loaded", logging.String("path", path), logging.Int64("duration_ms", duration))
	return duration, nil
}

// Play starts the player process at the current offset.
func (p *ProcessPlayer) Play(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.path == "" {
		return errors.New("play: nothing loaded")
	}
	if p.runningLocked() {
		return nil
	}
	return p.startLocked()
}

// Pause stops the process and remembers the position.
func (p *ProcessPlayer) Pause(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = p.positionLocked()
	p.stopLocked()
	return nil
}

// Seek moves to positionMillis, restarting the process when it was playing.
func (p *ProcessPlayer) Seek(_ context.Context, positionMillis int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.path == "" {
		return errors.New("seek: nothing loaded")
	}
	wasPlaying := p.runningLocked()
	p.stopLocked()
	p.offset = clamp(positionMillis, 0, p.duration)
	if wasPlaying {
		return p.startLocked()
	}
	return nil
}

// Position returns the playback position in milliseconds.
func (p *ProcessPlayer) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

// Close stops the process and unloads the file.
func (p *ProcessPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.path = ""
	p.duration = 0
	p.offset = 0
	return nil
}

func (p *ProcessPlayer) startLocked() error {
	args := []string{"-nodisp", "-autoexit", "-hide_banner", "-loglevel", "error"}
	if p.offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(float64(p.offset)/1000, 'f', 3, 64))
	}
	args = append(args, p.path)

	cmd := exec.Command(p.binary, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.binary, err)
	}
	done := make(chan struct{})
	go func() {
		err := cmd.Wait()
		if err != nil {
			p.logger.Debug("player process exited", logging.Error(err))
		}
		close(done)
	}()
	p.cmd = cmd
	p.done = done
	p.startedAt = p.now()
	return nil
}

func (p *ProcessPlayer) stopLocked() {
	if p.cmd == nil {
		return
	}
	select {
	case <-p.done:
	default:
		_ = p.cmd.Process.Kill()
		select {
		case <-p.done:
		case <-time.After(2 * time.Second):
			p.logger.Warn("player process did not exit after kill", logging.Int("pid", p.cmd.Process.Pid))
		}
	}
	p.cmd = nil
	p.done = nil
}

func (p *ProcessPlayer) runningLocked() bool {
	if p.cmd == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *ProcessPlayer) positionLocked() int64 {
	if p.cmd == nil {
		return p.offset
	}
	select {
	case <-p.done:
		return p.duration
	default:
	}
	elapsed := p.now().Sub(p.startedAt).Milliseconds()
	return clamp(p.offset+elapsed, 0, p.duration)
}
