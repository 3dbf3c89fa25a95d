package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"voxmemo/internal/config"
	"voxmemo/internal/logging"
)

const stopTimeout = 5 * time.Second

// ProcessDevice records through an ffmpeg subprocess.
type ProcessDevice struct {
	binary      string
	inputFormat string
	inputDevice string
	format      string
	sampleRate  int
	channels    int
	dir         string
	logger      *slog.Logger

	mu   sync.Mutex
	path string
	cmd  *exec.Cmd
	done chan error
}

// NewProcessDevice builds a device from the capture and paths configuration.
func NewProcessDevice(cfg *config.Config, logger *slog.Logger) *ProcessDevice {
	return &ProcessDevice{
		binary:      cfg.Capture.Binary,
		inputFormat: cfg.Capture.InputFormat,
		inputDevice: cfg.Capture.InputDevice,
		format:      cfg.Capture.Format,
		sampleRate:  cfg.Capture.SampleRate,
		channels:    cfg.Capture.Channels,
		dir:         cfg.Paths.RecordingsDir,
		logger:      logging.NewComponentLogger(logger, "capture-device"),
	}
}

// RequestPermission checks that the recorder binary exists and that the
// audio input is accessible to this user. A missing binary is an error; an
// inaccessible input is a refusal.
func (d *ProcessDevice) RequestPermission(context.Context) (bool, error) {
	if _, err := exec.LookPath(d.binary); err != nil {
		return false, fmt.Errorf("recorder binary %q not found: %w", d.binary, err)
	}
	target := d.inputNode()
	if target == "" {
		return true, nil
	}
	if err := unix.Access(target, unix.R_OK|unix.W_OK); err != nil {
		d.logger.Warn("audio input not accessible",
			logging.String("path", target),
			logging.Error(err),
			logging.String(logging.FieldEventType, "capture_permission_denied"),
			logging.String(logging.FieldErrorHint, "add the user to the audio group or start the sound server"),
		)
		return false, nil
	}
	return true, nil
}

// inputNode returns the filesystem node guarding the configured input, if any.
func (d *ProcessDevice) inputNode() string {
	switch d.inputFormat {
	case "alsa":
		return "/dev/snd"
	case "pulse":
		runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
		if runtimeDir == "" {
			return ""
		}
		socket := filepath.Join(runtimeDir, "pulse", "native")
		if _, err := os.Stat(socket); err != nil {
			return ""
		}
		return socket
	default:
		return ""
	}
}

// Prepare allocates the output file path for the next recording.
func (d *ProcessDevice) Prepare(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cmd != nil {
		return errors.New("recording already in progress")
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create recordings directory: %w", err)
	}
	name := fmt.Sprintf("%s-%s.%s", time.Now().UTC().Format("20060102T150405Z"), uuid.NewString()[:8], d.format)
	d.path = filepath.Join(d.dir, name)
	return nil
}

// Start launches the recorder writing to the prepared path.
func (d *ProcessDevice) Start(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.path == "" {
		return errors.New("device not prepared")
	}
	if d.cmd != nil {
		return errors.New("recording already in progress")
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	if d.inputFormat != "" {
		args = append(args, "-f", d.inputFormat)
	}
	args = append(args, "-i", d.inputDevice)
	if d.channels > 0 {
		args = append(args, "-ac", strconv.Itoa(d.channels))
	}
	if d.sampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(d.sampleRate))
	}
	args = append(args, "-y", d.path)

	// The recording outlives the starting call; only Stop ends it.
	cmd := exec.Command(d.binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", d.binary, err)
	}
	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		if err != nil && stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		done <- err
	}()
	d.cmd = cmd
	d.done = done
	d.logger.Debug("recorder started", logging.String("path", d.path), logging.Int("pid", cmd.Process.Pid))
	return nil
}

// Stop interrupts the recorder so it finalizes the container, then returns a
// file URI for the result. An empty or missing output yields "".
func (d *ProcessDevice) Stop(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cmd == nil {
		return "", errors.New("not recording")
	}

	if err := d.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		_ = d.cmd.Process.Kill()
	}
	var waitErr error
	select {
	case waitErr = <-d.done:
	case <-time.After(stopTimeout):
		_ = d.cmd.Process.Kill()
		waitErr = <-d.done
	case <-ctx.Done():
		_ = d.cmd.Process.Kill()
		<-d.done
		waitErr = ctx.Err()
	}
	path := d.path
	d.cmd = nil
	d.done = nil
	d.path = ""

	if waitErr != nil {
		d.logger.Debug("recorder exited with error", logging.Error(waitErr))
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		if err == nil {
			_ = os.Remove(path)
		}
		return "", nil
	}
	return (&url.URL{Scheme: "file", Path: path}).String(), nil
}

var _ Device = (*ProcessDevice)(nil)
