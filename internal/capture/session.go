package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"voxmemo/internal/catalog"
	"voxmemo/internal/logging"
	"voxmemo/internal/notifications"
	"voxmemo/internal/services"
)

// ErrAlreadyRecording is returned by Start while a recording is in progress.
var ErrAlreadyRecording = errors.New("recording already in progress")

// ErrNotRecording is returned by Stop when no recording is in progress.
var ErrNotRecording = errors.New("not recording")

// Appender is the catalog operation a session needs.
type Appender interface {
	Append(ctx context.Context, entry catalog.Entry) error
}

// SessionOptions wires a Session to its collaborators.
type SessionOptions struct {
	Device         Device
	Catalog        Appender
	IDs            catalog.IDGenerator
	Notifier       notifications.Service
	Preflight      func() error
	DefaultCaption string
	Clock          func() time.Time
	Logger         *slog.Logger
}

// Session records one memo at a time.
type Session struct {
	device         Device
	catalog        Appender
	ids            catalog.IDGenerator
	notifier       notifications.Service
	preflight      func() error
	defaultCaption string
	now            func() time.Time
	logger         *slog.Logger

	mu        sync.Mutex
	recording bool
	startedAt time.Time
}

// NewSession builds a Session. IDs, Notifier, Clock and DefaultCaption fall
// back to UUIDs, a no-op notifier, time.Now and catalog.DefaultCaption.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		device:         opts.Device,
		catalog:        opts.Catalog,
		ids:            opts.IDs,
		notifier:       opts.Notifier,
		preflight:      opts.Preflight,
		defaultCaption: opts.DefaultCaption,
		now:            opts.Clock,
		logger:         logging.NewComponentLogger(opts.Logger, "capture"),
	}
	if s.ids == nil {
		s.ids = catalog.UUIDGenerator{}
	}
	if s.notifier == nil {
		s.notifier = notifications.NewNoop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultCaption == "" {
		s.defaultCaption = catalog.DefaultCaption
	}
	return s
}

// Start asks for microphone permission, checks storage and starts the device.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording {
		return ErrAlreadyRecording
	}
	ctx = services.WithSurface(ctx, "capture")
	logger := logging.WithContext(ctx, s.logger)

	granted, err := s.device.RequestPermission(ctx)
	if err != nil {
		return s.fail(ctx, services.Wrap(services.ErrPermissionDenied, "capture", "request permission", "", err))
	}
	if !granted {
		return s.fail(ctx, services.Wrap(services.ErrPermissionDenied, "capture", "request permission", "microphone access refused", nil))
	}
	if s.preflight != nil {
		if err := s.preflight(); err != nil {
			return s.fail(ctx, services.Wrap(services.ErrStorageWrite, "capture", "preflight", "", err))
		}
	}
	if err := s.device.Prepare(ctx); err != nil {
		return s.fail(ctx, services.Wrap(services.ErrStorageWrite, "capture", "prepare", "", err))
	}
	if err := s.device.Start(ctx); err != nil {
		return s.fail(ctx, services.Wrap(services.ErrExternalTool, "capture", "start", "", err))
	}

	s.recording = true
	s.startedAt = s.now()
	logger.Info("recording started")
	return nil
}

// Stop ends the recording. When the device captured audio a new entry is
// appended and returned with ok set; an empty audio reference returns ok
// false and no error.
func (s *Session) Stop(ctx context.Context) (entry catalog.Entry, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return catalog.Entry{}, false, ErrNotRecording
	}
	ctx = services.WithSurface(ctx, "capture")
	logger := logging.WithContext(ctx, s.logger)
	elapsed := s.now().Sub(s.startedAt)
	s.recording = false
	s.startedAt = time.Time{}

	uri, err := s.device.Stop(ctx)
	if err != nil {
		return catalog.Entry{}, false, s.fail(ctx, services.Wrap(services.ErrStorageWrite, "capture", "stop", "", err))
	}
	if uri == "" {
		logger.Info("recording produced no audio; nothing saved", logging.Duration("elapsed", elapsed))
		return catalog.Entry{}, false, nil
	}

	entry = catalog.Entry{
		ID:        s.ids.NewID(),
		FileURI:   uri,
		Caption:   s.defaultCaption,
		CreatedAt: s.now(),
	}
	ctx = services.WithEntryID(ctx, entry.ID)
	if err := s.catalog.Append(ctx, entry); err != nil {
		wrapped := fmt.Errorf("recording kept at %s but not added to the catalog: %w", uri, err)
		return catalog.Entry{}, false, s.fail(ctx, wrapped)
	}

	logging.WithContext(ctx, s.logger).Info("recording saved",
		logging.String("file_uri", uri),
		logging.Duration("elapsed", elapsed),
	)
	if err := s.notifier.NotifyRecordingSaved(ctx, entry.Caption, uri); err != nil {
		logging.WarnWithContext(logger, "recording saved notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "user not told about the saved recording"),
		)
	}
	return entry, true, nil
}

// Recording reports whether a recording is in progress.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Elapsed returns how long the current recording has been running.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return 0
	}
	return s.now().Sub(s.startedAt)
}

// FormatElapsed renders d as HH:MM:SS.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

func (s *Session) fail(ctx context.Context, err error) error {
	logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "capture failed", "capture_"+services.Kind(err),
		logging.Error(err),
		logging.String(logging.FieldImpact, services.UserMessage(err)),
	)
	if notifyErr := s.notifier.NotifyError(ctx, err, "recording"); notifyErr != nil {
		s.logger.Debug("error notification failed", logging.Error(notifyErr))
	}
	return err
}
