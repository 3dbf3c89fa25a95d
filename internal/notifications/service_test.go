package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"voxmemo/internal/config"
	"voxmemo/internal/notifications"
	"voxmemo/internal/services"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		captured []capturedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		mu.Lock()
		captured = append(captured, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), captured...)
	}
}

func configWithTopic(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(configWithTopic(""))
	if err := svc.NotifyRecordingSaved(context.Background(), "My Recording", "a.m4a"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).NotifyError(context.Background(), errors.New("x"), ""); err != nil {
		t.Fatalf("nil config should yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	loadErr := services.Wrap(services.ErrPlaybackLoad, "playback", "play", "a.m4a", errors.New("no such file"))

	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "recording saved",
			send: func(s notifications.Service) error {
				return s.NotifyRecordingSaved(context.Background(), "My Recording", "/rec/a.m4a")
			},
			expectTitle:   "Recording Saved",
			expectMessage: "Saved \"My Recording\"\nFile: /rec/a.m4a",
			expectTags:    "voxmemo,recording,saved",
		},
		{
			name: "exported",
			send: func(s notifications.Service) error {
				return s.NotifyRecordingExported(context.Background(), "Meeting Notes", "/exports/Meeting Notes.m4a")
			},
			expectTitle:    "Recording Exported",
			expectMessage:  "Exported \"Meeting Notes\" to /exports/Meeting Notes.m4a",
			expectTags:     "voxmemo,share",
			expectPriority: "low",
		},
		{
			name: "error",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), loadErr, "browse")
			},
			expectTitle:    "voxmemo - Error",
			expectMessage:  "Failed to play recording (browse)\n" + loadErr.Error(),
			expectTags:     "voxmemo,error,playback_load",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, requests := newCaptureServer(t)
			svc := notifications.NewService(configWithTopic(server.URL))
			if err := tc.send(svc); err != nil {
				t.Fatalf("send: %v", err)
			}
			got := requests()
			if len(got) != 1 {
				t.Fatalf("expected 1 request, got %d", len(got))
			}
			req := got[0]
			if req.title != tc.expectTitle {
				t.Fatalf("title = %q, want %q", req.title, tc.expectTitle)
			}
			if req.body != tc.expectMessage {
				t.Fatalf("body = %q, want %q", req.body, tc.expectMessage)
			}
			if req.tags != tc.expectTags {
				t.Fatalf("tags = %q, want %q", req.tags, tc.expectTags)
			}
			if req.priority != tc.expectPriority {
				t.Fatalf("priority = %q, want %q", req.priority, tc.expectPriority)
			}
		})
	}
}

func TestNtfyServiceHonoursToggles(t *testing.T) {
	server, requests := newCaptureServer(t)
	cfg := configWithTopic(server.URL)
	cfg.Notifications.RecordingSaved = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyRecordingSaved(context.Background(), "x", "x.m4a"); err != nil {
		t.Fatalf("NotifyRecordingSaved: %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), ""); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if got := requests(); len(got) != 0 {
		t.Fatalf("expected no requests, got %d", len(got))
	}

	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if got := requests(); len(got) != 1 || got[0].title != "voxmemo - Test" {
		t.Fatalf("unexpected test notification: %+v", got)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc := notifications.NewService(configWithTopic(server.URL))
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
