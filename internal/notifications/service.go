package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voxmemo/internal/config"
	"voxmemo/internal/services"
)

const userAgent = "voxmemo/0.1.0"

// Service defines the notification surface exposed to the capture and browse surfaces.
type Service interface {
	NotifyRecordingSaved(ctx context.Context, caption, fileURI string) error
	NotifyRecordingExported(ctx context.Context, caption, destination string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:       topic,
		client:         &http.Client{Timeout: timeout},
		recordingSaved: cfg.Notifications.RecordingSaved,
		errors:         cfg.Notifications.Errors,
	}
}

// NewNoop returns a Service that discards every notification.
func NewNoop() Service {
	return noopService{}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	recordingSaved bool
	errors         bool
}

func (n *ntfyService) NotifyRecordingSaved(ctx context.Context, caption, fileURI string) error {
	if !n.recordingSaved {
		return nil
	}
	caption = strings.TrimSpace(caption)
	message := fmt.Sprintf("Saved %q", caption)
	if fileURI = strings.TrimSpace(fileURI); fileURI != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, fileURI)
	}
	return n.send(ctx, payload{
		title:   "Recording Saved",
		message: message,
		tags:    []string{"voxmemo", "recording", "saved"},
	})
}

func (n *ntfyService) NotifyRecordingExported(ctx context.Context, caption, destination string) error {
	return n.send(ctx, payload{
		title:    "Recording Exported",
		message:  fmt.Sprintf("Exported %q to %s", strings.TrimSpace(caption), strings.TrimSpace(destination)),
		tags:     []string{"voxmemo", "share"},
		priority: "low",
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	if summary := services.UserMessage(err); summary != "" {
		builder.WriteString(summary)
	} else {
		builder.WriteString("An unknown error occurred")
	}
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" (")
		builder.WriteString(contextLabel)
		builder.WriteString(")")
	}
	if err != nil {
		builder.WriteString("\n")
		builder.WriteString(strings.TrimSpace(err.Error()))
	}

	return n.send(ctx, payload{
		title:    "voxmemo - Error",
		message:  builder.String(),
		tags:     []string{"voxmemo", "error", services.Kind(err)},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "voxmemo - Test",
		message:  "Notification system test",
		tags:     []string{"voxmemo", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if tags := compactTags(data.tags); len(tags) > 0 {
		req.Header.Set("Tags", strings.Join(tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func compactTags(tags []string) []string {
	out := tags[:0:0]
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

type noopService struct{}

func (noopService) NotifyRecordingSaved(context.Context, string, string) error    { return nil }
func (noopService) NotifyRecordingExported(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error              { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
