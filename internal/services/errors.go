package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrStorageRead      = errors.New("storage read error")
	ErrStorageWrite     = errors.New("storage write error")
	ErrPlaybackLoad     = errors.New("playback load error")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrExternalTool     = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a stable snake_case classification for err, used as the
// event_type suffix in logs and as the notification category.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrStorageRead):
		return "storage_read"
	case errors.Is(err, ErrStorageWrite):
		return "storage_write"
	case errors.Is(err, ErrPlaybackLoad):
		return "playback_load"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "unexpected"
	}
}

// UserMessage renders a short, non-technical summary suitable for a
// user-visible notification.
func UserMessage(err error) string {
	switch Kind(err) {
	case "":
		return ""
	case "permission_denied":
		return "Permission to access microphone was denied"
	case "storage_read":
		return "Failed to load recordings"
	case "storage_write":
		return "Failed to save recording"
	case "playback_load":
		return "Failed to play recording"
	case "not_found":
		return "Recording no longer exists"
	case "validation":
		return strings.TrimSpace(err.Error())
	default:
		return "An unknown error occurred"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
