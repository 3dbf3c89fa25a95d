package capture

import "context"

// Device is the microphone-side collaborator of a Session.
type Device interface {
	// RequestPermission reports whether the user allows microphone access.
	RequestPermission(ctx context.Context) (bool, error)
	// Prepare readies the device for a new recording.
	Prepare(ctx context.Context) error
	Start(ctx context.Context) error
	// Stop ends the recording and returns the audio reference, or "" when
	// nothing was captured.
	Stop(ctx context.Context) (string, error)
}
