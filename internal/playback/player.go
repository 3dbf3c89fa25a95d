package playback

import "context"

// Player is the audio session the coordinator drives. Implementations hold at
// most one loaded file; Load replaces it.
type Player interface {
	// Load prepares uri for playback at position 0 and returns its duration.
	Load(ctx context.Context, uri string) (durationMillis int64, err error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, positionMillis int64) error
	// Position reports the current playback position. A player whose media
	// ended reports its duration.
	Position() int64
	// Close unloads the current file and releases the audio device.
	Close() error
}
