package playback

import "voxmemo/internal/catalog"

// State is the coordinator's transport state.
type State string

const (
	StateIdle    State = "idle"
	StatePaused  State = "paused"
	StatePlaying State = "playing"
)

// Status is a snapshot of the playback session.
type Status struct {
	State          State
	ActiveEntry    *catalog.Entry
	PositionMillis int64
	DurationMillis int64
	IsPlaying      bool
}

// Loaded reports whether an entry is loaded.
func (s Status) Loaded() bool {
	return s.ActiveEntry != nil
}

// ActiveID returns the loaded entry's id, or "".
func (s Status) ActiveID() string {
	if s.ActiveEntry == nil {
		return ""
	}
	return s.ActiveEntry.ID
}

func idleStatus() Status {
	return Status{State: StateIdle}
}
