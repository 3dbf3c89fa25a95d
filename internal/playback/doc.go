// Package playback arbitrates the single audible recording.
//
// Coordinator is a small state machine over a Player:
//
//	Idle    -- Play -->  Playing
//	Playing -- Stop -->  Paused
//	Paused  -- Play -->  Playing
//	any     -- end of media, Unload, entry removed -->  Idle
//
// While a session is loaded the coordinator holds an advisory lock file so a
// second voxmemo process cannot start audio at the same time. Position ticks
// are produced by a per-session goroutine that polls the player at the
// configured status interval; reaching the duration ends the session and
// clears the active entry.
//
// Observers call Subscribe and receive every transition and tick. Channels
// are buffered and drop their oldest pending status rather than block the
// coordinator.
package playback
