// Package notifications delivers user-facing messages such as "Recording
// Saved" or a failed playback.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when no topic is set. Individual
// message classes can be switched off with the notifications.recording_saved
// and notifications.errors flags.
package notifications
