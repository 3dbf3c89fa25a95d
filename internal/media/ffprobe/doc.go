// Package ffprobe provides a typed wrapper around ffprobe JSON output for
// audio recordings.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties (codec, sample rate, channels)
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Result.Validate rejects files the player cannot audition: no audio stream
// or no usable duration.
package ffprobe
