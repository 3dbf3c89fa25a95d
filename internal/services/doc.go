// Package services defines shared utilities consumed by the catalog, playback,
// capture, and browse components.
//
// Key responsibilities:
//   - Context helpers that stamp entry IDs, surfaces, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every component reports
//     failures with the same taxonomy (permission, storage read/write,
//     playback load, not found, validation).
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the application.
package services
