// Package capture records new memos and adds them to the catalog.
//
// A Session drives a Device through permission, preparation, start and stop.
// When the device reports an audio reference on Stop the session appends a
// new catalog entry with a fresh id, the default caption and the current
// time, then tells the user the recording was saved. A device that produced
// nothing (empty reference) creates no entry. If the append fails the audio
// file is left on disk and the returned error names it.
//
// ProcessDevice is the real Device: it runs ffmpeg against the configured
// input and writes one file per recording into the recordings directory.
package capture
