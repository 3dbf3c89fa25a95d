// Package main hosts the voxmemo CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the capture session,
// the recording catalog, the playback coordinator and the browse surface. It
// centralizes configuration resolution and logger setup so subcommands only
// deal with presenting results.
//
// Keep this package lean: behavior belongs in the internal packages and is
// surfaced here through commands and flags.
package main
