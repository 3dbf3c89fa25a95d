// Package preflight provides readiness checks for the filesystem paths and
// external tools voxmemo depends on.
//
// These checks run in two contexts:
//   - The capture session calls CheckRecording before the device starts so a
//     full disk or unwritable directory fails fast instead of mid-recording.
//   - The CLI "voxmemo status" command runs RunAll and CheckSystemDeps to
//     display overall health.
package preflight
