// Package logs reads the voxmemo log file for the `voxmemo logs` command.
//
// Last returns the final lines of the file, Since returns what was appended
// after a cursor, and Follow polls Since until its context ends. The file is
// rotated by the logger; a file shorter than the cursor is read from the
// start again. Reads use bounded memory regardless of file size.
package logs
