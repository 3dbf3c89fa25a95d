// Package blobstore provides the key-value blob persistence the catalog is
// written through.
//
// A Store only knows whole values: Get returns the bytes last written under a
// key and Set replaces them. There are no partial updates and no
// transactions spanning a Get and a Set; callers that read-modify-write
// accept the lost-update window that implies.
//
// Two durable backends are available. FileStore keeps one file per key and
// replaces it atomically (temp file + rename) under an advisory lock so a
// crash or a concurrent writer never leaves a torn value. SQLiteStore keeps
// all keys in a single table, one row per key. MemoryStore exists for tests.
package blobstore
