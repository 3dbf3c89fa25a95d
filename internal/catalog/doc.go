// Package catalog owns the durable, ordered list of recording entries.
//
// The catalog is persisted as a single JSON array under one key of a
// blobstore.Store. Every mutation is a whole read-modify-write of that blob:
// load, change the slice in memory, write the full array back. Mutations
// issued through one Store value are serialized; writers in other processes
// sharing the same blob can still interleave and lose an update.
//
// Load always returns entries most-recent-first (createdAt descending, ties
// broken by id ascending). A blob that cannot be decoded is treated as empty
// and overwritten with "[]" so the next reader starts from a valid state.
//
// Successful mutations publish an Event to subscribers; the browse surface
// uses them to refresh early and the playback coordinator uses them to drop a
// session whose entry was deleted.
package catalog
