// Package segment defines the transcript segment data model and the edit
// operations that keep text, time boundaries, and word-level timestamps
// mutually consistent.
//
// Segments are value types: every edit operation returns a new segment or a
// new slice instead of mutating its input, so callers can persist each state
// and retry operations without worrying about shared mutable state. Structural
// edits (merge, split, delete) are followed by Renumber, which reassigns dense
// 0..N-1 ids and reports an old-id to new-id map so per-segment artifacts
// named by id can be relocated by the caller.
package segment
