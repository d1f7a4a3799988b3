// Package queue persists dubbing tasks in SQLite and owns their lifecycle
// states.
//
// A task moves pending -> separating -> transcribing -> translating ->
// synthesizing -> rendering -> completed, with failed and review as terminal
// side states. The store is the single source of truth the workflow manager
// polls; stage handlers never talk to SQLite directly.
package queue
