// Package preflight verifies the runtime environment before the daemon
// starts processing: external binaries, directory permissions, free disk
// space, and translation API reachability.
package preflight
