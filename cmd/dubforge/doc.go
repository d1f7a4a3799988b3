// Command dubforge drives the speech dubbing pipeline: it queues media
// files, runs the stage workflow as a daemon, and exposes segment editing
// commands for transcripts that need manual review.
package main
