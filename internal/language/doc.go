// Package language provides unified language code normalization for the
// dubbing pipeline.
//
// Transcription, translation, and synthesis all take language identifiers in
// different shapes (ISO 639-1 codes, full names, BCP-47 tags); this package
// consolidates the conversions so no collaborator client rolls its own.
package language
