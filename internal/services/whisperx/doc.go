// Package whisperx runs WhisperX transcription through uvx and converts its
// JSON output into segment documents.
package whisperx
