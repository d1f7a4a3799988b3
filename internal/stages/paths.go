package stages

import (
	"fmt"
	"path/filepath"

	"dubforge/internal/config"
	"dubforge/internal/queue"
)

// Staging layout for one task:
//
//	<staging>/task-<id>/
//	    audio.wav            full mono mix
//	    whisper_input.wav    16kHz transcription input
//	    segments.json        segment document
//	    clips/seg_<id>_ref.wav
//	    clips/seg_<id>_cloned.wav
//	    dubbed.wav           rendered dub track
const (
	audioFileName        = "audio.wav"
	whisperInputFileName = "whisper_input.wav"
	segmentsFileName     = "segments.json"
	dubbedFileName       = "dubbed.wav"
	clipsDirName         = "clips"
)

// workingSampleRate is the rate the full mix and stems are extracted at.
const workingSampleRate = 44100

// transcriptionSampleRate is what WhisperX expects.
const transcriptionSampleRate = 16000

// TaskStagingDir returns the per-task working directory.
func TaskStagingDir(cfg *config.Config, task *queue.Task) string {
	return filepath.Join(cfg.Paths.StagingDir, fmt.Sprintf("task-%d", task.ID))
}

// ClipsDir returns the directory holding per-segment reference and cloned
// clips for a task.
func ClipsDir(cfg *config.Config, task *queue.Task) string {
	return filepath.Join(TaskStagingDir(cfg, task), clipsDirName)
}

// ReferenceClipPath names the reference audio clip for one segment.
func ReferenceClipPath(clipsDir string, segmentID uint32) string {
	return filepath.Join(clipsDir, fmt.Sprintf("seg_%d_ref.wav", segmentID))
}

// ClonedClipPath names the synthesized clip for one segment.
func ClonedClipPath(clipsDir string, segmentID uint32) string {
	return filepath.Join(clipsDir, fmt.Sprintf("seg_%d_cloned.wav", segmentID))
}
