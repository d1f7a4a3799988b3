package queue

import "time"

// Status represents the lifecycle of a dubbing task.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSeparating   Status = "separating"
	StatusSeparated    Status = "separated"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusTranslating  Status = "translating"
	StatusTranslated   Status = "translated"
	StatusSynthesizing Status = "synthesizing"
	StatusSynthesized  Status = "synthesized"
	StatusRendering    Status = "rendering"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusSeparating,
	StatusSeparated,
	StatusTranscribing,
	StatusTranscribed,
	StatusTranslating,
	StatusTranslated,
	StatusSynthesizing,
	StatusSynthesized,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := statusSet[s]
	return ok
}

// processingRollbacks maps each in-flight status to the stable status a task
// returns to when the daemon restarts mid-stage.
var processingRollbacks = map[Status]Status{
	StatusSeparating:   StatusPending,
	StatusTranscribing: StatusSeparated,
	StatusTranslating:  StatusTranscribed,
	StatusSynthesizing: StatusTranslated,
	StatusRendering:    StatusSynthesized,
}

// Task represents one dubbing task persisted in SQLite.
type Task struct {
	ID             int64
	SourcePath     string
	Title          string
	SourceLanguage string
	TargetLanguage string
	Status         Status

	// Artifact paths filled in as stages complete.
	AudioPath          string
	VocalStemPath      string
	BackgroundStemPath string
	SegmentsPath       string
	RenderedPath       string
	FinalPath          string

	ErrorMessage    string
	ReviewReason    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HealthSummary describes aggregated queue counts per key lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Review     int
}
