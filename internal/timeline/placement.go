package timeline

import "fmt"

// Placement is one synthesized clip and the original time slot it should
// occupy.
type Placement struct {
	// Start and End bound the placement window in seconds on the output
	// timeline.
	Start float64
	End   float64
	// AudioPath locates the synthesized clip. Empty means synthesis never
	// produced one; the window stays silent.
	AudioPath string
	// Text is the synthesized (translated) text, OriginalText the source
	// transcript. Both are carried for diagnostics only.
	Text         string
	OriginalText string
}

// Request describes one render run.
type Request struct {
	// TotalDuration is the authoritative output length in seconds.
	TotalDuration float64
	// Placements must be ordered by ascending start.
	Placements []Placement
	// BackgroundPath optionally names the background bed to remix under the
	// voice track.
	BackgroundPath string
	// VoiceStemPath and BackgroundStemPath optionally name the isolated
	// original stems used to measure the target voice/background loudness
	// ratio. Without them the configured default ratio applies.
	VoiceStemPath      string
	BackgroundStemPath string
	// OutputPath receives the rendered 16-bit PCM WAV track.
	OutputPath string
}

// WarningKind classifies a soft per-placement failure.
type WarningKind string

const (
	WarnMissingClip     WarningKind = "missing_clip"
	WarnUndecodableClip WarningKind = "undecodable_clip"
	WarnDegradedStretch WarningKind = "degraded_stretch"
	WarnOverlapMixed    WarningKind = "overlap_mixed"
	WarnStemUnreadable  WarningKind = "stem_unreadable"
)

// Warning records one soft failure. Index is the placement's position in the
// request, or -1 for run-level warnings.
type Warning struct {
	Index  int
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	if w.Index < 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
	}
	return fmt.Sprintf("placement %d: %s: %s", w.Index, w.Kind, w.Detail)
}

// Result summarizes a completed render run. A run that produced its output
// file is a success even when individual placements were dropped or degraded;
// those show up in Warnings.
type Result struct {
	OutputPath        string
	SegmentsProcessed int
	TotalDuration     float64
	SampleRate        int
	Method            string
	Warnings          []Warning
}
