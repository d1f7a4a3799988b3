package segment

// Tolerances shared by normalize and validate.
const (
	// OverlapTolerance is the maximum permitted overlap, in seconds, between
	// two adjacent segments before validation reports an issue.
	OverlapTolerance = 0.1
	// BoundaryTolerance is how far, in seconds, a segment boundary may sit
	// from its word-derived value before Normalize stops reconciling it.
	// Hand-edited timestamps beyond this distance are preserved as-is.
	BoundaryTolerance = 0.1
)

// Word is a single transcribed word with its time span.
type Word struct {
	Text       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"probability,omitempty"`
}

// Segment is one utterance on the transcript timeline.
//
// IDs are dense: a valid segment list always carries ids 0..N-1 in order.
// ReferenceAudioPath and ClonedAudioPath are caller-managed artifacts; they
// are cleared by structural edits because the clip no longer matches the
// segment's text and timing.
type Segment struct {
	ID                 uint32  `json:"id"`
	Start              float64 `json:"start"`
	End                float64 `json:"end"`
	Text               string  `json:"text"`
	TranslatedText     string  `json:"translated_text,omitempty"`
	SpeakerID          string  `json:"speaker_id,omitempty"`
	Words              []Word  `json:"words,omitempty"`
	ReferenceAudioPath string  `json:"reference_audio_path,omitempty"`
	ClonedAudioPath    string  `json:"cloned_audio_path,omitempty"`
}

// Duration returns the segment's window length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Clone returns a deep copy of the segment.
func (s Segment) Clone() Segment {
	out := s
	if len(s.Words) > 0 {
		out.Words = make([]Word, len(s.Words))
		copy(out.Words, s.Words)
	}
	return out
}

// CloneAll returns a deep copy of a segment list.
func CloneAll(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg.Clone()
	}
	return out
}
