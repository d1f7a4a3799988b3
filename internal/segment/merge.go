package segment

import (
	"sort"

	"dubforge/internal/textutil"
)

// Merge combines a contiguous run of segments into one.
//
// Words are concatenated sorted by start. Texts are joined script-aware: no
// separator between two CJK fragments, a single space otherwise. The merged
// window spans [min(start), max(end)]. SpeakerID survives only when identical
// across every input. Reference and cloned clip paths are cleared because the
// merged segment no longer matches any per-segment clip; the caller must
// regenerate them. Fails with ErrEmptyInput for fewer than two segments.
func Merge(segments []Segment) (Segment, error) {
	if len(segments) < 2 {
		return Segment{}, ErrEmptyInput
	}

	ordered := CloneAll(segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	merged := Segment{
		ID:    ordered[0].ID,
		Start: ordered[0].Start,
		End:   ordered[0].End,
	}

	texts := make([]string, 0, len(ordered))
	translated := make([]string, 0, len(ordered))
	allTranslated := true
	speaker := ordered[0].SpeakerID
	sameSpeaker := true

	for _, seg := range ordered {
		if seg.Start < merged.Start {
			merged.Start = seg.Start
		}
		if seg.End > merged.End {
			merged.End = seg.End
		}
		merged.Words = append(merged.Words, seg.Words...)
		texts = append(texts, seg.Text)
		if seg.TranslatedText == "" {
			allTranslated = false
		} else {
			translated = append(translated, seg.TranslatedText)
		}
		if seg.SpeakerID != speaker {
			sameSpeaker = false
		}
	}

	sort.SliceStable(merged.Words, func(i, j int) bool {
		return merged.Words[i].Start < merged.Words[j].Start
	})

	merged.Text = textutil.JoinFragments(texts)
	if allTranslated {
		merged.TranslatedText = textutil.JoinFragments(translated)
	}
	if sameSpeaker {
		merged.SpeakerID = speaker
	}

	return merged, nil
}
