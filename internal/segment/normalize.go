package segment

import (
	"math"
	"sort"
	"strings"
)

// Normalize reconciles a segment's words, boundaries, and text.
//
// If the segment carries no words, entries from allWords whose spans overlap
// the segment window are attached (sorted by start). Boundaries are then
// recomputed from the words, but an existing boundary is only overwritten when
// it sits within BoundaryTolerance of the word-derived value; hand-edited
// timestamps further away are preserved. An empty text is rebuilt by
// concatenating the word texts in order.
func Normalize(seg Segment, allWords []Word) Segment {
	out := seg.Clone()

	if len(out.Words) == 0 && len(allWords) > 0 {
		for _, word := range allWords {
			if word.End > out.Start && word.Start < out.End {
				out.Words = append(out.Words, word)
			}
		}
		sort.SliceStable(out.Words, func(i, j int) bool {
			return out.Words[i].Start < out.Words[j].Start
		})
	}

	if len(out.Words) > 0 {
		derivedStart := out.Words[0].Start
		derivedEnd := out.Words[0].End
		for _, word := range out.Words[1:] {
			if word.Start < derivedStart {
				derivedStart = word.Start
			}
			if word.End > derivedEnd {
				derivedEnd = word.End
			}
		}
		if math.Abs(out.Start-derivedStart) <= BoundaryTolerance {
			out.Start = derivedStart
		}
		if math.Abs(out.End-derivedEnd) <= BoundaryTolerance {
			out.End = derivedEnd
		}
	}

	if strings.TrimSpace(out.Text) == "" && len(out.Words) > 0 {
		var b strings.Builder
		for _, word := range out.Words {
			b.WriteString(word.Text)
		}
		out.Text = strings.TrimSpace(b.String())
	}

	return out
}
