package segment

import (
	"fmt"
	"strings"
	"unicode"
)

// SplitByTime splits a segment at time t. The boundary word is the first word
// whose span contains t, or the first word starting at or after t when none
// does; words before the boundary form the first half, the boundary word and
// everything after it the second. Half texts are the verbatim concatenation
// of their word texts. Fails with ErrDegenerateSplit when either half would
// be empty.
func SplitByTime(seg Segment, t float64) (Segment, Segment, error) {
	if len(seg.Words) == 0 {
		return Segment{}, Segment{}, fmt.Errorf("split at %.3fs: segment has no words: %w", t, ErrDegenerateSplit)
	}

	boundary := -1
	for i, word := range seg.Words {
		if word.Start <= t && t < word.End {
			boundary = i
			break
		}
	}
	if boundary < 0 {
		for i, word := range seg.Words {
			if word.Start >= t {
				boundary = i
				break
			}
		}
	}
	if boundary <= 0 || boundary >= len(seg.Words) {
		return Segment{}, Segment{}, fmt.Errorf("split at %.3fs: %w", t, ErrDegenerateSplit)
	}

	first, second := splitAtWordIndex(seg, boundary)
	first.Text = concatWordText(first.Words)
	second.Text = concatWordText(second.Words)
	return first, second, nil
}

// SplitBySnippet splits a segment after the first exact occurrence of snippet
// in its text. The occurrence's end offset is mapped to the nearest word
// boundary at or after it. The first half keeps the snippet verbatim as its
// text, preserving caller intent exactly; the second half's text is the
// remainder of the original text after the snippet, left-trimmed. Fails with
// ErrSnippetNotFound when no exact occurrence exists and ErrDegenerateSplit
// when either half would be empty.
func SplitBySnippet(seg Segment, snippet string) (Segment, Segment, error) {
	if snippet == "" {
		return Segment{}, Segment{}, fmt.Errorf("empty snippet: %w", ErrSnippetNotFound)
	}
	idx := strings.Index(seg.Text, snippet)
	if idx < 0 {
		return Segment{}, Segment{}, fmt.Errorf("snippet %q: %w", snippet, ErrSnippetNotFound)
	}
	endOffset := idx + len(snippet)

	remainder := strings.TrimLeftFunc(seg.Text[endOffset:], unicode.IsSpace)
	if remainder == "" {
		return Segment{}, Segment{}, fmt.Errorf("snippet %q consumes the whole segment: %w", snippet, ErrDegenerateSplit)
	}

	var first, second Segment
	if len(seg.Words) > 0 {
		boundary := wordBoundaryAtOrAfter(seg.Words, endOffset)
		if boundary <= 0 || boundary >= len(seg.Words) {
			return Segment{}, Segment{}, fmt.Errorf("snippet %q: %w", snippet, ErrDegenerateSplit)
		}
		first, second = splitAtWordIndex(seg, boundary)
	} else {
		// No word timestamps: fall back to a proportional time boundary.
		first, second = splitProportional(seg, endOffset)
	}

	first.Text = snippet
	second.Text = remainder
	return first, second, nil
}

// SplitByOffset splits a segment at the word boundary nearest the given byte
// offset into its text, ties broken toward the earlier word. The offset is
// interpreted against the cumulative word text lengths, independent of word
// time containment. Fails with ErrDegenerateSplit when either half would be
// empty.
func SplitByOffset(seg Segment, offset int) (Segment, Segment, error) {
	if len(seg.Words) < 2 {
		return Segment{}, Segment{}, fmt.Errorf("split at offset %d: %w", offset, ErrDegenerateSplit)
	}

	best := -1
	bestDist := -1
	cumulative := 0
	for i := 0; i < len(seg.Words)-1; i++ {
		cumulative += len(seg.Words[i].Text)
		dist := cumulative - offset
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best = i + 1
			bestDist = dist
		}
	}
	if best <= 0 || best >= len(seg.Words) {
		return Segment{}, Segment{}, fmt.Errorf("split at offset %d: %w", offset, ErrDegenerateSplit)
	}

	first, second := splitAtWordIndex(seg, best)
	first.Text = concatWordText(first.Words)
	second.Text = concatWordText(second.Words)
	return first, second, nil
}

// splitAtWordIndex divides seg's words at index k. Both halves inherit the
// segment id and speaker; translated text and clip paths are dropped because
// a split invalidates the clip's alignment and the translation no longer
// corresponds to either half.
func splitAtWordIndex(seg Segment, k int) (Segment, Segment) {
	firstWords := make([]Word, k)
	copy(firstWords, seg.Words[:k])
	secondWords := make([]Word, len(seg.Words)-k)
	copy(secondWords, seg.Words[k:])

	first := Segment{
		ID:        seg.ID,
		Start:     seg.Start,
		End:       firstWords[len(firstWords)-1].End,
		SpeakerID: seg.SpeakerID,
		Words:     firstWords,
	}
	second := Segment{
		ID:        seg.ID,
		Start:     secondWords[0].Start,
		End:       seg.End,
		SpeakerID: seg.SpeakerID,
		Words:     secondWords,
	}
	return first, second
}

// splitProportional places the boundary by the offset's fraction of the text
// length. Used only when the segment carries no word timestamps.
func splitProportional(seg Segment, offset int) (Segment, Segment) {
	fraction := float64(offset) / float64(len(seg.Text))
	if fraction <= 0 {
		fraction = 0.5
	}
	if fraction >= 1 {
		fraction = 0.5
	}
	boundary := seg.Start + seg.Duration()*fraction

	first := Segment{ID: seg.ID, Start: seg.Start, End: boundary, SpeakerID: seg.SpeakerID}
	second := Segment{ID: seg.ID, Start: boundary, End: seg.End, SpeakerID: seg.SpeakerID}
	return first, second
}

// wordBoundaryAtOrAfter returns the word count whose cumulative text length
// first reaches or exceeds the offset.
func wordBoundaryAtOrAfter(words []Word, offset int) int {
	cumulative := 0
	for i, word := range words {
		cumulative += len(word.Text)
		if cumulative >= offset {
			return i + 1
		}
	}
	return len(words)
}

func concatWordText(words []Word) string {
	var b strings.Builder
	for _, word := range words {
		b.WriteString(word.Text)
	}
	return b.String()
}
