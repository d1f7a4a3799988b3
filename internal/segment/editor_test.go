package segment

import (
	"errors"
	"math"
	"testing"
)

func wordsOf(seg Segment) []string {
	out := make([]string, len(seg.Words))
	for i, w := range seg.Words {
		out[i] = w.Text
	}
	return out
}

func sampleSegments() []Segment {
	return []Segment{
		{ID: 0, Start: 0, End: 2, Text: "Hello world", SpeakerID: "spk0", Words: []Word{
			{Text: "Hello", Start: 0, End: 0.9},
			{Text: " world", Start: 0.9, End: 2},
		}},
		{ID: 1, Start: 2.2, End: 4, Text: "How are you", SpeakerID: "spk0", Words: []Word{
			{Text: "How", Start: 2.2, End: 2.8},
			{Text: " are", Start: 2.8, End: 3.3},
			{Text: " you", Start: 3.3, End: 4},
		}},
		{ID: 2, Start: 4.5, End: 6, Text: "Goodbye", SpeakerID: "spk1", Words: []Word{
			{Text: "Goodbye", Start: 4.5, End: 6},
		}},
	}
}

func TestMergeUnionAndBounds(t *testing.T) {
	segs := sampleSegments()
	merged, err := Merge(segs[:2])
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Start != 0 || merged.End != 4 {
		t.Errorf("merged bounds = [%v, %v], want [0, 4]", merged.Start, merged.End)
	}
	if len(merged.Words) != 5 {
		t.Fatalf("merged word count = %d, want 5", len(merged.Words))
	}
	for i := 1; i < len(merged.Words); i++ {
		if merged.Words[i].Start < merged.Words[i-1].Start {
			t.Errorf("merged words out of order at %d", i)
		}
	}
	if merged.Text != "Hello world How are you" {
		t.Errorf("merged text = %q", merged.Text)
	}
	if merged.SpeakerID != "spk0" {
		t.Errorf("merged speaker = %q, want spk0", merged.SpeakerID)
	}
}

func TestMergeDropsDisagreeingSpeaker(t *testing.T) {
	segs := sampleSegments()
	merged, err := Merge(segs[1:])
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.SpeakerID != "" {
		t.Errorf("merged speaker = %q, want empty", merged.SpeakerID)
	}
}

func TestMergeRequiresTwoSegments(t *testing.T) {
	if _, err := Merge(sampleSegments()[:1]); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Merge(single) error = %v, want ErrEmptyInput", err)
	}
	if _, err := Merge(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Merge(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestSplitByTimeExample(t *testing.T) {
	seg := sampleSegments()[0]
	first, second, err := SplitByTime(seg, 0.9)
	if err != nil {
		t.Fatalf("SplitByTime: %v", err)
	}
	if first.Start != 0 || first.End != 0.9 || first.Text != "Hello" {
		t.Errorf("first = {%v, %v, %q}, want {0, 0.9, \"Hello\"}", first.Start, first.End, first.Text)
	}
	if second.Start != 0.9 || second.End != 2 || second.Text != " world" {
		t.Errorf("second = {%v, %v, %q}, want {0.9, 2, \" world\"}", second.Start, second.End, second.Text)
	}
	if first.ClonedAudioPath != "" || second.ClonedAudioPath != "" {
		t.Error("clip paths must not be copied to split halves")
	}
}

func TestSplitByTimeThenMergeRoundTrip(t *testing.T) {
	seg := sampleSegments()[1]
	first, second, err := SplitByTime(seg, 2.8)
	if err != nil {
		t.Fatalf("SplitByTime: %v", err)
	}
	merged, err := Merge([]Segment{first, second})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Start != seg.Start || merged.End != seg.End {
		t.Errorf("round trip bounds = [%v, %v], want [%v, %v]", merged.Start, merged.End, seg.Start, seg.End)
	}
	if len(merged.Words) != len(seg.Words) {
		t.Fatalf("round trip word count = %d, want %d", len(merged.Words), len(seg.Words))
	}
	for i := range seg.Words {
		if merged.Words[i] != seg.Words[i] {
			t.Errorf("word %d = %+v, want %+v", i, merged.Words[i], seg.Words[i])
		}
	}
	if merged.Text != "How are you" {
		t.Errorf("round trip text = %q (may differ from original only by whitespace)", merged.Text)
	}
}

func TestSplitByTimeDegenerate(t *testing.T) {
	seg := sampleSegments()[0]
	if _, _, err := SplitByTime(seg, 0.1); !errors.Is(err, ErrDegenerateSplit) {
		t.Errorf("split inside first word: error = %v, want ErrDegenerateSplit", err)
	}
	if _, _, err := SplitByTime(seg, 5); !errors.Is(err, ErrDegenerateSplit) {
		t.Errorf("split past last word: error = %v, want ErrDegenerateSplit", err)
	}
	if _, _, err := SplitByTime(Segment{Start: 0, End: 1, Text: "x"}, 0.5); !errors.Is(err, ErrDegenerateSplit) {
		t.Errorf("split without words: error = %v, want ErrDegenerateSplit", err)
	}
}

func TestSplitBySnippet(t *testing.T) {
	seg := sampleSegments()[1]
	first, second, err := SplitBySnippet(seg, "How are")
	if err != nil {
		t.Fatalf("SplitBySnippet: %v", err)
	}
	if first.Text != "How are" {
		t.Errorf("first text = %q, want the snippet verbatim", first.Text)
	}
	if second.Text != "you" {
		t.Errorf("second text = %q, want %q", second.Text, "you")
	}
	if got := wordsOf(first); len(got) != 2 {
		t.Errorf("first words = %v, want 2 words", got)
	}
	if first.End != 3.3 || second.Start != 3.3 {
		t.Errorf("boundary times = %v/%v, want 3.3/3.3", first.End, second.Start)
	}
}

func TestSplitBySnippetNotFound(t *testing.T) {
	seg := sampleSegments()[1]
	if _, _, err := SplitBySnippet(seg, "missing"); !errors.Is(err, ErrSnippetNotFound) {
		t.Errorf("error = %v, want ErrSnippetNotFound", err)
	}
	if _, _, err := SplitBySnippet(seg, "how are"); !errors.Is(err, ErrSnippetNotFound) {
		t.Errorf("match must be exact, error = %v, want ErrSnippetNotFound", err)
	}
}

func TestSplitBySnippetWholeTextDegenerate(t *testing.T) {
	seg := sampleSegments()[0]
	if _, _, err := SplitBySnippet(seg, "Hello world"); !errors.Is(err, ErrDegenerateSplit) {
		t.Errorf("error = %v, want ErrDegenerateSplit", err)
	}
}

func TestSplitByOffset(t *testing.T) {
	seg := sampleSegments()[1]
	// Cumulative word lengths: 3 ("How"), 7 (" are"), 11 (" you").
	first, second, err := SplitByOffset(seg, 4)
	if err != nil {
		t.Fatalf("SplitByOffset: %v", err)
	}
	if first.Text != "How" || second.Text != " are you" {
		t.Errorf("halves = %q / %q, want %q / %q", first.Text, second.Text, "How", " are you")
	}

	// Equidistant between boundaries 3 and 7: ties go to the earlier word.
	first, second, err = SplitByOffset(seg, 5)
	if err != nil {
		t.Fatalf("SplitByOffset: %v", err)
	}
	if first.Text != "How" {
		t.Errorf("tie broke toward %q, want earlier word", first.Text)
	}
	_ = second
}

func TestDeleteRenumbersDensely(t *testing.T) {
	segs := sampleSegments()
	remaining, changes, err := Delete(segs, []uint32{1})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d segments, want 2", len(remaining))
	}
	for i, seg := range remaining {
		if seg.ID != uint32(i) {
			t.Errorf("segment %d has id %d, want dense ids", i, seg.ID)
		}
	}
	want := []IDChange{{Old: 0, New: 0}, {Old: 2, New: 1}}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}
}

func TestDeleteUnknownID(t *testing.T) {
	if _, _, err := Delete(sampleSegments(), []uint32{9}); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMultipleDescending(t *testing.T) {
	remaining, _, err := Delete(sampleSegments(), []uint32{0, 2})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Text != "How are you" || remaining[0].ID != 0 {
		t.Errorf("remaining = %+v, want only the middle segment with id 0", remaining)
	}
}

func TestReplaceWithHalves(t *testing.T) {
	segs := sampleSegments()
	first, second, err := SplitByTime(segs[1], 2.8)
	if err != nil {
		t.Fatalf("SplitByTime: %v", err)
	}
	out, changes, err := ReplaceWithHalves(segs, 1, first, second)
	if err != nil {
		t.Fatalf("ReplaceWithHalves: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("result = %d segments, want 4", len(out))
	}
	for i, seg := range out {
		if seg.ID != uint32(i) {
			t.Errorf("segment %d has id %d", i, seg.ID)
		}
	}
	// The trailing segment shifted from id 2 to id 3.
	last := changes[len(changes)-1]
	if last.Old != 2 || last.New != 3 {
		t.Errorf("last change = %v, want {2 3}", last)
	}
}

func TestMergeRange(t *testing.T) {
	out, changes, err := MergeRange(sampleSegments(), 0, 1)
	if err != nil {
		t.Fatalf("MergeRange: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("result = %d segments, want 2", len(out))
	}
	if out[0].Text != "Hello world How are you" {
		t.Errorf("merged text = %q", out[0].Text)
	}
	if math.Abs(out[0].End-4) > 1e-9 {
		t.Errorf("merged end = %v, want 4", out[0].End)
	}
	if changes[len(changes)-1] != (IDChange{Old: 2, New: 1}) {
		t.Errorf("trailing change = %v, want {2 1}", changes[len(changes)-1])
	}
}
