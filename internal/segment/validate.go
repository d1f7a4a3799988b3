package segment

import (
	"fmt"
	"strings"
)

// Severity classifies a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue describes one validation finding. Issues are reported to the caller
// rather than silently fixed.
type Issue struct {
	SegmentID uint32
	Severity  Severity
	Message   string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] segment %d: %s", i.Severity, i.SegmentID, i.Message)
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks segment list invariants: ids dense, ordering by start,
// adjacent overlap within tolerance, end after start, and non-empty text.
// When allWords is supplied, words not covered by any segment are reported as
// warnings. An empty result means the list is clean.
func Validate(segments []Segment, allWords []Word) []Issue {
	var issues []Issue

	for i, seg := range segments {
		if seg.ID != uint32(i) {
			issues = append(issues, Issue{
				SegmentID: seg.ID,
				Severity:  SeverityError,
				Message:   fmt.Sprintf("id %d at position %d; ids must be dense 0..N-1", seg.ID, i),
			})
		}
		if seg.End <= seg.Start {
			issues = append(issues, Issue{
				SegmentID: seg.ID,
				Severity:  SeverityError,
				Message:   fmt.Sprintf("end %.3f is not after start %.3f", seg.End, seg.Start),
			})
		}
		if strings.TrimSpace(seg.Text) == "" && len(seg.Words) == 0 {
			issues = append(issues, Issue{
				SegmentID: seg.ID,
				Severity:  SeverityError,
				Message:   "empty text with no words to rebuild it from",
			})
		}
		if i == 0 {
			continue
		}
		prev := segments[i-1]
		if seg.Start < prev.Start {
			issues = append(issues, Issue{
				SegmentID: seg.ID,
				Severity:  SeverityError,
				Message:   fmt.Sprintf("start %.3f precedes previous segment start %.3f", seg.Start, prev.Start),
			})
		}
		if overlap := prev.End - seg.Start; overlap > OverlapTolerance {
			issues = append(issues, Issue{
				SegmentID: seg.ID,
				Severity:  SeverityError,
				Message:   fmt.Sprintf("overlaps previous segment by %.3fs (tolerance %.1fs)", overlap, OverlapTolerance),
			})
		}
	}

	for _, word := range allWords {
		if !wordCovered(word, segments) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("word %q [%.3f, %.3f] not covered by any segment", strings.TrimSpace(word.Text), word.Start, word.End),
			})
		}
	}

	return issues
}

func wordCovered(word Word, segments []Segment) bool {
	for _, seg := range segments {
		if word.End > seg.Start && word.Start < seg.End {
			return true
		}
	}
	return false
}
