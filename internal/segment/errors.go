package segment

import "errors"

var (
	// ErrEmptyInput is returned when an edit operation receives fewer
	// segments than it needs.
	ErrEmptyInput = errors.New("not enough segments")
	// ErrDegenerateSplit is returned when a split would leave one half empty.
	ErrDegenerateSplit = errors.New("split would produce an empty half")
	// ErrSnippetNotFound is returned when a snippet split cannot locate an
	// exact occurrence of the snippet in the segment text.
	ErrSnippetNotFound = errors.New("snippet not found in segment text")
	// ErrNotFound is returned when an id does not exist in the segment list.
	ErrNotFound = errors.New("segment not found")
)
