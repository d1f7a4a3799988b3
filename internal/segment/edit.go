package segment

import (
	"fmt"
	"sort"
)

// IDChange records one entry of the renumber map returned after a structural
// edit. Callers use it to relocate per-segment artifacts whose filenames
// encode the old id.
type IDChange struct {
	Old uint32
	New uint32
}

// Renumber reassigns every segment's id to its dense position and returns the
// old-id to new-id map for all retained segments.
func Renumber(segments []Segment) ([]Segment, []IDChange) {
	out := CloneAll(segments)
	changes := make([]IDChange, 0, len(out))
	for i := range out {
		changes = append(changes, IDChange{Old: out[i].ID, New: uint32(i)})
		out[i].ID = uint32(i)
	}
	return out, changes
}

// Delete removes the segments with the given ids and renumbers the remainder.
// Removal happens in descending id order so earlier removals cannot shift the
// positions of later ones. Unknown ids fail with ErrNotFound.
func Delete(segments []Segment, ids []uint32) ([]Segment, []IDChange, error) {
	present := make(map[uint32]struct{}, len(segments))
	for _, seg := range segments {
		present[seg.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return nil, nil, fmt.Errorf("delete segment %d: %w", id, ErrNotFound)
		}
	}

	ordered := append([]uint32(nil), ids...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] > ordered[j] })

	out := CloneAll(segments)
	for _, id := range ordered {
		for i := range out {
			if out[i].ID == id {
				out = append(out[:i], out[i+1:]...)
				break
			}
		}
	}

	renumbered, changes := Renumber(out)
	return renumbered, changes, nil
}

// ReplaceWithHalves substitutes the segment with the given id by the two
// halves produced by a split, then renumbers.
func ReplaceWithHalves(segments []Segment, id uint32, first, second Segment) ([]Segment, []IDChange, error) {
	out := CloneAll(segments)
	for i := range out {
		if out[i].ID == id {
			out = append(out[:i], append([]Segment{first, second}, out[i+1:]...)...)
			renumbered, changes := Renumber(out)
			return renumbered, changes, nil
		}
	}
	return nil, nil, fmt.Errorf("replace segment %d: %w", id, ErrNotFound)
}

// MergeRange merges the contiguous run of segments with ids [firstID,lastID]
// into one segment and renumbers.
func MergeRange(segments []Segment, firstID, lastID uint32) ([]Segment, []IDChange, error) {
	if lastID <= firstID {
		return nil, nil, fmt.Errorf("merge range %d..%d: %w", firstID, lastID, ErrEmptyInput)
	}
	start, end := -1, -1
	for i, seg := range segments {
		if seg.ID == firstID {
			start = i
		}
		if seg.ID == lastID {
			end = i
		}
	}
	if start < 0 || end < 0 || end < start {
		return nil, nil, fmt.Errorf("merge range %d..%d: %w", firstID, lastID, ErrNotFound)
	}

	merged, err := Merge(segments[start : end+1])
	if err != nil {
		return nil, nil, err
	}

	out := CloneAll(segments[:start])
	out = append(out, merged)
	out = append(out, CloneAll(segments[end+1:])...)
	renumbered, changes := Renumber(out)
	return renumbered, changes, nil
}
