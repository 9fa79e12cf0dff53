package interaction

import (
	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

// FindValidPosition returns preferredStart when it produces no collision.
// Otherwise it scans the track's items in start order, advancing a cursor
// past each colliding item's end, and returns the first cursor position
// where the candidate's duration fits. The earliest valid time wins.
//
// When no gap fits, the last computed cursor is returned even though it may
// still collide with the final item; callers must re-validate (see
// ValidatePlacement). Hosts treat a still-colliding result as "couldn't
// move" and keep the item at its last committed position.
func FindValidPosition(candidate *types.TimelineItem, track *types.Track, preferredStart types.RationalTime) types.RationalTime {
	if !collidesAt(preferredStart, candidate.Duration, track, candidate.ID, "") {
		return preferredStart
	}

	cursor := preferredStart
	for _, item := range track.SortedItems() {
		if item.ID == candidate.ID {
			continue
		}
		if cursor.Less(item.EndTime()) && item.StartTime.Less(cursor.Add(candidate.Duration)) {
			cursor = item.EndTime()
		}
	}
	return cursor
}
