// Package interaction implements the timeline interaction engine: collision
// detection, valid-position search, snap-point computation, and placement
// validation. Everything here is a pure function over timeline snapshots.
package interaction

import (
	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

// DetectCollisions returns every item in the track whose half-open interval
// intersects the candidate's. The candidate itself and the optionally
// excluded id are skipped. Items touching exactly at an endpoint do not
// collide.
func DetectCollisions(candidate *types.TimelineItem, track *types.Track, excludeID string) []*types.TimelineItem {
	var collisions []*types.TimelineItem
	for _, item := range track.Items {
		if item.ID == candidate.ID || (excludeID != "" && item.ID == excludeID) {
			continue
		}
		if candidate.Overlaps(item) {
			collisions = append(collisions, item)
		}
	}
	return collisions
}

// collidesAt reports whether placing an interval [start, start+duration)
// would intersect any track item other than the candidate and excludeID.
func collidesAt(start, duration types.RationalTime, track *types.Track, candidateID, excludeID string) bool {
	end := start.Add(duration)
	for _, item := range track.Items {
		if item.ID == candidateID || (excludeID != "" && item.ID == excludeID) {
			continue
		}
		if start.Less(item.EndTime()) && item.StartTime.Less(end) {
			return true
		}
	}
	return false
}
