package interaction

import (
	"math"

	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

// SnapSource identifies where a snap point came from
type SnapSource string

const (
	SnapSourcePlayhead  SnapSource = "playhead"
	SnapSourceGrid      SnapSource = "grid"
	SnapSourceItemStart SnapSource = "item_start"
	SnapSourceItemEnd   SnapSource = "item_end"
)

// SnapPoint is a time a dragged edge can magnetically align to
type SnapPoint struct {
	Time   types.RationalTime `json:"time"`
	Source SnapSource         `json:"source"`
	ItemID string             `json:"item_id,omitempty"`
}

// SnapEdge identifies which edge of the dragged item aligns to the point
type SnapEdge int

const (
	SnapEdgeStart SnapEdge = iota
	SnapEdgeEnd
)

// FindSnapPoints builds the candidate snap set for a dragged item: the
// playhead, grid marks up to the timeline extent, and the start/end of every
// other item across all tracks. Ordering is deterministic: playhead, grid,
// then item edges in track order.
func FindSnapPoints(candidate *types.TimelineItem, timeline *types.Timeline, playhead types.RationalTime, gridInterval types.RationalTime) []SnapPoint {
	points := []SnapPoint{{Time: playhead, Source: SnapSourcePlayhead}}

	extent := timeline.Extent()
	if gridInterval.Value > 0 {
		for mark := types.Zero(gridInterval.Scale); mark.LessEq(extent); mark = mark.Add(gridInterval) {
			points = append(points, SnapPoint{Time: mark, Source: SnapSourceGrid})
		}
	}

	for _, track := range timeline.Tracks {
		for _, item := range track.Items {
			if item.ID == candidate.ID {
				continue
			}
			points = append(points,
				SnapPoint{Time: item.StartTime, Source: SnapSourceItemStart, ItemID: item.ID},
				SnapPoint{Time: item.EndTime(), Source: SnapSourceItemEnd, ItemID: item.ID},
			)
		}
	}

	return points
}

// FindNearestSnapPoint returns the point minimizing |point.time - t| among
// points within tolerance. Ties go to the first minimum found, which is
// deterministic given the stable ordering of FindSnapPoints.
func FindNearestSnapPoint(t types.RationalTime, points []SnapPoint, tolerance types.RationalTime) (SnapPoint, bool) {
	target := t.Seconds()
	limit := tolerance.Seconds()

	best := SnapPoint{}
	bestDistance := math.Inf(1)
	found := false

	for _, point := range points {
		distance := math.Abs(point.Time.Seconds() - target)
		if distance <= limit && distance < bestDistance {
			best = point
			bestDistance = distance
			found = true
		}
	}

	return best, found
}

// MagneticAlign returns the item start time that lands the given edge on the
// snap point while preserving the item's duration.
func MagneticAlign(item *types.TimelineItem, point SnapPoint, edge SnapEdge) types.RationalTime {
	if edge == SnapEdgeEnd {
		return point.Time.Sub(item.Duration)
	}
	return point.Time
}
