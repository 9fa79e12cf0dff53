package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

func sec(s float64) types.RationalTime {
	return types.FromSeconds(s, types.DefaultScale)
}

func videoItem(start, duration float64) *types.TimelineItem {
	source := types.SourceAssetMetadata{ID: "asset-1", Duration: sec(60), HasAudioTrack: true}
	return types.NewVideoItem(source, sec(start), sec(duration))
}

func videoTrack(items ...*types.TimelineItem) *types.Track {
	track := types.NewTrack(types.TrackTypeVideo)
	for _, item := range items {
		track.AddItem(item)
	}
	return track
}

func TestDetectCollisionsSkipsSelf(t *testing.T) {
	item := videoItem(0, 5)
	track := videoTrack(item)

	assert.Empty(t, DetectCollisions(item, track, ""))
}

func TestDetectCollisionsTouchingEndpoints(t *testing.T) {
	a := videoItem(0, 5)
	b := videoItem(5, 5)
	track := videoTrack(a, b)

	assert.Empty(t, DetectCollisions(a, track, ""))
	assert.Empty(t, DetectCollisions(b, track, ""))
}

func TestDetectCollisionsOverlap(t *testing.T) {
	a := videoItem(0, 5)
	b := videoItem(4, 4)
	c := videoItem(10, 2)
	track := videoTrack(a, b, c)

	hits := DetectCollisions(a, track, "")
	require.Len(t, hits, 1)
	assert.Equal(t, b.ID, hits[0].ID)

	// collision is symmetric
	hits = DetectCollisions(b, track, "")
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)
}

func TestDetectCollisionsExcludeID(t *testing.T) {
	a := videoItem(0, 5)
	b := videoItem(4, 4)
	track := videoTrack(a, b)

	assert.Empty(t, DetectCollisions(a, track, b.ID))
}

func TestFindValidPositionKeepsFreePreferred(t *testing.T) {
	a := videoItem(0, 5)
	track := videoTrack(a)
	candidate := videoItem(0, 3)

	got := FindValidPosition(candidate, track, sec(7))
	assert.True(t, got.Equal(sec(7)))
}

func TestFindValidPositionAdvancesPastCollisions(t *testing.T) {
	a := videoItem(0, 5)
	b := videoItem(5, 3)
	track := videoTrack(a, b)
	candidate := videoItem(0, 2)

	// preferred 1s collides with a and b back to back; first gap is at 8s
	got := FindValidPosition(candidate, track, sec(1))
	assert.True(t, got.Equal(sec(8)), "got %s", got)
}

func TestFindValidPositionUsesGapBetweenItems(t *testing.T) {
	a := videoItem(0, 3)
	b := videoItem(10, 5)
	track := videoTrack(a, b)
	candidate := videoItem(0, 4)

	got := FindValidPosition(candidate, track, sec(1))
	assert.True(t, got.Equal(sec(3)), "got %s", got)

	placed := candidate.Clone()
	placed.StartTime = got
	assert.Empty(t, DetectCollisions(placed, track, ""))
}

func TestFindValidPositionIsIdempotent(t *testing.T) {
	a := videoItem(0, 5)
	b := videoItem(6, 2)
	track := videoTrack(a, b)
	candidate := videoItem(0, 1)

	first := FindValidPosition(candidate, track, sec(4.5))
	second := FindValidPosition(candidate, track, first)
	assert.True(t, first.Equal(second))
}

func TestFindSnapPointsDeterministicOrder(t *testing.T) {
	timeline := types.NewTimeline()
	track := timeline.AddTrack(types.TrackTypeVideo)
	a := videoItem(1, 2)
	track.AddItem(a)

	candidate := videoItem(0, 1)
	points := FindSnapPoints(candidate, timeline, sec(0.5), sec(1))

	require.NotEmpty(t, points)
	assert.Equal(t, SnapSourcePlayhead, points[0].Source)

	// grid marks cover [0, extent]
	gridCount := 0
	for _, p := range points {
		if p.Source == SnapSourceGrid {
			gridCount++
		}
	}
	assert.Equal(t, 4, gridCount) // 0,1,2,3 for a 3s extent

	last := points[len(points)-1]
	assert.Equal(t, SnapSourceItemEnd, last.Source)
	assert.Equal(t, a.ID, last.ItemID)
}

func TestFindSnapPointsExcludesCandidateEdges(t *testing.T) {
	timeline := types.NewTimeline()
	track := timeline.AddTrack(types.TrackTypeVideo)
	candidate := videoItem(2, 2)
	track.AddItem(candidate)

	points := FindSnapPoints(candidate, timeline, sec(0), sec(0))
	for _, p := range points {
		assert.NotEqual(t, candidate.ID, p.ItemID)
	}
}

func TestFindNearestSnapPoint(t *testing.T) {
	points := []SnapPoint{
		{Time: sec(1), Source: SnapSourceGrid},
		{Time: sec(2), Source: SnapSourceGrid},
		{Time: sec(2.1), Source: SnapSourceItemStart, ItemID: "x"},
	}

	got, ok := FindNearestSnapPoint(sec(2.04), points, sec(0.15))
	require.True(t, ok)
	assert.True(t, got.Time.Equal(sec(2)))

	_, ok = FindNearestSnapPoint(sec(5), points, sec(0.15))
	assert.False(t, ok)
}

func TestFindNearestSnapPointTieGoesToFirst(t *testing.T) {
	points := []SnapPoint{
		{Time: sec(1), Source: SnapSourcePlayhead},
		{Time: sec(3), Source: SnapSourceGrid},
	}

	got, ok := FindNearestSnapPoint(sec(2), points, sec(1))
	require.True(t, ok)
	assert.Equal(t, SnapSourcePlayhead, got.Source)
}

func TestMagneticAlign(t *testing.T) {
	item := videoItem(0, 4)
	point := SnapPoint{Time: sec(10), Source: SnapSourceGrid}

	assert.True(t, MagneticAlign(item, point, SnapEdgeStart).Equal(sec(10)))
	assert.True(t, MagneticAlign(item, point, SnapEdgeEnd).Equal(sec(6)))
}

func TestValidatePlacement(t *testing.T) {
	a := videoItem(0, 5)
	track := videoTrack(a)

	ok := videoItem(5, 3)
	result := ValidatePlacement(ok, track)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)

	colliding := videoItem(4, 3)
	result = ValidatePlacement(colliding, track)
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0], a.ID)
}

func TestValidatePlacementKindAndLock(t *testing.T) {
	track := types.NewTrack(types.TrackTypeText)
	track.Locked = true

	item := videoItem(0, 5)
	result := ValidatePlacement(item, track)
	assert.False(t, result.Valid)
	assert.Len(t, result.Issues, 2)
}

func TestValidatePlacementDurationFloorAndNegativeStart(t *testing.T) {
	track := types.NewTrack(types.TrackTypeVideo)
	item := videoItem(0, 0.05)
	item.StartTime = types.NewRationalTime(-10, types.DefaultScale)

	result := ValidatePlacement(item, track)
	assert.False(t, result.Valid)
	assert.Len(t, result.Issues, 2)
}
