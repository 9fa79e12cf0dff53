package timelinemodule

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipstack/clipstack/internal/base"
	"github.com/clipstack/clipstack/internal/config"
	"github.com/clipstack/clipstack/internal/events"
	"github.com/clipstack/clipstack/internal/modules/timelinemodule/core/trim"
	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

func newTestService() *Service {
	return NewService(config.DefaultConfig().Timeline, nil, hclog.NewNullLogger())
}

func sec(s float64) types.RationalTime {
	return types.FromSeconds(s, types.DefaultScale)
}

func testVideoItem(start, duration float64) *types.TimelineItem {
	source := types.SourceAssetMetadata{ID: "asset-1", Duration: sec(60), HasAudioTrack: true}
	return types.NewVideoItem(source, sec(start), sec(duration))
}

func TestSessionCreatedOnDemand(t *testing.T) {
	s := newTestService()
	session := s.Session("p1")
	require.NotNil(t, session)
	assert.Empty(t, session.Timeline.Tracks)
	assert.Same(t, session, s.Session("p1"))
}

func TestAddTrackValidatesType(t *testing.T) {
	s := newTestService()
	_, err := s.AddTrack("p1", "bogus")
	assert.Error(t, err)

	track, err := s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)
	assert.Equal(t, types.TrackTypeVideo, track.Type)
}

func TestAddItemResolvesCollision(t *testing.T) {
	s := newTestService()
	track, err := s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)

	first, err := s.AddItem("p1", track.ID, testVideoItem(0, 5))
	require.NoError(t, err)
	assert.True(t, first.StartTime.IsZero())

	// second item lands at the earliest valid position past the first
	second, err := s.AddItem("p1", track.ID, testVideoItem(2, 3))
	require.NoError(t, err)
	assert.InDelta(t, 5, second.StartTime.Seconds(), 1e-3)
}

func TestAddItemRejectsWrongKind(t *testing.T) {
	s := newTestService()
	track, err := s.AddTrack("p1", types.TrackTypeText)
	require.NoError(t, err)

	_, err = s.AddItem("p1", track.ID, testVideoItem(0, 5))
	require.Error(t, err)

	var modErr *base.ModuleError
	require.ErrorAs(t, err, &modErr)
	assert.Equal(t, "INVALID_PLACEMENT", modErr.Code)
}

func TestMoveItemSnapsToNeighborEdge(t *testing.T) {
	s := newTestService()
	track, err := s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)

	_, err = s.AddItem("p1", track.ID, testVideoItem(0, 5))
	require.NoError(t, err)
	moved, err := s.AddItem("p1", track.ID, testVideoItem(10, 2))
	require.NoError(t, err)

	// 5.1s is within the 0.15s tolerance of the neighbor's end edge
	settled, err := s.MoveItem("p1", moved.ID, sec(5.1), true)
	require.NoError(t, err)
	assert.InDelta(t, 5, settled.Seconds(), 1e-3)
}

func TestMoveItemWithoutSnapKeepsTarget(t *testing.T) {
	s := newTestService()
	track, err := s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)

	item, err := s.AddItem("p1", track.ID, testVideoItem(0, 2))
	require.NoError(t, err)

	settled, err := s.MoveItem("p1", item.ID, sec(7.37), false)
	require.NoError(t, err)
	assert.InDelta(t, 7.37, settled.Seconds(), 1e-2)
}

func TestMoveItemOntoLockedTrackFails(t *testing.T) {
	s := newTestService()
	track, err := s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)
	item, err := s.AddItem("p1", track.ID, testVideoItem(0, 2))
	require.NoError(t, err)

	track.Locked = true
	_, err = s.MoveItem("p1", item.ID, sec(5), false)
	assert.Error(t, err)
}

func TestRemoveItem(t *testing.T) {
	s := newTestService()
	track, err := s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)
	item, err := s.AddItem("p1", track.ID, testVideoItem(0, 2))
	require.NoError(t, err)

	require.NoError(t, s.RemoveItem("p1", item.ID))
	assert.Error(t, s.RemoveItem("p1", item.ID))
	assert.Empty(t, track.Items)
}

func TestTrimLifecycle(t *testing.T) {
	s := newTestService()
	track, err := s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)

	source := types.SourceAssetMetadata{ID: "asset-1", Duration: sec(10), HasAudioTrack: true}
	item, err := s.AddItem("p1", track.ID, types.NewVideoItem(source, sec(0), sec(10)))
	require.NoError(t, err)

	pps := config.DefaultConfig().Timeline.PixelsPerSecond
	require.NoError(t, s.BeginTrim("p1", item.ID, trim.HandleLeft, pps))

	gesture, err := s.ChangeTrim("p1", 2*pps)
	require.NoError(t, err)
	assert.InDelta(t, 2, gesture.CandidateStart.Seconds(), 1e-3)

	commit, err := s.EndTrim("p1", 2*pps)
	require.NoError(t, err)
	assert.InDelta(t, 2, item.StartTime.Seconds(), 1e-3)
	assert.InDelta(t, 8, item.Duration.Seconds(), 1e-3)

	// ratio pair mirrored into the video payload
	require.True(t, commit.HasRatios)
	assert.InDelta(t, 0.2, item.Video.TrimRatioStart, 1e-4)
	assert.InDelta(t, 1.0, item.Video.TrimRatioEnd, 1e-4)

	// gesture is spent
	_, err = s.EndTrim("p1", 0)
	assert.Error(t, err)
}

func TestTrimCancelLeavesItemUntouched(t *testing.T) {
	s := newTestService()
	track, err := s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)
	item, err := s.AddItem("p1", track.ID, testVideoItem(1, 5))
	require.NoError(t, err)

	require.NoError(t, s.BeginTrim("p1", item.ID, trim.HandleRight, 50))
	_, err = s.ChangeTrim("p1", -100)
	require.NoError(t, err)
	s.CancelTrim("p1")

	assert.InDelta(t, 1, item.StartTime.Seconds(), 1e-3)
	assert.InDelta(t, 5, item.Duration.Seconds(), 1e-3)
	_, err = s.ChangeTrim("p1", 10)
	assert.Error(t, err)
}

func TestSetPlayheadClampsNegative(t *testing.T) {
	s := newTestService()
	settled := s.SetPlayhead("p1", types.NewRationalTime(-600, types.DefaultScale))
	assert.True(t, settled.IsZero())
}

func TestValidateItemReportsIssuesWithoutCommitting(t *testing.T) {
	s := newTestService()
	track, err := s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)
	_, err = s.AddItem("p1", track.ID, testVideoItem(0, 5))
	require.NoError(t, err)

	result, err := s.ValidateItem("p1", track.ID, testVideoItem(2, 3))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Len(t, s.Timeline("p1").Tracks[0].Items, 1)

	clear, err := s.ValidateItem("p1", track.ID, testVideoItem(5, 3))
	require.NoError(t, err)
	assert.True(t, clear.Valid)

	_, err = s.ValidateItem("p1", "missing-track", testVideoItem(0, 1))
	assert.Error(t, err)
}

func TestPublishFallsBackToGlobalBus(t *testing.T) {
	busConfig := events.DefaultEventBusConfig()
	busConfig.EnablePersistence = false
	bus := events.NewEventBus(busConfig, hclog.NewNullLogger(), nil)
	require.NoError(t, bus.Start(context.Background()))
	events.SetGlobalEventBus(bus)
	t.Cleanup(func() {
		events.SetGlobalEventBus(nil)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		bus.Stop(ctx)
	})

	received := make(chan events.Event, 1)
	filter := events.EventFilter{Types: []events.EventType{events.EventTimelineTrackAdded}}
	_, err := bus.Subscribe(context.Background(), filter, func(event events.Event) error {
		received <- event
		return nil
	})
	require.NoError(t, err)

	// service built without an injected bus publishes through the global one
	s := newTestService()
	_, err = s.AddTrack("p1", types.TrackTypeVideo)
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "p1", event.Data["project_id"])
	case <-time.After(time.Second):
		t.Fatal("no event reached the global bus")
	}
}
