package trim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

const pps = 50.0 // pixels per second in the test viewport

func sec(s float64) types.RationalTime {
	return types.FromSeconds(s, types.DefaultScale)
}

func videoItem(start, duration, assetSeconds float64) *types.TimelineItem {
	source := types.SourceAssetMetadata{ID: "asset-1", Duration: sec(assetSeconds), HasAudioTrack: true}
	return types.NewVideoItem(source, sec(start), sec(duration))
}

func TestBeginValidation(t *testing.T) {
	_, err := Begin(nil, HandleLeft, pps)
	assert.Error(t, err)

	_, err = Begin(videoItem(0, 10, 10), HandleLeft, 0)
	assert.Error(t, err)

	g, err := Begin(videoItem(0, 10, 10), HandleRight, pps)
	require.NoError(t, err)
	assert.Equal(t, PhaseTrimming, g.Phase)
}

func TestLeftHandleDrag(t *testing.T) {
	item := videoItem(0, 10, 10)
	g, err := Begin(item, HandleLeft, pps)
	require.NoError(t, err)

	// +2s worth of pixels: start moves to 2, duration shrinks to 8
	g = g.Change(2 * pps)
	assert.InDelta(t, 2, g.CandidateStart.Seconds(), 1e-3)
	assert.InDelta(t, 8, g.CandidateDuration.Seconds(), 1e-3)
	assert.False(t, g.Clamped)

	// the interval end never moves under the left handle
	end := g.CandidateStart.Add(g.CandidateDuration)
	assert.InDelta(t, 10, end.Seconds(), 1e-3)
}

func TestRightHandleDrag(t *testing.T) {
	item := videoItem(2, 8, 10)
	g, err := Begin(item, HandleRight, pps)
	require.NoError(t, err)

	g = g.Change(-3 * pps)
	assert.InDelta(t, 2, g.CandidateStart.Seconds(), 1e-3)
	assert.InDelta(t, 5, g.CandidateDuration.Seconds(), 1e-3)
	assert.False(t, g.Clamped)
}

func TestLeftHandleClampsAtZero(t *testing.T) {
	item := videoItem(1, 5, 10)
	g, err := Begin(item, HandleLeft, pps)
	require.NoError(t, err)

	g = g.Change(-4 * pps)
	assert.InDelta(t, 0, g.CandidateStart.Seconds(), 1e-3)
	assert.InDelta(t, 6, g.CandidateDuration.Seconds(), 1e-3)
	assert.True(t, g.Clamped)
}

func TestRightHandleClampsAtAssetBound(t *testing.T) {
	item := videoItem(0, 8, 10)
	g, err := Begin(item, HandleRight, pps)
	require.NoError(t, err)

	g = g.Change(5 * pps)
	assert.InDelta(t, 10, g.CandidateDuration.Seconds(), 1e-3)
	assert.True(t, g.Clamped)
}

func TestVisualFloorDuringDrag(t *testing.T) {
	item := videoItem(0, 5, 10)
	g, err := Begin(item, HandleRight, pps)
	require.NoError(t, err)

	g = g.Change(-10 * pps)
	assert.InDelta(t, VisualFloorSeconds, g.CandidateDuration.Seconds(), 1e-3)
	assert.True(t, g.Clamped)
}

func TestCommitFloorOnEnd(t *testing.T) {
	item := videoItem(0, 5, 10)
	g, err := Begin(item, HandleRight, pps)
	require.NoError(t, err)

	commit, idle := g.End(-10*pps, nil)
	assert.Equal(t, PhaseIdle, idle.Phase)
	assert.InDelta(t, CommitFloorSeconds, commit.Duration.Seconds(), 1e-3)
	assert.True(t, commit.Clamped)
}

func TestLeftHandleCommitFloorKeepsEndFixed(t *testing.T) {
	item := videoItem(2, 5, 10)
	g, err := Begin(item, HandleLeft, pps)
	require.NoError(t, err)

	commit, _ := g.End(20*pps, nil)
	assert.InDelta(t, CommitFloorSeconds, commit.Duration.Seconds(), 1e-3)
	end := commit.Start.Add(commit.Duration)
	assert.InDelta(t, 7, end.Seconds(), 1e-3)
	assert.True(t, commit.Clamped)
}

func TestEndMirrorsTrimRatios(t *testing.T) {
	item := videoItem(0, 10, 10)
	g, err := Begin(item, HandleLeft, pps)
	require.NoError(t, err)

	commit, _ := g.End(2*pps, nil)
	require.True(t, commit.HasRatios)
	assert.InDelta(t, 0.2, commit.TrimRatioStart, 1e-4)
	assert.InDelta(t, 1.0, commit.TrimRatioEnd, 1e-4)
}

func TestEndRepositionsOnCollision(t *testing.T) {
	track := types.NewTrack(types.TrackTypeVideo)
	other := videoItem(4, 4, 20)
	track.AddItem(other)
	item := videoItem(0, 3, 20)
	track.AddItem(item)

	g, err := Begin(item, HandleRight, pps)
	require.NoError(t, err)

	// growing to 5s overlaps the neighbor at [4,8); earliest valid slot is 8s
	commit, _ := g.End(2*pps, track)
	assert.True(t, commit.Repositioned)
	assert.InDelta(t, 8, commit.Start.Seconds(), 1e-3)
}

func TestChangeDeltasAreAgainstInitialSnapshot(t *testing.T) {
	item := videoItem(0, 10, 10)
	g, err := Begin(item, HandleLeft, pps)
	require.NoError(t, err)

	// repeated Change calls with the same total delta converge, they do not
	// accumulate
	for i := 0; i < 100; i++ {
		g = g.Change(1 * pps)
	}
	assert.InDelta(t, 1, g.CandidateStart.Seconds(), 1e-3)
	assert.InDelta(t, 9, g.CandidateDuration.Seconds(), 1e-3)
}

func TestCancelReturnsIdle(t *testing.T) {
	item := videoItem(0, 10, 10)
	g, err := Begin(item, HandleLeft, pps)
	require.NoError(t, err)

	g = g.Cancel()
	assert.Equal(t, PhaseIdle, g.Phase)

	// transitions on an idle gesture are no-ops
	g = g.Change(5 * pps)
	assert.Equal(t, PhaseIdle, g.Phase)
	commit, _ := g.End(5*pps, nil)
	assert.Equal(t, Commit{}, commit)
}
