package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edit "github.com/clipstack/clipstack/internal/modules/editormodule/types"
	timeline "github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

func sec(s float64) timeline.RationalTime {
	return timeline.FromSeconds(s, timeline.DefaultScale)
}

func primarySource(durationSeconds float64) timeline.SourceAssetMetadata {
	return timeline.SourceAssetMetadata{ID: "primary", Duration: sec(durationSeconds), HasAudioTrack: true}
}

func TestComposeRejectsInvalidConfiguration(t *testing.T) {
	descriptor := edit.NewEditDescriptor()
	descriptor.SpeedRate = 0

	_, err := Compose(descriptor, primarySource(10), ModePreview)
	assert.Error(t, err)

	_, err = Compose(edit.NewEditDescriptor(), timeline.SourceAssetMetadata{ID: "empty"}, ModePreview)
	assert.Error(t, err)
}

func TestComposeFullRangeIdentity(t *testing.T) {
	plan, err := Compose(edit.NewEditDescriptor(), primarySource(10), ModePreview)
	require.NoError(t, err)

	assert.True(t, plan.VideoRange.Start.IsZero())
	assert.InDelta(t, 10, plan.VideoRange.End.Seconds(), 1e-9)
	assert.InDelta(t, 10, plan.OutputDuration.Seconds(), 1e-9)

	// original audio: one segment, same range, lockstep rate
	require.Len(t, plan.AudioSegments, 1)
	segment := plan.AudioSegments[0]
	assert.Equal(t, plan.VideoRange, segment.SourceRange)
	assert.True(t, segment.DestinationStart.IsZero())
	assert.Equal(t, 1.0, segment.PlaybackRate)
	assert.False(t, plan.NeedsGain())
}

func TestComposeSpeedScalesOutputDuration(t *testing.T) {
	descriptor, err := edit.NewEditDescriptor().WithSpeedRate(2.0)
	require.NoError(t, err)

	plan, err := Compose(descriptor, primarySource(10), ModePreview)
	require.NoError(t, err)

	assert.InDelta(t, 5, plan.OutputDuration.Seconds(), 1e-9)
	require.Len(t, plan.AudioSegments, 1)
	assert.Equal(t, 2.0, plan.AudioSegments[0].PlaybackRate)
}

func TestComposeTrimWindowFromRatios(t *testing.T) {
	descriptor, err := edit.NewEditDescriptor().WithTrimRatios(0.2, 0.8)
	require.NoError(t, err)

	plan, err := Compose(descriptor, primarySource(10), ModePreview)
	require.NoError(t, err)

	assert.InDelta(t, 2, plan.VideoRange.Start.Seconds(), 1e-3)
	assert.InDelta(t, 8, plan.VideoRange.End.Seconds(), 1e-3)
	assert.InDelta(t, 6, plan.OutputDuration.Seconds(), 1e-3)
}

func TestComposeMutedProducesNoAudio(t *testing.T) {
	descriptor := edit.NewEditDescriptor().WithMuted(true)

	plan, err := Compose(descriptor, primarySource(10), ModePreview)
	require.NoError(t, err)
	assert.Empty(t, plan.AudioSegments)
}

func TestComposeNoAudioTrackProducesNoSegments(t *testing.T) {
	source := timeline.SourceAssetMetadata{ID: "silent", Duration: sec(10)}

	plan, err := Compose(edit.NewEditDescriptor(), source, ModePreview)
	require.NoError(t, err)
	assert.Empty(t, plan.AudioSegments)
}

func TestComposeReplacementAudioLoops(t *testing.T) {
	replacement := &edit.AudioReplacement{
		Asset: timeline.SourceAssetMetadata{ID: "music", Duration: sec(3), HasAudioTrack: true},
		Title: "bgm",
	}
	descriptor := edit.NewEditDescriptor().WithAudioReplacement(replacement)

	plan, err := Compose(descriptor, primarySource(10), ModePreview)
	require.NoError(t, err)

	// 3s unit over a 10s output: [0-3) [3-6) [6-9) [9-10)
	require.Len(t, plan.AudioSegments, 4)

	var total int64
	for i, segment := range plan.AudioSegments {
		assert.Equal(t, 1.0, segment.PlaybackRate, "segment %d loops at native speed", i)
		assert.True(t, segment.SourceRange.Start.IsZero())
		total += segment.SourceRange.Duration().Value
	}
	last := plan.AudioSegments[3]
	assert.InDelta(t, 1, last.SourceRange.Duration().Seconds(), 1e-9)
	assert.InDelta(t, 9, last.DestinationStart.Seconds(), 1e-9)

	// segment durations cover the output exactly: no gap, no overshoot
	assert.Equal(t, plan.OutputDuration.Value, total)
}

func TestComposeReplacementLoopCoversArbitraryDurations(t *testing.T) {
	cases := []struct {
		unit   float64
		output float64
	}{
		{3, 10},
		{1.5, 10},
		{0.7, 2.3},
		{10, 3},
		{0.1, 1.05},
	}

	for _, tc := range cases {
		replacement := &edit.AudioReplacement{
			Asset: timeline.SourceAssetMetadata{ID: "music", Duration: sec(tc.unit), HasAudioTrack: true},
		}
		descriptor := edit.NewEditDescriptor().WithAudioReplacement(replacement)
		ratioEnd := tc.output / 20.0
		descriptor, err := descriptor.WithTrimRatios(0, ratioEnd)
		require.NoError(t, err)

		plan, err := Compose(descriptor, primarySource(20), ModePreview)
		require.NoError(t, err)

		var total int64
		for _, segment := range plan.AudioSegments {
			total += segment.SourceRange.Duration().RescaledTo(plan.OutputDuration.Scale).Value
		}
		assert.Equal(t, plan.OutputDuration.Value, total, "unit=%v output=%v", tc.unit, tc.output)
	}
}

func TestComposeReplacementTrimWindowIsTheUnit(t *testing.T) {
	window := &edit.TimeRange{Start: sec(1), End: sec(2)}
	replacement := &edit.AudioReplacement{
		Asset:      timeline.SourceAssetMetadata{ID: "music", Duration: sec(30), HasAudioTrack: true},
		TrimWindow: window,
	}
	descriptor := edit.NewEditDescriptor().WithAudioReplacement(replacement)

	plan, err := Compose(descriptor, primarySource(10), ModePreview)
	require.NoError(t, err)
	require.NotEmpty(t, plan.AudioSegments)

	first := plan.AudioSegments[0]
	assert.InDelta(t, 1, first.SourceRange.Start.Seconds(), 1e-9)
	assert.InDelta(t, 2, first.SourceRange.End.Seconds(), 1e-9)
	assert.Len(t, plan.AudioSegments, 10)
}

func TestComposeEmptyReplacementUnitFailsFast(t *testing.T) {
	replacement := &edit.AudioReplacement{
		Asset: timeline.SourceAssetMetadata{ID: "music", Duration: timeline.Zero(timeline.DefaultScale)},
	}
	descriptor := edit.NewEditDescriptor().WithAudioReplacement(replacement)

	_, err := Compose(descriptor, primarySource(10), ModePreview)
	assert.Error(t, err)
}

func TestComposeVolumeMarker(t *testing.T) {
	descriptor, err := edit.NewEditDescriptor().WithVolume(0.5)
	require.NoError(t, err)

	plan, err := Compose(descriptor, primarySource(10), ModePreview)
	require.NoError(t, err)
	assert.True(t, plan.NeedsGain())
	assert.Equal(t, 0.5, plan.Volume)
}

func TestComposeFilterPassthrough(t *testing.T) {
	filter := &edit.FilterSpec{Name: "sepia", Parameters: map[string]float64{"intensity": 0.8}}
	descriptor := edit.NewEditDescriptor().WithFilter(filter)

	plan, err := Compose(descriptor, primarySource(10), ModePreview)
	require.NoError(t, err)
	require.NotNil(t, plan.Filter)
	assert.Equal(t, "sepia", plan.Filter.Name)
	assert.Equal(t, 0.8, plan.Filter.Parameters["intensity"])
}

func TestComposeOverlayWindowsOnlyInExport(t *testing.T) {
	stickers := []edit.Sticker{
		{Content: "wow", StartTime: sec(1), Duration: sec(2), Transform: timeline.Transform{X: 10, Y: 20, Scale: 1}},
	}
	descriptor := edit.NewEditDescriptor().WithStickers(stickers)

	preview, err := Compose(descriptor, primarySource(10), ModePreview)
	require.NoError(t, err)
	assert.Empty(t, preview.OverlayWindows)

	export, err := Compose(descriptor, primarySource(10), ModeExport)
	require.NoError(t, err)
	require.Len(t, export.OverlayWindows, 1)
	window := export.OverlayWindows[0]
	assert.Equal(t, "wow", window.Content)
	assert.InDelta(t, 1, window.VisibleRange.Start.Seconds(), 1e-9)
	assert.InDelta(t, 3, window.VisibleRange.End.Seconds(), 1e-9)
	assert.Equal(t, 10.0, window.Transform.X)
}

func TestComposeOverlayTimingIndependentOfSpeed(t *testing.T) {
	stickers := []edit.Sticker{
		{Content: "wow", StartTime: sec(1), Duration: sec(2)},
	}
	base := edit.NewEditDescriptor().WithStickers(stickers)
	fast, err := base.WithSpeedRate(2.0)
	require.NoError(t, err)

	slowPlan, err := Compose(base, primarySource(10), ModeExport)
	require.NoError(t, err)
	fastPlan, err := Compose(fast, primarySource(10), ModeExport)
	require.NoError(t, err)

	assert.Equal(t, slowPlan.OverlayWindows, fastPlan.OverlayWindows)
}

func TestComposeIsDeterministic(t *testing.T) {
	replacement := &edit.AudioReplacement{
		Asset: timeline.SourceAssetMetadata{ID: "music", Duration: sec(3), HasAudioTrack: true},
	}
	descriptor := edit.NewEditDescriptor().WithAudioReplacement(replacement)
	descriptor, err := descriptor.WithTrimRatios(0.1, 0.9)
	require.NoError(t, err)
	descriptor, err = descriptor.WithSpeedRate(1.5)
	require.NoError(t, err)

	first, err := Compose(descriptor, primarySource(10), ModeExport)
	require.NoError(t, err)
	second, err := Compose(descriptor, primarySource(10), ModeExport)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExpectedUnitsRoundsUp(t *testing.T) {
	assert.Equal(t, 7, ExpectedUnits(sec(10), 1.5))
	assert.Equal(t, 2, ExpectedUnits(sec(3), 1.5))
	assert.Equal(t, 1, ExpectedUnits(sec(1), 1.5))
	assert.Equal(t, 0, ExpectedUnits(timeline.Zero(timeline.DefaultScale), 1.5))
	assert.Equal(t, 0, ExpectedUnits(sec(10), 0))
}
