package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timeline "github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

func TestNewEditDescriptorIsIdentity(t *testing.T) {
	d := NewEditDescriptor()
	assert.Equal(t, 1.0, d.SpeedRate)
	assert.Equal(t, 0.0, d.TrimRatioStart)
	assert.Equal(t, 1.0, d.TrimRatioEnd)
	assert.Equal(t, 1.0, d.Volume)
	assert.False(t, d.Muted)
	assert.Nil(t, d.Filter)
	assert.Nil(t, d.AudioReplacement)
}

func TestLensesChangeExactlyOneField(t *testing.T) {
	base := NewEditDescriptor()

	fast, err := base.WithSpeedRate(2.0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, fast.SpeedRate)
	assert.Equal(t, 1.0, base.SpeedRate)

	trimmed, err := base.WithTrimRatios(0.25, 0.75)
	require.NoError(t, err)
	assert.Equal(t, 0.25, trimmed.TrimRatioStart)
	assert.Equal(t, 1.0, trimmed.SpeedRate)
	assert.Equal(t, 0.0, base.TrimRatioStart)

	muted := base.WithMuted(true)
	assert.True(t, muted.Muted)
	assert.False(t, base.Muted)
}

func TestWithSpeedRateRejectsNonPositive(t *testing.T) {
	base := NewEditDescriptor()
	_, err := base.WithSpeedRate(0)
	assert.Error(t, err)
	_, err = base.WithSpeedRate(-1)
	assert.Error(t, err)
}

func TestWithTrimRatiosValidatesBounds(t *testing.T) {
	base := NewEditDescriptor()

	_, err := base.WithTrimRatios(-0.1, 0.5)
	assert.Error(t, err)
	_, err = base.WithTrimRatios(0.5, 1.1)
	assert.Error(t, err)
	_, err = base.WithTrimRatios(0.6, 0.6)
	assert.Error(t, err)
}

func TestWithTrimRatiosRoundsToPrecision(t *testing.T) {
	base := NewEditDescriptor()
	d, err := base.WithTrimRatios(1.0/3.0, 0.99996)
	require.NoError(t, err)
	assert.Equal(t, 0.3333, d.TrimRatioStart)
	assert.Equal(t, 1.0, d.TrimRatioEnd)
}

func TestWithVolumeValidatesRange(t *testing.T) {
	base := NewEditDescriptor()
	_, err := base.WithVolume(-0.1)
	assert.Error(t, err)
	_, err = base.WithVolume(1.1)
	assert.Error(t, err)

	d, err := base.WithVolume(0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, d.Volume)
}

func TestWithFilterCopiesParameters(t *testing.T) {
	params := map[string]float64{"intensity": 0.8}
	d := NewEditDescriptor().WithFilter(&FilterSpec{Name: "sepia", Parameters: params})

	params["intensity"] = 0.1
	assert.Equal(t, 0.8, d.Filter.Parameters["intensity"])

	cleared := d.WithFilter(nil)
	assert.Nil(t, cleared.Filter)
	assert.NotNil(t, d.Filter)
}

func TestWithAudioReplacementCopiesWindow(t *testing.T) {
	window := &TimeRange{
		Start: timeline.FromSeconds(1, timeline.DefaultScale),
		End:   timeline.FromSeconds(2, timeline.DefaultScale),
	}
	replacement := &AudioReplacement{
		Asset:      timeline.SourceAssetMetadata{ID: "music", Duration: timeline.FromSeconds(30, timeline.DefaultScale)},
		TrimWindow: window,
		Title:      "bgm",
	}
	d := NewEditDescriptor().WithAudioReplacement(replacement)

	window.End = timeline.FromSeconds(9, timeline.DefaultScale)
	assert.InDelta(t, 2, d.AudioReplacement.TrimWindow.End.Seconds(), 1e-9)
}

func TestWithStickersCopiesSlice(t *testing.T) {
	stickers := []Sticker{{Content: "a"}}
	d := NewEditDescriptor().WithStickers(stickers)

	stickers[0].Content = "b"
	assert.Equal(t, "a", d.Stickers[0].Content)
}

func TestTrimWindowMaterialization(t *testing.T) {
	d, err := NewEditDescriptor().WithTrimRatios(0.2, 0.8)
	require.NoError(t, err)

	window := d.TrimWindow(timeline.FromSeconds(10, timeline.DefaultScale))
	assert.InDelta(t, 2, window.Start.Seconds(), 1e-3)
	assert.InDelta(t, 8, window.End.Seconds(), 1e-3)
	assert.InDelta(t, 6, window.Duration().Seconds(), 1e-3)
}
