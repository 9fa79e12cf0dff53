// Package types defines the edit descriptor: an immutable, non-destructive
// description of every transformation requested for the primary asset. Each
// setter is a lens producing a new descriptor with exactly one field changed;
// descriptors are never mutated in place, so consumers always observe a
// complete snapshot.
package types

import (
	"fmt"

	timeline "github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

// TimeRange is a half-open [Start, End) interval
type TimeRange struct {
	Start timeline.RationalTime `json:"start"`
	End   timeline.RationalTime `json:"end"`
}

// Duration returns End - Start
func (r TimeRange) Duration() timeline.RationalTime {
	return r.End.Sub(r.Start)
}

// FilterSpec names a filter and its parameters. Parameter ranges are not
// validated here; that belongs to the rendering collaborator.
type FilterSpec struct {
	Name       string             `json:"name"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
}

// AudioReplacement swaps the original audio for another asset. The trim
// window selects the repeating unit; nil means the full asset.
type AudioReplacement struct {
	Asset      timeline.SourceAssetMetadata `json:"asset"`
	TrimWindow *TimeRange                   `json:"trim_window,omitempty"`
	Title      string                       `json:"title"`
}

// Sticker is an overlay with timing defined in output (post-speed-scale)
// time, so it does not shift when the speed rate changes.
type Sticker struct {
	Content   string                `json:"content"`
	StartTime timeline.RationalTime `json:"start_time"`
	Duration  timeline.RationalTime `json:"duration"`
	Transform timeline.Transform    `json:"transform"`
}

// EditDescriptor is the full requested edit. The trim window is stored as a
// ratio pair against the primary asset duration so it survives speed changes.
type EditDescriptor struct {
	SpeedRate      float64 `json:"speed_rate"`
	TrimRatioStart float64 `json:"trim_ratio_start"`
	TrimRatioEnd   float64 `json:"trim_ratio_end"`
	CroppingPreset string  `json:"cropping_preset,omitempty"`

	Filter           *FilterSpec       `json:"filter,omitempty"`
	AudioReplacement *AudioReplacement `json:"audio_replacement,omitempty"`
	Muted            bool              `json:"muted"`
	Volume           float64           `json:"volume"`

	Stickers []Sticker `json:"stickers,omitempty"`
}

// NewEditDescriptor returns the identity edit: full trim window, native
// speed, original audio at full volume.
func NewEditDescriptor() EditDescriptor {
	return EditDescriptor{
		SpeedRate:      1.0,
		TrimRatioStart: 0,
		TrimRatioEnd:   1,
		Volume:         1.0,
	}
}

// WithSpeedRate returns a copy with the speed rate changed. A non-positive
// rate is a caller bug and fails fast.
func (d EditDescriptor) WithSpeedRate(rate float64) (EditDescriptor, error) {
	if rate <= 0 {
		return d, fmt.Errorf("speed rate must be positive, got %v", rate)
	}
	d.SpeedRate = rate
	return d, nil
}

// WithTrimRatios returns a copy with the trim window changed. Ratios are
// rounded to the fixed precision so repeated edits can reach exact 0/1.
func (d EditDescriptor) WithTrimRatios(start, end float64) (EditDescriptor, error) {
	start = timeline.RoundRatio(start)
	end = timeline.RoundRatio(end)
	if start < 0 || end > 1 || start >= end {
		return d, fmt.Errorf("trim ratios must satisfy 0 <= start < end <= 1, got [%v, %v]", start, end)
	}
	d.TrimRatioStart = start
	d.TrimRatioEnd = end
	return d, nil
}

// WithCroppingPreset returns a copy with the cropping preset changed; an
// empty preset clears it.
func (d EditDescriptor) WithCroppingPreset(preset string) EditDescriptor {
	d.CroppingPreset = preset
	return d
}

// WithFilter returns a copy with the filter changed; nil clears it
func (d EditDescriptor) WithFilter(filter *FilterSpec) EditDescriptor {
	if filter != nil {
		f := *filter
		if f.Parameters != nil {
			params := make(map[string]float64, len(f.Parameters))
			for k, v := range f.Parameters {
				params[k] = v
			}
			f.Parameters = params
		}
		filter = &f
	}
	d.Filter = filter
	return d
}

// WithAudioReplacement returns a copy with the replacement audio changed;
// nil restores the original audio.
func (d EditDescriptor) WithAudioReplacement(replacement *AudioReplacement) EditDescriptor {
	if replacement != nil {
		r := *replacement
		if r.TrimWindow != nil {
			w := *r.TrimWindow
			r.TrimWindow = &w
		}
		replacement = &r
	}
	d.AudioReplacement = replacement
	return d
}

// WithVolume returns a copy with the volume changed; 1.0 is the no-op marker
func (d EditDescriptor) WithVolume(volume float64) (EditDescriptor, error) {
	if volume < 0 || volume > 1 {
		return d, fmt.Errorf("volume must be in [0, 1], got %v", volume)
	}
	d.Volume = volume
	return d, nil
}

// WithMuted returns a copy with the mute flag changed
func (d EditDescriptor) WithMuted(muted bool) EditDescriptor {
	d.Muted = muted
	return d
}

// WithStickers returns a copy with the sticker list replaced
func (d EditDescriptor) WithStickers(stickers []Sticker) EditDescriptor {
	copied := make([]Sticker, len(stickers))
	copy(copied, stickers)
	d.Stickers = copied
	return d
}

// TrimWindow materializes the ratio pair into an absolute window against the
// given asset duration.
func (d EditDescriptor) TrimWindow(assetDuration timeline.RationalTime) TimeRange {
	start, end := timeline.WindowFromRatios(d.TrimRatioStart, d.TrimRatioEnd, assetDuration)
	return TimeRange{Start: start, End: end}
}
