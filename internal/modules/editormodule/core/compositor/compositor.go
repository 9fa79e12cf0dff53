// Package compositor turns an edit descriptor plus resolved source metadata
// into a composition plan: the time-scaled video range, the synthesized audio
// segment list, filter parameters, and timed overlay windows. Compose is a
// pure function: no I/O, no hidden state, identical inputs always produce an
// identical plan.
package compositor

import (
	"fmt"
	"math"

	edit "github.com/clipstack/clipstack/internal/modules/editormodule/types"
	timeline "github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

// Mode selects the plan flavor. Preview omits overlay windows because a live
// player may not be able to composite them outside an export pass; the core
// time math is identical in both modes.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeExport  Mode = "export"
)

// AudioSegment is one span of source audio placed on the output timeline.
// PlaybackRate 1.0 means native speed; original audio carries the video's
// speed rate so pitch and duration scale in lockstep.
type AudioSegment struct {
	SourceRange      edit.TimeRange        `json:"source_range"`
	DestinationStart timeline.RationalTime `json:"destination_start"`
	PlaybackRate     float64               `json:"playback_rate"`
}

// OverlayWindow is a sticker's visibility span in output time
type OverlayWindow struct {
	Content      string             `json:"content"`
	VisibleRange edit.TimeRange     `json:"visible_range"`
	Transform    timeline.Transform `json:"transform"`
}

// CompositionPlan is the resolved, renderable output of an edit. Plans are
// rebuilt from scratch on every descriptor change, never patched.
type CompositionPlan struct {
	Mode           Mode                  `json:"mode"`
	VideoRange     edit.TimeRange        `json:"video_range"`
	OutputDuration timeline.RationalTime `json:"output_duration"`
	SpeedRate      float64               `json:"speed_rate"`

	AudioSegments []AudioSegment `json:"audio_segments"`
	Volume        float64        `json:"volume"`

	Filter         *edit.FilterSpec `json:"filter,omitempty"`
	CroppingPreset string           `json:"cropping_preset,omitempty"`
	OverlayWindows []OverlayWindow  `json:"overlay_windows,omitempty"`
}

// NeedsGain reports whether an explicit gain parameter must be attached to
// the audio output; volume 1.0 is the no-op marker.
func (p CompositionPlan) NeedsGain() bool {
	return p.Volume != 1.0
}

// Compose builds the composition plan for an edit against the primary asset.
// Invalid configuration (non-positive speed, zero asset duration) fails fast;
// everything else resolves by construction.
func Compose(descriptor edit.EditDescriptor, source timeline.SourceAssetMetadata, mode Mode) (CompositionPlan, error) {
	if descriptor.SpeedRate <= 0 {
		return CompositionPlan{}, fmt.Errorf("speed rate must be positive, got %v", descriptor.SpeedRate)
	}
	if source.Duration.Value <= 0 {
		return CompositionPlan{}, fmt.Errorf("asset %s has no duration", source.ID)
	}

	videoRange := descriptor.TrimWindow(source.Duration)
	rawDuration := videoRange.Duration()

	// Uniform linear scale of the selected range onto [0, outputDuration),
	// computed in ticks so downstream segment math stays exact.
	outputTicks := int64(math.Round(float64(rawDuration.Value) / descriptor.SpeedRate))
	outputDuration := timeline.NewRationalTime(outputTicks, rawDuration.Scale)

	plan := CompositionPlan{
		Mode:           mode,
		VideoRange:     videoRange,
		OutputDuration: outputDuration,
		SpeedRate:      descriptor.SpeedRate,
		Volume:         descriptor.Volume,
		Filter:         descriptor.Filter,
		CroppingPreset: descriptor.CroppingPreset,
	}

	segments, err := audioSegments(descriptor, source, videoRange, outputDuration)
	if err != nil {
		return CompositionPlan{}, err
	}
	plan.AudioSegments = segments

	if mode == ModeExport {
		plan.OverlayWindows = overlayWindows(descriptor.Stickers)
	}

	return plan, nil
}

// audioSegments synthesizes the audio track for the plan:
//   - muted: no segments
//   - replacement present: the (optionally trimmed) replacement range loops
//     at native speed from destination 0, the final copy truncated so the
//     segment durations sum to exactly outputDuration
//   - otherwise: the video's source range as a single segment scaled in
//     lockstep with the video
func audioSegments(descriptor edit.EditDescriptor, source timeline.SourceAssetMetadata, videoRange edit.TimeRange, outputDuration timeline.RationalTime) ([]AudioSegment, error) {
	if descriptor.Muted {
		return nil, nil
	}

	if replacement := descriptor.AudioReplacement; replacement != nil {
		unit := edit.TimeRange{Start: timeline.Zero(replacement.Asset.Duration.Scale), End: replacement.Asset.Duration}
		if replacement.TrimWindow != nil {
			unit = *replacement.TrimWindow
		}

		scale := outputDuration.Scale
		unitTicks := unit.Duration().RescaledTo(scale).Value
		if unitTicks <= 0 {
			return nil, fmt.Errorf("replacement audio %s has an empty unit range", replacement.Asset.ID)
		}

		var segments []AudioSegment
		for cursor := int64(0); cursor < outputDuration.Value; {
			remaining := outputDuration.Value - cursor
			length := unitTicks
			if length > remaining {
				length = remaining
			}
			segments = append(segments, AudioSegment{
				SourceRange: edit.TimeRange{
					Start: unit.Start,
					End:   unit.Start.Add(timeline.NewRationalTime(length, scale)),
				},
				DestinationStart: timeline.NewRationalTime(cursor, scale),
				PlaybackRate:     1.0,
			})
			cursor += length
		}
		return segments, nil
	}

	if !source.HasAudioTrack {
		return nil, nil
	}

	return []AudioSegment{{
		SourceRange:      videoRange,
		DestinationStart: timeline.Zero(outputDuration.Scale),
		PlaybackRate:     descriptor.SpeedRate,
	}}, nil
}

// ExpectedUnits reports how many display units (thumbnails, waveform tiles)
// a collaborator should produce for a time span at a fixed seconds-per-unit
// density. A partial trailing unit counts as a whole one.
func ExpectedUnits(span timeline.RationalTime, secondsPerUnit float64) int {
	if secondsPerUnit <= 0 || span.Value <= 0 {
		return 0
	}
	return int(math.Ceil(span.Seconds() / secondsPerUnit))
}

// overlayWindows maps stickers into visibility windows. Sticker timing is
// already defined in output time, so windows are independent of the speed
// rate.
func overlayWindows(stickers []edit.Sticker) []OverlayWindow {
	windows := make([]OverlayWindow, 0, len(stickers))
	for _, sticker := range stickers {
		windows = append(windows, OverlayWindow{
			Content: sticker.Content,
			VisibleRange: edit.TimeRange{
				Start: sticker.StartTime,
				End:   sticker.StartTime.Add(sticker.Duration),
			},
			Transform: sticker.Transform,
		})
	}
	return windows
}
