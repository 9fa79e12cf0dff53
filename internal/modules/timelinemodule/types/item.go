package types

import (
	"math"

	"github.com/google/uuid"
)

// MinItemDurationSeconds is the committed duration floor for every item kind
const MinItemDurationSeconds = 0.1

// RatioPrecision is the number of decimal places trim ratios are rounded to,
// so that repeated edits can reach exact 0.0/1.0 bounds.
const RatioPrecision = 1e4

// ItemKind identifies the variant of a timeline item
type ItemKind string

const (
	KindVideo   ItemKind = "video"
	KindAudio   ItemKind = "audio"
	KindText    ItemKind = "text"
	KindSticker ItemKind = "sticker"
)

// TrackType identifies which kind of track an item belongs to
type TrackType string

const (
	TrackTypeVideo            TrackType = "video"
	TrackTypeAudioOriginal    TrackType = "audio_original"
	TrackTypeAudioReplacement TrackType = "audio_replacement"
	TrackTypeAudioVoiceover   TrackType = "audio_voiceover"
	TrackTypeText             TrackType = "text"
	TrackTypeSticker          TrackType = "sticker"
)

// Accepts reports whether items of the given kind may be placed on this
// track type.
func (tt TrackType) Accepts(kind ItemKind) bool {
	switch tt {
	case TrackTypeVideo:
		return kind == KindVideo
	case TrackTypeAudioOriginal, TrackTypeAudioReplacement, TrackTypeAudioVoiceover:
		return kind == KindAudio
	case TrackTypeText:
		return kind == KindText
	case TrackTypeSticker:
		return kind == KindSticker
	default:
		return false
	}
}

// SourceAssetMetadata is the timeline's view of a media asset, resolved by
// the asset registry before any composition or trim math runs.
type SourceAssetMetadata struct {
	ID            string       `json:"id"`
	Duration      RationalTime `json:"duration"`
	HasAudioTrack bool         `json:"has_audio_track"`
}

// Transform is the spatial placement of an overlay item
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// VideoPayload holds video-specific item state. The trim window is stored as
// a [0,1] ratio pair against the source asset duration; ratios are the
// authoritative representation (they survive speed changes), absolute times
// are derived via TrimWindow.
type VideoPayload struct {
	Source         SourceAssetMetadata `json:"source"`
	TrimRatioStart float64             `json:"trim_ratio_start"`
	TrimRatioEnd   float64             `json:"trim_ratio_end"`
}

// AudioPayload holds audio-specific item state. A nil source means
// silence/original audio.
type AudioPayload struct {
	Source *SourceAssetMetadata `json:"source,omitempty"`
	Volume float64              `json:"volume"`
	Muted  bool                 `json:"muted"`
	Title  string               `json:"title"`
}

// OverlayPayload holds text/sticker item state
type OverlayPayload struct {
	Content   string    `json:"content"`
	Transform Transform `json:"transform"`
}

// TimelineItem is a single placed, time-ranged unit. Exactly one payload
// pointer is non-nil, matching Kind.
type TimelineItem struct {
	ID        string       `json:"id"`
	Kind      ItemKind     `json:"kind"`
	StartTime RationalTime `json:"start_time"`
	Duration  RationalTime `json:"duration"`
	TrackType TrackType    `json:"track_type"`
	Selected  bool         `json:"-"` // transient UI state, not edit state

	Video   *VideoPayload   `json:"video,omitempty"`
	Audio   *AudioPayload   `json:"audio,omitempty"`
	Overlay *OverlayPayload `json:"overlay,omitempty"`
}

// NewVideoItem creates a video item covering the full source asset
func NewVideoItem(source SourceAssetMetadata, start, duration RationalTime) *TimelineItem {
	return &TimelineItem{
		ID:        uuid.NewString(),
		Kind:      KindVideo,
		StartTime: start,
		Duration:  duration,
		TrackType: TrackTypeVideo,
		Video: &VideoPayload{
			Source:         source,
			TrimRatioStart: 0,
			TrimRatioEnd:   1,
		},
	}
}

// NewAudioItem creates an audio item on the given audio track type
func NewAudioItem(trackType TrackType, source *SourceAssetMetadata, title string, start, duration RationalTime) *TimelineItem {
	return &TimelineItem{
		ID:        uuid.NewString(),
		Kind:      KindAudio,
		StartTime: start,
		Duration:  duration,
		TrackType: trackType,
		Audio: &AudioPayload{
			Source: source,
			Volume: 1.0,
			Title:  title,
		},
	}
}

// NewOverlayItem creates a text or sticker item
func NewOverlayItem(kind ItemKind, content string, transform Transform, start, duration RationalTime) *TimelineItem {
	trackType := TrackTypeSticker
	if kind == KindText {
		trackType = TrackTypeText
	}
	return &TimelineItem{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartTime: start,
		Duration:  duration,
		TrackType: trackType,
		Overlay: &OverlayPayload{
			Content:   content,
			Transform: transform,
		},
	}
}

// EndTime returns the exclusive end of the item's interval
func (it *TimelineItem) EndTime() RationalTime {
	return it.StartTime.Add(it.Duration)
}

// Overlaps reports whether the two items' half-open intervals intersect.
// Items touching exactly at an endpoint do not overlap.
func (it *TimelineItem) Overlaps(other *TimelineItem) bool {
	return it.StartTime.Less(other.EndTime()) && other.StartTime.Less(it.EndTime())
}

// AssetDuration returns the backing asset duration for asset-backed items
func (it *TimelineItem) AssetDuration() (RationalTime, bool) {
	switch {
	case it.Video != nil:
		return it.Video.Source.Duration, true
	case it.Audio != nil && it.Audio.Source != nil:
		return it.Audio.Source.Duration, true
	default:
		return RationalTime{}, false
	}
}

// Clone returns a deep copy of the item
func (it *TimelineItem) Clone() *TimelineItem {
	out := *it
	if it.Video != nil {
		v := *it.Video
		out.Video = &v
	}
	if it.Audio != nil {
		a := *it.Audio
		out.Audio = &a
	}
	if it.Overlay != nil {
		o := *it.Overlay
		out.Overlay = &o
	}
	return &out
}

// RoundRatio rounds a trim ratio to the fixed precision
func RoundRatio(r float64) float64 {
	return math.Round(r*RatioPrecision) / RatioPrecision
}

// RatiosFromWindow converts an absolute trim window into a [0,1] ratio pair
// against the asset duration.
func RatiosFromWindow(start, end, assetDuration RationalTime) (float64, float64) {
	total := assetDuration.Seconds()
	if total <= 0 {
		return 0, 1
	}
	return RoundRatio(start.Seconds() / total), RoundRatio(end.Seconds() / total)
}

// WindowFromRatios converts a [0,1] ratio pair back into an absolute window
// at the asset duration's scale.
func WindowFromRatios(startRatio, endRatio float64, assetDuration RationalTime) (RationalTime, RationalTime) {
	total := assetDuration.Seconds()
	start := FromSeconds(startRatio*total, assetDuration.Scale)
	end := FromSeconds(endRatio*total, assetDuration.Scale)
	return start, end
}

// TrimWindow returns the absolute trim window derived from the payload's
// ratio pair.
func (v *VideoPayload) TrimWindow() (RationalTime, RationalTime) {
	return WindowFromRatios(v.TrimRatioStart, v.TrimRatioEnd, v.Source.Duration)
}
