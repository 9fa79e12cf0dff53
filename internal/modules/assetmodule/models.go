package assetmodule

import (
	"time"

	timeline "github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

// AssetKind distinguishes what the registry stores
type AssetKind string

const (
	AssetKindVideo AssetKind = "video"
	AssetKindAudio AssetKind = "audio"
)

// Asset is a registered media source. Duration is stored in rational form so
// metadata survives round-trips through the database without float drift.
type Asset struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Path          string    `json:"path" gorm:"uniqueIndex;not null"`
	Kind          AssetKind `json:"kind" gorm:"index;not null"`
	DurationValue int64     `json:"duration_value"`
	DurationScale int32     `json:"duration_scale"`
	HasAudioTrack bool      `json:"has_audio_track"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Asset) TableName() string {
	return "assets"
}

// Duration returns the asset duration as a rational time
func (a *Asset) Duration() timeline.RationalTime {
	return timeline.NewRationalTime(a.DurationValue, a.DurationScale)
}

// Metadata is the timeline-facing view of the asset
func (a *Asset) Metadata() timeline.SourceAssetMetadata {
	return timeline.SourceAssetMetadata{
		ID:            a.ID,
		Duration:      a.Duration(),
		HasAudioTrack: a.HasAudioTrack,
	}
}
