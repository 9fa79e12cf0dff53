package types

import (
	"sort"

	"github.com/google/uuid"
)

// Track is a lane holding time-ranged items of one kind. Committed items
// never overlap; transient overlap is allowed only mid-drag and must be
// resolved before commit.
type Track struct {
	ID      string          `json:"id"`
	Type    TrackType       `json:"type"`
	Items   []*TimelineItem `json:"items"`
	Visible bool            `json:"visible"`
	Locked  bool            `json:"locked"`
}

// NewTrack creates an empty visible track
func NewTrack(trackType TrackType) *Track {
	return &Track{
		ID:      uuid.NewString(),
		Type:    trackType,
		Visible: true,
	}
}

// AddItem appends an item to the track. Placement validity is the caller's
// responsibility (see interaction.ValidatePlacement).
func (t *Track) AddItem(item *TimelineItem) {
	t.Items = append(t.Items, item)
}

// RemoveItem removes the item with the given id, reporting whether it existed
func (t *Track) RemoveItem(id string) bool {
	for i, item := range t.Items {
		if item.ID == id {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			return true
		}
	}
	return false
}

// ItemByID returns the item with the given id, if present
func (t *Track) ItemByID(id string) (*TimelineItem, bool) {
	for _, item := range t.Items {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

// SortedItems returns the track's items ordered by start time. Insertion
// order carries no meaning; position is determined by StartTime alone.
func (t *Track) SortedItems() []*TimelineItem {
	items := make([]*TimelineItem, len(t.Items))
	copy(items, t.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartTime.Less(items[j].StartTime)
	})
	return items
}

// Extent returns the latest end time of any item on the track
func (t *Track) Extent() RationalTime {
	extent := Zero(DefaultScale)
	for _, item := range t.Items {
		extent = MaxTime(extent, item.EndTime())
	}
	return extent
}

// Timeline is an ordered set of tracks spanning a shared time axis
type Timeline struct {
	Tracks []*Track `json:"tracks"`
}

// NewTimeline creates an empty timeline
func NewTimeline() *Timeline {
	return &Timeline{}
}

// AddTrack appends a track and returns it
func (tl *Timeline) AddTrack(trackType TrackType) *Track {
	track := NewTrack(trackType)
	tl.Tracks = append(tl.Tracks, track)
	return track
}

// TrackByID returns the track with the given id, if present
func (tl *Timeline) TrackByID(id string) (*Track, bool) {
	for _, track := range tl.Tracks {
		if track.ID == id {
			return track, true
		}
	}
	return nil, false
}

// TracksOfType returns all tracks of the given type
func (tl *Timeline) TracksOfType(trackType TrackType) []*Track {
	var out []*Track
	for _, track := range tl.Tracks {
		if track.Type == trackType {
			out = append(out, track)
		}
	}
	return out
}

// VideoTrack returns the first video track, if any. The surrounding
// application keeps exactly one video track per loaded primary asset.
func (tl *Timeline) VideoTrack() (*Track, bool) {
	for _, track := range tl.Tracks {
		if track.Type == TrackTypeVideo {
			return track, true
		}
	}
	return nil, false
}

// ItemTrack locates an item anywhere on the timeline along with its track
func (tl *Timeline) ItemTrack(itemID string) (*Track, *TimelineItem, bool) {
	for _, track := range tl.Tracks {
		if item, ok := track.ItemByID(itemID); ok {
			return track, item, true
		}
	}
	return nil, nil, false
}

// Extent returns the latest end time across all tracks
func (tl *Timeline) Extent() RationalTime {
	extent := Zero(DefaultScale)
	for _, track := range tl.Tracks {
		extent = MaxTime(extent, track.Extent())
	}
	return extent
}
