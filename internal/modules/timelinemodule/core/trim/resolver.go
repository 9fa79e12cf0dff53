// Package trim resolves trim-handle drags into new item start/duration
// values. A drag is modeled as an explicit state machine: Begin captures an
// immutable snapshot of the item, Change derives a candidate from that
// snapshot (never from the continuously-mutated visual state, so rounding
// error cannot compound over a long drag), and End produces the committed
// values after strict clamping and collision repositioning.
package trim

import (
	"fmt"

	"github.com/clipstack/clipstack/internal/modules/timelinemodule/core/interaction"
	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

const (
	// CommitFloorSeconds is the strict duration floor for committed state
	CommitFloorSeconds = types.MinItemDurationSeconds

	// VisualFloorSeconds is the looser floor used while a drag is in
	// progress, purely to avoid jitter at the boundary. Committed data
	// never goes below CommitFloorSeconds; the two are intentionally
	// distinct constants.
	VisualFloorSeconds = 0.05
)

// Handle identifies which trim handle is being dragged
type Handle int

const (
	HandleLeft Handle = iota
	HandleRight
)

// Phase is the state of the trim gesture machine
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTrimming
)

// Gesture is an immutable snapshot of a trim drag. Transitions are pure:
// Begin/Change/End each return a new value.
type Gesture struct {
	Phase  Phase
	Handle Handle
	ItemID string

	// Initial state captured at gesture begin; all deltas are computed
	// against it.
	InitialStart    types.RationalTime
	InitialDuration types.RationalTime
	AssetDuration   *types.RationalTime
	PixelsPerSecond float64

	// Current candidate, clamped with the visual floor
	CandidateStart    types.RationalTime
	CandidateDuration types.RationalTime
	Clamped           bool

	item *types.TimelineItem
}

// Commit is the settled outcome of a trim drag
type Commit struct {
	ItemID   string             `json:"item_id"`
	Start    types.RationalTime `json:"start"`
	Duration types.RationalTime `json:"duration"`

	// Ratio pair mirrored into the edit descriptor for video items;
	// ratios survive speed changes where absolute times do not.
	TrimRatioStart float64 `json:"trim_ratio_start"`
	TrimRatioEnd   float64 `json:"trim_ratio_end"`
	HasRatios      bool    `json:"has_ratios"`

	Clamped      bool `json:"clamped"`
	Repositioned bool `json:"repositioned"`
}

// Idle returns the resting gesture state
func Idle() Gesture {
	return Gesture{Phase: PhaseIdle}
}

// Begin starts a trim drag on the given item, capturing its current state
func Begin(item *types.TimelineItem, handle Handle, pixelsPerSecond float64) (Gesture, error) {
	if item == nil {
		return Idle(), fmt.Errorf("trim: no item")
	}
	if pixelsPerSecond <= 0 {
		return Idle(), fmt.Errorf("trim: pixelsPerSecond must be positive, got %v", pixelsPerSecond)
	}

	g := Gesture{
		Phase:             PhaseTrimming,
		Handle:            handle,
		ItemID:            item.ID,
		InitialStart:      item.StartTime,
		InitialDuration:   item.Duration,
		PixelsPerSecond:   pixelsPerSecond,
		CandidateStart:    item.StartTime,
		CandidateDuration: item.Duration,
		item:              item,
	}
	if assetDuration, ok := item.AssetDuration(); ok {
		g.AssetDuration = &assetDuration
	}
	return g, nil
}

// Change recomputes the candidate from the initial snapshot and the total
// pixel delta since Begin. The candidate is clamped with the visual floor so
// the drag keeps responding at the boundary.
func (g Gesture) Change(deltaPixels float64) Gesture {
	if g.Phase != PhaseTrimming {
		return g
	}

	deltaTime := deltaPixels / g.PixelsPerSecond
	start, duration, clamped := g.resolve(deltaTime, VisualFloorSeconds)

	g.CandidateStart = start
	g.CandidateDuration = duration
	g.Clamped = clamped
	return g
}

// End settles the drag: the candidate is re-clamped with the strict commit
// floor, repositioned through FindValidPosition if it collides within the
// owning track, and mirrored into a trim-ratio pair for video items. The
// returned gesture is always Idle.
func (g Gesture) End(deltaPixels float64, track *types.Track) (Commit, Gesture) {
	if g.Phase != PhaseTrimming {
		return Commit{}, Idle()
	}

	deltaTime := deltaPixels / g.PixelsPerSecond
	start, duration, clamped := g.resolve(deltaTime, CommitFloorSeconds)

	commit := Commit{
		ItemID:   g.ItemID,
		Start:    start,
		Duration: duration,
		Clamped:  clamped,
	}

	if track != nil {
		candidate := g.item.Clone()
		candidate.StartTime = start
		candidate.Duration = duration
		if len(interaction.DetectCollisions(candidate, track, "")) > 0 {
			resolved := interaction.FindValidPosition(candidate, track, start)
			if !resolved.Equal(start) {
				commit.Start = resolved
				commit.Repositioned = true
			}
		}
	}

	if g.item.Kind == types.KindVideo && g.AssetDuration != nil {
		end := commit.Start.Add(commit.Duration)
		commit.TrimRatioStart, commit.TrimRatioEnd = types.RatiosFromWindow(commit.Start, end, *g.AssetDuration)
		commit.HasRatios = true
	}

	return commit, Idle()
}

// Cancel abandons the drag without committing
func (g Gesture) Cancel() Gesture {
	return Idle()
}

// resolve computes the candidate start/duration for a time delta against the
// initial snapshot, clamping to the given duration floor and the item's
// bounds.
func (g Gesture) resolve(deltaTime, floorSeconds float64) (types.RationalTime, types.RationalTime, bool) {
	scale := g.InitialStart.Scale
	initStart := g.InitialStart.Seconds()
	initDuration := g.InitialDuration.Seconds()
	clamped := false

	var start, duration float64
	switch g.Handle {
	case HandleLeft:
		// Duration shrinks/grows inversely with start; the interval end
		// stays fixed, so the asset bound is preserved implicitly and the
		// only absolute bound is start >= 0.
		start = initStart + deltaTime
		if start < 0 {
			start = 0
			clamped = true
		}
		duration = initDuration - (start - initStart)
		if duration < floorSeconds {
			duration = floorSeconds
			start = initStart + initDuration - floorSeconds
			clamped = true
		}
	case HandleRight:
		start = initStart
		duration = initDuration + deltaTime
		if duration < floorSeconds {
			duration = floorSeconds
			clamped = true
		}
		if g.AssetDuration != nil {
			bound := g.AssetDuration.Seconds()
			if start+duration > bound {
				duration = bound - start
				clamped = true
			}
		}
	}

	return types.FromSeconds(start, scale), types.FromSeconds(duration, scale), clamped
}
