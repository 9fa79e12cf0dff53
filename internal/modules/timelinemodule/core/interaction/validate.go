package interaction

import (
	"fmt"

	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

// ValidationResult is a tagged result for placement checks. Violations are
// reported as issues rather than errors; interactive placement is expected
// to resolve them by clamping or repositioning.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// ValidatePlacement checks whether an item can be committed to a track:
// kind/track compatibility, lock state, non-negative start, the duration
// floor, and collision freedom.
func ValidatePlacement(item *types.TimelineItem, track *types.Track) ValidationResult {
	var issues []string

	if !track.Type.Accepts(item.Kind) {
		issues = append(issues, fmt.Sprintf("item kind %q not allowed on track type %q", item.Kind, track.Type))
	}
	if track.Locked {
		issues = append(issues, "track is locked")
	}
	if item.StartTime.IsNegative() {
		issues = append(issues, "start time is negative")
	}
	if item.Duration.Seconds() < types.MinItemDurationSeconds {
		issues = append(issues, fmt.Sprintf("duration %.3fs below %.1fs floor", item.Duration.Seconds(), types.MinItemDurationSeconds))
	}
	for _, hit := range DetectCollisions(item, track, "") {
		issues = append(issues, fmt.Sprintf("collides with item %s", hit.ID))
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}
