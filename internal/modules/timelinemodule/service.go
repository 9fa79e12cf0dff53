package timelinemodule

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/clipstack/clipstack/internal/base"
	"github.com/clipstack/clipstack/internal/config"
	"github.com/clipstack/clipstack/internal/events"
	"github.com/clipstack/clipstack/internal/modules/timelinemodule/core/interaction"
	"github.com/clipstack/clipstack/internal/modules/timelinemodule/core/trim"
	"github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
	"github.com/clipstack/clipstack/internal/services"
)

// AssetResolver resolves asset ids into source metadata. Implemented by the
// asset module's service and looked up through the service registry.
type AssetResolver interface {
	Resolve(id string) (types.SourceAssetMetadata, error)
}

// Session is the live editing state for one project
type Session struct {
	ProjectID string
	Timeline  *types.Timeline
	Playhead  types.RationalTime
	gesture   trim.Gesture
}

// Service manages timeline sessions and applies all interactive edits
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      config.TimelineConfig
	eventBus events.EventBus
	logger   hclog.Logger
}

// NewService creates the timeline service
func NewService(cfg config.TimelineConfig, eventBus events.EventBus, logger hclog.Logger) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Session returns the session for a project, creating it on first use
func (s *Service) Session(projectID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked(projectID)
}

func (s *Service) sessionLocked(projectID string) *Session {
	session, ok := s.sessions[projectID]
	if !ok {
		session = &Session{
			ProjectID: projectID,
			Timeline:  types.NewTimeline(),
			Playhead:  types.Zero(s.cfg.TimeScale),
			gesture:   trim.Idle(),
		}
		s.sessions[projectID] = session
	}
	return session
}

// LoadTimeline replaces a project's timeline, used when restoring a saved
// project.
func (s *Service) LoadTimeline(projectID string, timeline *types.Timeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessionLocked(projectID)
	session.Timeline = timeline
	session.gesture = trim.Idle()
}

// Timeline returns the project's timeline
func (s *Service) Timeline(projectID string) *types.Timeline {
	return s.Session(projectID).Timeline
}

// SetPlayhead moves the playhead; negative values clamp to zero
func (s *Service) SetPlayhead(projectID string, t types.RationalTime) types.RationalTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessionLocked(projectID)
	if t.IsNegative() {
		t = types.Zero(t.Scale)
	}
	session.Playhead = t
	return t
}

// AddTrack appends a new track to the project's timeline
func (s *Service) AddTrack(projectID string, trackType types.TrackType) (*types.Track, error) {
	switch trackType {
	case types.TrackTypeVideo, types.TrackTypeAudioOriginal, types.TrackTypeAudioReplacement,
		types.TrackTypeAudioVoiceover, types.TrackTypeText, types.TrackTypeSticker:
	default:
		return nil, fmt.Errorf("unknown track type %q", trackType)
	}

	s.mu.Lock()
	session := s.sessionLocked(projectID)
	track := session.Timeline.AddTrack(trackType)
	s.mu.Unlock()

	s.publish(events.EventTimelineTrackAdded, projectID, "Track added", map[string]interface{}{
		"track_id":   track.ID,
		"track_type": string(trackType),
	})
	return track, nil
}

// AddItem places an item on a track. A colliding start is resolved to the
// earliest valid position; placement is re-validated before commit.
func (s *Service) AddItem(projectID, trackID string, item *types.TimelineItem) (*types.TimelineItem, error) {
	s.mu.Lock()
	session := s.sessionLocked(projectID)
	track, ok := session.Timeline.TrackByID(trackID)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("track %s not found", trackID)
	}

	if len(interaction.DetectCollisions(item, track, "")) > 0 {
		item.StartTime = interaction.FindValidPosition(item, track, item.StartTime)
	}
	if result := interaction.ValidatePlacement(item, track); !result.Valid {
		s.mu.Unlock()
		return nil, base.NewModuleError("INVALID_PLACEMENT", fmt.Sprintf("invalid placement: %v", result.Issues), nil)
	}
	track.AddItem(item)
	s.mu.Unlock()

	s.publish(events.EventTimelineItemAdded, projectID, "Item added", map[string]interface{}{
		"item_id":  item.ID,
		"kind":     string(item.Kind),
		"track_id": trackID,
	})
	return item, nil
}

// MoveItem drags an item to a new start time. With snapping enabled the
// nearest snap point within tolerance wins; collisions resolve to the
// earliest valid position. A move that cannot be validated leaves the item
// where it was.
func (s *Service) MoveItem(projectID, itemID string, target types.RationalTime, snap bool) (types.RationalTime, error) {
	s.mu.Lock()
	session := s.sessionLocked(projectID)
	track, item, ok := session.Timeline.ItemTrack(itemID)
	if !ok {
		s.mu.Unlock()
		return types.RationalTime{}, fmt.Errorf("item %s not found", itemID)
	}
	if track.Locked {
		s.mu.Unlock()
		return types.RationalTime{}, fmt.Errorf("track %s is locked", track.ID)
	}

	if target.IsNegative() {
		target = types.Zero(target.Scale)
	}

	if snap {
		tolerance := types.FromSeconds(s.cfg.SnapToleranceSec, s.cfg.TimeScale)
		grid := types.FromSeconds(s.cfg.SnapGridIntervalSec, s.cfg.TimeScale)
		points := interaction.FindSnapPoints(item, session.Timeline, session.Playhead, grid)

		startHit, startOK := interaction.FindNearestSnapPoint(target, points, tolerance)
		endHit, endOK := interaction.FindNearestSnapPoint(target.Add(item.Duration), points, tolerance)
		switch {
		case startOK:
			target = interaction.MagneticAlign(item, startHit, interaction.SnapEdgeStart)
		case endOK:
			target = interaction.MagneticAlign(item, endHit, interaction.SnapEdgeEnd)
		}
	}

	candidate := item.Clone()
	candidate.StartTime = target
	if len(interaction.DetectCollisions(candidate, track, "")) > 0 {
		target = interaction.FindValidPosition(candidate, track, target)
		candidate.StartTime = target
	}
	if result := interaction.ValidatePlacement(candidate, track); !result.Valid {
		s.mu.Unlock()
		s.logger.Debug("move rejected", "item", itemID, "issues", result.Issues)
		return item.StartTime, nil
	}

	item.StartTime = target
	s.mu.Unlock()

	s.publish(events.EventTimelineItemMoved, projectID, "Item moved", map[string]interface{}{
		"item_id":       itemID,
		"start_seconds": target.Seconds(),
	})
	return target, nil
}

// RemoveItem deletes an item from the timeline
func (s *Service) RemoveItem(projectID, itemID string) error {
	s.mu.Lock()
	session := s.sessionLocked(projectID)
	track, _, ok := session.Timeline.ItemTrack(itemID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("item %s not found", itemID)
	}
	track.RemoveItem(itemID)
	s.mu.Unlock()

	s.publish(events.EventTimelineItemRemoved, projectID, "Item removed", map[string]interface{}{
		"item_id": itemID,
	})
	return nil
}

// ValidateItem checks a candidate placement against a track without
// committing anything.
func (s *Service) ValidateItem(projectID, trackID string, item *types.TimelineItem) (interaction.ValidationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[projectID]
	if !ok {
		return interaction.ValidationResult{}, fmt.Errorf("project %s has no session", projectID)
	}
	track, found := session.Timeline.TrackByID(trackID)
	if !found {
		return interaction.ValidationResult{}, fmt.Errorf("track %s not found", trackID)
	}
	return interaction.ValidatePlacement(item, track), nil
}

// SnapPoints exposes the snap candidates for a dragged item
func (s *Service) SnapPoints(projectID, itemID string) ([]interaction.SnapPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s has no session", projectID)
	}
	_, item, found := session.Timeline.ItemTrack(itemID)
	if !found {
		return nil, fmt.Errorf("item %s not found", itemID)
	}
	grid := types.FromSeconds(s.cfg.SnapGridIntervalSec, s.cfg.TimeScale)
	return interaction.FindSnapPoints(item, session.Timeline, session.Playhead, grid), nil
}

// BeginTrim starts a trim drag on an item. Only one gesture per project can
// be active; starting a new one abandons the previous.
func (s *Service) BeginTrim(projectID, itemID string, handle trim.Handle, pixelsPerSecond float64) error {
	if pixelsPerSecond <= 0 {
		pixelsPerSecond = s.cfg.PixelsPerSecond
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessionLocked(projectID)
	track, item, ok := session.Timeline.ItemTrack(itemID)
	if !ok {
		return fmt.Errorf("item %s not found", itemID)
	}
	if track.Locked {
		return fmt.Errorf("track %s is locked", track.ID)
	}

	gesture, err := trim.Begin(item, handle, pixelsPerSecond)
	if err != nil {
		return err
	}
	session.gesture = gesture
	return nil
}

// ChangeTrim updates the active trim gesture with the total pixel delta since
// BeginTrim and returns the visual candidate.
func (s *Service) ChangeTrim(projectID string, deltaPixels float64) (trim.Gesture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessionLocked(projectID)
	if session.gesture.Phase != trim.PhaseTrimming {
		return trim.Idle(), fmt.Errorf("no trim gesture in progress")
	}
	session.gesture = session.gesture.Change(deltaPixels)
	return session.gesture, nil
}

// EndTrim settles the active gesture, applies the committed values to the
// item, and publishes the trim event (carrying the ratio pair for video
// items, which the editor module folds into the edit descriptor).
func (s *Service) EndTrim(projectID string, deltaPixels float64) (trim.Commit, error) {
	s.mu.Lock()
	session := s.sessionLocked(projectID)
	if session.gesture.Phase != trim.PhaseTrimming {
		s.mu.Unlock()
		return trim.Commit{}, fmt.Errorf("no trim gesture in progress")
	}

	itemID := session.gesture.ItemID
	track, item, ok := session.Timeline.ItemTrack(itemID)
	if !ok {
		session.gesture = trim.Idle()
		s.mu.Unlock()
		return trim.Commit{}, fmt.Errorf("trimmed item %s no longer exists", itemID)
	}

	commit, idle := session.gesture.End(deltaPixels, track)
	session.gesture = idle

	item.StartTime = commit.Start
	item.Duration = commit.Duration
	if commit.HasRatios && item.Video != nil {
		item.Video.TrimRatioStart = commit.TrimRatioStart
		item.Video.TrimRatioEnd = commit.TrimRatioEnd
	}
	s.mu.Unlock()

	data := map[string]interface{}{
		"item_id":          commit.ItemID,
		"start_seconds":    commit.Start.Seconds(),
		"duration_seconds": commit.Duration.Seconds(),
		"clamped":          commit.Clamped,
	}
	if commit.HasRatios {
		data["trim_ratio_start"] = commit.TrimRatioStart
		data["trim_ratio_end"] = commit.TrimRatioEnd
	}
	s.publish(events.EventTimelineItemTrimmed, projectID, "Item trimmed", data)
	return commit, nil
}

// CancelTrim abandons the active gesture without applying anything
func (s *Service) CancelTrim(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessionLocked(projectID)
	session.gesture = session.gesture.Cancel()
}

// ResolveAsset looks up source metadata through the registered asset service
func (s *Service) ResolveAsset(assetID string) (types.SourceAssetMetadata, error) {
	resolver, err := services.GetService[AssetResolver](services.AssetServiceName)
	if err != nil {
		return types.SourceAssetMetadata{}, fmt.Errorf("asset service unavailable: %w", err)
	}
	return resolver.Resolve(assetID)
}

func (s *Service) publish(eventType events.EventType, projectID, title string, data map[string]interface{}) {
	bus := s.eventBus
	if bus == nil {
		bus = events.GetGlobalEventBus()
	}
	if bus == nil {
		return
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	data["project_id"] = projectID
	event := events.NewEventWithData(eventType, ModuleID, title, "", data)
	if err := bus.PublishAsync(event); err != nil {
		s.logger.Warn("failed to publish event", "type", eventType, "error", err)
	}
}
