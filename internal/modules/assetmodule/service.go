package assetmodule

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/clipstack/clipstack/internal/config"
	"github.com/clipstack/clipstack/internal/events"
	"github.com/clipstack/clipstack/internal/modules/editormodule/core/compositor"
	timeline "github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
)

// RegisterRequest describes an asset to add to the registry. Duration comes
// from the caller (the probing decoder lives outside this core); audio files
// additionally get their tags read for display metadata.
type RegisterRequest struct {
	Path            string    `json:"path" binding:"required"`
	Kind            AssetKind `json:"kind" binding:"required"`
	DurationSeconds float64   `json:"duration_seconds"`
	HasAudioTrack   bool      `json:"has_audio_track"`
}

// Service is the asset registry backed by the database
type Service struct {
	db       *gorm.DB
	cfg      config.AssetConfig
	eventBus events.EventBus
	logger   hclog.Logger
}

// NewService creates the asset service
func NewService(db *gorm.DB, cfg config.AssetConfig, eventBus events.EventBus, logger hclog.Logger) *Service {
	return &Service{db: db, cfg: cfg, eventBus: eventBus, logger: logger}
}

// Register adds an asset to the registry. Re-registering a known path
// updates its metadata in place and keeps the original id.
func (s *Service) Register(req RegisterRequest) (*Asset, error) {
	if req.Kind != AssetKindVideo && req.Kind != AssetKindAudio {
		return nil, fmt.Errorf("unknown asset kind %q", req.Kind)
	}
	if req.DurationSeconds < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %v", req.DurationSeconds)
	}

	duration := timeline.FromSeconds(req.DurationSeconds, timeline.DefaultScale)
	asset := &Asset{
		ID:            uuid.NewString(),
		Path:          req.Path,
		Kind:          req.Kind,
		DurationValue: duration.Value,
		DurationScale: duration.Scale,
		HasAudioTrack: req.HasAudioTrack || req.Kind == AssetKindAudio,
	}

	if req.Kind == AssetKindAudio {
		s.probeTags(asset)
	}
	if asset.Title == "" {
		asset.Title = baseName(req.Path)
	}

	var existing Asset
	err := s.db.Where("path = ?", req.Path).First(&existing).Error
	switch {
	case err == nil:
		asset.ID = existing.ID
		asset.CreatedAt = existing.CreatedAt
		if err := s.db.Save(asset).Error; err != nil {
			return nil, fmt.Errorf("failed to update asset: %w", err)
		}
	case err == gorm.ErrRecordNotFound:
		if err := s.db.Create(asset).Error; err != nil {
			return nil, fmt.Errorf("failed to create asset: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up asset: %w", err)
	}

	s.publish(events.EventAssetRegistered, asset)
	return asset, nil
}

// probeTags reads embedded audio metadata for display purposes. A file that
// cannot be opened or parsed just keeps empty tags.
func (s *Service) probeTags(asset *Asset) {
	f, err := os.Open(asset.Path)
	if err != nil {
		s.logger.Debug("cannot open asset for tag probe", "path", asset.Path, "error", err)
		return
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		s.logger.Debug("no readable tags", "path", asset.Path, "error", err)
		return
	}
	asset.Title = meta.Title()
	asset.Artist = meta.Artist()
}

// Get returns an asset by id
func (s *Service) Get(id string) (*Asset, error) {
	var asset Asset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("asset %s not found", id)
		}
		return nil, err
	}
	return &asset, nil
}

// Resolve returns the timeline-facing metadata for an asset
func (s *Service) Resolve(id string) (timeline.SourceAssetMetadata, error) {
	asset, err := s.Get(id)
	if err != nil {
		return timeline.SourceAssetMetadata{}, err
	}
	return asset.Metadata(), nil
}

// List returns all registered assets, optionally filtered by kind
func (s *Service) List(kind AssetKind) ([]Asset, error) {
	var assets []Asset
	query := s.db.Order("created_at")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// SetDuration updates an asset's duration once the decoding collaborator has
// probed it.
func (s *Service) SetDuration(id string, seconds float64) (*Asset, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %v", seconds)
	}
	asset, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	duration := timeline.FromSeconds(seconds, timeline.DefaultScale)
	asset.DurationValue = duration.Value
	asset.DurationScale = duration.Scale
	if err := s.db.Save(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// Remove deletes an asset from the registry
func (s *Service) Remove(id string) error {
	asset, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&Asset{}, "id = ?", id).Error; err != nil {
		return err
	}
	s.publish(events.EventAssetRemoved, asset)
	return nil
}

// ExpectedUnits tells the thumbnail/waveform collaborator how many display
// units to produce for a time span, from the fixed seconds-per-unit setting.
func (s *Service) ExpectedUnits(span timeline.RationalTime) int {
	return compositor.ExpectedUnits(span, s.cfg.SecondsPerThumbnail)
}

func (s *Service) publish(eventType events.EventType, asset *Asset) {
	bus := s.eventBus
	if bus == nil {
		bus = events.GetGlobalEventBus()
	}
	if bus == nil {
		return
	}
	event := events.NewEventWithData(eventType, ModuleID, "Asset "+string(eventType), "", map[string]interface{}{
		"asset_id": asset.ID,
		"path":     asset.Path,
		"kind":     string(asset.Kind),
	})
	if err := s.eventBus.PublishAsync(event); err != nil {
		s.logger.Warn("failed to publish asset event", "error", err)
	}
}

func baseName(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		path = path[idx+1:]
	}
	if idx := strings.LastIndexByte(path, '.'); idx > 0 {
		path = path[:idx]
	}
	return path
}
