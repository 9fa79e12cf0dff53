package editormodule

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/clipstack/clipstack/internal/events"
	"github.com/clipstack/clipstack/internal/modules/editormodule/core/compositor"
	edit "github.com/clipstack/clipstack/internal/modules/editormodule/types"
	timeline "github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
	"github.com/clipstack/clipstack/internal/services"
)

// AssetResolver resolves asset ids into source metadata, looked up through
// the service registry.
type AssetResolver interface {
	Resolve(id string) (timeline.SourceAssetMetadata, error)
}

type projectEdit struct {
	descriptor edit.EditDescriptor
	source     timeline.SourceAssetMetadata
	hasSource  bool
}

// Service holds the current edit descriptor per project. Descriptors are
// copy-on-write: every update swaps in a new immutable value, so a compose
// running concurrently always sees a complete snapshot.
type Service struct {
	mu       sync.RWMutex
	projects map[string]*projectEdit
	eventBus events.EventBus
	logger   hclog.Logger
}

// NewService creates the editor service
func NewService(eventBus events.EventBus, logger hclog.Logger) *Service {
	return &Service{
		projects: make(map[string]*projectEdit),
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) projectLocked(projectID string) *projectEdit {
	p, ok := s.projects[projectID]
	if !ok {
		p = &projectEdit{descriptor: edit.NewEditDescriptor()}
		s.projects[projectID] = p
	}
	return p
}

// SetPrimaryAsset binds the project's primary asset and resets nothing else;
// the existing descriptor keeps applying to the new source.
func (s *Service) SetPrimaryAsset(projectID, assetID string) error {
	resolver, err := services.GetService[AssetResolver](services.AssetServiceName)
	if err != nil {
		return fmt.Errorf("asset service unavailable: %w", err)
	}
	source, err := resolver.Resolve(assetID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	p := s.projectLocked(projectID)
	p.source = source
	p.hasSource = true
	s.mu.Unlock()

	s.publishUpdated(projectID, "primary_asset")
	return nil
}

// Descriptor returns the project's current edit descriptor
func (s *Service) Descriptor(projectID string) edit.EditDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectLocked(projectID).descriptor
}

// SetDescriptor replaces the project's descriptor wholesale, used when
// loading a saved project.
func (s *Service) SetDescriptor(projectID string, descriptor edit.EditDescriptor) {
	s.mu.Lock()
	s.projectLocked(projectID).descriptor = descriptor
	s.mu.Unlock()
	s.publishUpdated(projectID, "loaded")
}

// Update applies a lens to the current descriptor and swaps in the result.
// The lens must not retain the input; it gets a value copy.
func (s *Service) Update(projectID, field string, lens func(edit.EditDescriptor) (edit.EditDescriptor, error)) (edit.EditDescriptor, error) {
	s.mu.Lock()
	p := s.projectLocked(projectID)
	next, err := lens(p.descriptor)
	if err != nil {
		s.mu.Unlock()
		return p.descriptor, err
	}
	p.descriptor = next
	s.mu.Unlock()

	s.publishUpdated(projectID, field)
	return next, nil
}

// SetSpeedRate changes the playback speed
func (s *Service) SetSpeedRate(projectID string, rate float64) (edit.EditDescriptor, error) {
	return s.Update(projectID, "speed_rate", func(d edit.EditDescriptor) (edit.EditDescriptor, error) {
		return d.WithSpeedRate(rate)
	})
}

// SetTrimRatios changes the trim window
func (s *Service) SetTrimRatios(projectID string, start, end float64) (edit.EditDescriptor, error) {
	return s.Update(projectID, "trim_ratios", func(d edit.EditDescriptor) (edit.EditDescriptor, error) {
		return d.WithTrimRatios(start, end)
	})
}

// SetFilter changes or clears the filter
func (s *Service) SetFilter(projectID string, filter *edit.FilterSpec) (edit.EditDescriptor, error) {
	return s.Update(projectID, "filter", func(d edit.EditDescriptor) (edit.EditDescriptor, error) {
		return d.WithFilter(filter), nil
	})
}

// SetCroppingPreset changes or clears the cropping preset
func (s *Service) SetCroppingPreset(projectID, preset string) (edit.EditDescriptor, error) {
	return s.Update(projectID, "cropping_preset", func(d edit.EditDescriptor) (edit.EditDescriptor, error) {
		return d.WithCroppingPreset(preset), nil
	})
}

// SetAudioReplacement swaps or restores the audio source
func (s *Service) SetAudioReplacement(projectID string, replacement *edit.AudioReplacement) (edit.EditDescriptor, error) {
	return s.Update(projectID, "audio_replacement", func(d edit.EditDescriptor) (edit.EditDescriptor, error) {
		return d.WithAudioReplacement(replacement), nil
	})
}

// SetVolume changes the audio gain
func (s *Service) SetVolume(projectID string, volume float64) (edit.EditDescriptor, error) {
	return s.Update(projectID, "volume", func(d edit.EditDescriptor) (edit.EditDescriptor, error) {
		return d.WithVolume(volume)
	})
}

// SetMuted toggles audio
func (s *Service) SetMuted(projectID string, muted bool) (edit.EditDescriptor, error) {
	return s.Update(projectID, "muted", func(d edit.EditDescriptor) (edit.EditDescriptor, error) {
		return d.WithMuted(muted), nil
	})
}

// SetStickers replaces the sticker list
func (s *Service) SetStickers(projectID string, stickers []edit.Sticker) (edit.EditDescriptor, error) {
	return s.Update(projectID, "stickers", func(d edit.EditDescriptor) (edit.EditDescriptor, error) {
		return d.WithStickers(stickers), nil
	})
}

// Compose builds a composition plan from the project's current descriptor
// and primary asset.
func (s *Service) Compose(projectID string, mode compositor.Mode) (compositor.CompositionPlan, error) {
	s.mu.RLock()
	p, ok := s.projects[projectID]
	if !ok || !p.hasSource {
		s.mu.RUnlock()
		return compositor.CompositionPlan{}, fmt.Errorf("project %s has no primary asset", projectID)
	}
	descriptor := p.descriptor
	source := p.source
	s.mu.RUnlock()

	plan, err := compositor.Compose(descriptor, source, mode)
	if err != nil {
		return compositor.CompositionPlan{}, err
	}

	if bus := s.bus(); bus != nil {
		event := events.NewEventWithData(events.EventCompositionReady, ModuleID, "Composition ready", "", map[string]interface{}{
			"project_id":      projectID,
			"mode":            string(mode),
			"output_duration": plan.OutputDuration.Seconds(),
		})
		if err := bus.PublishAsync(event); err != nil {
			s.logger.Warn("failed to publish composition event", "error", err)
		}
	}
	return plan, nil
}

// bus returns the injected event bus, falling back to the global one
func (s *Service) bus() events.EventBus {
	if s.eventBus != nil {
		return s.eventBus
	}
	return events.GetGlobalEventBus()
}

// handleItemTrimmed folds committed trim ratios from the timeline into the
// descriptor, keeping the two representations in sync.
func (s *Service) handleItemTrimmed(event events.Event) error {
	projectID, _ := event.Data["project_id"].(string)
	start, okStart := event.Data["trim_ratio_start"].(float64)
	end, okEnd := event.Data["trim_ratio_end"].(float64)
	if projectID == "" || !okStart || !okEnd {
		return nil
	}

	_, err := s.SetTrimRatios(projectID, start, end)
	if err != nil {
		s.logger.Warn("ignoring trim ratios from timeline", "project", projectID, "error", err)
	}
	return nil
}

func (s *Service) publishUpdated(projectID, field string) {
	bus := s.bus()
	if bus == nil {
		return
	}
	event := events.NewEventWithData(events.EventEditUpdated, ModuleID, "Edit updated", "", map[string]interface{}{
		"project_id": projectID,
		"field":      field,
	})
	if err := bus.PublishAsync(event); err != nil {
		s.logger.Warn("failed to publish edit update", "error", err)
	}
}
