package projectmodule

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/clipstack/clipstack/internal/events"
	edit "github.com/clipstack/clipstack/internal/modules/editormodule/types"
	timeline "github.com/clipstack/clipstack/internal/modules/timelinemodule/types"
	"github.com/clipstack/clipstack/internal/services"
)

// TimelineStore is the slice of the timeline service the project module
// needs, looked up through the service registry.
type TimelineStore interface {
	Timeline(projectID string) *timeline.Timeline
	LoadTimeline(projectID string, tl *timeline.Timeline)
}

// EditStore is the slice of the editor service the project module needs
type EditStore interface {
	Descriptor(projectID string) edit.EditDescriptor
	SetDescriptor(projectID string, descriptor edit.EditDescriptor)
}

// Service persists projects and restores live editing state from them
type Service struct {
	db       *gorm.DB
	eventBus events.EventBus
	logger   hclog.Logger
}

// NewService creates the project service
func NewService(db *gorm.DB, eventBus events.EventBus, logger hclog.Logger) *Service {
	return &Service{db: db, eventBus: eventBus, logger: logger}
}

// Create adds a new empty project
func (s *Service) Create(name, primaryAssetID string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	project := &Project{
		ID:             uuid.NewString(),
		Name:           name,
		PrimaryAssetID: primaryAssetID,
	}
	if err := s.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// Get returns a project by id
func (s *Service) Get(id string) (*Project, error) {
	var project Project
	if err := s.db.First(&project, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("project %s not found", id)
		}
		return nil, err
	}
	return &project, nil
}

// List returns all projects, most recently updated first
func (s *Service) List() ([]Project, error) {
	var projects []Project
	if err := s.db.Order("updated_at desc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Rename changes a project's name
func (s *Service) Rename(id, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	project.Name = name
	if err := s.db.Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// Save snapshots the project's live timeline and edit descriptor into the
// database.
func (s *Service) Save(id string) (*Project, error) {
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	timelineStore, err := services.GetService[TimelineStore](services.TimelineServiceName)
	if err != nil {
		return nil, fmt.Errorf("timeline service unavailable: %w", err)
	}
	editStore, err := services.GetService[EditStore](services.EditorServiceName)
	if err != nil {
		return nil, fmt.Errorf("editor service unavailable: %w", err)
	}

	timelineJSON, err := json.Marshal(timelineStore.Timeline(id))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize timeline: %w", err)
	}
	descriptorJSON, err := json.Marshal(editStore.Descriptor(id))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize descriptor: %w", err)
	}

	project.TimelineJSON = string(timelineJSON)
	project.DescriptorJSON = string(descriptorJSON)
	if err := s.db.Save(project).Error; err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.publish(events.EventProjectSaved, project)
	return project, nil
}

// Load restores the project's saved timeline and descriptor into the live
// services.
func (s *Service) Load(id string) (*Project, error) {
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	timelineStore, err := services.GetService[TimelineStore](services.TimelineServiceName)
	if err != nil {
		return nil, fmt.Errorf("timeline service unavailable: %w", err)
	}
	editStore, err := services.GetService[EditStore](services.EditorServiceName)
	if err != nil {
		return nil, fmt.Errorf("editor service unavailable: %w", err)
	}

	if project.TimelineJSON != "" {
		restored := timeline.NewTimeline()
		if err := json.Unmarshal([]byte(project.TimelineJSON), restored); err != nil {
			return nil, fmt.Errorf("failed to parse saved timeline: %w", err)
		}
		timelineStore.LoadTimeline(id, restored)
	}

	if project.DescriptorJSON != "" {
		descriptor := edit.NewEditDescriptor()
		if err := json.Unmarshal([]byte(project.DescriptorJSON), &descriptor); err != nil {
			return nil, fmt.Errorf("failed to parse saved descriptor: %w", err)
		}
		editStore.SetDescriptor(id, descriptor)
	}

	s.publish(events.EventProjectLoaded, project)
	return project, nil
}

// Delete removes a project
func (s *Service) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.db.Delete(&Project{}, "id = ?", id).Error
}

func (s *Service) publish(eventType events.EventType, project *Project) {
	bus := s.eventBus
	if bus == nil {
		bus = events.GetGlobalEventBus()
	}
	if bus == nil {
		return
	}
	event := events.NewEventWithData(eventType, ModuleID, "Project "+project.Name, "", map[string]interface{}{
		"project_id": project.ID,
	})
	if err := bus.PublishAsync(event); err != nil {
		s.logger.Warn("failed to publish project event", "error", err)
	}
}
