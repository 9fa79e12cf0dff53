package events

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// StoredEvent is the gorm model used to persist events
type StoredEvent struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Type      string    `gorm:"type:varchar(64);index;not null"`
	Source    string    `gorm:"type:varchar(128);index"`
	Title     string    `gorm:"type:varchar(255)"`
	Message   string    `gorm:"type:text"`
	Data      string    `gorm:"type:text"` // json-encoded payload
	Priority  int       `gorm:"index"`
	Tags      string    `gorm:"type:text"` // json-encoded string list
	Timestamp time.Time `gorm:"index;not null"`
}

// TableName overrides the default table name
func (StoredEvent) TableName() string {
	return "events"
}

// databaseEventStorage persists events through gorm
type databaseEventStorage struct {
	db *gorm.DB
}

// NewDatabaseEventStorage creates event storage backed by the given database
func NewDatabaseEventStorage(db *gorm.DB) EventStorage {
	return &databaseEventStorage{db: db}
}

// Migrate creates the events table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&StoredEvent{})
}

func (s *databaseEventStorage) Store(ctx context.Context, event Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	tags, err := json.Marshal(event.Tags)
	if err != nil {
		return err
	}

	stored := StoredEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		Source:    event.Source,
		Title:     event.Title,
		Message:   event.Message,
		Data:      string(data),
		Priority:  int(event.Priority),
		Tags:      string(tags),
		Timestamp: event.Timestamp,
	}

	return s.db.WithContext(ctx).Create(&stored).Error
}

func (s *databaseEventStorage) Get(ctx context.Context, filter EventFilter, limit, offset int) ([]Event, int64, error) {
	query := s.db.WithContext(ctx).Model(&StoredEvent{})

	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		query = query.Where("type IN ?", types)
	}
	if len(filter.Sources) > 0 {
		query = query.Where("source IN ?", filter.Sources)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stored []StoredEvent
	if err := query.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&stored).Error; err != nil {
		return nil, 0, err
	}

	result := make([]Event, 0, len(stored))
	for _, se := range stored {
		result = append(result, se.toEvent())
	}
	return result, total, nil
}

func (s *databaseEventStorage) Delete(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return s.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&StoredEvent{}).Error
}

func (s *databaseEventStorage) Close() error {
	return nil
}

// toEvent converts a stored row back into an Event
func (se StoredEvent) toEvent() Event {
	event := Event{
		ID:        se.ID,
		Type:      EventType(se.Type),
		Source:    se.Source,
		Title:     se.Title,
		Message:   se.Message,
		Priority:  EventPriority(se.Priority),
		Timestamp: se.Timestamp,
	}

	if se.Data != "" {
		_ = json.Unmarshal([]byte(se.Data), &event.Data)
	}
	if se.Tags != "" {
		_ = json.Unmarshal([]byte(se.Tags), &event.Tags)
	}
	return event
}
