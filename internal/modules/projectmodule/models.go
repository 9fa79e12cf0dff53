package projectmodule

import (
	"time"
)

// Project is a saved editing session: the timeline snapshot plus the edit
// descriptor, serialized as JSON columns. The live state stays in the
// timeline and editor services; rows here are only written on save.
type Project struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"not null"`
	PrimaryAssetID string    `json:"primary_asset_id"`
	TimelineJSON   string    `json:"-" gorm:"type:text"`
	DescriptorJSON string    `json:"-" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}
