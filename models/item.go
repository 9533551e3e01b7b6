package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EntityType discriminates the two item collections sharing one table.
type EntityType string

const (
	EntityProject    EntityType = "project"
	EntityExperience EntityType = "experience"
)

func (t EntityType) Valid() bool {
	return t == EntityProject || t == EntityExperience
}

// Plural is the collection name used in routes and storage folders.
func (t EntityType) Plural() string {
	switch t {
	case EntityExperience:
		return "experiences"
	default:
		return "projects"
	}
}

// Item represents a portfolio project or experience. Position defines
// display order within one entity type and is rewritten by reorders.
type Item struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey;not null"`
	EntityType   EntityType                  `json:"entityType" gorm:"type:text;not null;index:idx_items_entity_type"`
	Name         string                      `json:"name" gorm:"type:text;not null"`
	Role         string                      `json:"role" gorm:"type:text;not null;default:''"`
	Description  string                      `json:"description" gorm:"type:text"`
	ShortDesc    string                      `json:"shortDesc" gorm:"type:text"`
	ImageURL     string                      `json:"imageUrl" gorm:"type:text"`
	GifURL       string                      `json:"gifUrl" gorm:"type:text"`
	ExtraImages  datatypes.JSONSlice[string] `json:"extraImages"`
	GithubURL    string                      `json:"githubUrl" gorm:"type:text"`
	LiveURL      string                      `json:"liveUrl" gorm:"type:text"`
	Technologies datatypes.JSONSlice[string] `json:"technologies"`
	DateRange    string                      `json:"dateRange" gorm:"type:text"`
	Position     int                         `json:"position" gorm:"not null;index:idx_items_position"`
	Published    bool                        `json:"published" gorm:"not null;default:false"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`

	Outcomes []LearningOutcome `json:"learningOutcomes" gorm:"foreignKey:ItemID;references:ID;constraint:OnDelete:CASCADE"`
}
