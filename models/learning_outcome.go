package models

import "github.com/google/uuid"

// LearningOutcome is an ordered child record owned by exactly one Item.
// Outcomes are deleted and recreated on every full item update, so their
// IDs do not persist across edits.
type LearningOutcome struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	ItemID      uuid.UUID `json:"itemId" gorm:"type:uuid;not null;index:idx_outcomes_item_id"`
	Header      string    `json:"header" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Position    int       `json:"position" gorm:"not null"`
}
