package models

import "time"

// Setting is an admin-editable key/value pair (resume link, hero tagline).
type Setting struct {
	Key       string    `json:"key" gorm:"type:text;primaryKey"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}
