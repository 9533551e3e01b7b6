package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a dashboard account. Only accounts with IsAdmin set may reach
// mutating routes.
type Admin struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Email        string    `json:"email" gorm:"type:text;not null;unique"`
	PasswordHash string    `json:"-" gorm:"type:text;not null"`
	IsAdmin      bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt"`
}
