package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mreyes-dev/portfolio-site-backend/models"
)

type ContactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{db}
}

// FindAll returns all submissions, newest first.
func (r *ContactRepo) FindAll() ([]*models.ContactSubmission, error) {
	var submissions []*models.ContactSubmission
	err := r.db.Order("created_at DESC").Find(&submissions).Error
	return submissions, err
}

// Add inserts a new contact submission.
func (r *ContactRepo) Add(submission *models.ContactSubmission) error {
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	return r.db.Create(submission).Error
}

// Delete removes a submission by id.
func (r *ContactRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.ContactSubmission{}, "id = ?", id).Error
}
