package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mreyes-dev/portfolio-site-backend/models"
)

type AdminRepo struct {
	db *gorm.DB
}

func NewAdminRepo(db *gorm.DB) *AdminRepo {
	return &AdminRepo{db}
}

// FindByID returns the admin account or nil when none matches.
func (r *AdminRepo) FindByID(id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.First(&admin, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByEmail returns the admin account or nil when none matches.
func (r *AdminRepo) FindByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.First(&admin, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Add inserts a new admin account.
func (r *AdminRepo) Add(admin *models.Admin) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	return r.db.Create(admin).Error
}

// Count returns how many admin accounts exist.
func (r *AdminRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Admin{}).Count(&count).Error
	return count, err
}
