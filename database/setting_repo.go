package database

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mreyes-dev/portfolio-site-backend/models"
)

type SettingRepo struct {
	db *gorm.DB
}

func NewSettingRepo(db *gorm.DB) *SettingRepo {
	return &SettingRepo{db}
}

// FindAll returns every setting sorted by key.
func (r *SettingRepo) FindAll() ([]*models.Setting, error) {
	var settings []*models.Setting
	err := r.db.Order("key ASC").Find(&settings).Error
	return settings, err
}

// Find returns one setting or nil when the key is unset.
func (r *SettingRepo) Find(key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Set upserts a setting value.
func (r *SettingRepo) Set(key, value string) (*models.Setting, error) {
	setting := models.Setting{Key: key, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, err
	}
	return r.Find(key)
}
