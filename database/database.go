package database

import (
	"gorm.io/gorm"

	"github.com/mreyes-dev/portfolio-site-backend/models"
)

type Database struct {
	db             *gorm.DB
	projectRepo    *ItemRepo
	experienceRepo *ItemRepo
	adminRepo      *AdminRepo
	contactRepo    *ContactRepo
	settingRepo    *SettingRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:             db,
		projectRepo:    NewItemRepo(db, models.EntityProject),
		experienceRepo: NewItemRepo(db, models.EntityExperience),
		adminRepo:      NewAdminRepo(db),
		contactRepo:    NewContactRepo(db),
		settingRepo:    NewSettingRepo(db),
	}
}

// DB returns the underlying database connection for health checks and
// lifecycle management
func (d Database) DB() *gorm.DB {
	return d.db
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ItemRepo {
	return d.projectRepo
}

func (d Database) ExperienceRepo() *ItemRepo {
	return d.experienceRepo
}

// ItemRepoFor selects the repo backing one entity-type collection.
func (d Database) ItemRepoFor(t models.EntityType) *ItemRepo {
	if t == models.EntityExperience {
		return d.experienceRepo
	}
	return d.projectRepo
}

func (d Database) AdminRepo() *AdminRepo {
	return d.adminRepo
}

func (d Database) ContactRepo() *ContactRepo {
	return d.contactRepo
}

func (d Database) SettingRepo() *SettingRepo {
	return d.settingRepo
}
