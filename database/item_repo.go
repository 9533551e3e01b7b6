package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mreyes-dev/portfolio-site-backend/errs"
	"github.com/mreyes-dev/portfolio-site-backend/models"
)

// ItemRepo serves one entity-type collection. Projects and experiences
// share the items table; every query here is scoped by the entity type the
// repo was constructed with.
type ItemRepo struct {
	db         *gorm.DB
	entityType models.EntityType
}

func NewItemRepo(db *gorm.DB, entityType models.EntityType) *ItemRepo {
	return &ItemRepo{db: db, entityType: entityType}
}

// EntityType returns the collection this repo is scoped to.
func (r *ItemRepo) EntityType() models.EntityType {
	return r.entityType
}

func (r *ItemRepo) scoped(tx *gorm.DB) *gorm.DB {
	return tx.Where("entity_type = ?", r.entityType)
}

func orderedOutcomes(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindAll returns the collection sorted by position ascending, outcomes
// nested sorted the same way.
func (r *ItemRepo) FindAll() ([]*models.Item, error) {
	var items []*models.Item
	err := r.scoped(r.db).
		Preload("Outcomes", orderedOutcomes).
		Order("position ASC").
		Find(&items).Error
	return items, err
}

// FindByID returns the item with its outcomes, or nil when no row of this
// entity type matches.
func (r *ItemRepo) FindByID(id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.scoped(r.db).
		Preload("Outcomes", orderedOutcomes).
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Add inserts a new item at the end of the collection, together with any
// outcomes already attached to it. The position is counted and written
// inside one transaction so two concurrent inserts cannot both claim the
// same slot and break the 0..N-1 position sequence.
func (r *ItemRepo) Add(item *models.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.EntityType = r.entityType
	for i := range item.Outcomes {
		if item.Outcomes[i].ID == uuid.Nil {
			item.Outcomes[i].ID = uuid.New()
		}
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := r.scoped(tx.Model(&models.Item{})).Count(&count).Error; err != nil {
			return err
		}
		item.Position = int(count)
		return tx.Create(item).Error
	})
}

// Update persists the item's own columns. Outcomes are never written here;
// ReplaceOutcomes owns that path.
func (r *ItemRepo) Update(item *models.Item) error {
	item.EntityType = r.entityType
	return r.db.Session(&gorm.Session{FullSaveAssociations: false}).
		Omit("Outcomes").
		Save(item).Error
}

// SetPublished flips only the published flag.
func (r *ItemRepo) SetPublished(id uuid.UUID, published bool) error {
	return r.scoped(r.db.Model(&models.Item{})).
		Where("id = ?", id).
		Update("published", published).Error
}

// ReplaceOutcomes drops every outcome owned by the item and recreates the
// submitted list in one transaction, so outcome identity does not survive
// an edit.
func (r *ItemRepo) ReplaceOutcomes(itemID uuid.UUID, outcomes []models.LearningOutcome) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&models.LearningOutcome{}).Error; err != nil {
			return err
		}
		if len(outcomes) == 0 {
			return nil
		}
		for i := range outcomes {
			if outcomes[i].ID == uuid.Nil {
				outcomes[i].ID = uuid.New()
			}
			outcomes[i].ItemID = itemID
		}
		return tx.Create(&outcomes).Error
	})
}

// Delete removes the item and its outcomes.
func (r *ItemRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.LearningOutcome{}).Error; err != nil {
			return err
		}
		return r.scoped(tx).Delete(&models.Item{}, "id = ?", id).Error
	})
}

// Reorder rewrites position values from the submitted ordering inside a
// single transaction. Any id that does not resolve to a stored row of this
// entity type aborts the whole transaction before the first position write,
// so a partial reorder is never observable. Returns the freshly sorted
// collection on success.
func (r *ItemRepo) Reorder(orderedIDs []uuid.UUID) ([]*models.Item, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Item
		if err := r.scoped(tx).
			Select("id").
			Where("id IN ?", orderedIDs).
			Find(&existing).Error; err != nil {
			return err
		}

		known := make(map[uuid.UUID]bool, len(existing))
		for _, item := range existing {
			known[item.ID] = true
		}

		var missing []string
		for _, id := range orderedIDs {
			if !known[id] {
				missing = append(missing, id.String())
			}
		}
		if len(missing) > 0 {
			return errs.NewReorderConflictError(missing)
		}

		for index, id := range orderedIDs {
			if err := tx.Model(&models.Item{}).
				Where("id = ?", id).
				Update("position", index).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindAll()
}
