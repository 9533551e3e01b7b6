package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mreyes-dev/portfolio-site-backend/database"
	"github.com/mreyes-dev/portfolio-site-backend/errs"
	"github.com/mreyes-dev/portfolio-site-backend/models"
)

// OutcomeInput is one submitted learning outcome. Entries whose trimmed
// header or description is empty are dropped before persistence.
type OutcomeInput struct {
	Header      string `json:"header"`
	Description string `json:"description"`
}

// ItemInput carries everything a create or full update can submit. File
// fields are nil/empty when the client attached nothing under that key.
// ExistingExtraImages is non-nil only when the client round-tripped the
// list of previously uploaded URLs it wants to keep.
type ItemInput struct {
	Name         string
	Role         string
	Description  string
	ShortDesc    string
	GithubURL    string
	LiveURL      string
	DateRange    string
	Technologies []string
	Published    bool
	Outcomes     []OutcomeInput

	Image               *FileUpload
	Gif                 *FileUpload
	ExtraImages         []FileUpload
	ExistingExtraImages *[]string
}

// ItemService holds the create/update/reorder business logic shared by the
// project and experience collections.
type ItemService struct {
	logger  zerolog.Logger
	db      database.Database
	storage ObjectStorage
}

func NewItemService(db database.Database, storage ObjectStorage) *ItemService {
	return &ItemService{
		logger:  log.With().Str("serviceName", "itemService").Logger(),
		db:      db,
		storage: storage,
	}
}

func (s *ItemService) repo(entityType models.EntityType) *database.ItemRepo {
	return s.db.ItemRepoFor(entityType)
}

// List returns the collection sorted by position, outcomes nested.
func (s *ItemService) List(entityType models.EntityType) ([]*models.Item, error) {
	items, err := s.repo(entityType).FindAll()
	if err != nil {
		return nil, errs.NewDatabaseError("find", entityType.Plural(), err)
	}
	return items, nil
}

// Get returns one item or a 404 error.
func (s *ItemService) Get(entityType models.EntityType, id uuid.UUID) (*models.Item, error) {
	item, err := s.repo(entityType).FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", string(entityType), err)
	}
	if item == nil {
		return nil, errs.NewNotFoundError(string(entityType) + " not found")
	}
	return item, nil
}

func validateInput(entityType models.EntityType, in ItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errs.NewMissingRequiredFieldError("Name")
	}
	if entityType == models.EntityExperience && strings.TrimSpace(in.Role) == "" {
		return errs.NewBadRequestError("Role is required for experiences")
	}
	return nil
}

// buildOutcomes filters submitted outcomes to those with a non-empty
// trimmed header and description, assigning position by surviving index.
func buildOutcomes(inputs []OutcomeInput) []models.LearningOutcome {
	outcomes := make([]models.LearningOutcome, 0, len(inputs))
	for _, in := range inputs {
		header := strings.TrimSpace(in.Header)
		description := strings.TrimSpace(in.Description)
		if header == "" || description == "" {
			continue
		}
		outcomes = append(outcomes, models.LearningOutcome{
			Header:      header,
			Description: description,
			Position:    len(outcomes),
		})
	}
	return outcomes
}

// Create validates the payload, uploads any attached media, and persists a
// new item appended at the end of the collection's order. A failed upload
// degrades to an empty URL rather than aborting the create.
func (s *ItemService) Create(ctx context.Context, entityType models.EntityType, in ItemInput) (*models.Item, error) {
	if err := validateInput(entityType, in); err != nil {
		return nil, err
	}

	repo := s.repo(entityType)

	item := models.Item{
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		Description:  in.Description,
		ShortDesc:    in.ShortDesc,
		GithubURL:    in.GithubURL,
		LiveURL:      in.LiveURL,
		DateRange:    in.DateRange,
		Technologies: in.Technologies,
		Published:    in.Published,
		Outcomes:     buildOutcomes(in.Outcomes),
	}

	if in.Image != nil {
		item.ImageURL = s.storage.Upload(ctx, *in.Image, entityType.Plural()+"/images")
	}
	if in.Gif != nil {
		item.GifURL = s.storage.Upload(ctx, *in.Gif, entityType.Plural()+"/gifs")
	}
	if len(in.ExtraImages) > 0 {
		item.ExtraImages = UploadAll(ctx, s.storage, in.ExtraImages, entityType.Plural()+"/extra")
	}

	if err := repo.Add(&item); err != nil {
		return nil, errs.NewDatabaseError("create", string(entityType), err)
	}

	return s.Get(entityType, item.ID)
}

// Update performs a full replace of the item's fields. Image and gif are
// re-uploaded only when new files are present; extraImages is replaced
// either by new uploads or by the round-tripped existing list. Learning
// outcomes are always deleted and recreated from the submitted list.
func (s *ItemService) Update(ctx context.Context, entityType models.EntityType, id uuid.UUID, in ItemInput) (*models.Item, error) {
	if err := validateInput(entityType, in); err != nil {
		return nil, err
	}

	repo := s.repo(entityType)

	item, err := s.Get(entityType, id)
	if err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(in.Name)
	item.Role = in.Role
	item.Description = in.Description
	item.ShortDesc = in.ShortDesc
	item.GithubURL = in.GithubURL
	item.LiveURL = in.LiveURL
	item.DateRange = in.DateRange
	item.Technologies = in.Technologies
	item.Published = in.Published

	if in.Image != nil {
		if url := s.storage.Upload(ctx, *in.Image, entityType.Plural()+"/images"); url != "" {
			item.ImageURL = url
		}
	}
	if in.Gif != nil {
		if url := s.storage.Upload(ctx, *in.Gif, entityType.Plural()+"/gifs"); url != "" {
			item.GifURL = url
		}
	}

	switch {
	case len(in.ExtraImages) > 0:
		item.ExtraImages = UploadAll(ctx, s.storage, in.ExtraImages, entityType.Plural()+"/extra")
	case in.ExistingExtraImages != nil:
		item.ExtraImages = *in.ExistingExtraImages
	}

	item.Outcomes = nil
	if err := repo.Update(item); err != nil {
		return nil, errs.NewDatabaseError("update", string(entityType), err)
	}

	if err := repo.ReplaceOutcomes(id, buildOutcomes(in.Outcomes)); err != nil {
		return nil, errs.NewDatabaseError("replace outcomes for", string(entityType), err)
	}

	return s.Get(entityType, id)
}

// SetPublished is the publish-only partial update: it touches nothing but
// the published flag.
func (s *ItemService) SetPublished(ctx context.Context, entityType models.EntityType, id uuid.UUID, published bool) (*models.Item, error) {
	if _, err := s.Get(entityType, id); err != nil {
		return nil, err
	}
	if err := s.repo(entityType).SetPublished(id, published); err != nil {
		return nil, errs.NewDatabaseError("publish", string(entityType), err)
	}
	return s.Get(entityType, id)
}

// Reorder rewrites the collection's position values from the submitted id
// ordering atomically; ids that do not resolve (unparseable, duplicate, or
// absent from the store) abort the whole operation with the offenders
// enumerated, leaving every position untouched.
func (s *ItemService) Reorder(ctx context.Context, entityType models.EntityType, orderedIDs []string) ([]*models.Item, error) {
	ids := make([]uuid.UUID, 0, len(orderedIDs))
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	var offending []string
	for _, raw := range orderedIDs {
		id, err := uuid.Parse(raw)
		if err != nil || seen[id] {
			offending = append(offending, raw)
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(offending) > 0 {
		return nil, errs.NewReorderConflictError(offending)
	}

	items, err := s.repo(entityType).Reorder(ids)
	if err != nil {
		if errs.IsReorderConflictError(err) {
			return nil, err
		}
		return nil, errs.NewDatabaseError("reorder", entityType.Plural(), err)
	}
	return items, nil
}

// Delete removes the item, its outcomes, and best-effort its stored media.
// Storage failures are logged, never surfaced.
func (s *ItemService) Delete(ctx context.Context, entityType models.EntityType, id uuid.UUID) error {
	item, err := s.Get(entityType, id)
	if err != nil {
		return err
	}

	if err := s.repo(entityType).Delete(id); err != nil {
		return errs.NewDatabaseError("delete", string(entityType), err)
	}

	urls := make([]string, 0, len(item.ExtraImages)+2)
	if item.ImageURL != "" {
		urls = append(urls, item.ImageURL)
	}
	if item.GifURL != "" {
		urls = append(urls, item.GifURL)
	}
	urls = append(urls, item.ExtraImages...)
	for _, url := range urls {
		if !s.storage.Delete(ctx, url) {
			s.logger.Warn().Str("url", url).Msg("failed to delete stored object for removed item")
		}
	}

	return nil
}
