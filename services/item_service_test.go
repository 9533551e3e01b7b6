package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mreyes-dev/portfolio-site-backend/database"
	"github.com/mreyes-dev/portfolio-site-backend/errs"
	"github.com/mreyes-dev/portfolio-site-backend/models"
)

// fakeStorage records uploads and deletes; filenames listed in failing
// simulate a storage outage for that file.
type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	deletes []string
	failing map[string]bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{failing: map[string]bool{}}
}

func (f *fakeStorage) Upload(ctx context.Context, file FileUpload, folder string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[file.Filename] {
		return ""
	}
	url := fmt.Sprintf("https://cdn.test/%s/%s", folder, file.Filename)
	f.uploads = append(f.uploads, url)
	return url
}

func (f *fakeStorage) Delete(ctx context.Context, publicURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, publicURL)
	return true
}

func newTestService(t *testing.T) (*ItemService, *fakeStorage) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=10000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Item{}, &models.LearningOutcome{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	storage := newFakeStorage()
	return NewItemService(database.New(db), storage), storage
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *errs.ApiErr, got %T: %v", err, err)
	}
	return apiErr.StatusCode
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), models.EntityProject, ItemInput{
		Role:        "Engineer",
		Description: "something",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := statusOf(t, err); got != 400 {
		t.Fatalf("expected 400, got %d", got)
	}
}

func TestCreateExperienceRequiresRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), models.EntityExperience, ItemInput{Name: "X"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := statusOf(t, err); got != 400 {
		t.Fatalf("expected 400, got %d", got)
	}
	if err.Error() != "Role is required for experiences" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestCreateProjectWithoutRoleDefaultsToEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.Create(context.Background(), models.EntityProject, ItemInput{Name: "X"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.Role != "" {
		t.Fatalf("expected empty role, got %q", item.Role)
	}
}

func TestCreateFiltersOutcomesAndIndexesPositions(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.Create(context.Background(), models.EntityProject, ItemInput{
		Name: "X",
		Outcomes: []OutcomeInput{
			{Header: "A", Description: "first"},
			{Header: "  ", Description: "blank header"},
			{Header: "no description", Description: ""},
			{Header: "B", Description: "second"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(item.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes after filtering, got %d", len(item.Outcomes))
	}
	for i, want := range []string{"A", "B"} {
		if item.Outcomes[i].Header != want || item.Outcomes[i].Position != i {
			t.Fatalf("outcome %d: got %+v", i, item.Outcomes[i])
		}
	}
}

func TestCreateAppendsAtEndOfOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i, name := range []string{"first", "second", "third"} {
		item, err := svc.Create(ctx, models.EntityProject, ItemInput{Name: name})
		if err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
		if item.Position != i {
			t.Fatalf("%q: expected position %d, got %d", name, i, item.Position)
		}
	}
}

func TestCreateConcurrentPositionsStaySequential(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	createErrs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, createErrs[i] = svc.Create(ctx, models.EntityProject, ItemInput{
				Name: fmt.Sprintf("concurrent-%d", i),
			})
		}(i)
	}
	wg.Wait()
	for i, err := range createErrs {
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	items, err := svc.List(models.EntityProject)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != workers {
		t.Fatalf("expected %d items, got %d", workers, len(items))
	}

	// Every position slot must be claimed exactly once.
	seen := make(map[int]string, workers)
	for _, item := range items {
		if prev, dup := seen[item.Position]; dup {
			t.Fatalf("position %d assigned to both %q and %q", item.Position, prev, item.Name)
		}
		seen[item.Position] = item.Name
	}
	for i := 0; i < workers; i++ {
		if _, ok := seen[i]; !ok {
			t.Fatalf("no item holds position %d", i)
		}
	}
}

func TestCreateTechnologiesRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), models.EntityProject, ItemInput{
		Name:         "X",
		Technologies: []string{"Go", "Rust"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fetched, err := svc.Get(models.EntityProject, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(fetched.Technologies) != 2 || fetched.Technologies[0] != "Go" || fetched.Technologies[1] != "Rust" {
		t.Fatalf("technologies order not preserved: %v", fetched.Technologies)
	}
}

func TestCreateUploadsMediaIntoTypedFolders(t *testing.T) {
	svc, storage := newTestService(t)

	item, err := svc.Create(context.Background(), models.EntityProject, ItemInput{
		Name:  "X",
		Image: &FileUpload{Data: []byte("img"), Filename: "cover.png"},
		Gif:   &FileUpload{Data: []byte("gif"), Filename: "demo.gif"},
		ExtraImages: []FileUpload{
			{Data: []byte("1"), Filename: "one.png"},
			{Data: []byte("2"), Filename: "two.png"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.Contains(item.ImageURL, "projects/images/") {
		t.Fatalf("image uploaded to wrong folder: %q", item.ImageURL)
	}
	if !strings.Contains(item.GifURL, "projects/gifs/") {
		t.Fatalf("gif uploaded to wrong folder: %q", item.GifURL)
	}
	if len(item.ExtraImages) != 2 {
		t.Fatalf("expected 2 extra images, got %v", item.ExtraImages)
	}
	if len(storage.uploads) != 4 {
		t.Fatalf("expected 4 uploads, recorded %d", len(storage.uploads))
	}
}

func TestCreateSurvivesFailedUpload(t *testing.T) {
	svc, storage := newTestService(t)
	storage.failing["cover.png"] = true
	storage.failing["two.png"] = true

	item, err := svc.Create(context.Background(), models.EntityProject, ItemInput{
		Name:  "X",
		Image: &FileUpload{Data: []byte("img"), Filename: "cover.png"},
		ExtraImages: []FileUpload{
			{Data: []byte("1"), Filename: "one.png"},
			{Data: []byte("2"), Filename: "two.png"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.ImageURL != "" {
		t.Fatalf("expected empty image url after failed upload, got %q", item.ImageURL)
	}
	// The failed extra image is filtered out, not kept as a hole.
	if len(item.ExtraImages) != 1 || !strings.Contains(item.ExtraImages[0], "one.png") {
		t.Fatalf("unexpected extra images: %v", item.ExtraImages)
	}
}

func TestPublishOnlyUpdateTouchesNothingElse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.EntityProject, ItemInput{
		Name:         "X",
		Description:  "desc",
		Technologies: []string{"Go"},
		Outcomes:     []OutcomeInput{{Header: "A", Description: "B"}},
		ExtraImages:  []FileUpload{{Data: []byte("1"), Filename: "one.png"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Published {
		t.Fatal("expected unpublished item")
	}

	updated, err := svc.SetPublished(ctx, models.EntityProject, created.ID, true)
	if err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	if !updated.Published {
		t.Fatal("expected published flag set")
	}
	if updated.Name != created.Name ||
		updated.Description != created.Description ||
		len(updated.Technologies) != 1 ||
		len(updated.ExtraImages) != 1 ||
		len(updated.Outcomes) != 1 {
		t.Fatalf("publish-only update mutated other fields: %+v", updated)
	}
	if updated.Outcomes[0].Header != "A" || updated.Outcomes[0].Description != "B" {
		t.Fatalf("publish-only update touched outcomes: %+v", updated.Outcomes)
	}
}

func TestFullUpdateRewritesOutcomes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.EntityProject, ItemInput{
		Name: "X",
		Outcomes: []OutcomeInput{
			{Header: "old-1", Description: "d"},
			{Header: "old-2", Description: "d"},
			{Header: "old-3", Description: "d"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, models.EntityProject, created.ID, ItemInput{
		Name:     "X",
		Outcomes: []OutcomeInput{{Header: "A", Description: "B"}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Outcomes) != 1 {
		t.Fatalf("expected exactly 1 outcome, got %d", len(updated.Outcomes))
	}
	out := updated.Outcomes[0]
	if out.Header != "A" || out.Description != "B" || out.Position != 0 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestUpdateKeepsImageWhenNoNewFile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.EntityProject, ItemInput{
		Name:  "X",
		Image: &FileUpload{Data: []byte("img"), Filename: "cover.png"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, models.EntityProject, created.ID, ItemInput{Name: "renamed"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ImageURL != created.ImageURL {
		t.Fatalf("image url changed without a new file: %q -> %q", created.ImageURL, updated.ImageURL)
	}
	if updated.Name != "renamed" {
		t.Fatalf("expected renamed item, got %q", updated.Name)
	}
}

func TestUpdateReplacesExtraImagesWithNewUploads(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.EntityProject, ItemInput{
		Name:        "X",
		ExtraImages: []FileUpload{{Data: []byte("1"), Filename: "old.png"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, models.EntityProject, created.ID, ItemInput{
		Name:        "X",
		ExtraImages: []FileUpload{{Data: []byte("2"), Filename: "new.png"}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	// Old URLs are not merged in; the list is replaced wholesale.
	if len(updated.ExtraImages) != 1 || !strings.Contains(updated.ExtraImages[0], "new.png") {
		t.Fatalf("expected replaced extra images, got %v", updated.ExtraImages)
	}
}

func TestUpdateKeepsRoundTrippedExtraImages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.EntityProject, ItemInput{
		Name: "X",
		ExtraImages: []FileUpload{
			{Data: []byte("1"), Filename: "keep.png"},
			{Data: []byte("2"), Filename: "drop.png"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	keep := []string{created.ExtraImages[0]}
	updated, err := svc.Update(ctx, models.EntityProject, created.ID, ItemInput{
		Name:                "X",
		ExistingExtraImages: &keep,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.ExtraImages) != 1 || updated.ExtraImages[0] != keep[0] {
		t.Fatalf("expected round-tripped subset, got %v", updated.ExtraImages)
	}
}

func TestReorderByServiceMatchesSubmittedOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		item, err := svc.Create(ctx, models.EntityProject, ItemInput{Name: name})
		if err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
		ids = append(ids, item.ID.String())
	}

	want := []string{ids[1], ids[2], ids[0]}
	items, err := svc.Reorder(ctx, models.EntityProject, want)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	for i, item := range items {
		if item.ID.String() != want[i] {
			t.Fatalf("index %d: expected %s, got %s", i, want[i], item.ID)
		}
	}

	// A subsequent list returns the same order.
	listed, err := svc.List(models.EntityProject)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i, item := range listed {
		if item.ID.String() != want[i] {
			t.Fatalf("list index %d: expected %s, got %s", i, want[i], item.ID)
		}
	}
}

func TestReorderRejectsUnparseableIDWithDetails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, models.EntityProject, ItemInput{Name: "a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := svc.Create(ctx, models.EntityProject, ItemInput{Name: "b"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Reorder(ctx, models.EntityProject, []string{a.ID.String(), b.ID.String(), "z"})
	if err == nil {
		t.Fatal("expected reorder conflict")
	}
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *errs.ApiErr, got %T", err)
	}
	if apiErr.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Details, "z") {
		t.Fatalf("expected details to list %q, got %q", "z", apiErr.Details)
	}

	// Order unchanged.
	listed, err := svc.List(models.EntityProject)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed[0].ID != a.ID || listed[1].ID != b.ID {
		t.Fatalf("order mutated after failed reorder")
	}
}

func TestReorderRejectsDuplicateIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, models.EntityProject, ItemInput{Name: "a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Reorder(ctx, models.EntityProject, []string{a.ID.String(), a.ID.String()})
	if err == nil {
		t.Fatal("expected reorder conflict for duplicate id")
	}
	if got := statusOf(t, err); got != 400 {
		t.Fatalf("expected 400, got %d", got)
	}
}

func TestGetUnknownIDReturns404(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(models.EntityProject, uuid.New())
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if got := statusOf(t, err); got != 404 {
		t.Fatalf("expected 404, got %d", got)
	}
}

func TestDeleteRemovesStoredMedia(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.EntityProject, ItemInput{
		Name:        "X",
		Image:       &FileUpload{Data: []byte("img"), Filename: "cover.png"},
		ExtraImages: []FileUpload{{Data: []byte("1"), Filename: "one.png"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, models.EntityProject, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(storage.deletes) != 2 {
		t.Fatalf("expected 2 storage deletes, got %d", len(storage.deletes))
	}

	_, err = svc.Get(models.EntityProject, created.ID)
	if got := statusOf(t, err); got != 404 {
		t.Fatalf("expected 404 after delete, got %d", got)
	}
}
