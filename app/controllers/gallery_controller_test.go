package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plushify/plushify/app/models"
	"github.com/plushify/plushify/app/repository"
	"github.com/plushify/plushify/internal/pkg/generation"
	"github.com/plushify/plushify/internal/pkg/usercontext"
)

type galleryGens struct {
	mu      sync.Mutex
	records []*models.Generation
}

func (g *galleryGens) Create(gen *models.Generation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = append(g.records, gen)
	return nil
}

func (g *galleryGens) GetByUUIDAndUser(uuid string, userID uint) (*models.Generation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.records {
		if r.UUID == uuid && r.UserID == userID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (g *galleryGens) ListByUserID(userID uint, offset, limit int) ([]models.Generation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.Generation
	for _, r := range g.records {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (g *galleryGens) CountByUserID(userID uint) (int64, error) {
	rows, _ := g.ListByUserID(userID, 0, 0)
	return int64(len(rows)), nil
}

func (g *galleryGens) Delete(id uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.records[:0]
	for _, r := range g.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	g.records = kept
	return nil
}

func (g *galleryGens) has(uuid string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.records {
		if r.UUID == uuid {
			return true
		}
	}
	return false
}

type recordingBlobs struct {
	mu      sync.Mutex
	deleted []string
}

func (b *recordingBlobs) Upload(ctx context.Context, data []byte, filename, folder string) (string, error) {
	return "https://cdn.test/" + folder + "/" + filename, nil
}

func (b *recordingBlobs) Delete(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, url)
	return nil
}

func (b *recordingBlobs) got() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.deleted...)
}

func newGalleryTestApp(t *testing.T, gens *galleryGens, blobs *recordingBlobs, userID uint) *fiber.App {
	t.Helper()

	repository.SetRepositories(&repository.Repositories{Generation: gens})
	SetGenerationService(generation.NewService(nil, gens, blobs, nil, nil))
	t.Cleanup(func() { SetGenerationService(nil) })

	app := fiber.New()
	withUser := func(handler fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals("USER_CONTEXT", usercontext.UserContext{UserID: userID, IsLoggedIn: true, Plan: models.PLAN_FREE})
			return handler(c)
		}
	}
	app.Get("/api/v1/gallery", withUser(HandleGalleryList))
	app.Delete("/api/v1/gallery/:uuid", withUser(HandleGalleryDelete))
	return app
}

func seededGalleryGens() *galleryGens {
	return &galleryGens{records: []*models.Generation{
		{ID: 1, UUID: "aaa-111", UserID: 7, OriginalURL: "https://cdn.test/originals/aaa.png", GeneratedURL: "https://cdn.test/plushies/aaa.png", Style: "classic", Quality: "standard", CreditsCost: 1},
		{ID: 2, UUID: "bbb-222", UserID: 9, OriginalURL: "https://cdn.test/originals/bbb.png", GeneratedURL: "https://cdn.test/plushies/bbb.png", Style: "kawaii", Quality: "standard", CreditsCost: 1},
	}}
}

func TestHandleGalleryListOwnItemsOnly(t *testing.T) {
	gens := seededGalleryGens()
	app := newGalleryTestApp(t, gens, &recordingBlobs{}, 7)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/gallery", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	items, ok := body["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "aaa-111", first["uuid"])
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["page"])
}

func TestHandleGalleryDeleteOwned(t *testing.T) {
	gens := seededGalleryGens()
	blobs := &recordingBlobs{}
	app := newGalleryTestApp(t, gens, blobs, 7)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/gallery/aaa-111", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.False(t, gens.has("aaa-111"))
	assert.ElementsMatch(t, []string{
		"https://cdn.test/originals/aaa.png",
		"https://cdn.test/plushies/aaa.png",
	}, blobs.got())
}

func TestHandleGalleryDeleteNotOwned(t *testing.T) {
	gens := seededGalleryGens()
	blobs := &recordingBlobs{}
	app := newGalleryTestApp(t, gens, blobs, 7)

	// bbb-222 belongs to user 9; for user 7 it must look like it never existed.
	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/gallery/bbb-222", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "NOT_FOUND", body["error"])
	assert.True(t, gens.has("bbb-222"), "record must be untouched")
	assert.Empty(t, blobs.got(), "blobs must be untouched")
}

func TestHandleGalleryDeleteMissing(t *testing.T) {
	app := newGalleryTestApp(t, seededGalleryGens(), &recordingBlobs{}, 7)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/gallery/zzz-999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
