package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
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
	"github.com/plushify/plushify/internal/pkg/plushgen"
	"github.com/plushify/plushify/internal/pkg/usercontext"
)

var testPNG = []byte("\x89PNG\r\n\x1a\ntest-image-payload")

type memorySubs struct {
	mu      sync.Mutex
	credits map[uint]int
	plans   map[uint]string
}

func newMemorySubs() *memorySubs {
	return &memorySubs{credits: map[uint]int{}, plans: map[uint]string{}}
}

func (m *memorySubs) row(userID uint) *models.Subscription {
	return &models.Subscription{UserID: userID, Plan: m.plans[userID], Credits: m.credits[userID]}
}

func (m *memorySubs) Ensure(userID uint) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[userID]; !ok {
		m.plans[userID] = models.PLAN_FREE
		m.credits[userID] = models.FreeStartingCredits
	}
	return m.row(userID), nil
}

func (m *memorySubs) GetByUserID(userID uint) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[userID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.row(userID), nil
}

func (m *memorySubs) Consume(userID uint, amount int) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bal, ok := m.credits[userID]; !ok || bal < amount {
		return nil, repository.ErrInsufficientCredits
	}
	m.credits[userID] -= amount
	return m.row(userID), nil
}

func (m *memorySubs) Add(userID uint, amount int) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.credits[userID]; !ok {
		return nil, repository.ErrNoSubscription
	}
	m.credits[userID] += amount
	return m.row(userID), nil
}

func (m *memorySubs) SetBalance(userID uint, credits int) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[userID]; !ok {
		m.plans[userID] = models.PLAN_FREE
	}
	m.credits[userID] = credits
	return m.row(userID), nil
}

func (m *memorySubs) UpdatePlan(userID uint, plan string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[userID] = plan
	return m.row(userID), nil
}

type memoryGens struct {
	mu      sync.Mutex
	records []*models.Generation
}

func (m *memoryGens) Create(gen *models.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, gen)
	return nil
}

func (m *memoryGens) GetByUUIDAndUser(uuid string, userID uint) (*models.Generation, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryGens) ListByUserID(userID uint, offset, limit int) ([]models.Generation, error) {
	return nil, nil
}

func (m *memoryGens) CountByUserID(userID uint) (int64, error) { return 0, nil }
func (m *memoryGens) Delete(id uint) error                     { return nil }

type memoryBlobs struct{}

func (memoryBlobs) Upload(ctx context.Context, data []byte, filename, folder string) (string, error) {
	return "https://cdn.test/" + folder + "/" + filename, nil
}

func (memoryBlobs) Delete(ctx context.Context, url string) error { return nil }

type stubGenerator struct {
	err error
}

func (s stubGenerator) Generate(ctx context.Context, image []byte, mimeType, prompt string) (*plushgen.GeneratedImage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &plushgen.GeneratedImage{Data: []byte("plush"), MediaType: "image/png"}, nil
}

type noopCounter struct{}

func (noopCounter) AddOutcome(string) {}

func newGenerateTestApp(t *testing.T, subs *memorySubs, gen plushgen.Generator, userCtx *usercontext.UserContext) *fiber.App {
	t.Helper()

	SetGenerationService(generation.NewService(subs, &memoryGens{}, memoryBlobs{}, gen, noopCounter{}))
	t.Cleanup(func() { SetGenerationService(nil) })

	app := fiber.New()
	app.Post("/api/v1/generate", func(c *fiber.Ctx) error {
		if userCtx != nil {
			c.Locals("USER_CONTEXT", *userCtx)
		}
		return HandleGenerate(c)
	})
	return app
}

func newGenerateRequest(t *testing.T, fieldName, filename string, payload []byte, style, quality string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile(fieldName, filename)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("style", style))
	require.NoError(t, w.WriteField("quality", quality))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHandleGenerateSuccess(t *testing.T) {
	subs := newMemorySubs()
	userCtx := &usercontext.UserContext{UserID: 7, Username: "mira", IsLoggedIn: true, Plan: models.PLAN_FREE}
	app := newGenerateTestApp(t, subs, stubGenerator{}, userCtx)

	req := newGenerateRequest(t, "image", "photo.png", testPNG, "classic", "standard")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["uuid"])
	assert.Equal(t, float64(1), body["credits_cost"])
	assert.Equal(t, float64(models.FreeStartingCredits-1), body["remaining_credits"])
}

func TestHandleGenerateUnauthorized(t *testing.T) {
	app := newGenerateTestApp(t, newMemorySubs(), stubGenerator{}, nil)

	req := newGenerateRequest(t, "image", "photo.png", testPNG, "classic", "standard")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "UNAUTHORIZED", body["error"])
}

func TestHandleGenerateMissingFile(t *testing.T) {
	userCtx := &usercontext.UserContext{UserID: 7, IsLoggedIn: true, Plan: models.PLAN_FREE}
	app := newGenerateTestApp(t, newMemorySubs(), stubGenerator{}, userCtx)

	req := newGenerateRequest(t, "image", "", nil, "classic", "standard")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "INVALID_INPUT", body["error"])
	assert.Equal(t, "No image file provided.", body["message"])
}

func TestHandleGenerateInsufficientCredits(t *testing.T) {
	subs := newMemorySubs()
	subs.Ensure(7)
	subs.SetBalance(7, 0)
	userCtx := &usercontext.UserContext{UserID: 7, IsLoggedIn: true, Plan: models.PLAN_FREE}
	app := newGenerateTestApp(t, subs, stubGenerator{}, userCtx)

	req := newGenerateRequest(t, "image", "photo.png", testPNG, "classic", "standard")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "INSUFFICIENT_CREDITS", body["error"])
}

func TestHandleGenerateModelFailure(t *testing.T) {
	subs := newMemorySubs()
	userCtx := &usercontext.UserContext{UserID: 7, IsLoggedIn: true, Plan: models.PLAN_FREE}
	app := newGenerateTestApp(t, subs, stubGenerator{err: errors.New("upstream down")}, userCtx)

	req := newGenerateRequest(t, "image", "photo.png", testPNG, "classic", "standard")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "GENERATION_FAILED", body["error"])
	assert.Equal(t, "Failed to generate image. Please try again.", body["message"])

	// Refund restored the full grant.
	sub, err2 := subs.GetByUserID(7)
	require.NoError(t, err2)
	assert.Equal(t, models.FreeStartingCredits, sub.Credits)
}

func TestHandleGenerateGatedQuality(t *testing.T) {
	userCtx := &usercontext.UserContext{UserID: 7, IsLoggedIn: true, Plan: models.PLAN_FREE}
	app := newGenerateTestApp(t, newMemorySubs(), stubGenerator{}, userCtx)

	req := newGenerateRequest(t, "image", "photo.png", testPNG, "classic", "ultra")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "INVALID_INPUT", body["error"])
}

func TestHandleGeneratePipelineInitRetries(t *testing.T) {
	// No wired pipeline and no storage config: every request must get the
	// structured failure, and a later successful wiring must recover without
	// a restart.
	SetGenerationService(nil)
	t.Cleanup(func() { SetGenerationService(nil) })
	t.Setenv("S3_ACCESS_KEY_ID", "")
	t.Setenv("S3_SECRET_ACCESS_KEY", "")
	t.Setenv("S3_BUCKET_NAME", "")
	t.Setenv("S3_PUBLIC_BASE_URL", "")

	app := fiber.New()
	app.Post("/api/v1/generate", func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{UserID: 7, IsLoggedIn: true, Plan: models.PLAN_FREE})
		return HandleGenerate(c)
	})

	for i := 0; i < 2; i++ {
		req := newGenerateRequest(t, "image", "photo.png", testPNG, "classic", "standard")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "GENERATION_FAILED", body["error"])
		assert.NotEmpty(t, body["message"])
	}

	SetGenerationService(generation.NewService(newMemorySubs(), &memoryGens{}, memoryBlobs{}, stubGenerator{}, noopCounter{}))

	req := newGenerateRequest(t, "image", "photo.png", testPNG, "classic", "standard")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandleStylesAndQualities(t *testing.T) {
	app := fiber.New()
	app.Get("/styles", HandleStyles)
	app.Get("/qualities", HandleQualities)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/styles", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["styles"], 5)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/qualities", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Len(t, body["qualities"], 3)
}
