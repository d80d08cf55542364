package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/plushify/plushify/app/models"
	"github.com/plushify/plushify/app/repository"
	"github.com/plushify/plushify/internal/pkg/usercontext"
)

type galleryItem struct {
	UUID         string     `json:"uuid"`
	OriginalURL  string     `json:"original_url"`
	GeneratedURL string     `json:"generated_url"`
	Style        string     `json:"style"`
	Quality      string     `json:"quality"`
	CreditsCost  int        `json:"credits_cost"`
	Width        int        `json:"width,omitempty"`
	Height       int        `json:"height,omitempty"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// HandleGalleryList returns the caller's generations newest first
func HandleGalleryList(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	page, pageSize, offset := pagination(c)

	gens := repository.GetGlobalRepositories().Generation
	records, err := gens.ListByUserID(userID, offset, pageSize)
	if err != nil {
		fiberlog.Errorf("[Gallery] list failed for user %d: %v", userID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}
	total, err := gens.CountByUserID(userID)
	if err != nil {
		fiberlog.Errorf("[Gallery] count failed for user %d: %v", userID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	items := make([]galleryItem, 0, len(records))
	for _, g := range records {
		items = append(items, toGalleryItem(g))
	}

	return c.JSON(fiber.Map{
		"items":     items,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// HandleGalleryDelete removes one generation. A record owned by someone else
// returns the same 404 as a missing one. Blob cleanup is best effort and runs
// before the record delete; a partially failed cleanup never blocks removal.
func HandleGalleryDelete(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	id := c.Params("uuid")

	gens := repository.GetGlobalRepositories().Generation
	record, err := gens.GetByUUIDAndUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Generation not found.")
		}
		fiberlog.Errorf("[Gallery] lookup failed for %s: %v", id, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	if svc, err := getGenerationService(); err == nil && svc.Blobs != nil {
		for _, url := range []string{record.OriginalURL, record.GeneratedURL} {
			if url == "" {
				continue
			}
			if err := svc.Blobs.Delete(c.UserContext(), url); err != nil {
				fiberlog.Warnf("[Gallery] blob delete failed for %s: %v", url, err)
			}
		}
	}

	if err := gens.Delete(record.ID); err != nil {
		fiberlog.Errorf("[Gallery] delete failed for %s: %v", id, err)
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL", "Something went wrong.")
	}

	return c.JSON(fiber.Map{"message": "Generation deleted."})
}

func toGalleryItem(g models.Generation) galleryItem {
	return galleryItem{
		UUID:         g.UUID,
		OriginalURL:  g.OriginalURL,
		GeneratedURL: g.GeneratedURL,
		Style:        g.Style,
		Quality:      g.Quality,
		CreditsCost:  g.CreditsCost,
		Width:        g.Width,
		Height:       g.Height,
		TakenAt:      g.TakenAt,
		CreatedAt:    g.CreatedAt,
	}
}
