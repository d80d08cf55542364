package controllers

import (
	"io"
	"sync"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/plushify/plushify/app/repository"
	"github.com/plushify/plushify/internal/pkg/catalog"
	"github.com/plushify/plushify/internal/pkg/generation"
	"github.com/plushify/plushify/internal/pkg/plushgen"
	"github.com/plushify/plushify/internal/pkg/storage"
	"github.com/plushify/plushify/internal/pkg/usercontext"
)

var (
	generationService   *generation.Service
	generationServiceMu sync.Mutex
)

// SetGenerationService replaces the wired pipeline, for tests
func SetGenerationService(svc *generation.Service) {
	generationServiceMu.Lock()
	defer generationServiceMu.Unlock()
	generationService = svc
}

// getGenerationService wires the pipeline on first use. A failed attempt is
// retried on the next call instead of wedging the handler.
func getGenerationService() (*generation.Service, error) {
	generationServiceMu.Lock()
	defer generationServiceMu.Unlock()

	if generationService != nil {
		return generationService, nil
	}

	cfg, err := storage.LoadConfig()
	if err != nil {
		return nil, err
	}
	blobs, err := storage.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	repos := repository.GetGlobalRepositories()
	generationService = generation.NewService(
		repos.Subscription,
		repos.Generation,
		blobs,
		plushgen.NewClient(),
		generation.RedisCounter{},
	)

	return generationService, nil
}

// HandleGenerate accepts a multipart photo upload and runs the plushie
// pipeline. The request is charged before the model call; a failed attempt is
// refunded, and a retried attempt charges again.
func HandleGenerate(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if userID == 0 {
		return errorResponse(c, fiber.StatusUnauthorized, string(generation.CodeUnauthorized), "You must be signed in.")
	}

	svc, err := getGenerationService()
	if err != nil {
		fiberlog.Errorf("[Generate] pipeline unavailable: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, string(generation.CodeGenerationFailed), "Failed to generate image. Please try again.")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, string(generation.CodeInvalidInput), "No image file provided.")
	}
	if fileHeader.Size > catalog.MaxFileSize() {
		return errorResponse(c, fiber.StatusBadRequest, string(generation.CodeInvalidInput), "File exceeds the 10MB size limit.")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, string(generation.CodeInvalidInput), "Could not read the uploaded file.")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, catalog.MaxFileSize()+1))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, string(generation.CodeInvalidInput), "Could not read the uploaded file.")
	}

	result, err := svc.Generate(c.UserContext(), generation.Request{
		UserID:   userID,
		Plan:     usercontext.GetPlan(c),
		Filename: fileHeader.Filename,
		Data:     data,
		Style:    c.FormValue("style"),
		Quality:  c.FormValue("quality"),
	})
	if err != nil {
		failure := generation.AsFailure(err)
		if failure.Code == generation.CodeGenerationFailed {
			fiberlog.Errorf("[Generate] user %d: %v", userID, err)
		}
		return errorResponse(c, failure.Code.StatusCode(), string(failure.Code), failure.Message)
	}

	return c.JSON(result)
}

// HandleStyles returns the style catalog
func HandleStyles(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"styles": catalog.Styles()})
}

// HandleQualities returns the quality catalog
func HandleQualities(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"qualities": catalog.Qualities()})
}
