package generation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/plushify/plushify/app/models"
	"github.com/plushify/plushify/app/repository"
	"github.com/plushify/plushify/internal/pkg/catalog"
	"github.com/plushify/plushify/internal/pkg/entitlements"
	"github.com/plushify/plushify/internal/pkg/imagemeta"
	"github.com/plushify/plushify/internal/pkg/metrics/counter"
	"github.com/plushify/plushify/internal/pkg/plushgen"
	"github.com/plushify/plushify/internal/pkg/upload"
)

const (
	folderOriginals = "originals"
	folderPlushies  = "plushies"
)

// BlobStore is the subset of the storage client the orchestrator needs
type BlobStore interface {
	Upload(ctx context.Context, data []byte, filename string, folder string) (string, error)
	Delete(ctx context.Context, url string) error
}

// OutcomeCounter records generation outcomes for the operations dashboard.
// Implementations must tolerate being called on every request.
type OutcomeCounter interface {
	AddOutcome(outcome string)
}

// Request carries one generation attempt through the pipeline
type Request struct {
	UserID   uint
	Plan     string
	Filename string
	Data     []byte
	Style    string
	Quality  string
}

// Result is what a successful generation returns to the API layer
type Result struct {
	UUID             string `json:"uuid"`
	OriginalURL      string `json:"original_url"`
	GeneratedURL     string `json:"generated_url"`
	Style            string `json:"style"`
	Quality          string `json:"quality"`
	CreditsCost      int    `json:"credits_cost"`
	RemainingCredits int    `json:"remaining_credits"`
}

// Service orchestrates the generation pipeline: validate, charge, upload,
// call the model, persist. The charge happens before any slow work so a
// concurrent double-spend is impossible; everything after the charge is
// covered by a best-effort refund.
type Service struct {
	Subscriptions repository.SubscriptionRepository
	Generations   repository.GenerationRepository
	Blobs         BlobStore
	Generator     plushgen.Generator
	Counters      OutcomeCounter
}

func NewService(subs repository.SubscriptionRepository, gens repository.GenerationRepository, blobs BlobStore, gen plushgen.Generator, counters OutcomeCounter) *Service {
	return &Service{
		Subscriptions: subs,
		Generations:   gens,
		Blobs:         blobs,
		Generator:     gen,
		Counters:      counters,
	}
}

// Generate runs one attempt end to end. On any error the returned value is a
// *Failure whose Message is safe for the client. A request is not idempotent:
// retrying a failed attempt charges again.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.UserID == 0 {
		return nil, &Failure{Code: CodeUnauthorized, Message: "You must be signed in."}
	}

	style, quality, mimeType, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	cost := catalog.StandardGenerationCost() * quality.CreditMultiplier

	if _, err := s.Subscriptions.Ensure(req.UserID); err != nil {
		return nil, failGeneration("Failed to generate image. Please try again.", err)
	}

	sub, err := s.Subscriptions.Consume(req.UserID, cost)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, failCredits(fmt.Sprintf("You need %d credits for this generation.", cost))
		}
		return nil, failGeneration("Failed to generate image. Please try again.", err)
	}

	// Charged from here on. Any failure below refunds before returning.
	result, genErr := s.run(ctx, req, style, quality, mimeType, cost, sub.Credits)
	if genErr != nil {
		s.refund(req.UserID, cost)
		return nil, genErr
	}

	s.count(counter.OutcomeSucceeded)
	return result, nil
}

// validate checks the request in a fixed order so each problem has a single,
// stable message: file, style, quality, format, size, catalog lookups,
// entitlements.
func (s *Service) validate(req Request) (catalog.Style, catalog.Quality, string, error) {
	var style catalog.Style
	var quality catalog.Quality

	if len(req.Data) == 0 {
		return style, quality, "", failInput("No image file provided.")
	}
	if req.Style == "" {
		return style, quality, "", failInput("No style selected.")
	}
	if req.Quality == "" {
		return style, quality, "", failInput("No quality selected.")
	}
	mimeType, err := upload.ValidateImageBySniff(req.Filename, req.Data)
	if err != nil {
		return style, quality, "", failInput(err.Error())
	}
	if int64(len(req.Data)) > catalog.MaxFileSize() {
		return style, quality, "", failInput(fmt.Sprintf("File exceeds the %dMB size limit.", catalog.MaxFileSize()/(1024*1024)))
	}

	style, ok := catalog.FindStyle(req.Style)
	if !ok {
		return style, quality, "", failInput("Invalid style selected.")
	}
	quality, ok = catalog.FindQuality(req.Quality)
	if !ok {
		return style, quality, "", failInput("Invalid quality selected.")
	}

	plan := entitlements.Normalize(req.Plan)
	if !entitlements.CanUseStyle(plan, style.ID) {
		return style, quality, "", failInput(fmt.Sprintf("The %s style requires a Pro plan.", style.Name))
	}
	if !entitlements.CanUseQuality(plan, quality) {
		return style, quality, "", failInput(fmt.Sprintf("The %s quality requires the %s plan.", strings.ToLower(quality.Name), quality.RequiredPlan))
	}

	return style, quality, mimeType, nil
}

// run covers the post-charge stages: upload original, call the model, upload
// the generated image, persist the record. remaining is the balance after the
// charge, so the client can render it without another round trip.
func (s *Service) run(ctx context.Context, req Request, style catalog.Style, quality catalog.Quality, mimeType string, cost, remaining int) (*Result, error) {
	id := uuid.New().String()

	originalName := id + "_original" + safeExtension(req.Filename, mimeType)
	originalURL, err := s.Blobs.Upload(ctx, req.Data, originalName, folderOriginals)
	if err != nil {
		s.count(counter.OutcomeFailed)
		return nil, failGeneration("Failed to generate image. Please try again.", err)
	}

	modelCtx, cancel := context.WithTimeout(ctx, catalog.GenerationTimeout())
	defer cancel()

	generated, err := s.Generator.Generate(modelCtx, req.Data, mimeType, plushgen.BuildPrompt(style.Name))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.count(counter.OutcomeTimedOut)
			return nil, failGeneration("Generation timed out. Please try again.", err)
		}
		s.count(counter.OutcomeFailed)
		return nil, failGeneration("Failed to generate image. Please try again.", err)
	}

	generatedName := id + "_plush" + extensionForMime(generated.MediaType)
	generatedURL, err := s.Blobs.Upload(ctx, generated.Data, generatedName, folderPlushies)
	if err != nil {
		s.count(counter.OutcomeFailed)
		return nil, failGeneration("Failed to generate image. Please try again.", err)
	}

	record := &models.Generation{
		UUID:         id,
		UserID:       req.UserID,
		OriginalURL:  originalURL,
		GeneratedURL: generatedURL,
		Style:        style.ID,
		Quality:      quality.ID,
		CreditsCost:  cost,
	}
	if meta, err := imagemeta.Extract(req.Data, mimeType); err == nil {
		record.Width = meta.Width
		record.Height = meta.Height
		record.TakenAt = meta.TakenAt
	} else {
		fiberlog.Warnf("[Generation] metadata extraction failed for %s: %v", id, err)
	}

	if err := s.Generations.Create(record); err != nil {
		s.count(counter.OutcomeFailed)
		return nil, failGeneration("Failed to generate image. Please try again.", err)
	}

	return &Result{
		UUID:             id,
		OriginalURL:      originalURL,
		GeneratedURL:     generatedURL,
		Style:            style.ID,
		Quality:          quality.ID,
		CreditsCost:      cost,
		RemainingCredits: remaining,
	}, nil
}

// refund returns the charge after a failed attempt. A refund failure is an
// operator incident, never a user-visible error: the user already got the
// generation failure, and the log line is what pages someone.
func (s *Service) refund(userID uint, amount int) {
	if _, err := s.Subscriptions.Add(userID, amount); err != nil {
		fiberlog.Errorf("CRITICAL: refund of %d credits failed for user %d: %v", amount, userID, err)
		s.count(counter.OutcomeRefundFailed)
		return
	}
	s.count(counter.OutcomeRefunded)
}

func (s *Service) count(outcome string) {
	if s.Counters != nil {
		s.Counters.AddOutcome(outcome)
	}
}

func safeExtension(filename, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	}
	return extensionForMime(mimeType)
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
