package catalog

import (
	"strconv"
	"time"

	"github.com/plushify/plushify/internal/pkg/env"
)

// Style is one entry of the static plushie style catalog.
type Style struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// Quality is one entry of the static generation quality catalog. The
// credit multiplier is an integer factor applied to the base generation
// cost; no float arithmetic anywhere in the credit path.
type Quality struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Resolution       string `json:"resolution"`
	Pixels           int    `json:"pixels"`
	CreditMultiplier int    `json:"credit_multiplier"`
	Description      string `json:"description"`
	RequiredPlan     string `json:"required_plan"`
}

var styles = []Style{
	{ID: "classic", Name: "Classic Plushie", Description: "Traditional soft toy look with round features and button eyes", Available: true},
	{ID: "kawaii", Name: "Kawaii", Description: "Japanese-inspired cute style with big eyes and pastel colors", Available: true},
	{ID: "realistic", Name: "Realistic Plush", Description: "Detailed, lifelike plush texture with realistic proportions", Available: true},
	{ID: "cartoon", Name: "Cartoon", Description: "Fun, exaggerated cartoon style with bold colors", Available: true},
	{ID: "chibi", Name: "Chibi", Description: "Super-deformed style with oversized head and tiny body", Available: true},
}

var qualities = []Quality{
	{ID: "standard", Name: "Standard", Resolution: "512x512", Pixels: 512, CreditMultiplier: 1, Description: "Good for social media and web use", RequiredPlan: "free"},
	{ID: "high", Name: "High", Resolution: "1024x1024", Pixels: 1024, CreditMultiplier: 1, Description: "Great for prints and merchandise", RequiredPlan: "pro"},
	{ID: "ultra", Name: "Ultra", Resolution: "2048x2048", Pixels: 2048, CreditMultiplier: 2, Description: "Maximum detail for large prints", RequiredPlan: "enterprise"},
}

// Styles returns the full style catalog.
func Styles() []Style {
	return styles
}

// Qualities returns the full quality catalog.
func Qualities() []Quality {
	return qualities
}

// FindStyle resolves a style id. Pure lookup, no side effects.
func FindStyle(id string) (Style, bool) {
	for _, s := range styles {
		if s.ID == id && s.Available {
			return s, true
		}
	}
	return Style{}, false
}

// FindQuality resolves a quality id. Pure lookup, no side effects.
func FindQuality(id string) (Quality, bool) {
	for _, q := range qualities {
		if q.ID == id {
			return q, true
		}
	}
	return Quality{}, false
}

const (
	defaultMaxFileSize       = 10 * 1024 * 1024 // 10 MiB
	defaultGenerationTimeout = 60 * time.Second
	defaultStandardCost      = 1
)

// SupportedFormats is the MIME allow-list for uploads.
var SupportedFormats = []string{"image/jpeg", "image/png", "image/webp"}

// MaxFileSize returns the maximum accepted upload size in bytes.
func MaxFileSize() int64 {
	return envInt64("GENERATION_MAX_FILE_SIZE", defaultMaxFileSize)
}

// GenerationTimeout bounds the remote model call.
func GenerationTimeout() time.Duration {
	if v, err := strconv.Atoi(env.GetEnv("GENERATION_TIMEOUT_SECONDS", "")); err == nil && v > 0 {
		return time.Duration(v) * time.Second
	}
	return defaultGenerationTimeout
}

// StandardGenerationCost is the base credit cost before the quality multiplier.
func StandardGenerationCost() int {
	if v, err := strconv.Atoi(env.GetEnv("GENERATION_BASE_COST", "")); err == nil && v > 0 {
		return v
	}
	return defaultStandardCost
}

// IsSupportedFormat reports whether the MIME type is in the allow-list.
func IsSupportedFormat(mimeType string) bool {
	for _, f := range SupportedFormats {
		if f == mimeType {
			return true
		}
	}
	return false
}

func envInt64(key string, def int64) int64 {
	if v, err := strconv.ParseInt(env.GetEnv(key, ""), 10, 64); err == nil && v > 0 {
		return v
	}
	return def
}
