package entitlements

import (
	"strings"

	"github.com/plushify/plushify/internal/pkg/catalog"
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Normalize maps arbitrary plan strings onto a known tier, defaulting to free.
func Normalize(plan string) Plan {
	switch Plan(strings.ToLower(strings.TrimSpace(plan))) {
	case PlanPro:
		return PlanPro
	case PlanEnterprise:
		return PlanEnterprise
	default:
		return PlanFree
	}
}

func planRank(plan Plan) int {
	switch plan {
	case PlanEnterprise:
		return 2
	case PlanPro:
		return 1
	default:
		return 0
	}
}

// AllowedStyles returns which style ids a plan may use.
func AllowedStyles(plan Plan) []string {
	switch Normalize(string(plan)) {
	case PlanPro, PlanEnterprise:
		return []string{"classic", "kawaii", "cartoon", "realistic", "chibi"}
	default:
		return []string{"classic", "kawaii", "cartoon"}
	}
}

// CanUseStyle reports whether the plan may use the given style id.
func CanUseStyle(plan Plan, styleID string) bool {
	for _, id := range AllowedStyles(plan) {
		if id == styleID {
			return true
		}
	}
	return false
}

// CanUseQuality reports whether the plan satisfies the quality's required tier.
func CanUseQuality(plan Plan, q catalog.Quality) bool {
	return planRank(Normalize(string(plan))) >= planRank(Normalize(q.RequiredPlan))
}
