package entitlements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plushify/plushify/internal/pkg/catalog"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, PlanFree, Normalize(""))
	assert.Equal(t, PlanFree, Normalize("unknown"))
	assert.Equal(t, PlanPro, Normalize("Pro"))
	assert.Equal(t, PlanEnterprise, Normalize(" enterprise "))
}

func TestAllowedStyles(t *testing.T) {
	free := AllowedStyles(PlanFree)
	assert.Len(t, free, 3)
	assert.NotContains(t, free, "realistic")
	assert.NotContains(t, free, "chibi")

	pro := AllowedStyles(PlanPro)
	assert.Len(t, pro, 5)
	assert.Equal(t, pro, AllowedStyles(PlanEnterprise))
}

func TestCanUseStyle(t *testing.T) {
	assert.True(t, CanUseStyle(PlanFree, "classic"))
	assert.False(t, CanUseStyle(PlanFree, "realistic"))
	assert.True(t, CanUseStyle(PlanPro, "realistic"))
	assert.False(t, CanUseStyle(PlanPro, "steampunk"))
}

func TestCanUseQuality(t *testing.T) {
	standard, ok := catalog.FindQuality("standard")
	require.True(t, ok)
	high, ok := catalog.FindQuality("high")
	require.True(t, ok)
	ultra, ok := catalog.FindQuality("ultra")
	require.True(t, ok)

	assert.True(t, CanUseQuality(PlanFree, standard))
	assert.False(t, CanUseQuality(PlanFree, high))
	assert.False(t, CanUseQuality(PlanFree, ultra))

	assert.True(t, CanUseQuality(PlanPro, high))
	assert.False(t, CanUseQuality(PlanPro, ultra))

	assert.True(t, CanUseQuality(PlanEnterprise, ultra))
}
