package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStylesCatalog(t *testing.T) {
	styles := Styles()
	require.Len(t, styles, 5)

	ids := make([]string, 0, len(styles))
	for _, s := range styles {
		ids = append(ids, s.ID)
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Description)
	}
	assert.Equal(t, []string{"classic", "kawaii", "realistic", "cartoon", "chibi"}, ids)
}

func TestQualitiesCatalog(t *testing.T) {
	qualities := Qualities()
	require.Len(t, qualities, 3)

	ultra, ok := FindQuality("ultra")
	require.True(t, ok)
	assert.Equal(t, 2, ultra.CreditMultiplier)
	assert.Equal(t, 2048, ultra.Pixels)
	assert.Equal(t, "enterprise", ultra.RequiredPlan)

	standard, ok := FindQuality("standard")
	require.True(t, ok)
	assert.Equal(t, 1, standard.CreditMultiplier)
	assert.Equal(t, "free", standard.RequiredPlan)
}

func TestFindStyle(t *testing.T) {
	s, ok := FindStyle("kawaii")
	require.True(t, ok)
	assert.Equal(t, "Kawaii", s.Name)

	_, ok = FindStyle("steampunk")
	assert.False(t, ok)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), MaxFileSize())
	assert.Equal(t, 60*time.Second, GenerationTimeout())
	assert.Equal(t, 1, StandardGenerationCost())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GENERATION_MAX_FILE_SIZE", "1048576")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "5")
	t.Setenv("GENERATION_BASE_COST", "3")

	assert.Equal(t, int64(1048576), MaxFileSize())
	assert.Equal(t, 5*time.Second, GenerationTimeout())
	assert.Equal(t, 3, StandardGenerationCost())
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("image/jpeg"))
	assert.True(t, IsSupportedFormat("image/png"))
	assert.True(t, IsSupportedFormat("image/webp"))
	assert.False(t, IsSupportedFormat("image/gif"))
	assert.False(t, IsSupportedFormat("image/svg+xml"))
}
