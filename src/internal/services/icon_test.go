package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casapps/casforum/src/internal/database/models"
)

func TestIsImageRef(t *testing.T) {
	assert.True(t, IsImageRef("/uploads/tags/golang.png"))
	assert.True(t, IsImageRef("http://cdn.example.com/t.png"))
	assert.True(t, IsImageRef("https://cdn.example.com/t.png"))

	assert.False(t, IsImageRef("🐹"))
	assert.False(t, IsImageRef("go"))
	assert.False(t, IsImageRef(""))
	assert.False(t, IsImageRef("ftp://example.com/t.png"))
}

func TestResolveIcon(t *testing.T) {
	legacy := "/legacy/icons/golang.gif"

	t.Run("LegacyPreferenceEnabled", func(t *testing.T) {
		tag := &models.Tag{Icon: "🐹", LegacyIconPath: &legacy}
		icon := ResolveIcon(tag, true)
		assert.Equal(t, IconKindImage, icon.Kind)
		assert.Equal(t, legacy, icon.Value)
	})

	t.Run("LegacyPreferenceDisabled", func(t *testing.T) {
		tag := &models.Tag{Icon: "🐹", LegacyIconPath: &legacy}
		icon := ResolveIcon(tag, false)
		assert.Equal(t, IconKindGlyph, icon.Kind)
		assert.Equal(t, "🐹", icon.Value)
	})

	t.Run("LegacyEnabledButMissing", func(t *testing.T) {
		tag := &models.Tag{Icon: "/uploads/tags/go.png"}
		icon := ResolveIcon(tag, true)
		assert.Equal(t, IconKindImage, icon.Kind)
		assert.Equal(t, "/uploads/tags/go.png", icon.Value)
	})

	t.Run("EmptyLegacyPathIgnored", func(t *testing.T) {
		empty := ""
		tag := &models.Tag{Icon: "🐹", LegacyIconPath: &empty}
		icon := ResolveIcon(tag, true)
		assert.Equal(t, IconKindGlyph, icon.Kind)
		assert.Equal(t, "🐹", icon.Value)
	})

	t.Run("NoIconFallsBackToDefaultGlyph", func(t *testing.T) {
		icon := ResolveIcon(&models.Tag{}, false)
		assert.Equal(t, IconKindGlyph, icon.Kind)
		assert.Equal(t, DefaultTagGlyph, icon.Value)
	})
}
