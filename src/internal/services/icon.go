package services

import (
	"strings"

	"github.com/casapps/casforum/src/internal/database/models"
)

// DefaultTagGlyph is rendered when a tag carries no icon at all.
const DefaultTagGlyph = "🏷️"

// IconKind distinguishes how a display icon should be rendered
type IconKind string

const (
	IconKindGlyph IconKind = "glyph"
	IconKindImage IconKind = "image"
)

// DisplayIcon is the resolved icon for a tag
type DisplayIcon struct {
	Kind  IconKind `json:"kind"`
	Value string   `json:"value"`
}

// IsImageRef reports whether an icon string refers to an image rather than
// a literal glyph. The check is structural: rooted paths and http(s) URLs
// are images, everything else renders as text/emoji.
func IsImageRef(icon string) bool {
	return strings.HasPrefix(icon, "/") ||
		strings.HasPrefix(icon, "http://") ||
		strings.HasPrefix(icon, "https://")
}

// ResolveIcon picks the icon to display for a tag. A pure function of the
// tag record and the caller's legacy-icon preference. Preferences are
// passed in explicitly, never read from ambient state.
func ResolveIcon(tag *models.Tag, legacyIconsEnabled bool) DisplayIcon {
	if legacyIconsEnabled && tag.LegacyIconPath != nil && *tag.LegacyIconPath != "" {
		return DisplayIcon{Kind: IconKindImage, Value: *tag.LegacyIconPath}
	}
	if tag.Icon == "" {
		return DisplayIcon{Kind: IconKindGlyph, Value: DefaultTagGlyph}
	}
	if IsImageRef(tag.Icon) {
		return DisplayIcon{Kind: IconKindImage, Value: tag.Icon}
	}
	return DisplayIcon{Kind: IconKindGlyph, Value: tag.Icon}
}
