package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TagStatus type for tag moderation state
type TagStatus string

const (
	TagStatusUnreviewed TagStatus = "unreviewed"
	TagStatusApproved   TagStatus = "approved"
	TagStatusRejected   TagStatus = "rejected"
	TagStatusHidden     TagStatus = "hidden"
)

// TagGroupKind type for tag group usage
type TagGroupKind string

const (
	TagGroupKindSearch      TagGroupKind = "search"
	TagGroupKindArrangement TagGroupKind = "arrangement"
	TagGroupKindBoth        TagGroupKind = "both"
)

// Tag represents a taxonomy tag applied to topics
type Tag struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Slug            string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Status          TagStatus `gorm:"size:20;default:'unreviewed';index" json:"status"`
	Featured        bool      `gorm:"default:false" json:"featured"`
	UsageCount      int       `gorm:"default:0" json:"usage_count"`
	Icon            string    `gorm:"size:255" json:"icon"`
	LegacyIconPath  *string   `gorm:"size:255" json:"legacy_icon_path,omitempty"`
	RedirectToTagID *int64    `gorm:"index" json:"redirect_to_tag_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relations
	RedirectToTag *Tag       `gorm:"foreignKey:RedirectToTagID;constraint:OnDelete:SET NULL" json:"-"`
	Aliases       []TagAlias `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// IsRedirect reports whether this tag has been merged into another tag.
// Redirected tags are kept for association history but never listed.
func (t *Tag) IsRedirect() bool {
	return t.RedirectToTagID != nil
}

// TagAlias represents an alternate spelling that resolves to an owning tag
type TagAlias struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TagID           int64     `gorm:"not null;index" json:"tag_id"`
	Alias           string    `gorm:"size:100;not null" json:"alias"`
	NormalizedAlias string    `gorm:"size:100;index" json:"normalized_alias"`
	CreatedAt       time.Time `json:"created_at"`

	// Relations
	Tag Tag `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeSave keeps the matching form in sync with the display form
func (a *TagAlias) BeforeSave(tx *gorm.DB) error {
	a.NormalizedAlias = strings.ToLower(strings.TrimSpace(a.Alias))
	return nil
}

// TagGroup represents a named, ordered bag of tags
type TagGroup struct {
	ID               int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string       `gorm:"size:100;not null" json:"name"`
	Slug             string       `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description      string       `gorm:"size:500" json:"description"`
	Searchable       bool         `gorm:"default:true" json:"searchable"`
	Kind             TagGroupKind `gorm:"size:20;default:'search'" json:"kind"`
	ArrangementOrder int          `gorm:"default:0" json:"arrangement_order"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	// Relations
	Memberships []TagGroupMembership `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TagGroupMembership orders tags inside a group. Membership implies nothing
// about the member tag's status or redirect state.
type TagGroupMembership struct {
	TagGroupID int64 `gorm:"primaryKey" json:"tag_group_id"`
	TagID      int64 `gorm:"primaryKey" json:"tag_id"`
	Position   int   `gorm:"default:0" json:"position"`

	// Relations
	TagGroup TagGroup `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tag      Tag      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TopicTag represents the many-to-many link between topics and tags.
// The composite primary key is the uniqueness constraint that makes
// concurrent attach calls safe without application-level locking.
type TopicTag struct {
	TopicID   int64     `gorm:"primaryKey" json:"topic_id"`
	TagID     int64     `gorm:"primaryKey" json:"tag_id"`
	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Topic Topic `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tag   Tag   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// CanonicalTagOption aggregates a tag with reference counts for the admin
// merge screen, so a destructive merge can warn about what it would orphan.
// Read-only; produced by a grouped query, never written back.
type CanonicalTagOption struct {
	Tag
	AliasCount             int `json:"alias_count"`
	GroupMembershipCount   int `json:"group_membership_count"`
	RedirectReferenceCount int `json:"redirect_reference_count"`
}
