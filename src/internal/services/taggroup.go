package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/casapps/casforum/src/internal/database/models"
)

// TagGroupService reads tag groups and the admin canonical-tag aggregates.
// Both surfaces are read-only in this core.
type TagGroupService struct {
	db *gorm.DB
}

// NewTagGroupService creates a new tag group service
func NewTagGroupService(db *gorm.DB) *TagGroupService {
	return &TagGroupService{db: db}
}

// TagGroupWithMembers is a group plus its ordered member tag ids
type TagGroupWithMembers struct {
	models.TagGroup
	MemberTagIDs []int64 `json:"member_tag_ids"`
}

// ListSearchableGroups returns groups that appear in search (kind search or
// both, searchable flag set), ordered for display, each with its members in
// position order.
func (s *TagGroupService) ListSearchableGroups(ctx context.Context) ([]TagGroupWithMembers, error) {
	var groups []models.TagGroup
	err := s.db.WithContext(ctx).
		Where("searchable = ?", true).
		Where("kind IN ?", []models.TagGroupKind{models.TagGroupKindSearch, models.TagGroupKindBoth}).
		Order("arrangement_order ASC, name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tag groups: %w", err)
	}

	result := make([]TagGroupWithMembers, 0, len(groups))
	for _, group := range groups {
		var memberIDs []int64
		err := s.db.WithContext(ctx).
			Model(&models.TagGroupMembership{}).
			Where("tag_group_id = ?", group.ID).
			Order("position ASC, tag_id ASC").
			Pluck("tag_id", &memberIDs).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list group members: %w", err)
		}
		if memberIDs == nil {
			memberIDs = []int64{}
		}
		result = append(result, TagGroupWithMembers{TagGroup: group, MemberTagIDs: memberIDs})
	}
	return result, nil
}

// ListCanonicalTagOptions returns every canonical (non-redirected) tag with
// the counts the admin merge screen warns about: aliases that would be
// re-pointed, group memberships that would be dropped, and inbound redirects.
func (s *TagGroupService) ListCanonicalTagOptions(ctx context.Context) ([]models.CanonicalTagOption, error) {
	var options []models.CanonicalTagOption
	err := s.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select(`tags.*,
			(SELECT COUNT(*) FROM tag_aliases WHERE tag_aliases.tag_id = tags.id) AS alias_count,
			(SELECT COUNT(*) FROM tag_group_memberships WHERE tag_group_memberships.tag_id = tags.id) AS group_membership_count,
			(SELECT COUNT(*) FROM tags refs WHERE refs.redirect_to_tag_id = tags.id) AS redirect_reference_count`).
		Where("tags.redirect_to_tag_id IS NULL").
		Order("tags.name ASC").
		Scan(&options).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list canonical tag options: %w", err)
	}
	if options == nil {
		options = []models.CanonicalTagOption{}
	}
	return options, nil
}
