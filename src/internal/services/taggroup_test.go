package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casapps/casforum/src/internal/database/models"
)

func TestTagGroupServiceListSearchableGroups(t *testing.T) {
	db := setupTagTestDB(t)
	svc := NewTagGroupService(db)
	ctx := context.Background()

	a := seedTag(t, db, &models.Tag{Name: "A", Slug: "a", Status: models.TagStatusApproved})
	b := seedTag(t, db, &models.Tag{Name: "B", Slug: "b", Status: models.TagStatusApproved})

	langs := &models.TagGroup{Name: "Languages", Slug: "languages", Searchable: true, Kind: models.TagGroupKindSearch, ArrangementOrder: 2}
	topics := &models.TagGroup{Name: "Topics", Slug: "topics", Searchable: true, Kind: models.TagGroupKindBoth, ArrangementOrder: 1}
	internal := &models.TagGroup{Name: "Internal", Slug: "internal", Searchable: false, Kind: models.TagGroupKindSearch}
	layout := &models.TagGroup{Name: "Layout", Slug: "layout", Searchable: true, Kind: models.TagGroupKindArrangement}
	require.NoError(t, db.Create(langs).Error)
	require.NoError(t, db.Create(topics).Error)
	require.NoError(t, db.Create(internal).Error)
	require.NoError(t, db.Create(layout).Error)

	require.NoError(t, db.Create(&models.TagGroupMembership{TagGroupID: langs.ID, TagID: b.ID, Position: 1}).Error)
	require.NoError(t, db.Create(&models.TagGroupMembership{TagGroupID: langs.ID, TagID: a.ID, Position: 2}).Error)

	groups, err := svc.ListSearchableGroups(ctx)
	assert.NoError(t, err)
	require.Len(t, groups, 2)

	// Ordered for display, arrangement-only and unsearchable groups excluded.
	assert.Equal(t, "Topics", groups[0].Name)
	assert.Equal(t, "Languages", groups[1].Name)
	assert.Empty(t, groups[0].MemberTagIDs)
	assert.Equal(t, []int64{b.ID, a.ID}, groups[1].MemberTagIDs)
}

func TestTagGroupServiceListCanonicalTagOptions(t *testing.T) {
	db := setupTagTestDB(t)
	svc := NewTagGroupService(db)
	ctx := context.Background()

	golang := seedTag(t, db, &models.Tag{Name: "Go", Slug: "golang", Status: models.TagStatusApproved})
	seedTag(t, db, &models.Tag{Name: "Old Go", Slug: "old-go", Status: models.TagStatusApproved, RedirectToTagID: &golang.ID})
	seedTag(t, db, &models.Tag{Name: "Ancient Go", Slug: "ancient-go", Status: models.TagStatusApproved, RedirectToTagID: &golang.ID})

	require.NoError(t, db.Create(&models.TagAlias{TagID: golang.ID, Alias: "gopher"}).Error)

	group := &models.TagGroup{Name: "Languages", Slug: "languages"}
	require.NoError(t, db.Create(group).Error)
	require.NoError(t, db.Create(&models.TagGroupMembership{TagGroupID: group.ID, TagID: golang.ID}).Error)

	options, err := svc.ListCanonicalTagOptions(ctx)
	assert.NoError(t, err)
	require.Len(t, options, 1) // redirect sources are not canonical

	assert.Equal(t, golang.ID, options[0].ID)
	assert.Equal(t, 1, options[0].AliasCount)
	assert.Equal(t, 1, options[0].GroupMembershipCount)
	assert.Equal(t, 2, options[0].RedirectReferenceCount)
}
