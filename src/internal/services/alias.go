package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/casapps/casforum/src/internal/database/models"
	"github.com/casapps/casforum/src/internal/params"
)

// AliasResolver maps free-text queries to canonical tag IDs. A query matches
// a tag either through the tag's own name/slug or through an alias row; both
// lookups use case-insensitive substring containment.
type AliasResolver struct {
	db *gorm.DB
}

// NewAliasResolver creates a new alias resolver
func NewAliasResolver(db *gorm.DB) *AliasResolver {
	return &AliasResolver{db: db}
}

// ResolveQuery returns the union of tag IDs matching the query directly and
// through aliases. The two lookups run concurrently and both must succeed;
// a single failure aborts the whole search rather than returning a partially
// unioned set. An empty result is a valid "no matches" signal; callers must
// short-circuit on it instead of falling through to an unfiltered listing.
func (r *AliasResolver) ResolveQuery(ctx context.Context, query string) ([]int64, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	pattern := "%" + query + "%"

	var directIDs, aliasIDs []int64

	g, gctx := errgroup.WithContext(ctx)

	// Direct match against tag name/slug, redirected tags excluded.
	g.Go(func() error {
		err := r.db.WithContext(gctx).
			Model(&models.Tag{}).
			Where("redirect_to_tag_id IS NULL").
			Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", pattern, pattern).
			Pluck("id", &directIDs).Error
		if err != nil {
			return fmt.Errorf("tag name lookup failed: %w", err)
		}
		return nil
	})

	// Alias match, returning the owning tag ids.
	g.Go(func() error {
		err := r.db.WithContext(gctx).
			Model(&models.TagAlias{}).
			Where("normalized_alias LIKE ?", pattern).
			Pluck("tag_id", &aliasIDs).Error
		if err != nil {
			return fmt.Errorf("tag alias lookup failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Union with the normalizer's dedup/validity rules. No limit is applied
	// here; the page limit only cuts the final resolved set.
	union := make([]int64, 0, len(directIDs)+len(aliasIDs))
	union = append(union, directIDs...)
	union = append(union, aliasIDs...)
	ids := params.NormalizeIDs(union)
	if ids == nil {
		return []int64{}, nil
	}
	return ids, nil
}
