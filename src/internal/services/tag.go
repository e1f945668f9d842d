package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casforum/src/internal/cache"
	"github.com/casapps/casforum/src/internal/database/models"
	"github.com/casapps/casforum/src/internal/params"
)

// FilterChipPageSize is the fixed page size for the filter-chip and
// search-as-you-type surface.
const FilterChipPageSize = 12

const chipCacheKey = "tags:chips"
const chipCacheTTL = 30 * time.Second

// MatchMode selects topic-filter semantics
type MatchMode string

const (
	// MatchAny matches topics carrying at least one of the requested tags
	MatchAny MatchMode = "any"
	// MatchAll matches topics carrying every requested tag
	MatchAll MatchMode = "all"
)

// ParseMatchMode parses a match mode, defaulting to MatchAny
func ParseMatchMode(raw string) MatchMode {
	if strings.EqualFold(strings.TrimSpace(raw), string(MatchAll)) {
		return MatchAll
	}
	return MatchAny
}

// TagService lists and searches tags under status, featured, and
// redirect-exclusion constraints, and resolves client tag filters to their
// canonical form.
type TagService struct {
	db       *gorm.DB
	cfg      *viper.Viper
	cache    *cache.Manager
	resolver *AliasResolver
}

// NewTagService creates a new tag service
func NewTagService(db *gorm.DB, cfg *viper.Viper, cacheManager *cache.Manager) *TagService {
	return &TagService{
		db:       db,
		cfg:      cfg,
		cache:    cacheManager,
		resolver: NewAliasResolver(db),
	}
}

// ListTagsInput filters the chip-list surface
type ListTagsInput struct {
	Status   string
	Query    string
	Featured *bool
}

// LookupTagsInput filters the autocomplete surface
type LookupTagsInput struct {
	Status   string
	Query    string
	Featured *bool
	IDs      []int64
	Limit    int
}

// statusShortCircuits reports whether a requested status means "nothing to
// return". Only approved tags are ever exposed through the read paths, so any
// other explicit status yields an empty list without touching storage.
func statusShortCircuits(status string) bool {
	return status != "" && status != string(models.TagStatusApproved)
}

// baseTagQuery scopes to listable tags: approved and not redirected.
func (s *TagService) baseTagQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Tag{}).
		Where("status = ?", models.TagStatusApproved).
		Where("redirect_to_tag_id IS NULL")
}

// ListTags returns tags for the filter-chip / search-as-you-type surface,
// ordered by name, fixed page size.
func (s *TagService) ListTags(ctx context.Context, input ListTagsInput) ([]models.Tag, error) {
	if statusShortCircuits(input.Status) {
		return []models.Tag{}, nil
	}

	// The plain chip list is hot and identical for everyone; serve it from
	// cache when no narrowing is requested.
	cacheable := input.Query == "" && input.Featured == nil
	if cacheable && s.cache != nil {
		var cached []models.Tag
		if err := s.cache.GetJSON(ctx, chipCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	query := s.baseTagQuery(ctx)

	if input.Featured != nil {
		query = query.Where("featured = ?", *input.Featured)
	}

	if trimmed := strings.TrimSpace(input.Query); trimmed != "" {
		matched, err := s.resolver.ResolveQuery(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		// An empty matched set is a "no results" answer, not "no filter".
		if len(matched) == 0 {
			return []models.Tag{}, nil
		}
		query = query.Where("id IN ?", matched)
	}

	var tags []models.Tag
	if err := query.Order("name ASC").Limit(FilterChipPageSize).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	if cacheable && s.cache != nil {
		s.cache.SetJSON(ctx, chipCacheKey, tags, chipCacheTTL)
	}

	return tags, nil
}

// LookupTags returns tags for the lighter-weight autocomplete surface with a
// caller-tunable limit and an optional explicit id set.
func (s *TagService) LookupTags(ctx context.Context, input LookupTagsInput) ([]models.Tag, error) {
	if statusShortCircuits(input.Status) {
		return []models.Tag{}, nil
	}

	query := s.baseTagQuery(ctx)

	if ids := params.NormalizeIDs(input.IDs); len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	if input.Featured != nil {
		query = query.Where("featured = ?", *input.Featured)
	}

	if trimmed := strings.TrimSpace(input.Query); trimmed != "" {
		matched, err := s.resolver.ResolveQuery(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			return []models.Tag{}, nil
		}
		query = query.Where("id IN ?", matched)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = params.DefaultLimit
	}
	if limit > params.MaxLimit {
		limit = params.MaxLimit
	}

	var tags []models.Tag
	if err := query.Order("name ASC").Limit(limit).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// ResolveTopicFilter reduces requested tag ids to the subset that currently
// exists, is approved, and is not redirected. Request order is preserved so
// the client can compare against what it asked for.
func (s *TagService) ResolveTopicFilter(ctx context.Context, requested []int64) ([]int64, error) {
	requested = params.NormalizeIDs(requested)
	if len(requested) == 0 {
		return []int64{}, nil
	}

	var valid []int64
	err := s.baseTagQuery(ctx).
		Where("id IN ?", requested).
		Pluck("id", &valid).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag filter: %w", err)
	}

	validSet := make(map[int64]bool, len(valid))
	for _, id := range valid {
		validSet[id] = true
	}

	resolved := make([]int64, 0, len(valid))
	for _, id := range requested {
		if validSet[id] {
			resolved = append(resolved, id)
		}
	}
	return resolved, nil
}

// TopicFilter is the canonical form of a client's requested filter
type TopicFilter struct {
	TagIDs []int64   `json:"tag_ids"`
	Match  MatchMode `json:"match"`
}

// TopicFilterResult carries a topic page plus the filter that was actually
// honored, so clients can detect drift from what they requested.
type TopicFilterResult struct {
	Topics     []models.Topic `json:"topics"`
	TotalCount int64          `json:"total_count"`
	Filter     TopicFilter    `json:"filter"`
}

// ListTopicsByFilter lists topics matching the resolved tag filter. An empty
// resolved filter from a non-empty request yields zero topics; an empty
// request yields the unfiltered recent listing.
func (s *TagService) ListTopicsByFilter(ctx context.Context, requested []int64, match MatchMode, limit int) (*TopicFilterResult, error) {
	resolved, err := s.ResolveTopicFilter(ctx, requested)
	if err != nil {
		return nil, err
	}

	result := &TopicFilterResult{
		Topics: []models.Topic{},
		Filter: TopicFilter{TagIDs: resolved, Match: match},
	}

	// All requested ids were invalid: nothing can match, but the resolved
	// (empty) filter still goes back so the client can reconcile.
	if len(params.NormalizeIDs(requested)) > 0 && len(resolved) == 0 {
		return result, nil
	}

	if limit <= 0 {
		limit = params.DefaultLimit
	}
	if limit > params.MaxLimit {
		limit = params.MaxLimit
	}

	query := s.db.WithContext(ctx).Model(&models.Topic{})

	if len(resolved) > 0 {
		query = query.
			Joins("JOIN topic_tags ON topic_tags.topic_id = topics.id").
			Where("topic_tags.tag_id IN ?", resolved).
			Group("topics.id")
		if match == MatchAll {
			query = query.Having("COUNT(DISTINCT topic_tags.tag_id) = ?", len(resolved))
		}
	}

	var total int64
	countQuery := s.db.WithContext(ctx).
		Table("(?) AS matched", query.Session(&gorm.Session{}).Select("topics.id"))
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count topics: %w", err)
	}

	var topics []models.Topic
	err = query.Select("topics.*").
		Order("topics.created_at DESC").
		Limit(limit).
		Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	if topics == nil {
		topics = []models.Topic{}
	}

	result.Topics = topics
	result.TotalCount = total
	return result, nil
}
