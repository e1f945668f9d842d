package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/casapps/casforum/src/internal/cache"
	"github.com/casapps/casforum/src/internal/database/models"
	"github.com/casapps/casforum/src/internal/params"
)

// Association service errors.
var (
	ErrNoValidTags   = errors.New("tag_ids must contain at least one valid tag id")
	ErrTopicNotFound = errors.New("topic not found")
)

// TopicTagService reads and writes the many-to-many link between topics and
// tags. Insertion is an idempotent upsert on the (topic_id, tag_id) key;
// correctness under concurrent attaches rests on that constraint, not on
// application-level locking.
type TopicTagService struct {
	db    *gorm.DB
	cache *cache.Manager
}

// NewTopicTagService creates a new topic-tag association service
func NewTopicTagService(db *gorm.DB, cacheManager *cache.Manager) *TopicTagService {
	return &TopicTagService{db: db, cache: cacheManager}
}

// ListTopicTags returns the tags associated with a topic, oldest association
// first. Ties on creation time break on tag id so the order is stable.
func (s *TopicTagService) ListTopicTags(ctx context.Context, topicID int64) ([]models.Tag, error) {
	if topicID <= 0 {
		return nil, ErrTopicNotFound
	}

	var tags []models.Tag
	err := s.db.WithContext(ctx).
		Model(&models.Tag{}).
		Joins("JOIN topic_tags ON topic_tags.tag_id = tags.id").
		Where("topic_tags.topic_id = ?", topicID).
		Order("topic_tags.created_at ASC, tags.id ASC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list topic tags: %w", err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// AttachTags associates tags with a topic on behalf of an authenticated
// actor. Re-attaching an already-associated tag is a no-op, not an error.
// The returned list is re-read after insertion so it reflects true current
// state even under concurrent attach calls.
func (s *TopicTagService) AttachTags(ctx context.Context, topicID int64, tagIDs []int64, actorID uuid.UUID) ([]models.Tag, error) {
	ids := params.NormalizeIDs(tagIDs)
	if len(ids) == 0 {
		return nil, ErrNoValidTags
	}

	var topicCount int64
	if err := s.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", topicID).Count(&topicCount).Error; err != nil {
		return nil, fmt.Errorf("failed to check topic: %w", err)
	}
	if topicCount == 0 {
		return nil, ErrTopicNotFound
	}

	rows := make([]models.TopicTag, 0, len(ids))
	for _, tagID := range ids {
		rows = append(rows, models.TopicTag{
			TopicID:   topicID,
			TagID:     tagID,
			CreatedBy: actorID,
		})
	}

	// Idempotent upsert: rows that already exist are silently ignored.
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to attach tags: %w", res.Error)
	}

	// Usage counters only move when rows were actually inserted.
	if res.RowsAffected > 0 {
		if err := s.refreshUsageCounts(ctx, ids); err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Delete(ctx, chipCacheKey)
		}
	}

	return s.ListTopicTags(ctx, topicID)
}

// refreshUsageCounts recomputes usage_count for the given tags from the
// association table, so the derived counter never drifts under concurrency.
func (s *TopicTagService) refreshUsageCounts(ctx context.Context, tagIDs []int64) error {
	err := s.db.WithContext(ctx).
		Model(&models.Tag{}).
		Where("id IN ?", tagIDs).
		Update("usage_count", gorm.Expr(
			"(SELECT COUNT(*) FROM topic_tags WHERE topic_tags.tag_id = tags.id)",
		)).Error
	if err != nil {
		return fmt.Errorf("failed to refresh tag usage counts: %w", err)
	}
	return nil
}
