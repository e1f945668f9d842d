package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Topic represents a discussion thread
type Topic struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Slug          string         `gorm:"size:255;index" json:"slug"`
	UserID        uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	MessagesCount int            `gorm:"default:0" json:"messages_count"`
	HasNew        bool           `gorm:"default:false" json:"has_new"`
	LastPostedAt  *time.Time     `json:"last_posted_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tags []Tag `gorm:"many2many:topic_tags;" json:"tags,omitempty"`
}
