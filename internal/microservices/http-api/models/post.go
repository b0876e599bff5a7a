package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID          int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string         `json:"title" gorm:"not null;size:255"`
	Body        string         `json:"body" gorm:"not null;type:text"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	PublishedAt *time.Time     `json:"published_at" gorm:"index"` // nil = draft
	UserID      string         `json:"user_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// Associations
	Author     *User      `json:"author,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Categories []Category `json:"categories,omitempty" gorm:"many2many:category_post;constraint:OnDelete:CASCADE;"`
	Comments   []Comment  `json:"comments,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
}

func (Post) TableName() string {
	return "posts"
}

// IsPublished reports whether the post is visible to readers at the given instant.
func (p *Post) IsPublished(now time.Time) bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(now)
}
