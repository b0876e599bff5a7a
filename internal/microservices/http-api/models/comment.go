package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID            int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Body          string         `json:"body" gorm:"not null;size:1000"`
	PostID        int64          `json:"post_id" gorm:"not null;index"`
	UserID        string         `json:"user_id" gorm:"type:uuid;not null;index"`
	ConfirmedByID *string        `json:"confirmed_by_id,omitempty" gorm:"column:confirmed_by;type:uuid;index"`
	ConfirmedAt   *time.Time     `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// Associations
	User        *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Post        *Post `json:"post,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
	ConfirmedBy *User `json:"confirmed_by,omitempty" gorm:"foreignKey:ConfirmedByID;constraint:OnDelete:CASCADE;"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsConfirmed: both confirmation columns are written together, checking one is enough.
func (c *Comment) IsConfirmed() bool {
	return c.ConfirmedAt != nil
}
