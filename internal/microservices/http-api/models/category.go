package models

import "time"

type Category struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"uniqueIndex;not null;size:255"`
	Description *string   `json:"description,omitempty" gorm:"size:1000"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	UserID      string    `json:"user_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Posts []Post `json:"posts,omitempty" gorm:"many2many:category_post;constraint:OnDelete:CASCADE;"`
}

func (Category) TableName() string {
	return "categories"
}
