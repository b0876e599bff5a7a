package models

import "time"

// NotificationType names the two comment notifications.
type NotificationType string

const (
	NotificationNewComment       NotificationType = "new_comment"
	NotificationCommentConfirmed NotificationType = "comment_confirmed"
)

type Notification struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"not null" json:"type"`
	PostID    int64            `gorm:"index" json:"post_id"`
	CommentID int64            `gorm:"index" json:"comment_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	URL       string           `json:"url"`
	Read      bool             `gorm:"default:false" json:"read"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
