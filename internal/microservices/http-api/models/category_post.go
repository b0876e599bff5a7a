package models

// CategoryPost is the explicit join row of the category_post many-to-many table.
type CategoryPost struct {
	CategoryID int64 `json:"category_id" gorm:"primaryKey"`
	PostID     int64 `json:"post_id" gorm:"primaryKey"`
}

func (CategoryPost) TableName() string {
	return "category_post"
}
