package models

// Permission is one entry of the seeded, immutable permission catalog.
type Permission struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"uniqueIndex;not null" json:"title"`
}

func (Permission) TableName() string {
	return "permissions"
}
