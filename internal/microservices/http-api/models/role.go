package models

type Role struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"uniqueIndex;not null" json:"title"`

	// Associations
	Permissions []Permission `gorm:"many2many:permission_role;constraint:OnDelete:CASCADE;" json:"permissions,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// PermissionTitles flattens the preloaded permission set.
func (r *Role) PermissionTitles() []string {
	titles := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		titles = append(titles, p.Title)
	}
	return titles
}
