package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminRoleTitle is the role whose holders override ownership checks.
const AdminRoleTitle = "Admin"

type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	LastName  string    `json:"last_name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password_hash;not null" json:"-"` // never serialized
	Phone     *string   `json:"phone,omitempty"`
	RoleID    int64     `gorm:"not null;index" json:"role_id"` // exactly one role, replaced on re-assignment
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

// IsAdmin reports whether the loaded role is the Admin role.
// The Role association must be preloaded.
func (user *User) IsAdmin() bool {
	return user.Role != nil && user.Role.Title == AdminRoleTitle
}

// FullName joins name and last name the way notifications address users.
func (user *User) FullName() string {
	if user.LastName == "" {
		return user.Name
	}
	return user.Name + " " + user.LastName
}

func (User) TableName() string {
	return "users"
}
